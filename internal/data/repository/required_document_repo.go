package repository

import (
	"context"
	"fmt"

	"foodtruck-market/internal/data/entity"
	"foodtruck-market/pkg/database"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RequiredDocumentRepository interface {
	FindByListingID(ctx context.Context, listingID uuid.UUID) ([]*entity.RequiredDocument, error)
	// ReplaceForListing swaps the listing's whole requirement set in one transaction
	ReplaceForListing(ctx context.Context, listingID uuid.UUID, docs []*entity.RequiredDocument) error
}

type requiredDocumentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRequiredDocumentRepository(db database.PgxIface, log *zap.Logger) RequiredDocumentRepository {
	return &requiredDocumentRepository{
		db:  db,
		log: log.With(zap.String("repository", "required_document")),
	}
}

func (r *requiredDocumentRepository) FindByListingID(ctx context.Context, listingID uuid.UUID) ([]*entity.RequiredDocument, error) {
	query := `
		SELECT id, listing_id, document_type, deadline_phase, description, created_at
		FROM required_documents
		WHERE listing_id = $1
		ORDER BY document_type
	`

	rows, err := r.db.Query(ctx, query, listingID)
	if err != nil {
		r.log.Error("Failed to find required documents",
			zap.Error(err),
			zap.String("listing_id", listingID.String()),
		)
		return nil, fmt.Errorf("find required documents for listing %s: %w", listingID.String(), err)
	}
	defer rows.Close()

	var docs []*entity.RequiredDocument
	for rows.Next() {
		var doc entity.RequiredDocument
		err := rows.Scan(
			&doc.ID,
			&doc.ListingID,
			&doc.DocumentType,
			&doc.DeadlinePhase,
			&doc.Description,
			&doc.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan required document row", zap.Error(err))
			return nil, fmt.Errorf("scan required document row: %w", err)
		}
		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate required document rows: %w", err)
	}

	return docs, nil
}

func (r *requiredDocumentRepository) ReplaceForListing(ctx context.Context, listingID uuid.UUID, docs []*entity.RequiredDocument) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// no-op once committed
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM required_documents WHERE listing_id = $1`, listingID); err != nil {
		r.log.Error("Failed to clear required documents",
			zap.Error(err),
			zap.String("listing_id", listingID.String()),
		)
		return fmt.Errorf("clear required documents for listing %s: %w", listingID.String(), err)
	}

	insert := `
		INSERT INTO required_documents (id, listing_id, document_type, deadline_phase, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, doc := range docs {
		_, err := tx.Exec(ctx, insert,
			doc.ID,
			listingID,
			doc.DocumentType,
			doc.DeadlinePhase,
			doc.Description,
			doc.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to insert required document",
				zap.Error(err),
				zap.String("listing_id", listingID.String()),
				zap.String("document_type", doc.DocumentType),
			)
			return fmt.Errorf("insert required document %s: %w", doc.DocumentType, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit required documents: %w", err)
	}

	return nil
}
