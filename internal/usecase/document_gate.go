package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"foodtruck-market/internal/data/entity"
	"foodtruck-market/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GateEvaluation is the outcome of checking one deadline phase.
// Evaluable is false when there is no renter to check history for.
type GateEvaluation struct {
	Phase         entity.DeadlinePhase
	RequiredTypes []string
	OnFile        []string
	Uploaded      []string
	Missing       []string
	Blocking      bool
	Evaluable     bool
}

type DocumentGate struct {
	listings     repository.ListingRepository
	required     repository.RequiredDocumentRepository
	documents    repository.BookingDocumentRepository
	onFileWindow time.Duration
	now          func() time.Time
	log          *zap.Logger
}

func NewDocumentGate(repo *repository.Repository, onFileWindow time.Duration, log *zap.Logger) *DocumentGate {
	if onFileWindow <= 0 {
		onFileWindow = 365 * 24 * time.Hour
	}
	return &DocumentGate{
		listings:     repo.Listing,
		required:     repo.RequiredDocument,
		documents:    repo.BookingDocument,
		onFileWindow: onFileWindow,
		now:          time.Now,
		log:          log.With(zap.String("service", "document_gate")),
	}
}

// Evaluate decides whether the renter's documents block the given phase.
// A missing listing is an error, never "nothing required".
func (g *DocumentGate) Evaluate(ctx context.Context, listingID uuid.UUID, renterID *uuid.UUID, phase entity.DeadlinePhase) (*GateEvaluation, error) {
	reqs, err := g.requirements(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return g.evaluate(ctx, listingID, reqs, renterID, phase)
}

// EvaluateAll evaluates every phase against one read of the listing's requirements
func (g *DocumentGate) EvaluateAll(ctx context.Context, listingID uuid.UUID, renterID *uuid.UUID) ([]*entity.RequiredDocument, []*GateEvaluation, error) {
	reqs, err := g.requirements(ctx, listingID)
	if err != nil {
		return nil, nil, err
	}

	phases := []entity.DeadlinePhase{
		entity.PhaseBeforeBookingRequest,
		entity.PhaseBeforeApproval,
		entity.PhaseAfterApproval,
	}
	evals := make([]*GateEvaluation, 0, len(phases))
	for _, phase := range phases {
		eval, err := g.evaluate(ctx, listingID, reqs, renterID, phase)
		if err != nil {
			return nil, nil, err
		}
		evals = append(evals, eval)
	}

	return reqs, evals, nil
}

func (g *DocumentGate) requirements(ctx context.Context, listingID uuid.UUID) ([]*entity.RequiredDocument, error) {
	listing, err := g.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("load listing %s: %w", listingID, err)
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}

	reqs, err := g.required.FindByListingID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("load required documents: %w", err)
	}
	return reqs, nil
}

func (g *DocumentGate) evaluate(ctx context.Context, listingID uuid.UUID, reqs []*entity.RequiredDocument, renterID *uuid.UUID, phase entity.DeadlinePhase) (*GateEvaluation, error) {
	eval := &GateEvaluation{
		Phase:         phase,
		RequiredTypes: typesForPhase(reqs, phase),
		OnFile:        []string{},
		Uploaded:      []string{},
		Missing:       []string{},
		Evaluable:     renterID != nil,
	}

	// fast path: nothing to check, history is never read
	if len(eval.RequiredTypes) == 0 {
		return eval, nil
	}

	if renterID == nil {
		eval.Missing = eval.RequiredTypes
		eval.Blocking = true
		return eval, nil
	}

	since := g.now().Add(-g.onFileWindow)

	onFile, err := g.documents.FindApprovedTypes(ctx, *renterID, eval.RequiredTypes, since)
	if err != nil {
		return nil, fmt.Errorf("load documents on file: %w", err)
	}
	eval.OnFile = sortedSet(onFile)

	notOnFile := difference(eval.RequiredTypes, eval.OnFile)
	// only drafts for this listing count; the next request adopts them
	if len(notOnFile) > 0 {
		uploaded, err := g.documents.FindPendingTypes(ctx, listingID, *renterID, notOnFile, since)
		if err != nil {
			return nil, fmt.Errorf("load pending uploads: %w", err)
		}
		eval.Uploaded = sortedSet(uploaded)
	}

	// a pending upload only unblocks the request itself; later phases need approval
	if phase == entity.PhaseBeforeBookingRequest {
		eval.Missing = difference(notOnFile, eval.Uploaded)
	} else {
		eval.Missing = notOnFile
	}
	eval.Blocking = len(eval.Missing) > 0

	g.log.Debug("Document gate evaluated",
		zap.String("renter_id", renterID.String()),
		zap.String("phase", string(phase)),
		zap.Strings("missing", eval.Missing),
	)

	return eval, nil
}

// typesForPhase returns the types that must be satisfied by the time phase is reached
func typesForPhase(reqs []*entity.RequiredDocument, phase entity.DeadlinePhase) []string {
	var types []string
	for _, r := range reqs {
		switch phase {
		case entity.PhaseBeforeBookingRequest:
			if r.DeadlinePhase != entity.PhaseBeforeBookingRequest {
				continue
			}
		case entity.PhaseBeforeApproval:
			if r.DeadlinePhase == entity.PhaseAfterApproval {
				continue
			}
		}
		types = append(types, r.DocumentType)
	}
	return sortedSet(types)
}

func sortedSet(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func difference(all, remove []string) []string {
	drop := make(map[string]struct{}, len(remove))
	for _, v := range remove {
		drop[v] = struct{}{}
	}
	out := make([]string, 0, len(all))
	for _, v := range all {
		if _, ok := drop[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
