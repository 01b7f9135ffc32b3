package entity

import (
	"time"

	"github.com/google/uuid"
)

// Base is embedded by soft-deletable rows (users)
type Base struct {
	ID        uuid.UUID  `db:"id"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

// BaseNoDelete is embedded by workflow rows that are never removed:
// listings, booking requests and booking documents.
type BaseNoDelete struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// BaseSimple is embedded by append-only rows (sessions, required documents)
type BaseSimple struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}

func NewBase(id uuid.UUID, now time.Time) Base {
	return Base{ID: id, CreatedAt: now, UpdatedAt: now}
}

func NewBaseNoDelete(id uuid.UUID, now time.Time) BaseNoDelete {
	return BaseNoDelete{ID: id, CreatedAt: now, UpdatedAt: now}
}

func NewBaseSimple(id uuid.UUID, now time.Time) BaseSimple {
	return BaseSimple{ID: id, CreatedAt: now}
}
