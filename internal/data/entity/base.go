package entity

import (
	"time"

	"github.com/google/uuid"
)

// Base is embedded by soft-deletable rows (users).
type Base struct {
	ID        uuid.UUID  `db:"id"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (b Base) IsDeleted() bool {
	return b.DeletedAt != nil
}

// BaseNoDelete is for mutable rows that are never removed: bookings,
// profiles, catalog entries.
type BaseNoDelete struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// BaseSimple is for append-mostly rows such as sessions and outbox messages.
type BaseSimple struct {
	ID        uuid.UUID `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}
