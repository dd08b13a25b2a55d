package cart

import (
	"time"

	"github.com/google/uuid"
)

// Entry is advisory UI state: the shopper's intent to buy a record,
// reconciled against authoritative status but never authoritative
// itself. The cart is always re-derivable from record status, not the
// other way around.
type Entry struct {
	id              uuid.UUID
	alias           string
	recordID        uuid.UUID
	lastKnownStatus string
	lastValidatedAt time.Time
	addedAt         time.Time
}

func NewEntry(alias string, recordID uuid.UUID, status string, now time.Time) *Entry {
	return &Entry{
		id:              uuid.New(),
		alias:           alias,
		recordID:        recordID,
		lastKnownStatus: status,
		lastValidatedAt: now,
		addedAt:         now,
	}
}

func ReconstructEntry(
	id uuid.UUID,
	alias string,
	recordID uuid.UUID,
	lastKnownStatus string,
	lastValidatedAt, addedAt time.Time,
) *Entry {
	return &Entry{
		id:              id,
		alias:           alias,
		recordID:        recordID,
		lastKnownStatus: lastKnownStatus,
		lastValidatedAt: lastValidatedAt,
		addedAt:         addedAt,
	}
}

func (e *Entry) ID() uuid.UUID             { return e.id }
func (e *Entry) Alias() string             { return e.alias }
func (e *Entry) RecordID() uuid.UUID       { return e.recordID }
func (e *Entry) LastKnownStatus() string   { return e.lastKnownStatus }
func (e *Entry) LastValidatedAt() time.Time { return e.lastValidatedAt }
func (e *Entry) AddedAt() time.Time        { return e.addedAt }
