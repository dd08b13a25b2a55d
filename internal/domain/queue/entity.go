package queue

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Entry is a ticket in a record's waiting queue. Position is a
// strictly increasing per-record ticket number assigned at join time,
// never reused and never renumbered when earlier entries leave.
type Entry struct {
	id       uuid.UUID
	recordID uuid.UUID
	alias    string
	position int
	joinedAt time.Time
}

func NewEntry(recordID uuid.UUID, alias string, position int, joinedAt time.Time) *Entry {
	return &Entry{
		id:       uuid.New(),
		recordID: recordID,
		alias:    alias,
		position: position,
		joinedAt: joinedAt,
	}
}

func ReconstructEntry(id, recordID uuid.UUID, alias string, position int, joinedAt time.Time) *Entry {
	return &Entry{
		id:       id,
		recordID: recordID,
		alias:    alias,
		position: position,
		joinedAt: joinedAt,
	}
}

func (e *Entry) ID() uuid.UUID       { return e.id }
func (e *Entry) RecordID() uuid.UUID { return e.recordID }
func (e *Entry) Alias() string       { return e.alias }
func (e *Entry) Position() int       { return e.position }
func (e *Entry) JoinedAt() time.Time { return e.joinedAt }

// EffectiveRank is the 1-based ordinal of alias among the given
// entries ordered by position ascending. Stored positions keep their
// gaps; the rank is what shoppers see. Returns 0 when absent.
func EffectiveRank(entries []*Entry, alias string) int {
	sorted := make([]*Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].position < sorted[j].position
	})
	for i, e := range sorted {
		if e.alias == alias {
			return i + 1
		}
	}
	return 0
}

// NextPosition allocates the ticket number a new entry would take.
func NextPosition(entries []*Entry) int {
	max := 0
	for _, e := range entries {
		if e.position > max {
			max = e.position
		}
	}
	return max + 1
}
