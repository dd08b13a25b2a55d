package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingAlias = errors.New("holder alias is required")
	ErrInvalidTTL   = errors.New("reservation TTL must be positive")
	ErrNotActive    = errors.New("reservation is not active")
)

// Reservation is the exclusive time-limited claim on a record. At most
// one active reservation may exist per record; the store enforces this
// with a partial unique index, the entity only expresses the rule.
type Reservation struct {
	id          uuid.UUID
	recordID    uuid.UUID
	holderAlias string
	status      Status
	createdAt   time.Time
	expiresAt   time.Time
}

func NewReservation(recordID uuid.UUID, holderAlias string, now time.Time, ttl time.Duration) (*Reservation, error) {
	if holderAlias == "" {
		return nil, ErrMissingAlias
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}
	return &Reservation{
		id:          uuid.New(),
		recordID:    recordID,
		holderAlias: holderAlias,
		status:      StatusReserved,
		createdAt:   now,
		expiresAt:   now.Add(ttl),
	}, nil
}

func ReconstructReservation(
	id, recordID uuid.UUID,
	holderAlias string,
	status Status,
	createdAt, expiresAt time.Time,
) *Reservation {
	return &Reservation{
		id:          id,
		recordID:    recordID,
		holderAlias: holderAlias,
		status:      status,
		createdAt:   createdAt,
		expiresAt:   expiresAt,
	}
}

// ActiveAt reports whether the reservation still excludes other buyers.
// A row past its expiry is inactive the instant now passes expires_at,
// whether or not a sweep has flipped its status yet.
func (r *Reservation) ActiveAt(now time.Time) bool {
	return r.status == StatusReserved && r.expiresAt.After(now)
}

// Expire is the first-class termination used by admin action and the
// expiry sweep. It clamps expires_at so time-based readers agree.
func (r *Reservation) Expire(now time.Time) error {
	if r.status != StatusReserved {
		return ErrNotActive
	}
	r.status = StatusExpired
	if r.expiresAt.After(now) {
		r.expiresAt = now
	}
	return nil
}

func (r *Reservation) ID() uuid.UUID        { return r.id }
func (r *Reservation) RecordID() uuid.UUID  { return r.recordID }
func (r *Reservation) HolderAlias() string  { return r.holderAlias }
func (r *Reservation) Status() Status       { return r.status }
func (r *Reservation) CreatedAt() time.Time { return r.createdAt }
func (r *Reservation) ExpiresAt() time.Time { return r.expiresAt }
