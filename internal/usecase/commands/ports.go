package commands

import (
	"context"
	"time"

	"vinyl-reserve/internal/domain/cart"
	"vinyl-reserve/internal/domain/queue"
	"vinyl-reserve/internal/domain/record"
	"vinyl-reserve/internal/domain/reservation"
	"vinyl-reserve/internal/infra/repository"

	"github.com/google/uuid"
)

// Consumer-side ports over the durable store. The pgx repositories
// satisfy these; tests substitute gomock implementations.

type RecordStore interface {
	FindByID(ctx context.Context, db repository.DBTX, id uuid.UUID) (*record.Record, error)
	FindByIDs(ctx context.Context, db repository.DBTX, ids []uuid.UUID) (map[uuid.UUID]*record.Record, error)
	MarkSold(ctx context.Context, db repository.DBTX, id uuid.UUID, now time.Time) (bool, error)
}

type ReservationStore interface {
	FindByID(ctx context.Context, db repository.DBTX, id uuid.UUID) (*reservation.Reservation, error)
	FindActiveByRecordID(ctx context.Context, db repository.DBTX, recordID uuid.UUID, now time.Time) (*reservation.Reservation, error)
	FindActiveByRecordIDs(ctx context.Context, db repository.DBTX, recordIDs []uuid.UUID, now time.Time) (map[uuid.UUID]*reservation.Reservation, error)
	ExpireStale(ctx context.Context, db repository.DBTX, recordIDs []uuid.UUID, now time.Time) error
	CreateBatch(ctx context.Context, db repository.DBTX, reservations []*reservation.Reservation) (map[uuid.UUID]bool, error)
	Update(ctx context.Context, db repository.DBTX, res *reservation.Reservation) error
	SettleSoldByRecordID(ctx context.Context, db repository.DBTX, recordID uuid.UUID, now time.Time) error
}

type QueueStore interface {
	FindByRecordID(ctx context.Context, db repository.DBTX, recordID uuid.UUID) ([]*queue.Entry, error)
	FindByRecordIDs(ctx context.Context, db repository.DBTX, recordIDs []uuid.UUID) (map[uuid.UUID][]*queue.Entry, error)
	Create(ctx context.Context, db repository.DBTX, entry *queue.Entry) error
	Delete(ctx context.Context, db repository.DBTX, recordID uuid.UUID, alias string) error
	DeleteByRecordID(ctx context.Context, db repository.DBTX, recordID uuid.UUID) error
}

type CartStore interface {
	FindByAlias(ctx context.Context, db repository.DBTX, alias string) ([]*cart.Entry, error)
	Create(ctx context.Context, db repository.DBTX, entry *cart.Entry) error
	Delete(ctx context.Context, db repository.DBTX, alias string, recordID uuid.UUID) error
	DeleteBatch(ctx context.Context, db repository.DBTX, alias string, recordIDs []uuid.UUID) error
}

type AuditStore interface {
	Append(ctx context.Context, db repository.DBTX, kind string, recordID *uuid.UUID, alias string, payload []byte, now time.Time) error
}

// StatusRefresher is the cache's targeted-invalidation surface.
// Commands call it after every successful mutation so readers converge
// without waiting for the change feed.
type StatusRefresher interface {
	RefreshRecord(ctx context.Context, recordID uuid.UUID) error
	RefreshCart(ctx context.Context, alias string) error
}

// CartRevalidator runs a full status pass over an alias's cart and
// writes the snapshot back. Commands trigger it after every mutation
// that can shift what the cart's items resolve to, so last_known_status
// converges immediately instead of waiting for the periodic sweep.
type CartRevalidator interface {
	Validate(ctx context.Context, alias string) ([]*cart.Entry, error)
}
