package commands

import (
	"context"
	"log/slog"

	"vinyl-reserve/internal/domain/queue"
	"vinyl-reserve/internal/infra"
	"vinyl-reserve/internal/infra/repository"
	"vinyl-reserve/internal/infra/uow"
	"vinyl-reserve/internal/pkg/clock"
	"vinyl-reserve/internal/pkg/errs"
	"vinyl-reserve/internal/pkg/keyedmutex"

	"github.com/google/uuid"
)

var (
	ErrMissingAlias    = errs.New("alias is required")
	ErrRecordNotFound  = errs.New("record not found")
	ErrAlreadyQueued   = errs.New("alias already holds a queue entry for this record")
	ErrQueueFull       = errs.New("queue is full")
	ErrItemSold        = errs.New("record is sold")
	ErrItemNotReserved = errs.New("record has no active reservation to queue behind")
	ErrStoreFailure    = errs.New("store operation failed")
)

type QueueCommands interface {
	Join(ctx context.Context, recordID uuid.UUID, alias string) (*queue.Entry, error)
	Leave(ctx context.Context, recordID uuid.UUID, alias string) error
	EffectiveRank(ctx context.Context, recordID uuid.UUID, alias string) (int, error)
}

type queueManager struct {
	uow          uow.UnitOfWork
	records      RecordStore
	reservations ReservationStore
	queues       QueueStore
	audit        AuditStore
	refresher    StatusRefresher
	revalidator  CartRevalidator
	locks        *keyedmutex.KeyedMutex
	clock        clock.Clock
	maxPerRecord int
	logger       *slog.Logger
}

func NewQueueCommands(
	u uow.UnitOfWork,
	records RecordStore,
	reservations ReservationStore,
	queues QueueStore,
	audit AuditStore,
	refresher StatusRefresher,
	revalidator CartRevalidator,
	locks *keyedmutex.KeyedMutex,
	clk clock.Clock,
	maxPerRecord int,
	logger *slog.Logger,
) QueueCommands {
	return &queueManager{
		uow:          u,
		records:      records,
		reservations: reservations,
		queues:       queues,
		audit:        audit,
		refresher:    refresher,
		revalidator:  revalidator,
		locks:        locks,
		clock:        clk,
		maxPerRecord: maxPerRecord,
		logger:       logger,
	}
}

// Join re-validates record state inside the transaction: callers are
// expected to have checked status first, but the check here closes the
// race. Joins for the same record serialize on a per-record mutex so
// no two of them observe the same current max position; joins for
// different records stay independent.
func (m *queueManager) Join(ctx context.Context, recordID uuid.UUID, alias string) (*queue.Entry, error) {
	if alias == "" {
		return nil, ErrMissingAlias
	}

	key := recordID.String()
	m.locks.Lock(key)
	defer m.locks.Unlock(key)

	now := m.clock.Now()
	var entry *queue.Entry

	err := m.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		rec, err := m.records.FindByID(ctx, db, recordID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrRecordNotFound
			}
			return errs.Mark(err, ErrStoreFailure)
		}
		if rec.Sold() {
			return ErrItemSold
		}

		active, err := m.reservations.FindActiveByRecordID(ctx, db, recordID, now)
		if err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		if active == nil {
			return ErrItemNotReserved
		}

		entries, err := m.queues.FindByRecordID(ctx, db, recordID)
		if err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		for _, e := range entries {
			if e.Alias() == alias {
				return ErrAlreadyQueued
			}
		}
		if len(entries) >= m.maxPerRecord {
			return ErrQueueFull
		}

		entry = queue.NewEntry(recordID, alias, queue.NextPosition(entries), now)
		if err := m.queues.Create(ctx, db, entry); err != nil {
			// Unique constraint backstop for joins racing past the mutex
			// (e.g. another process).
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return ErrAlreadyQueued
			}
			return errs.Mark(err, ErrStoreFailure)
		}

		return m.audit.Append(ctx, db, "queue_joined", &recordID, alias, nil, now)
	})
	if err != nil {
		return nil, err
	}

	m.refreshRecord(ctx, recordID)
	m.revalidate(ctx, alias)
	return entry, nil
}

// Leave is idempotent: leaving a queue you are not in is not an error.
func (m *queueManager) Leave(ctx context.Context, recordID uuid.UUID, alias string) error {
	if alias == "" {
		return ErrMissingAlias
	}

	err := m.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		if err := m.queues.Delete(ctx, db, recordID, alias); err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		return m.audit.Append(ctx, db, "queue_left", &recordID, alias, nil, m.clock.Now())
	})
	if err != nil {
		return err
	}

	m.refreshRecord(ctx, recordID)
	m.revalidate(ctx, alias)
	return nil
}

func (m *queueManager) EffectiveRank(ctx context.Context, recordID uuid.UUID, alias string) (int, error) {
	if alias == "" {
		return 0, ErrMissingAlias
	}

	var rank int
	err := m.uow.WithDB(ctx, func(ctx context.Context, db repository.DBTX) error {
		entries, err := m.queues.FindByRecordID(ctx, db, recordID)
		if err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		rank = queue.EffectiveRank(entries, alias)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rank, nil
}

func (m *queueManager) refreshRecord(ctx context.Context, recordID uuid.UUID) {
	if err := m.refresher.RefreshRecord(ctx, recordID); err != nil {
		m.logger.Warn("failed to refresh status cache after queue mutation",
			"record_id", recordID, "error", err.Error())
	}
}

func (m *queueManager) revalidate(ctx context.Context, alias string) {
	if _, err := m.revalidator.Validate(ctx, alias); err != nil {
		m.logger.Warn("failed to revalidate cart after queue mutation",
			"alias", alias, "error", err.Error())
	}
}
