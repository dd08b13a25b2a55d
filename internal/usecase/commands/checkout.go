package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"vinyl-reserve/internal/domain/cart"
	"vinyl-reserve/internal/domain/queue"
	"vinyl-reserve/internal/domain/record"
	"vinyl-reserve/internal/domain/reservation"
	"vinyl-reserve/internal/infra/repository"
	"vinyl-reserve/internal/infra/uow"
	"vinyl-reserve/internal/pkg/clock"
	"vinyl-reserve/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrEmptyCart      = errs.New("cart is empty")
	ErrCheckoutFailed = errs.New("checkout could not write any reservations")
)

// Decision is the shopper's answer to "some of your items are reserved
// by others".
type Decision int

const (
	DecisionSkip Decision = iota
	DecisionJoinQueue
)

// DecisionFunc is invoked only when conflicts exist. It may block for
// as long as the caller likes; no lock or transaction is held across
// it. A nil DecisionFunc or DecisionSkip means "skip all conflicts".
// An error aborts the checkout before anything is written.
type DecisionFunc func(ctx context.Context, conflicts []ConflictItem) (Decision, error)

type ConflictItem struct {
	RecordID      uuid.UUID
	HolderAlias   string
	AlreadyQueued bool
}

type QueueFailure struct {
	RecordID uuid.UUID
	Reason   error
}

type CheckoutResult struct {
	Success       bool
	Reserved      []uuid.UUID
	Skipped       []uuid.UUID
	Sold          []uuid.UUID
	Queued        []uuid.UUID
	QueueFailures []QueueFailure
	HasConflicts  bool
}

type CheckoutCommands interface {
	Checkout(ctx context.Context, alias string, decide DecisionFunc) (*CheckoutResult, error)
}

type checkoutOrchestrator struct {
	uow            uow.UnitOfWork
	records        RecordStore
	reservations   ReservationStore
	queues         QueueStore
	carts          CartStore
	audit          AuditStore
	queueCommands  QueueCommands
	refresher      StatusRefresher
	revalidator    CartRevalidator
	clock          clock.Clock
	reservationTTL time.Duration
	logger         *slog.Logger
}

func NewCheckoutCommands(
	u uow.UnitOfWork,
	records RecordStore,
	reservations ReservationStore,
	queues QueueStore,
	carts CartStore,
	audit AuditStore,
	queueCommands QueueCommands,
	refresher StatusRefresher,
	revalidator CartRevalidator,
	clk clock.Clock,
	reservationTTL time.Duration,
	logger *slog.Logger,
) CheckoutCommands {
	return &checkoutOrchestrator{
		uow:            u,
		records:        records,
		reservations:   reservations,
		queues:         queues,
		carts:          carts,
		audit:          audit,
		queueCommands:  queueCommands,
		refresher:      refresher,
		revalidator:    revalidator,
		clock:          clk,
		reservationTTL: reservationTTL,
		logger:         logger,
	}
}

// partition is the pure data carried across the conflict-decision
// suspension. Holding it instead of locks is what lets the decision
// wait indefinitely.
type partition struct {
	available []uuid.UUID
	selfHeld  []uuid.UUID
	sold      []uuid.UUID
	conflicts []ConflictItem
}

// Checkout runs Collecting, Partitioning, AwaitingConflictDecision,
// Committing and Reconciling as sequential phases. A failure in the
// batched reservation write aborts the whole commit and leaves the
// cart unchanged; queue-join failures are collected per item and never
// abort siblings.
func (o *checkoutOrchestrator) Checkout(ctx context.Context, alias string, decide DecisionFunc) (*CheckoutResult, error) {
	if alias == "" {
		return nil, ErrMissingAlias
	}

	// Collecting: one batched read for the whole cart snapshot.
	snapshot, part, err := o.collect(ctx, alias)
	if err != nil {
		return nil, err
	}
	if len(snapshot) == 0 {
		return nil, ErrEmptyCart
	}

	// AwaitingConflictDecision: the one true suspension point. Nothing
	// has been written yet, so a decision error aborts cleanly.
	decision := DecisionSkip
	if len(part.conflicts) > 0 && decide != nil {
		d, err := decide(ctx, part.conflicts)
		if err != nil {
			return nil, err
		}
		decision = d
	}

	// Committing: batched reservation write. Losers of the insert race
	// are reclassified as conflicts, not failures.
	won, err := o.commitReservations(ctx, alias, part.available)
	if err != nil {
		return nil, errs.Mark(err, ErrCheckoutFailed)
	}

	result := &CheckoutResult{Success: true}
	removal := make([]uuid.UUID, 0, len(snapshot))

	for _, id := range part.available {
		if won[id] {
			result.Reserved = append(result.Reserved, id)
			removal = append(removal, id)
		} else {
			result.Skipped = append(result.Skipped, id)
			result.HasConflicts = true
		}
	}
	for _, id := range part.selfHeld {
		// Anomaly: the alias already held the reservation. Treated as
		// reserved without writing a duplicate row.
		result.Reserved = append(result.Reserved, id)
		removal = append(removal, id)
	}
	result.Sold = part.sold
	if len(part.sold) > 0 || len(part.conflicts) > 0 {
		result.HasConflicts = true
	}

	// Queue joins for conflicted items the shopper chose to pursue.
	for _, c := range part.conflicts {
		switch {
		case c.AlreadyQueued:
			removal = append(removal, c.RecordID)
		case decision == DecisionJoinQueue:
			if _, err := o.queueCommands.Join(ctx, c.RecordID, alias); err != nil {
				result.QueueFailures = append(result.QueueFailures, QueueFailure{
					RecordID: c.RecordID,
					Reason:   err,
				})
			} else {
				result.Queued = append(result.Queued, c.RecordID)
			}
			removal = append(removal, c.RecordID)
		default:
			result.Skipped = append(result.Skipped, c.RecordID)
		}
	}
	if decision == DecisionJoinQueue {
		removal = append(removal, part.sold...)
	}

	// Reconciling: drop exactly the terminally-resolved items. The
	// reservations are already durable; if this fails the cart is
	// merely stale and the next validation pass repairs the view.
	o.reconcile(ctx, alias, removal)

	o.refresh(ctx, alias, snapshot)
	return result, nil
}

func (o *checkoutOrchestrator) collect(ctx context.Context, alias string) ([]*cart.Entry, partition, error) {
	var (
		entries []*cart.Entry
		part    partition
	)
	now := o.clock.Now()

	err := o.uow.WithDB(ctx, func(ctx context.Context, db repository.DBTX) error {
		var err error
		entries, err = o.carts.FindByAlias(ctx, db, alias)
		if err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		if len(entries) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(entries))
		for i, e := range entries {
			ids[i] = e.RecordID()
		}

		records, err := o.records.FindByIDs(ctx, db, ids)
		if err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		reservations, err := o.reservations.FindActiveByRecordIDs(ctx, db, ids, now)
		if err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		queues, err := o.queues.FindByRecordIDs(ctx, db, ids)
		if err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}

		part = o.partition(alias, ids, records, reservations, queues)
		return nil
	})
	if err != nil {
		return nil, partition{}, err
	}
	return entries, part, nil
}

func (o *checkoutOrchestrator) partition(
	alias string,
	ids []uuid.UUID,
	records map[uuid.UUID]*record.Record,
	reservations map[uuid.UUID]*reservation.Reservation,
	queues map[uuid.UUID][]*queue.Entry,
) partition {
	var part partition
	for _, id := range ids {
		rec, ok := records[id]
		if !ok {
			// A cart entry pointing at a vanished record resolves as
			// sold: terminal either way.
			o.logger.Warn("cart entry references unknown record", "record_id", id, "alias", alias)
			part.sold = append(part.sold, id)
			continue
		}
		if rec.Sold() {
			part.sold = append(part.sold, id)
			continue
		}

		res := reservations[id]
		if res == nil {
			part.available = append(part.available, id)
			continue
		}
		if res.HolderAlias() == alias {
			// Should not occur in a well-formed cart.
			o.logger.Warn("checkout found reservation already held by the buyer",
				"record_id", id, "alias", alias)
			part.selfHeld = append(part.selfHeld, id)
			continue
		}

		alreadyQueued := false
		for _, e := range queues[id] {
			if e.Alias() == alias {
				alreadyQueued = true
				break
			}
		}
		part.conflicts = append(part.conflicts, ConflictItem{
			RecordID:      id,
			HolderAlias:   res.HolderAlias(),
			AlreadyQueued: alreadyQueued,
		})
	}
	return part
}

func (o *checkoutOrchestrator) commitReservations(ctx context.Context, alias string, available []uuid.UUID) (map[uuid.UUID]bool, error) {
	if len(available) == 0 {
		return map[uuid.UUID]bool{}, nil
	}

	now := o.clock.Now()
	toCreate := make([]*reservation.Reservation, 0, len(available))
	for _, id := range available {
		res, err := reservation.NewReservation(id, alias, now, o.reservationTTL)
		if err != nil {
			return nil, err
		}
		toCreate = append(toCreate, res)
	}

	var won map[uuid.UUID]bool
	err := o.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		// Free slots held by lapsed-but-unswept rows first, then claim.
		if err := o.reservations.ExpireStale(ctx, db, available, now); err != nil {
			return err
		}

		var err error
		won, err = o.reservations.CreateBatch(ctx, db, toCreate)
		if err != nil {
			return err
		}

		wonIDs := make([]uuid.UUID, 0, len(won))
		for id := range won {
			wonIDs = append(wonIDs, id)
		}
		payload, _ := json.Marshal(map[string]any{"reserved": wonIDs})
		return o.audit.Append(ctx, db, "checkout_committed", nil, alias, payload, now)
	})
	if err != nil {
		return nil, err
	}
	return won, nil
}

func (o *checkoutOrchestrator) reconcile(ctx context.Context, alias string, removal []uuid.UUID) {
	if len(removal) == 0 {
		return
	}
	err := o.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		return o.carts.DeleteBatch(ctx, db, alias, removal)
	})
	if err != nil {
		o.logger.Error("cart reconcile failed after checkout commit; cart left stale",
			"alias", alias, "error", err.Error())
	}
}

func (o *checkoutOrchestrator) refresh(ctx context.Context, alias string, snapshot []*cart.Entry) {
	for _, e := range snapshot {
		if err := o.refresher.RefreshRecord(ctx, e.RecordID()); err != nil {
			o.logger.Warn("failed to refresh record status after checkout",
				"record_id", e.RecordID(), "error", err.Error())
		}
	}
	if err := o.refresher.RefreshCart(ctx, alias); err != nil {
		o.logger.Warn("failed to refresh cart view after checkout",
			"alias", alias, "error", err.Error())
	}
	if _, err := o.revalidator.Validate(ctx, alias); err != nil {
		o.logger.Warn("failed to revalidate cart after checkout",
			"alias", alias, "error", err.Error())
	}
}

// IsQueueFailure reports whether err is one of the per-item queue
// failures collected during checkout.
func IsQueueFailure(err error) bool {
	return errors.Is(err, ErrAlreadyQueued) ||
		errors.Is(err, ErrQueueFull) ||
		errors.Is(err, ErrItemSold) ||
		errors.Is(err, ErrItemNotReserved)
}
