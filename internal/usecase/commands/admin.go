package commands

import (
	"context"
	"errors"
	"log/slog"

	"vinyl-reserve/internal/domain/reservation"
	"vinyl-reserve/internal/infra"
	"vinyl-reserve/internal/infra/repository"
	"vinyl-reserve/internal/infra/uow"
	"vinyl-reserve/internal/pkg/clock"
	"vinyl-reserve/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrReservationNotFound = errs.New("reservation not found")

type AdminCommands interface {
	// MarkRecordSold is idempotent: marking an already-sold record
	// again is a no-op, not an error.
	MarkRecordSold(ctx context.Context, recordID uuid.UUID) error
	// ExpireReservation is the first-class admin termination. The row
	// is never deleted so expiry side effects stay uniform.
	ExpireReservation(ctx context.Context, reservationID uuid.UUID) error
}

type adminCommands struct {
	uow          uow.UnitOfWork
	records      RecordStore
	reservations ReservationStore
	queues       QueueStore
	audit        AuditStore
	refresher    StatusRefresher
	clock        clock.Clock
	logger       *slog.Logger
}

func NewAdminCommands(
	u uow.UnitOfWork,
	records RecordStore,
	reservations ReservationStore,
	queues QueueStore,
	audit AuditStore,
	refresher StatusRefresher,
	clk clock.Clock,
	logger *slog.Logger,
) AdminCommands {
	return &adminCommands{
		uow:          u,
		records:      records,
		reservations: reservations,
		queues:       queues,
		audit:        audit,
		refresher:    refresher,
		clock:        clk,
		logger:       logger,
	}
}

func (a *adminCommands) MarkRecordSold(ctx context.Context, recordID uuid.UUID) error {
	now := a.clock.Now()
	err := a.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		rec, err := a.records.FindByID(ctx, db, recordID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrRecordNotFound
			}
			return errs.Mark(err, ErrStoreFailure)
		}
		if rec.Sold() {
			// Second sale of the same record is a no-op, not an error.
			return nil
		}

		changed, err := a.records.MarkSold(ctx, db, recordID, now)
		if err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		if !changed {
			return nil
		}
		// The active claim, if any, settles into the sale. Waiting is
		// pointless against a sold record, so the queue goes with it.
		if err := a.reservations.SettleSoldByRecordID(ctx, db, recordID, now); err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		if err := a.queues.DeleteByRecordID(ctx, db, recordID); err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		return a.audit.Append(ctx, db, "record_sold", &recordID, "", nil, now)
	})
	if err != nil {
		return err
	}

	a.refreshRecord(ctx, recordID)
	return nil
}

func (a *adminCommands) ExpireReservation(ctx context.Context, reservationID uuid.UUID) error {
	now := a.clock.Now()
	var recordID uuid.UUID

	err := a.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		res, err := a.reservations.FindByID(ctx, db, reservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrReservationNotFound
			}
			return errs.Mark(err, ErrStoreFailure)
		}
		recordID = res.RecordID()

		if err := res.Expire(now); err != nil {
			if errors.Is(err, reservation.ErrNotActive) {
				// Already terminal; keep the operation idempotent.
				return nil
			}
			return err
		}
		if err := a.reservations.Update(ctx, db, res); err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		// The record is claimable again, so the queue built up against
		// the lapsed claim is dissolved rather than carried over.
		if err := a.queues.DeleteByRecordID(ctx, db, recordID); err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		return a.audit.Append(ctx, db, "reservation_expired", &recordID, res.HolderAlias(), nil, now)
	})
	if err != nil {
		return err
	}

	a.refreshRecord(ctx, recordID)
	return nil
}

func (a *adminCommands) refreshRecord(ctx context.Context, recordID uuid.UUID) {
	if err := a.refresher.RefreshRecord(ctx, recordID); err != nil {
		a.logger.Warn("failed to refresh status cache after admin mutation",
			"record_id", recordID, "error", err.Error())
	}
}
