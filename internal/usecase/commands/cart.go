package commands

import (
	"context"
	"log/slog"

	"vinyl-reserve/internal/domain/cart"
	"vinyl-reserve/internal/infra"
	"vinyl-reserve/internal/infra/repository"
	"vinyl-reserve/internal/infra/uow"
	"vinyl-reserve/internal/pkg/clock"
	"vinyl-reserve/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrRecordSoldOut = errs.New("record is sold and cannot be added to a cart")

type CartCommands interface {
	AddToCart(ctx context.Context, alias string, recordID uuid.UUID) error
	RemoveFromCart(ctx context.Context, alias string, recordID uuid.UUID) error
}

type cartCommands struct {
	uow         uow.UnitOfWork
	records     RecordStore
	carts       CartStore
	audit       AuditStore
	refresher   StatusRefresher
	revalidator CartRevalidator
	clock       clock.Clock
	logger      *slog.Logger
}

func NewCartCommands(
	u uow.UnitOfWork,
	records RecordStore,
	carts CartStore,
	audit AuditStore,
	refresher StatusRefresher,
	revalidator CartRevalidator,
	clk clock.Clock,
	logger *slog.Logger,
) CartCommands {
	return &cartCommands{
		uow:         u,
		records:     records,
		carts:       carts,
		audit:       audit,
		refresher:   refresher,
		revalidator: revalidator,
		clock:       clk,
		logger:      logger,
	}
}

// AddToCart is advisory: it records intent without claiming anything.
// Sold records are refused outright; any other state is allowed and
// surfaces at validation or checkout. Adding an item twice is a no-op.
func (c *cartCommands) AddToCart(ctx context.Context, alias string, recordID uuid.UUID) error {
	if alias == "" {
		return ErrMissingAlias
	}

	now := c.clock.Now()
	err := c.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		rec, err := c.records.FindByID(ctx, db, recordID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrRecordNotFound
			}
			return errs.Mark(err, ErrStoreFailure)
		}
		if rec.Sold() {
			return ErrRecordSoldOut
		}

		entry := cart.NewEntry(alias, recordID, "IN_CART", now)
		if err := c.carts.Create(ctx, db, entry); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return nil
			}
			return errs.Mark(err, ErrStoreFailure)
		}
		return c.audit.Append(ctx, db, "cart_added", &recordID, alias, nil, now)
	})
	if err != nil {
		return err
	}

	c.refreshCart(ctx, alias)
	return nil
}

// RemoveFromCart is idempotent.
func (c *cartCommands) RemoveFromCart(ctx context.Context, alias string, recordID uuid.UUID) error {
	if alias == "" {
		return ErrMissingAlias
	}

	err := c.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		if err := c.carts.Delete(ctx, db, alias, recordID); err != nil {
			return errs.Mark(err, ErrStoreFailure)
		}
		return c.audit.Append(ctx, db, "cart_removed", &recordID, alias, nil, c.clock.Now())
	})
	if err != nil {
		return err
	}

	c.refreshCart(ctx, alias)
	return nil
}

func (c *cartCommands) refreshCart(ctx context.Context, alias string) {
	if err := c.refresher.RefreshCart(ctx, alias); err != nil {
		c.logger.Warn("failed to refresh cart view after cart mutation",
			"alias", alias, "error", err.Error())
	}
	if _, err := c.revalidator.Validate(ctx, alias); err != nil {
		c.logger.Warn("failed to revalidate cart after cart mutation",
			"alias", alias, "error", err.Error())
	}
}
