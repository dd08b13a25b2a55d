package validator

import (
	"context"
	"log/slog"
	"time"

	"vinyl-reserve/internal/domain/cart"
	"vinyl-reserve/internal/domain/record"
	"vinyl-reserve/internal/infra/repository"
	"vinyl-reserve/internal/infra/uow"
	"vinyl-reserve/internal/pkg/clock"
	"vinyl-reserve/internal/pkg/errs"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var ErrMissingAlias = errs.New("alias is required")

// StatusView is the slice of the global status cache the validator
// reads through. It never queries raw tables per item.
type StatusView interface {
	EnsureAlias(ctx context.Context, alias string) error
	GetStatus(recordID uuid.UUID, viewerAlias string) (record.Status, bool)
}

type CartStore interface {
	FindByAlias(ctx context.Context, db repository.DBTX, alias string) ([]*cart.Entry, error)
	UpdateValidation(ctx context.Context, db repository.DBTX, id uuid.UUID, status string, validatedAt time.Time) error
	ListActiveAliases(ctx context.Context, db repository.DBTX) ([]string, error)
}

// CartValidator keeps displayed cart status fresh: on first touch, on
// a fixed interval while carts are non-empty, and immediately after
// mutations. Concurrent validations for one alias collapse into a
// single in-flight pass.
type CartValidator struct {
	uow      uow.UnitOfWork
	carts    CartStore
	view     StatusView
	clock    clock.Clock
	interval time.Duration
	group    singleflight.Group
	logger   *slog.Logger
}

func NewCartValidator(
	u uow.UnitOfWork,
	carts CartStore,
	view StatusView,
	clk clock.Clock,
	interval time.Duration,
	logger *slog.Logger,
) *CartValidator {
	return &CartValidator{
		uow:      u,
		carts:    carts,
		view:     view,
		clock:    clk,
		interval: interval,
		logger:   logger,
	}
}

// Validate re-derives every cart entry's status from the status cache
// and writes the advisory snapshot back. The returned entries carry
// the fresh status.
func (v *CartValidator) Validate(ctx context.Context, alias string) ([]*cart.Entry, error) {
	if alias == "" {
		return nil, ErrMissingAlias
	}

	result, err, _ := v.group.Do(alias, func() (any, error) {
		return v.validate(ctx, alias)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*cart.Entry), nil
}

func (v *CartValidator) validate(ctx context.Context, alias string) ([]*cart.Entry, error) {
	if err := v.view.EnsureAlias(ctx, alias); err != nil {
		return nil, err
	}

	now := v.clock.Now()
	var fresh []*cart.Entry

	err := v.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		entries, err := v.carts.FindByAlias(ctx, db, alias)
		if err != nil {
			return err
		}

		fresh = make([]*cart.Entry, 0, len(entries))
		for _, e := range entries {
			status, ok := v.view.GetStatus(e.RecordID(), alias)
			kind := record.StatusSold
			if ok {
				kind = status.Kind
			}

			if kind.String() != e.LastKnownStatus() {
				v.logger.Info("cart entry status changed",
					"alias", alias,
					"record_id", e.RecordID(),
					"from", e.LastKnownStatus(),
					"to", kind.String())
			}
			if err := v.carts.UpdateValidation(ctx, db, e.ID(), kind.String(), now); err != nil {
				return err
			}
			fresh = append(fresh, cart.ReconstructEntry(
				e.ID(), e.Alias(), e.RecordID(), kind.String(), now, e.AddedAt(),
			))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fresh, nil
}

// Run drives the interval fallback. The change feed has no delivery
// guarantee, so the sweep is required for convergence, not a nicety.
func (v *CartValidator) Run(ctx context.Context) {
	ticker := time.NewTicker(v.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			v.validateAll(ctx)
		}
	}
}

func (v *CartValidator) validateAll(ctx context.Context) {
	var aliases []string
	err := v.uow.WithDB(ctx, func(ctx context.Context, db repository.DBTX) error {
		var err error
		aliases, err = v.carts.ListActiveAliases(ctx, db)
		return err
	})
	if err != nil {
		// Transient store failures wait for the next scheduled pass.
		v.logger.Warn("cart validation sweep failed to list aliases", "error", err.Error())
		return
	}

	for _, alias := range aliases {
		if ctx.Err() != nil {
			return
		}
		if _, err := v.Validate(ctx, alias); err != nil {
			v.logger.Warn("cart validation failed", "alias", alias, "error", err.Error())
		}
	}
}
