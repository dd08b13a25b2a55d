package queries

import (
	"context"

	"vinyl-reserve/internal/domain/record"
	"vinyl-reserve/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrRecordNotFound = errs.New("record not found")

// StatusCache is the read surface of the global status cache. All
// status queries go through it; none touch raw tables.
type StatusCache interface {
	EnsureAlias(ctx context.Context, alias string) error
	GetStatus(recordID uuid.UUID, viewerAlias string) (record.Status, bool)
	RefreshRecord(ctx context.Context, recordID uuid.UUID) error
	RefreshAll(ctx context.Context) error
}

type StatusQueries interface {
	// GetStatus serves from the cache; the only I/O is the memoized
	// initial population for a not-yet-seen viewer.
	GetStatus(ctx context.Context, recordID uuid.UUID, viewerAlias string) (record.Status, error)
	// RefreshRecord / RefreshAll are the manual cache repair surface.
	RefreshRecord(ctx context.Context, recordID uuid.UUID) error
	RefreshAll(ctx context.Context, viewerAlias string) error
}

type statusQueries struct {
	cache StatusCache
}

func NewStatusQueries(cache StatusCache) StatusQueries {
	return &statusQueries{cache: cache}
}

func (q *statusQueries) GetStatus(ctx context.Context, recordID uuid.UUID, viewerAlias string) (record.Status, error) {
	if err := q.cache.EnsureAlias(ctx, viewerAlias); err != nil {
		return record.Status{}, err
	}

	status, ok := q.cache.GetStatus(recordID, viewerAlias)
	if !ok {
		return record.Status{}, ErrRecordNotFound
	}
	return status, nil
}

func (q *statusQueries) RefreshRecord(ctx context.Context, recordID uuid.UUID) error {
	return q.cache.RefreshRecord(ctx, recordID)
}

func (q *statusQueries) RefreshAll(ctx context.Context, viewerAlias string) error {
	if err := q.cache.RefreshAll(ctx); err != nil {
		return err
	}
	if viewerAlias == "" {
		return nil
	}
	return q.cache.EnsureAlias(ctx, viewerAlias)
}
