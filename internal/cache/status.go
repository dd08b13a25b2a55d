package cache

import (
	"context"
	"log/slog"
	"sync"

	"vinyl-reserve/internal/domain/queue"
	"vinyl-reserve/internal/domain/record"
	"vinyl-reserve/internal/domain/reservation"
	"vinyl-reserve/internal/pkg/clock"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// Facts are the raw per-record inputs of status resolution, as last
// read from the durable store.
type Facts struct {
	Sold         bool
	Reservation  *reservation.Reservation
	QueueEntries []*queue.Entry
}

// FactsSource reads current truth from the durable store. The cache is
// the only component that touches it; everything UI-facing reads the
// cache.
type FactsSource interface {
	LoadFacts(ctx context.Context, recordID uuid.UUID) (Facts, bool, error)
	LoadAllFacts(ctx context.Context) (map[uuid.UUID]Facts, error)
	LoadCartRecordIDs(ctx context.Context, alias string) (map[uuid.UUID]struct{}, error)
}

// StatusCache is the process-wide source of truth for record status.
// Facts are bulk-populated once, then kept current by change events
// that re-read exactly one record. Per-alias cart views are held in an
// LRU so an unbounded alias space cannot grow the cache without limit.
type StatusCache struct {
	mu     sync.RWMutex
	facts  map[uuid.UUID]Facts
	loaded bool

	carts *lru.Cache[string, map[uuid.UUID]struct{}]

	group  singleflight.Group
	source FactsSource
	clock  clock.Clock
	logger *slog.Logger
}

func NewStatusCache(source FactsSource, clk clock.Clock, cartViewSize int, logger *slog.Logger) (*StatusCache, error) {
	carts, err := lru.New[string, map[uuid.UUID]struct{}](cartViewSize)
	if err != nil {
		return nil, err
	}
	return &StatusCache{
		facts:  make(map[uuid.UUID]Facts),
		carts:  carts,
		source: source,
		clock:  clk,
		logger: logger,
	}, nil
}

// EnsurePublic bulk-populates the shared facts once per process.
// Concurrent callers collapse into one load; later callers see the
// memoized result.
func (c *StatusCache) EnsurePublic(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	_, err, _ := c.group.Do("public", func() (any, error) {
		facts, err := c.source.LoadAllFacts(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.facts = facts
		c.loaded = true
		c.mu.Unlock()
		c.logger.Info("status cache populated", "records", len(facts))
		return nil, nil
	})
	return err
}

// EnsureAlias loads the viewer's cart id-set once per alias (until the
// LRU evicts it), on top of the public facts.
func (c *StatusCache) EnsureAlias(ctx context.Context, alias string) error {
	if err := c.EnsurePublic(ctx); err != nil {
		return err
	}
	if alias == "" {
		return nil
	}
	if _, ok := c.carts.Get(alias); ok {
		return nil
	}

	_, err, _ := c.group.Do("alias:"+alias, func() (any, error) {
		ids, err := c.source.LoadCartRecordIDs(ctx, alias)
		if err != nil {
			return nil, err
		}
		c.carts.Add(alias, ids)
		return nil, nil
	})
	return err
}

// GetStatus resolves a record's status for one viewer from cached
// state only. The second return is false when the record is unknown to
// the cache (not in the catalog or not yet populated).
func (c *StatusCache) GetStatus(recordID uuid.UUID, viewerAlias string) (record.Status, bool) {
	c.mu.RLock()
	facts, ok := c.facts[recordID]
	c.mu.RUnlock()
	if !ok {
		return record.Status{}, false
	}

	inCart := false
	if viewerAlias != "" {
		if ids, ok := c.carts.Get(viewerAlias); ok {
			_, inCart = ids[recordID]
		}
	}

	return record.Resolve(record.ResolveInput{
		Sold:         facts.Sold,
		Reservation:  facts.Reservation,
		QueueEntries: facts.QueueEntries,
		InViewerCart: inCart,
		ViewerAlias:  viewerAlias,
		Now:          c.clock.Now(),
	}), true
}

// RefreshRecord re-reads one record's facts and overwrites only that
// key. Safe to call for out-of-order or duplicate events: it reflects
// whatever is currently true rather than replaying the event.
func (c *StatusCache) RefreshRecord(ctx context.Context, recordID uuid.UUID) error {
	facts, found, err := c.source.LoadFacts(ctx, recordID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !found {
		delete(c.facts, recordID)
		return nil
	}
	c.facts[recordID] = facts
	return nil
}

// RefreshAll is the manual recovery path after a detected gap in the
// event stream. Cart views are dropped and lazily reloaded.
func (c *StatusCache) RefreshAll(ctx context.Context) error {
	facts, err := c.source.LoadAllFacts(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.facts = facts
	c.loaded = true
	c.mu.Unlock()
	c.carts.Purge()

	c.logger.Info("status cache fully refreshed", "records", len(facts))
	return nil
}

// RefreshCart reloads one alias's cart view after a cart mutation.
func (c *StatusCache) RefreshCart(ctx context.Context, alias string) error {
	if alias == "" {
		return nil
	}
	ids, err := c.source.LoadCartRecordIDs(ctx, alias)
	if err != nil {
		return err
	}
	c.carts.Add(alias, ids)
	return nil
}
