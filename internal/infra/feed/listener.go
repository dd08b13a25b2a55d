package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Event is one change notification from the durable store. Delivery is
// at-least-once with no ordering guarantee; consumers must re-read
// current truth rather than replay deltas.
type Event struct {
	Table    string    `json:"table"`
	Op       string    `json:"op"`
	RecordID uuid.UUID `json:"record_id"`
}

// Handler consumes change events. HandleChange must be idempotent.
type Handler interface {
	HandleChange(ctx context.Context, ev Event)
	// HandleGap is called when notifications may have been missed
	// (reconnect after a dropped listen connection).
	HandleGap(ctx context.Context)
}

// Listener holds one dedicated connection on LISTEN and dispatches
// decoded notifications to the handler. On any connection failure it
// reconnects with a fixed retry interval and signals a gap, since
// events sent while disconnected are lost.
type Listener struct {
	pool    *pgxpool.Pool
	channel string
	retry   time.Duration
	handler Handler
	logger  *slog.Logger
}

func NewListener(pool *pgxpool.Pool, channel string, retry time.Duration, handler Handler, logger *slog.Logger) *Listener {
	return &Listener{
		pool:    pool,
		channel: channel,
		retry:   retry,
		handler: handler,
		logger:  logger,
	}
}

// Run blocks until ctx is canceled. Intended to be one goroutine owned
// by the application lifecycle.
func (l *Listener) Run(ctx context.Context) {
	firstConnect := true
	for {
		if ctx.Err() != nil {
			return
		}

		err := l.listen(ctx, firstConnect)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			l.logger.Warn("change feed connection lost",
				"channel", l.channel, "error", err.Error())
		}
		firstConnect = false

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.retry):
		}
	}
}

func (l *Listener) listen(ctx context.Context, firstConnect bool) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+l.channel); err != nil {
		return err
	}

	// Anything sent while we were away is gone. Reconcile once, then
	// rely on the stream again.
	if !firstConnect {
		l.logger.Info("change feed reconnected, reconciling missed events", "channel", l.channel)
		l.handler.HandleGap(ctx)
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		var ev Event
		if err := json.Unmarshal([]byte(notification.Payload), &ev); err != nil {
			l.logger.Warn("discarding malformed change event",
				"payload", notification.Payload, "error", err.Error())
			continue
		}
		l.handler.HandleChange(ctx, ev)
	}
}
