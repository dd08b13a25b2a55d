package cache

import (
	"context"

	"vinyl-reserve/internal/infra/feed"
)

// StatusCache satisfies feed.Handler: each change event re-resolves
// exactly the affected record, a reconnect gap triggers a full reload.

func (c *StatusCache) HandleChange(ctx context.Context, ev feed.Event) {
	if err := c.RefreshRecord(ctx, ev.RecordID); err != nil {
		c.logger.Warn("failed to refresh record after change event",
			"record_id", ev.RecordID, "table", ev.Table, "op", ev.Op, "error", err.Error())
	}
}

func (c *StatusCache) HandleGap(ctx context.Context) {
	if err := c.RefreshAll(ctx); err != nil {
		c.logger.Error("failed to refresh status cache after feed gap", "error", err.Error())
	}
}
