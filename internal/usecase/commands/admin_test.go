//go:build unit

package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"vinyl-reserve/internal/domain/reservation"
	"vinyl-reserve/internal/pkg/clock"
	"vinyl-reserve/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type adminFixture struct {
	store     *memStore
	refresher *fakeRefresher
	clock     *clock.MockClock
	admin     commands.AdminCommands
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	store := newMemStore()
	refresher := &fakeRefresher{}
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &adminFixture{
		store:     store,
		refresher: refresher,
		clock:     clk,
		admin: commands.NewAdminCommands(
			fakeUoW{}, recordsView{store}, reservationsView{store},
			queuesView{store}, auditView{store}, refresher, clk, logger,
		),
	}
}

func TestMarkRecordSold_SettlesActiveReservation(t *testing.T) {
	f := newAdminFixture(t)

	recordID := uuid.New()
	f.store.addRecord(recordID, false)
	res := f.store.addReservation(recordID, holderAlias, reservation.StatusReserved, f.clock.Now().Add(time.Hour))
	f.store.addQueueEntry(recordID, "waiter", 1, f.clock.Now())

	require.NoError(t, f.admin.MarkRecordSold(context.Background(), recordID))

	assert.True(t, f.store.records[recordID].Sold())
	assert.Equal(t, reservation.StatusSold, f.store.reservations[res.ID()].Status())
	assert.Empty(t, f.store.queues[recordID], "waiting is pointless against a sold record")
	assert.Contains(t, f.store.auditKinds(), "record_sold")
	assert.Contains(t, f.refresher.refreshedRecs, recordID)
}

func TestMarkRecordSold_Idempotent(t *testing.T) {
	f := newAdminFixture(t)

	recordID := uuid.New()
	f.store.addRecord(recordID, true)

	require.NoError(t, f.admin.MarkRecordSold(context.Background(), recordID))

	// No second audit event for the no-op.
	assert.NotContains(t, f.store.auditKinds(), "record_sold")
}

func TestMarkRecordSold_UnknownRecord(t *testing.T) {
	f := newAdminFixture(t)

	err := f.admin.MarkRecordSold(context.Background(), uuid.New())
	assert.ErrorIs(t, err, commands.ErrRecordNotFound)
}

func TestExpireReservation_FlipsToExpired(t *testing.T) {
	f := newAdminFixture(t)

	recordID := uuid.New()
	f.store.addRecord(recordID, false)
	res := f.store.addReservation(recordID, holderAlias, reservation.StatusReserved, f.clock.Now().Add(time.Hour))
	f.store.addQueueEntry(recordID, "waiter", 1, f.clock.Now())

	require.NoError(t, f.admin.ExpireReservation(context.Background(), res.ID()))

	updated := f.store.reservations[res.ID()]
	assert.Equal(t, reservation.StatusExpired, updated.Status())
	// expires_at is clamped to the expiry instant.
	assert.Equal(t, f.clock.Now(), updated.ExpiresAt())
	assert.Empty(t, f.store.queues[recordID], "queue dissolves once the record is claimable again")
	assert.Contains(t, f.store.auditKinds(), "reservation_expired")
	assert.Contains(t, f.refresher.refreshedRecs, recordID)
}

func TestExpireReservation_TerminalIsNoOp(t *testing.T) {
	f := newAdminFixture(t)

	recordID := uuid.New()
	f.store.addRecord(recordID, false)
	res := f.store.addReservation(recordID, holderAlias, reservation.StatusSold, f.clock.Now().Add(time.Hour))

	require.NoError(t, f.admin.ExpireReservation(context.Background(), res.ID()))

	assert.Equal(t, reservation.StatusSold, f.store.reservations[res.ID()].Status())
	assert.NotContains(t, f.store.auditKinds(), "reservation_expired")
}

func TestExpireReservation_NotFound(t *testing.T) {
	f := newAdminFixture(t)

	err := f.admin.ExpireReservation(context.Background(), uuid.New())
	assert.ErrorIs(t, err, commands.ErrReservationNotFound)
}
