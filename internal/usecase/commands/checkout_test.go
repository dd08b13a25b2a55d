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
	"vinyl-reserve/internal/pkg/errs"
	"vinyl-reserve/internal/pkg/keyedmutex"
	"vinyl-reserve/internal/usecase/commands"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	buyerAlias  = "crate-digger"
	holderAlias = "first-comer"

	reservationTTL = 7 * 24 * time.Hour
	queueMax       = 20
)

type checkoutFixture struct {
	store       *memStore
	refresher   *fakeRefresher
	revalidator *fakeRevalidator
	clock       *clock.MockClock
	checkout    commands.CheckoutCommands
	queues      commands.QueueCommands
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()

	store := newMemStore()
	refresher := &fakeRefresher{}
	revalidator := &fakeRevalidator{}
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	queueCmds := commands.NewQueueCommands(
		fakeUoW{}, recordsView{store}, reservationsView{store}, queuesView{store},
		auditView{store}, refresher, revalidator, keyedmutex.New(), clk,
		queueMax, logger,
	)
	checkoutCmds := commands.NewCheckoutCommands(
		fakeUoW{}, recordsView{store}, reservationsView{store}, queuesView{store},
		cartsView{store}, auditView{store}, queueCmds, refresher, revalidator,
		clk, reservationTTL, logger,
	)

	return &checkoutFixture{
		store:       store,
		refresher:   refresher,
		revalidator: revalidator,
		clock:       clk,
		checkout:    checkoutCmds,
		queues:      queueCmds,
	}
}

func (f *checkoutFixture) now() time.Time {
	return f.clock.Now()
}

func (f *checkoutFixture) cartRecordIDs(alias string) []uuid.UUID {
	entries := f.store.carts[alias]
	ids := make([]uuid.UUID, len(entries))
	for i, e := range entries {
		ids[i] = e.RecordID()
	}
	return ids
}

func skipDecision(context.Context, []commands.ConflictItem) (commands.Decision, error) {
	return commands.DecisionSkip, nil
}

func queueDecision(context.Context, []commands.ConflictItem) (commands.Decision, error) {
	return commands.DecisionJoinQueue, nil
}

// Three-item cart: one free, one held by someone else, one sold. The
// same starting state must always resolve the same way.
func TestCheckout_MixedCartWithSkip(t *testing.T) {
	f := newCheckoutFixture(t)

	free := uuid.New()
	held := uuid.New()
	sold := uuid.New()

	f.store.addRecord(free, false)
	f.store.addRecord(held, false)
	f.store.addRecord(sold, true)
	f.store.addReservation(held, holderAlias, reservation.StatusReserved, f.now().Add(time.Hour))
	f.store.addCartEntry(buyerAlias, free, f.now())
	f.store.addCartEntry(buyerAlias, held, f.now())
	f.store.addCartEntry(buyerAlias, sold, f.now())

	result, err := f.checkout.Checkout(context.Background(), buyerAlias, skipDecision)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.True(t, result.HasConflicts)
	assert.Equal(t, []uuid.UUID{free}, result.Reserved)
	assert.Equal(t, []uuid.UUID{held}, result.Skipped)
	assert.Equal(t, []uuid.UUID{sold}, result.Sold)
	assert.Empty(t, result.Queued)

	// The reserved item leaves the cart; skipped and sold items remain
	// until the shopper acts on them.
	assert.ElementsMatch(t, []uuid.UUID{held, sold}, f.cartRecordIDs(buyerAlias))
	assert.Contains(t, f.revalidator.validated(), buyerAlias,
		"checkout must revalidate the cart once it has mutated it")

	active, err := f.store.FindActiveByRecordID(context.Background(), nil, free, f.now())
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, buyerAlias, active.HolderAlias())
	assert.Equal(t, f.now().Add(reservationTTL), active.ExpiresAt())
}

func TestCheckout_MixedCartWithQueue(t *testing.T) {
	f := newCheckoutFixture(t)

	free := uuid.New()
	held := uuid.New()
	sold := uuid.New()

	f.store.addRecord(free, false)
	f.store.addRecord(held, false)
	f.store.addRecord(sold, true)
	f.store.addReservation(held, holderAlias, reservation.StatusReserved, f.now().Add(time.Hour))
	f.store.addCartEntry(buyerAlias, free, f.now())
	f.store.addCartEntry(buyerAlias, held, f.now())
	f.store.addCartEntry(buyerAlias, sold, f.now())

	result, err := f.checkout.Checkout(context.Background(), buyerAlias, queueDecision)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{free}, result.Reserved)
	assert.Equal(t, []uuid.UUID{held}, result.Queued)
	assert.Empty(t, result.QueueFailures)

	// Queuing resolves the conflict and the sale terminally; the cart
	// empties out.
	assert.Empty(t, f.cartRecordIDs(buyerAlias))

	rank, err := f.queues.EffectiveRank(context.Background(), held, buyerAlias)
	require.NoError(t, err)
	assert.Equal(t, 1, rank)
}

func TestCheckout_RaceLoserBecomesConflict(t *testing.T) {
	f := newCheckoutFixture(t)

	contested := uuid.New()
	f.store.addRecord(contested, false)
	f.store.addCartEntry(buyerAlias, contested, f.now())

	// Another shopper claims the record between collect and commit.
	f.store.beforeCreateBatch = func() {
		f.store.addReservation(contested, holderAlias, reservation.StatusReserved, f.now().Add(time.Hour))
	}

	result, err := f.checkout.Checkout(context.Background(), buyerAlias, skipDecision)
	require.NoError(t, err)

	// Losing the insert race is a conflict outcome, not a failure.
	assert.True(t, result.Success)
	assert.True(t, result.HasConflicts)
	assert.Empty(t, result.Reserved)
	assert.Equal(t, []uuid.UUID{contested}, result.Skipped)
	assert.Equal(t, []uuid.UUID{contested}, f.cartRecordIDs(buyerAlias))
}

func TestCheckout_StaleReservationIsReclaimed(t *testing.T) {
	f := newCheckoutFixture(t)

	recordID := uuid.New()
	f.store.addRecord(recordID, false)
	// Lapsed but never swept: still holds the unique slot in storage.
	f.store.addReservation(recordID, holderAlias, reservation.StatusReserved, f.now().Add(-time.Minute))
	f.store.addCartEntry(buyerAlias, recordID, f.now())

	result, err := f.checkout.Checkout(context.Background(), buyerAlias, skipDecision)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{recordID}, result.Reserved)
	assert.False(t, result.HasConflicts)

	active, err := f.store.FindActiveByRecordID(context.Background(), nil, recordID, f.now())
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, buyerAlias, active.HolderAlias())
}

func TestCheckout_SelfHeldReservation(t *testing.T) {
	f := newCheckoutFixture(t)

	recordID := uuid.New()
	f.store.addRecord(recordID, false)
	existing := f.store.addReservation(recordID, buyerAlias, reservation.StatusReserved, f.now().Add(time.Hour))
	f.store.addCartEntry(buyerAlias, recordID, f.now())

	result, err := f.checkout.Checkout(context.Background(), buyerAlias, skipDecision)
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{recordID}, result.Reserved)
	assert.Empty(t, f.cartRecordIDs(buyerAlias))

	// No duplicate row: the original reservation is untouched.
	assert.Len(t, f.store.reservations, 1)
	assert.Equal(t, existing.ID(), f.store.reservations[existing.ID()].ID())
}

func TestCheckout_AlreadyQueuedConflictJustLeavesCart(t *testing.T) {
	f := newCheckoutFixture(t)

	recordID := uuid.New()
	f.store.addRecord(recordID, false)
	f.store.addReservation(recordID, holderAlias, reservation.StatusReserved, f.now().Add(time.Hour))
	f.store.addQueueEntry(recordID, buyerAlias, 1, f.now().Add(-time.Hour))
	f.store.addCartEntry(buyerAlias, recordID, f.now())

	result, err := f.checkout.Checkout(context.Background(), buyerAlias, skipDecision)
	require.NoError(t, err)

	assert.Empty(t, result.Queued)
	assert.Empty(t, result.QueueFailures)
	assert.Empty(t, f.cartRecordIDs(buyerAlias))
	// Still exactly one queue entry for the buyer.
	assert.Len(t, f.store.queues[recordID], 1)
}

func TestCheckout_QueueJoinFailureIsCollected(t *testing.T) {
	f := newCheckoutFixture(t)

	recordID := uuid.New()
	f.store.addRecord(recordID, false)
	f.store.addReservation(recordID, holderAlias, reservation.StatusReserved, f.now().Add(time.Hour))
	f.store.addCartEntry(buyerAlias, recordID, f.now())
	f.store.queueCreateErr = errs.New("queue table unavailable")

	result, err := f.checkout.Checkout(context.Background(), buyerAlias, queueDecision)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Empty(t, result.Queued)
	require.Len(t, result.QueueFailures, 1)
	assert.Equal(t, recordID, result.QueueFailures[0].RecordID)
	// The item is still removed: the conflict was acted on even though
	// the join failed.
	assert.Empty(t, f.cartRecordIDs(buyerAlias))
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.checkout.Checkout(context.Background(), buyerAlias, skipDecision)
	assert.ErrorIs(t, err, commands.ErrEmptyCart)
}

func TestCheckout_MissingAlias(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.checkout.Checkout(context.Background(), "", skipDecision)
	assert.ErrorIs(t, err, commands.ErrMissingAlias)
}

func TestCheckout_CommitFailureLeavesCartUntouched(t *testing.T) {
	f := newCheckoutFixture(t)

	recordID := uuid.New()
	f.store.addRecord(recordID, false)
	f.store.addCartEntry(buyerAlias, recordID, f.now())
	f.store.createBatchErr = errs.New("connection lost")

	_, err := f.checkout.Checkout(context.Background(), buyerAlias, skipDecision)
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrCheckoutFailed)

	assert.Equal(t, []uuid.UUID{recordID}, f.cartRecordIDs(buyerAlias))
	assert.Empty(t, f.store.reservations)
	assert.Empty(t, f.revalidator.validated(),
		"an aborted checkout writes nothing, so there is nothing to revalidate")
}

func TestCheckout_DecisionErrorAbortsBeforeAnyWrite(t *testing.T) {
	f := newCheckoutFixture(t)

	free := uuid.New()
	held := uuid.New()
	f.store.addRecord(free, false)
	f.store.addRecord(held, false)
	f.store.addReservation(held, holderAlias, reservation.StatusReserved, f.now().Add(time.Hour))
	f.store.addCartEntry(buyerAlias, free, f.now())
	f.store.addCartEntry(buyerAlias, held, f.now())

	abort := errs.New("shopper never answered")
	_, err := f.checkout.Checkout(context.Background(), buyerAlias,
		func(context.Context, []commands.ConflictItem) (commands.Decision, error) {
			return commands.DecisionSkip, abort
		})
	require.ErrorIs(t, err, abort)

	// Nothing written, nothing removed: the free item was not reserved
	// either.
	assert.Len(t, f.store.reservations, 1)
	assert.ElementsMatch(t, []uuid.UUID{free, held}, f.cartRecordIDs(buyerAlias))
}

func TestCheckout_DeterministicForSameState(t *testing.T) {
	build := func() (*checkoutFixture, uuid.UUID, uuid.UUID, uuid.UUID) {
		f := newCheckoutFixture(t)
		free := uuid.MustParse("00000000-0000-0000-0000-000000000001")
		held := uuid.MustParse("00000000-0000-0000-0000-000000000002")
		sold := uuid.MustParse("00000000-0000-0000-0000-000000000003")
		f.store.addRecord(free, false)
		f.store.addRecord(held, false)
		f.store.addRecord(sold, true)
		f.store.addReservation(held, holderAlias, reservation.StatusReserved, f.now().Add(time.Hour))
		f.store.addCartEntry(buyerAlias, free, f.now())
		f.store.addCartEntry(buyerAlias, held, f.now())
		f.store.addCartEntry(buyerAlias, sold, f.now())
		return f, free, held, sold
	}

	f1, free, held, sold := build()
	r1, err := f1.checkout.Checkout(context.Background(), buyerAlias, skipDecision)
	require.NoError(t, err)

	f2, _, _, _ := build()
	r2, err := f2.checkout.Checkout(context.Background(), buyerAlias, skipDecision)
	require.NoError(t, err)

	if diff := cmp.Diff(r1, r2); diff != "" {
		t.Errorf("results diverged for identical inputs (-first +second):\n%s", diff)
	}
	assert.Equal(t, []uuid.UUID{free}, r1.Reserved)
	assert.Equal(t, []uuid.UUID{held}, r1.Skipped)
	assert.Equal(t, []uuid.UUID{sold}, r1.Sold)
	assert.ElementsMatch(t, f1.cartRecordIDs(buyerAlias), f2.cartRecordIDs(buyerAlias))
}
