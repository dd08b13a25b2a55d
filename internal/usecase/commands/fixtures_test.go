//go:build unit

package commands_test

import (
	"context"
	"sync"
	"time"

	"vinyl-reserve/internal/domain/cart"
	"vinyl-reserve/internal/domain/queue"
	"vinyl-reserve/internal/domain/record"
	"vinyl-reserve/internal/domain/reservation"
	"vinyl-reserve/internal/infra"
	"vinyl-reserve/internal/infra/repository"

	"github.com/google/uuid"
)

// fakeUoW runs the closure against no real connection; the in-memory
// store ignores the db handle entirely.
type fakeUoW struct{}

func (fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, db repository.DBTX) error) error {
	return fn(ctx, nil)
}

func (fakeUoW) WithDB(ctx context.Context, fn func(ctx context.Context, db repository.DBTX) error) error {
	return fn(ctx, nil)
}

type auditEvent struct {
	Kind     string
	RecordID *uuid.UUID
	Alias    string
}

// memStore is an in-memory stand-in for the pgx repositories. It keeps
// the same semantics the schema enforces: one live reservation per
// record, one queue entry per (record, alias), one cart entry per
// (alias, record).
type memStore struct {
	mu           sync.Mutex
	records      map[uuid.UUID]*record.Record
	reservations map[uuid.UUID]*reservation.Reservation
	queues       map[uuid.UUID][]*queue.Entry
	carts        map[string][]*cart.Entry
	audits       []auditEvent

	createBatchErr error
	queueCreateErr error
	deleteBatchErr error

	// invoked inside CreateBatch before the insert, to model another
	// shopper winning between collect and commit
	beforeCreateBatch func()
}

func newMemStore() *memStore {
	return &memStore{
		records:      make(map[uuid.UUID]*record.Record),
		reservations: make(map[uuid.UUID]*reservation.Reservation),
		queues:       make(map[uuid.UUID][]*queue.Entry),
		carts:        make(map[string][]*cart.Entry),
	}
}

func (s *memStore) addRecord(id uuid.UUID, sold bool) {
	s.records[id] = record.ReconstructRecord(id, "Artist", "Title", 2500, true, sold, nil)
}

func (s *memStore) addReservation(recordID uuid.UUID, alias string, status reservation.Status, expiresAt time.Time) *reservation.Reservation {
	res := reservation.ReconstructReservation(
		uuid.New(), recordID, alias, status, expiresAt.Add(-time.Hour), expiresAt,
	)
	s.reservations[res.ID()] = res
	return res
}

func (s *memStore) addQueueEntry(recordID uuid.UUID, alias string, position int, joinedAt time.Time) {
	s.queues[recordID] = append(s.queues[recordID],
		queue.ReconstructEntry(uuid.New(), recordID, alias, position, joinedAt))
}

func (s *memStore) addCartEntry(alias string, recordID uuid.UUID, addedAt time.Time) {
	s.carts[alias] = append(s.carts[alias], cart.ReconstructEntry(
		uuid.New(), alias, recordID, "IN_CART", addedAt, addedAt,
	))
}

func (s *memStore) auditKinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]string, len(s.audits))
	for i, a := range s.audits {
		kinds[i] = a.Kind
	}
	return kinds
}

// RecordStore

func (s *memStore) FindByID(ctx context.Context, _ repository.DBTX, id uuid.UUID) (*record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, infra.WrapRepoErr("record not found", nil, infra.KindNotFound)
	}
	return rec, nil
}

func (s *memStore) FindByIDs(ctx context.Context, _ repository.DBTX, ids []uuid.UUID) (map[uuid.UUID]*record.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]*record.Record, len(ids))
	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			out[id] = rec
		}
	}
	return out, nil
}

func (s *memStore) MarkSold(ctx context.Context, _ repository.DBTX, id uuid.UUID, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return false, infra.WrapRepoErr("record not found", nil, infra.KindNotFound)
	}
	if rec.Sold() {
		return false, nil
	}
	soldAt := now
	s.records[id] = record.ReconstructRecord(
		id, rec.Artist(), rec.Title(), rec.PriceCents(), rec.Visible(), true, &soldAt,
	)
	return true, nil
}

// ReservationStore

func (s *memStore) FindReservationByID(ctx context.Context, _ repository.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[id]
	if !ok {
		return nil, infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return res, nil
}

func (s *memStore) FindActiveByRecordID(ctx context.Context, _ repository.DBTX, recordID uuid.UUID, now time.Time) (*reservation.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeFor(recordID, now), nil
}

func (s *memStore) FindActiveByRecordIDs(ctx context.Context, _ repository.DBTX, recordIDs []uuid.UUID, now time.Time) (map[uuid.UUID]*reservation.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID]*reservation.Reservation)
	for _, id := range recordIDs {
		if res := s.activeFor(id, now); res != nil {
			out[id] = res
		}
	}
	return out, nil
}

func (s *memStore) activeFor(recordID uuid.UUID, now time.Time) *reservation.Reservation {
	for _, res := range s.reservations {
		if res.RecordID() == recordID && res.Status() == reservation.StatusReserved && res.ExpiresAt().After(now) {
			return res
		}
	}
	return nil
}

func (s *memStore) ExpireStale(ctx context.Context, _ repository.DBTX, recordIDs []uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[uuid.UUID]bool, len(recordIDs))
	for _, id := range recordIDs {
		wanted[id] = true
	}
	for id, res := range s.reservations {
		if wanted[res.RecordID()] && res.Status() == reservation.StatusReserved && !res.ExpiresAt().After(now) {
			s.reservations[id] = reservation.ReconstructReservation(
				res.ID(), res.RecordID(), res.HolderAlias(),
				reservation.StatusExpired, res.CreatedAt(), now,
			)
		}
	}
	return nil
}

func (s *memStore) CreateBatch(ctx context.Context, _ repository.DBTX, toCreate []*reservation.Reservation) (map[uuid.UUID]bool, error) {
	if s.createBatchErr != nil {
		return nil, s.createBatchErr
	}
	if s.beforeCreateBatch != nil {
		s.beforeCreateBatch()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	won := make(map[uuid.UUID]bool, len(toCreate))
	for _, res := range toCreate {
		taken := false
		for _, existing := range s.reservations {
			if existing.RecordID() == res.RecordID() && existing.Status() == reservation.StatusReserved {
				taken = true
				break
			}
		}
		if taken {
			continue
		}
		s.reservations[res.ID()] = res
		won[res.RecordID()] = true
	}
	return won, nil
}

func (s *memStore) Update(ctx context.Context, _ repository.DBTX, res *reservation.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[res.ID()] = res
	return nil
}

func (s *memStore) SettleSoldByRecordID(ctx context.Context, _ repository.DBTX, recordID uuid.UUID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, res := range s.reservations {
		if res.RecordID() == recordID && res.Status() == reservation.StatusReserved {
			s.reservations[id] = reservation.ReconstructReservation(
				res.ID(), res.RecordID(), res.HolderAlias(),
				reservation.StatusSold, res.CreatedAt(), now,
			)
		}
	}
	return nil
}

// QueueStore

func (s *memStore) FindByRecordID(ctx context.Context, _ repository.DBTX, recordID uuid.UUID) ([]*queue.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*queue.Entry(nil), s.queues[recordID]...), nil
}

func (s *memStore) FindByRecordIDs(ctx context.Context, _ repository.DBTX, recordIDs []uuid.UUID) (map[uuid.UUID][]*queue.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uuid.UUID][]*queue.Entry)
	for _, id := range recordIDs {
		if entries := s.queues[id]; len(entries) > 0 {
			out[id] = append([]*queue.Entry(nil), entries...)
		}
	}
	return out, nil
}

func (s *memStore) Create(ctx context.Context, _ repository.DBTX, entry *queue.Entry) error {
	if s.queueCreateErr != nil {
		return s.queueCreateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.queues[entry.RecordID()] {
		if e.Alias() == entry.Alias() {
			return infra.WrapRepoErr("duplicate queue entry", nil, infra.KindDuplicateKey)
		}
	}
	s.queues[entry.RecordID()] = append(s.queues[entry.RecordID()], entry)
	return nil
}

func (s *memStore) Delete(ctx context.Context, _ repository.DBTX, recordID uuid.UUID, alias string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.queues[recordID]
	kept := entries[:0]
	for _, e := range entries {
		if e.Alias() != alias {
			kept = append(kept, e)
		}
	}
	s.queues[recordID] = kept
	return nil
}

func (s *memStore) DeleteQueueByRecordID(ctx context.Context, _ repository.DBTX, recordID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queues, recordID)
	return nil
}

// CartStore

func (s *memStore) FindByAlias(ctx context.Context, _ repository.DBTX, alias string) ([]*cart.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*cart.Entry(nil), s.carts[alias]...), nil
}

func (s *memStore) CreateCartEntry(ctx context.Context, _ repository.DBTX, entry *cart.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.carts[entry.Alias()] {
		if e.RecordID() == entry.RecordID() {
			return infra.WrapRepoErr("duplicate cart entry", nil, infra.KindDuplicateKey)
		}
	}
	s.carts[entry.Alias()] = append(s.carts[entry.Alias()], entry)
	return nil
}

func (s *memStore) DeleteCartEntry(ctx context.Context, _ repository.DBTX, alias string, recordID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.carts[alias]
	kept := entries[:0]
	for _, e := range entries {
		if e.RecordID() != recordID {
			kept = append(kept, e)
		}
	}
	s.carts[alias] = kept
	return nil
}

func (s *memStore) DeleteBatch(ctx context.Context, _ repository.DBTX, alias string, recordIDs []uuid.UUID) error {
	if s.deleteBatchErr != nil {
		return s.deleteBatchErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := make(map[uuid.UUID]bool, len(recordIDs))
	for _, id := range recordIDs {
		drop[id] = true
	}
	entries := s.carts[alias]
	kept := entries[:0]
	for _, e := range entries {
		if !drop[e.RecordID()] {
			kept = append(kept, e)
		}
	}
	s.carts[alias] = kept
	return nil
}

// AuditStore

func (s *memStore) Append(ctx context.Context, _ repository.DBTX, kind string, recordID *uuid.UUID, alias string, payload []byte, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, auditEvent{Kind: kind, RecordID: recordID, Alias: alias})
	return nil
}

// Port views. The store interfaces reuse method names (FindByID,
// Create, Delete), so each port gets a thin adapter over the shared
// memStore.

type recordsView struct{ s *memStore }

func (v recordsView) FindByID(ctx context.Context, db repository.DBTX, id uuid.UUID) (*record.Record, error) {
	return v.s.FindByID(ctx, db, id)
}

func (v recordsView) FindByIDs(ctx context.Context, db repository.DBTX, ids []uuid.UUID) (map[uuid.UUID]*record.Record, error) {
	return v.s.FindByIDs(ctx, db, ids)
}

func (v recordsView) MarkSold(ctx context.Context, db repository.DBTX, id uuid.UUID, now time.Time) (bool, error) {
	return v.s.MarkSold(ctx, db, id, now)
}

type reservationsView struct{ s *memStore }

func (v reservationsView) FindByID(ctx context.Context, db repository.DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	return v.s.FindReservationByID(ctx, db, id)
}

func (v reservationsView) FindActiveByRecordID(ctx context.Context, db repository.DBTX, recordID uuid.UUID, now time.Time) (*reservation.Reservation, error) {
	return v.s.FindActiveByRecordID(ctx, db, recordID, now)
}

func (v reservationsView) FindActiveByRecordIDs(ctx context.Context, db repository.DBTX, recordIDs []uuid.UUID, now time.Time) (map[uuid.UUID]*reservation.Reservation, error) {
	return v.s.FindActiveByRecordIDs(ctx, db, recordIDs, now)
}

func (v reservationsView) ExpireStale(ctx context.Context, db repository.DBTX, recordIDs []uuid.UUID, now time.Time) error {
	return v.s.ExpireStale(ctx, db, recordIDs, now)
}

func (v reservationsView) CreateBatch(ctx context.Context, db repository.DBTX, toCreate []*reservation.Reservation) (map[uuid.UUID]bool, error) {
	return v.s.CreateBatch(ctx, db, toCreate)
}

func (v reservationsView) Update(ctx context.Context, db repository.DBTX, res *reservation.Reservation) error {
	return v.s.Update(ctx, db, res)
}

func (v reservationsView) SettleSoldByRecordID(ctx context.Context, db repository.DBTX, recordID uuid.UUID, now time.Time) error {
	return v.s.SettleSoldByRecordID(ctx, db, recordID, now)
}

type queuesView struct{ s *memStore }

func (v queuesView) FindByRecordID(ctx context.Context, db repository.DBTX, recordID uuid.UUID) ([]*queue.Entry, error) {
	return v.s.FindByRecordID(ctx, db, recordID)
}

func (v queuesView) FindByRecordIDs(ctx context.Context, db repository.DBTX, recordIDs []uuid.UUID) (map[uuid.UUID][]*queue.Entry, error) {
	return v.s.FindByRecordIDs(ctx, db, recordIDs)
}

func (v queuesView) Create(ctx context.Context, db repository.DBTX, entry *queue.Entry) error {
	return v.s.Create(ctx, db, entry)
}

func (v queuesView) Delete(ctx context.Context, db repository.DBTX, recordID uuid.UUID, alias string) error {
	return v.s.Delete(ctx, db, recordID, alias)
}

func (v queuesView) DeleteByRecordID(ctx context.Context, db repository.DBTX, recordID uuid.UUID) error {
	return v.s.DeleteQueueByRecordID(ctx, db, recordID)
}

type cartsView struct{ s *memStore }

func (v cartsView) FindByAlias(ctx context.Context, db repository.DBTX, alias string) ([]*cart.Entry, error) {
	return v.s.FindByAlias(ctx, db, alias)
}

func (v cartsView) Create(ctx context.Context, db repository.DBTX, entry *cart.Entry) error {
	return v.s.CreateCartEntry(ctx, db, entry)
}

func (v cartsView) Delete(ctx context.Context, db repository.DBTX, alias string, recordID uuid.UUID) error {
	return v.s.DeleteCartEntry(ctx, db, alias, recordID)
}

func (v cartsView) DeleteBatch(ctx context.Context, db repository.DBTX, alias string, recordIDs []uuid.UUID) error {
	return v.s.DeleteBatch(ctx, db, alias, recordIDs)
}

type auditView struct{ s *memStore }

func (v auditView) Append(ctx context.Context, db repository.DBTX, kind string, recordID *uuid.UUID, alias string, payload []byte, now time.Time) error {
	return v.s.Append(ctx, db, kind, recordID, alias, payload, now)
}

// fakeRefresher records which refreshes were requested.
type fakeRefresher struct {
	mu            sync.Mutex
	refreshedRecs []uuid.UUID
	refreshedCart []string
}

func (f *fakeRefresher) RefreshRecord(ctx context.Context, recordID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshedRecs = append(f.refreshedRecs, recordID)
	return nil
}

func (f *fakeRefresher) RefreshCart(ctx context.Context, alias string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshedCart = append(f.refreshedCart, alias)
	return nil
}

// fakeRevalidator records post-mutation validation passes per alias.
type fakeRevalidator struct {
	mu      sync.Mutex
	aliases []string
}

func (f *fakeRevalidator) Validate(ctx context.Context, alias string) ([]*cart.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aliases = append(f.aliases, alias)
	return nil, nil
}

func (f *fakeRevalidator) validated() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.aliases...)
}
