package statussource

import (
	"context"

	"vinyl-reserve/internal/cache"
	"vinyl-reserve/internal/infra"
	"vinyl-reserve/internal/infra/repository"
	"vinyl-reserve/internal/infra/uow"
	"vinyl-reserve/internal/pkg/clock"

	"github.com/google/uuid"
)

// Source implements cache.FactsSource over the pgx repositories. Bulk
// loads run inside one read transaction so the populated snapshot is
// internally consistent.
type Source struct {
	uow          uow.UnitOfWork
	records      *repository.RecordRepository
	reservations *repository.ReservationRepository
	queues       *repository.QueueRepository
	carts        *repository.CartRepository
	clock        clock.Clock
}

func NewSource(
	u uow.UnitOfWork,
	records *repository.RecordRepository,
	reservations *repository.ReservationRepository,
	queues *repository.QueueRepository,
	carts *repository.CartRepository,
	clk clock.Clock,
) *Source {
	return &Source{
		uow:          u,
		records:      records,
		reservations: reservations,
		queues:       queues,
		carts:        carts,
		clock:        clk,
	}
}

func (s *Source) LoadFacts(ctx context.Context, recordID uuid.UUID) (cache.Facts, bool, error) {
	var (
		facts cache.Facts
		found bool
	)
	err := s.uow.WithDB(ctx, func(ctx context.Context, db repository.DBTX) error {
		rec, err := s.records.FindByID(ctx, db, recordID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil
			}
			return err
		}
		found = true
		facts.Sold = rec.Sold()

		res, err := s.reservations.FindActiveByRecordID(ctx, db, recordID, s.clock.Now())
		if err != nil {
			return err
		}
		facts.Reservation = res

		entries, err := s.queues.FindByRecordID(ctx, db, recordID)
		if err != nil {
			return err
		}
		facts.QueueEntries = entries
		return nil
	})
	if err != nil {
		return cache.Facts{}, false, err
	}
	return facts, found, nil
}

func (s *Source) LoadAllFacts(ctx context.Context) (map[uuid.UUID]cache.Facts, error) {
	result := make(map[uuid.UUID]cache.Facts)
	err := s.uow.Within(ctx, func(ctx context.Context, db repository.DBTX) error {
		ids, err := s.records.ListVisibleIDs(ctx, db)
		if err != nil {
			return err
		}
		records, err := s.records.FindByIDs(ctx, db, ids)
		if err != nil {
			return err
		}
		reservations, err := s.reservations.FindAllActive(ctx, db, s.clock.Now())
		if err != nil {
			return err
		}
		queues, err := s.queues.FindAll(ctx, db)
		if err != nil {
			return err
		}

		for id, rec := range records {
			result[id] = cache.Facts{
				Sold:         rec.Sold(),
				Reservation:  reservations[id],
				QueueEntries: queues[id],
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Source) LoadCartRecordIDs(ctx context.Context, alias string) (map[uuid.UUID]struct{}, error) {
	ids := make(map[uuid.UUID]struct{})
	err := s.uow.WithDB(ctx, func(ctx context.Context, db repository.DBTX) error {
		entries, err := s.carts.FindByAlias(ctx, db, alias)
		if err != nil {
			return err
		}
		for _, e := range entries {
			ids[e.RecordID()] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
