package repository

import (
	"context"
	"time"

	"vinyl-reserve/internal/domain/reservation"
	"vinyl-reserve/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReservationRepository struct{}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{}
}

const reservationColumns = `id, record_id, holder_alias, status, created_at, expires_at`

func (r *ReservationRepository) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*reservation.Reservation, error) {
	row := db.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)

	res, err := scanReservation(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find reservation", err)
	}
	return res, nil
}

// FindActiveByRecordID returns the single live claim on a record, or
// nil when there is none. Expiry is judged against the caller's now so
// an unswept stale row never counts as active.
func (r *ReservationRepository) FindActiveByRecordID(ctx context.Context, db DBTX, recordID uuid.UUID, now time.Time) (*reservation.Reservation, error) {
	row := db.QueryRow(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE record_id = $1 AND status = 'RESERVED' AND expires_at > $2`,
		recordID, now)

	res, err := scanReservation(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find active reservation", err)
	}
	return res, nil
}

func (r *ReservationRepository) FindActiveByRecordIDs(ctx context.Context, db DBTX, recordIDs []uuid.UUID, now time.Time) (map[uuid.UUID]*reservation.Reservation, error) {
	rows, err := db.Query(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE record_id = ANY($1) AND status = 'RESERVED' AND expires_at > $2`,
		recordIDs, now)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find active reservations", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]*reservation.Reservation)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation", err)
		}
		result[res.RecordID()] = res
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read reservations", err)
	}
	return result, nil
}

// FindAllActive feeds bulk cache population.
func (r *ReservationRepository) FindAllActive(ctx context.Context, db DBTX, now time.Time) (map[uuid.UUID]*reservation.Reservation, error) {
	rows, err := db.Query(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE status = 'RESERVED' AND expires_at > $1`,
		now)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find all active reservations", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]*reservation.Reservation)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan reservation", err)
		}
		result[res.RecordID()] = res
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read reservations", err)
	}
	return result, nil
}

// ExpireStale flips lapsed RESERVED rows to EXPIRED so the partial
// unique index frees the slot before a new claim is inserted.
func (r *ReservationRepository) ExpireStale(ctx context.Context, db DBTX, recordIDs []uuid.UUID, now time.Time) error {
	_, err := db.Exec(ctx,
		`UPDATE reservations SET status = 'EXPIRED'
		 WHERE record_id = ANY($1) AND status = 'RESERVED' AND expires_at <= $2`,
		recordIDs, now)
	if err != nil {
		return infra.WrapRepoErr("failed to expire stale reservations", err)
	}
	return nil
}

// CreateBatch inserts claims for several records in one statement.
// Records whose active-reservation slot is already taken are skipped
// via ON CONFLICT DO NOTHING; the returned set holds the record ids
// that were actually won.
func (r *ReservationRepository) CreateBatch(ctx context.Context, db DBTX, reservations []*reservation.Reservation) (map[uuid.UUID]bool, error) {
	if len(reservations) == 0 {
		return map[uuid.UUID]bool{}, nil
	}

	ids := make([]uuid.UUID, len(reservations))
	recordIDs := make([]uuid.UUID, len(reservations))
	aliases := make([]string, len(reservations))
	statuses := make([]string, len(reservations))
	createdAts := make([]time.Time, len(reservations))
	expiresAts := make([]time.Time, len(reservations))
	for i, res := range reservations {
		ids[i] = res.ID()
		recordIDs[i] = res.RecordID()
		aliases[i] = res.HolderAlias()
		statuses[i] = res.Status().String()
		createdAts[i] = res.CreatedAt()
		expiresAts[i] = res.ExpiresAt()
	}

	rows, err := db.Query(ctx,
		`INSERT INTO reservations (id, record_id, holder_alias, status, created_at, expires_at)
		 SELECT * FROM unnest($1::uuid[], $2::uuid[], $3::text[], $4::text[], $5::timestamptz[], $6::timestamptz[])
		 ON CONFLICT DO NOTHING
		 RETURNING record_id`,
		ids, recordIDs, aliases, statuses, createdAts, expiresAts)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to create reservations", err)
	}
	defer rows.Close()

	won := make(map[uuid.UUID]bool, len(reservations))
	for rows.Next() {
		var recordID uuid.UUID
		if err := rows.Scan(&recordID); err != nil {
			return nil, infra.WrapRepoErr("failed to scan inserted reservation", err)
		}
		won[recordID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read inserted reservations", err)
	}
	return won, nil
}

// Update persists a status transition (Expire, sale settlement).
func (r *ReservationRepository) Update(ctx context.Context, db DBTX, res *reservation.Reservation) error {
	tag, err := db.Exec(ctx,
		`UPDATE reservations SET status = $2, expires_at = $3 WHERE id = $1`,
		res.ID(), res.Status().String(), res.ExpiresAt())
	if err != nil {
		return infra.WrapRepoErr("failed to update reservation", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("reservation not found", nil, infra.KindNotFound)
	}
	return nil
}

// SettleSoldByRecordID converts the active claim on a sold record into
// a SOLD row. No-op when no active claim exists.
func (r *ReservationRepository) SettleSoldByRecordID(ctx context.Context, db DBTX, recordID uuid.UUID, now time.Time) error {
	_, err := db.Exec(ctx,
		`UPDATE reservations SET status = 'SOLD'
		 WHERE record_id = $1 AND status = 'RESERVED' AND expires_at > $2`,
		recordID, now)
	if err != nil {
		return infra.WrapRepoErr("failed to settle sold reservation", err)
	}
	return nil
}

func scanReservation(row pgx.Row) (*reservation.Reservation, error) {
	var (
		id          uuid.UUID
		recordID    uuid.UUID
		holderAlias string
		status      string
		createdAt   time.Time
		expiresAt   time.Time
	)
	if err := row.Scan(&id, &recordID, &holderAlias, &status, &createdAt, &expiresAt); err != nil {
		return nil, err
	}
	return reservation.ReconstructReservation(
		id, recordID, holderAlias, reservation.Status(status), createdAt, expiresAt,
	), nil
}
