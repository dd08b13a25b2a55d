package repository

import (
	"context"
	"time"

	"vinyl-reserve/internal/domain/record"
	"vinyl-reserve/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RecordRepository struct{}

func NewRecordRepository() *RecordRepository {
	return &RecordRepository{}
}

const recordColumns = `id, artist, title, price_cents, visible, sold, sold_at`

func (r *RecordRepository) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*record.Record, error) {
	row := db.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = $1`, id)

	rec, err := scanRecord(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("record not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find record", err)
	}
	return rec, nil
}

func (r *RecordRepository) FindByIDs(ctx context.Context, db DBTX, ids []uuid.UUID) (map[uuid.UUID]*record.Record, error) {
	rows, err := db.Query(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find records by ids", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]*record.Record, len(ids))
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan record", err)
		}
		result[rec.ID()] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read records", err)
	}
	return result, nil
}

func (r *RecordRepository) ListVisibleIDs(ctx context.Context, db DBTX) ([]uuid.UUID, error) {
	rows, err := db.Query(ctx, `SELECT id FROM records WHERE visible`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list visible records", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan record id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read record ids", err)
	}
	return ids, nil
}

// MarkSold flips the sold flag exactly once. A second call matches no
// row and reports changed=false without error, which keeps the
// operation idempotent for retries.
func (r *RecordRepository) MarkSold(ctx context.Context, db DBTX, id uuid.UUID, now time.Time) (bool, error) {
	tag, err := db.Exec(ctx,
		`UPDATE records SET sold = TRUE, sold_at = $2 WHERE id = $1 AND NOT sold`,
		id, now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark record sold", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RecordRepository) Exists(ctx context.Context, db DBTX, id uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM records WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, infra.WrapRepoErr("failed to check record existence", err)
	}
	return exists, nil
}

func scanRecord(row pgx.Row) (*record.Record, error) {
	var (
		id         uuid.UUID
		artist     string
		title      string
		priceCents int64
		visible    bool
		sold       bool
		soldAt     *time.Time
	)
	if err := row.Scan(&id, &artist, &title, &priceCents, &visible, &sold, &soldAt); err != nil {
		return nil, err
	}
	return record.ReconstructRecord(id, artist, title, priceCents, visible, sold, soldAt), nil
}
