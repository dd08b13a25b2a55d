package repository

import (
	"context"
	"time"

	"vinyl-reserve/internal/domain/queue"
	"vinyl-reserve/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type QueueRepository struct{}

func NewQueueRepository() *QueueRepository {
	return &QueueRepository{}
}

const queueColumns = `id, record_id, alias, position, joined_at`

func (r *QueueRepository) FindByRecordID(ctx context.Context, db DBTX, recordID uuid.UUID) ([]*queue.Entry, error) {
	rows, err := db.Query(ctx,
		`SELECT `+queueColumns+` FROM queue_entries
		 WHERE record_id = $1 ORDER BY position`,
		recordID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find queue entries", err)
	}
	defer rows.Close()

	return collectQueueEntries(rows)
}

func (r *QueueRepository) FindByRecordIDs(ctx context.Context, db DBTX, recordIDs []uuid.UUID) (map[uuid.UUID][]*queue.Entry, error) {
	rows, err := db.Query(ctx,
		`SELECT `+queueColumns+` FROM queue_entries
		 WHERE record_id = ANY($1) ORDER BY record_id, position`,
		recordIDs)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find queue entries by record ids", err)
	}
	defer rows.Close()

	entries, err := collectQueueEntries(rows)
	if err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID][]*queue.Entry)
	for _, e := range entries {
		result[e.RecordID()] = append(result[e.RecordID()], e)
	}
	return result, nil
}

// FindAll feeds bulk cache population, grouped by record.
func (r *QueueRepository) FindAll(ctx context.Context, db DBTX) (map[uuid.UUID][]*queue.Entry, error) {
	rows, err := db.Query(ctx,
		`SELECT `+queueColumns+` FROM queue_entries ORDER BY record_id, position`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list queue entries", err)
	}
	defer rows.Close()

	entries, err := collectQueueEntries(rows)
	if err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID][]*queue.Entry)
	for _, e := range entries {
		result[e.RecordID()] = append(result[e.RecordID()], e)
	}
	return result, nil
}

func (r *QueueRepository) Create(ctx context.Context, db DBTX, entry *queue.Entry) error {
	_, err := db.Exec(ctx,
		`INSERT INTO queue_entries (id, record_id, alias, position, joined_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ID(), entry.RecordID(), entry.Alias(), entry.Position(), entry.JoinedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create queue entry", err)
	}
	return nil
}

// Delete is idempotent: removing an absent entry is not an error.
func (r *QueueRepository) Delete(ctx context.Context, db DBTX, recordID uuid.UUID, alias string) error {
	_, err := db.Exec(ctx,
		`DELETE FROM queue_entries WHERE record_id = $1 AND alias = $2`,
		recordID, alias)
	if err != nil {
		return infra.WrapRepoErr("failed to delete queue entry", err)
	}
	return nil
}

// DeleteByRecordID clears a record's whole queue. Used when the record
// leaves the reserved state (sold or reservation expired), since queue
// membership is only meaningful against a reserved record.
func (r *QueueRepository) DeleteByRecordID(ctx context.Context, db DBTX, recordID uuid.UUID) error {
	_, err := db.Exec(ctx,
		`DELETE FROM queue_entries WHERE record_id = $1`, recordID)
	if err != nil {
		return infra.WrapRepoErr("failed to clear record queue", err)
	}
	return nil
}

func collectQueueEntries(rows pgx.Rows) ([]*queue.Entry, error) {
	var entries []*queue.Entry
	for rows.Next() {
		var (
			id       uuid.UUID
			recordID uuid.UUID
			alias    string
			position int
			joinedAt time.Time
		)
		if err := rows.Scan(&id, &recordID, &alias, &position, &joinedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan queue entry", err)
		}
		entries = append(entries, queue.ReconstructEntry(id, recordID, alias, position, joinedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read queue entries", err)
	}
	return entries, nil
}
