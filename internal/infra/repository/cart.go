package repository

import (
	"context"
	"time"

	"vinyl-reserve/internal/domain/cart"
	"vinyl-reserve/internal/infra"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CartRepository struct{}

func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

const cartColumns = `id, alias, record_id, last_known_status, last_validated_at, added_at`

func (r *CartRepository) FindByAlias(ctx context.Context, db DBTX, alias string) ([]*cart.Entry, error) {
	rows, err := db.Query(ctx,
		`SELECT `+cartColumns+` FROM cart_entries
		 WHERE alias = $1 ORDER BY added_at`,
		alias)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find cart entries", err)
	}
	defer rows.Close()

	return collectCartEntries(rows)
}

func (r *CartRepository) Create(ctx context.Context, db DBTX, entry *cart.Entry) error {
	_, err := db.Exec(ctx,
		`INSERT INTO cart_entries (id, alias, record_id, last_known_status, last_validated_at, added_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID(), entry.Alias(), entry.RecordID(),
		entry.LastKnownStatus(), entry.LastValidatedAt(), entry.AddedAt())
	if err != nil {
		return infra.WrapRepoErr("failed to create cart entry", err)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, db DBTX, alias string, recordID uuid.UUID) error {
	_, err := db.Exec(ctx,
		`DELETE FROM cart_entries WHERE alias = $1 AND record_id = $2`,
		alias, recordID)
	if err != nil {
		return infra.WrapRepoErr("failed to delete cart entry", err)
	}
	return nil
}

// DeleteBatch removes the checkout-consumed entries in one statement.
func (r *CartRepository) DeleteBatch(ctx context.Context, db DBTX, alias string, recordIDs []uuid.UUID) error {
	if len(recordIDs) == 0 {
		return nil
	}
	_, err := db.Exec(ctx,
		`DELETE FROM cart_entries WHERE alias = $1 AND record_id = ANY($2)`,
		alias, recordIDs)
	if err != nil {
		return infra.WrapRepoErr("failed to delete cart entries", err)
	}
	return nil
}

// UpdateValidation writes back the advisory status snapshot.
func (r *CartRepository) UpdateValidation(ctx context.Context, db DBTX, id uuid.UUID, status string, validatedAt time.Time) error {
	_, err := db.Exec(ctx,
		`UPDATE cart_entries SET last_known_status = $2, last_validated_at = $3 WHERE id = $1`,
		id, status, validatedAt)
	if err != nil {
		return infra.WrapRepoErr("failed to update cart entry validation", err)
	}
	return nil
}

// ListActiveAliases feeds the interval revalidation loop.
func (r *CartRepository) ListActiveAliases(ctx context.Context, db DBTX) ([]string, error) {
	rows, err := db.Query(ctx, `SELECT DISTINCT alias FROM cart_entries`)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list cart aliases", err)
	}
	defer rows.Close()

	var aliases []string
	for rows.Next() {
		var alias string
		if err := rows.Scan(&alias); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart alias", err)
		}
		aliases = append(aliases, alias)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read cart aliases", err)
	}
	return aliases, nil
}

func collectCartEntries(rows pgx.Rows) ([]*cart.Entry, error) {
	var entries []*cart.Entry
	for rows.Next() {
		var (
			id              uuid.UUID
			alias           string
			recordID        uuid.UUID
			lastKnownStatus string
			lastValidatedAt time.Time
			addedAt         time.Time
		)
		if err := rows.Scan(&id, &alias, &recordID, &lastKnownStatus, &lastValidatedAt, &addedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart entry", err)
		}
		entries = append(entries, cart.ReconstructEntry(id, alias, recordID, lastKnownStatus, lastValidatedAt, addedAt))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read cart entries", err)
	}
	return entries, nil
}
