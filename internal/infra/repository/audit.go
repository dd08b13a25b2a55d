package repository

import (
	"context"
	"time"

	"vinyl-reserve/internal/infra"

	"github.com/google/uuid"
)

type AuditRepository struct{}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

// Append writes one audit event. Audit rows are append-only and never
// read by the engine itself.
func (r *AuditRepository) Append(ctx context.Context, db DBTX, kind string, recordID *uuid.UUID, alias string, payload []byte, now time.Time) error {
	if payload == nil {
		payload = []byte(`{}`)
	}
	_, err := db.Exec(ctx,
		`INSERT INTO audit_events (id, kind, record_id, alias, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), kind, recordID, alias, payload, now)
	if err != nil {
		return infra.WrapRepoErr("failed to append audit event", err)
	}
	return nil
}
