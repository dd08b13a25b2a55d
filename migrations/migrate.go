// Package migrations embeds the schema and applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"

	"vinyl-reserve/internal/pkg/config"
	"vinyl-reserve/internal/pkg/errs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var fs embed.FS

// Up applies all pending migrations. It opens its own short-lived
// connection because goose wants database/sql, not a pgx pool.
func Up(ctx context.Context, cfg config.DBConfig) error {
	db, err := sql.Open("pgx", cfg.BuildDSN())
	if err != nil {
		return errs.Wrap(err, "failed to open migration connection")
	}
	defer db.Close()

	goose.SetBaseFS(fs)
	if err := goose.SetDialect("postgres"); err != nil {
		return errs.Wrap(err, "failed to set goose dialect")
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errs.Wrap(err, "failed to apply migrations")
	}
	return nil
}
