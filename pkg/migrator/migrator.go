// Package migrator applies the goose SQL migrations embedded by each
// bounded context.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/ghuser/auctionhouse/pkg/logger"
)

// RunMigrations applies every pending migration in files against dbURL and
// logs each applied version.
func RunMigrations(ctx context.Context, dbURL string, files fs.FS, log logger.Logger) error {
	return withProvider(ctx, dbURL, files, func(p *goose.Provider) error {
		results, err := p.Up(ctx)
		if err != nil {
			return fmt.Errorf("failed to up migrations: %w", err)
		}
		for _, r := range results {
			log.InfoContext(ctx, "migration applied",
				"version", r.Source.Version,
				"file", r.Source.Path,
				"duration_ms", r.Duration.Milliseconds(),
			)
		}
		if len(results) == 0 {
			log.InfoContext(ctx, "migrations up to date")
		}
		return nil
	})
}

// Status logs the applied state of every migration in files.
func Status(ctx context.Context, dbURL string, files fs.FS, log logger.Logger) error {
	return withProvider(ctx, dbURL, files, func(p *goose.Provider) error {
		statuses, err := p.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to read migration status: %w", err)
		}
		for _, s := range statuses {
			args := []any{"version", s.Source.Version, "file", s.Source.Path, "state", string(s.State)}
			if s.State == goose.StateApplied {
				args = append(args, "applied_at", s.AppliedAt)
			}
			log.InfoContext(ctx, "migration", args...)
		}
		return nil
	})
}

func withProvider(ctx context.Context, dbURL string, files fs.FS, fn func(*goose.Provider) error) error {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach database: %w", err)
	}

	p, err := goose.NewProvider(goose.DialectPostgres, db, files)
	if err != nil {
		return fmt.Errorf("failed to create goose provider: %w", err)
	}
	return fn(p)
}
