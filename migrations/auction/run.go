// Command auction-migrate applies the auction schema. Pass "status" to list
// migration state instead of applying.
package main

import (
	"context"
	"embed"
	"log/slog"
	"os"

	"github.com/ghuser/auctionhouse/pkg/config"
	"github.com/ghuser/auctionhouse/pkg/logger"
	"github.com/ghuser/auctionhouse/pkg/migrator"
)

//go:embed *.sql
var MigrationsFS embed.FS

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg).With("component", "migrate")
	ctx := context.Background()

	run := migrator.RunMigrations
	if len(os.Args) > 1 && os.Args[1] == "status" {
		run = migrator.Status
	}
	if err := run(ctx, cfg.DatabaseURL, MigrationsFS, log); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}
}
