package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leetrack/leetrack-common/pkg/client"
	"github.com/leetrack/leetrack-common/pkg/config"
	"github.com/leetrack/leetrack-common/pkg/db"
	"github.com/leetrack/leetrack-common/pkg/repository"
)

func noClose() error { return nil }

// openRepository connects the configured backend. The returned close function
// releases any database handle.
func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.ProblemRepository, func() error, error) {
	switch cfg.Backend {
	case config.BackendAirtable:
		return repository.NewStoreProblemRepository(newAirtableClient(cfg, logger), logger), noClose, nil

	case config.BackendMemory:
		return repository.NewStoreProblemRepository(client.NewMemoryStoreClient(logger), logger), noClose, nil

	case config.BackendPostgres:
		conn, err := db.Connect(db.NewConfigFromEnv())
		if err != nil {
			return nil, nil, err
		}
		if err := db.EnsurePostgresSchema(ctx, conn); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return repository.NewPostgresProblemRepository(conn, logger), conn.Close, nil

	case config.BackendSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLiteProblemRepository(conn, logger), conn.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func newAirtableClient(cfg *config.Config, logger *slog.Logger) *client.AirtableClient {
	return client.NewAirtableClient(cfg.APIKey, cfg.BaseID, logger,
		client.WithBaseURL(cfg.APIURL),
		client.WithRateLimit(cfg.RateLimit),
	)
}
