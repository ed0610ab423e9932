package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/branch-atm-ledger/internal/config"
	"github.com/branch-atm-ledger/internal/data/csvfile"
	"github.com/branch-atm-ledger/internal/data/mongo"
	"github.com/branch-atm-ledger/internal/data/postgres"
	"github.com/branch-atm-ledger/internal/domain/account"
	"github.com/branch-atm-ledger/internal/domain/journal"
	"github.com/branch-atm-ledger/internal/platform/persistence"
)

type closeFunc func(ctx context.Context)

func noopClose(context.Context) {}

func openLedgerStore(ctx context.Context, log *slog.Logger, cfg *config.Config) (account.Store, closeFunc, error) {
	switch cfg.Ledger.Backend {
	case config.BackendCSV:
		return csvfile.NewAccountStore(log, cfg.Ledger.AccountsFile), noopClose, nil
	case config.BackendPostgres:
		db, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewAccountStore(log, db), func(context.Context) { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported ledger backend %q", cfg.Ledger.Backend)
	}
}

func openJournal(ctx context.Context, log *slog.Logger, cfg *config.Config) (journal.Repository, closeFunc, error) {
	switch cfg.Journal.Backend {
	case config.BackendCSV:
		return csvfile.NewJournal(log, cfg.Journal.File), noopClose, nil
	case config.BackendMongo:
		db, err := persistence.NewMongoDB(ctx, log, &cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		closer := func(ctx context.Context) {
			if err := db.Close(ctx); err != nil {
				log.Error("Error closing MongoDB connection", "error", err)
			}
		}
		return mongo.NewJournal(log, db.Database()), closer, nil
	default:
		return nil, nil, fmt.Errorf("unsupported journal backend %q", cfg.Journal.Backend)
	}
}
