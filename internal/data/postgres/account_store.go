// Package postgres provides the PostgreSQL implementation of the Ledger Store.
// Every save replaces the account table inside one transaction, mirroring the
// full-file rewrite of the CSV store.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/branch-atm-ledger/internal/domain/account"
	"github.com/branch-atm-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const (
	selectAccountsQuery = `
		SELECT account_number, password_digest, balance, account_type, overdraft_limit
		FROM accounts
		ORDER BY position
	`
	deleteAccountsQuery = `DELETE FROM accounts`
	insertAccountQuery  = `
		INSERT INTO accounts (position, account_number, password_digest, balance, account_type, overdraft_limit)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
)

// AccountStore implements account.Store for PostgreSQL
type AccountStore struct {
	db     persistence.TxQuerier // *pgxpool.Pool in production
	logger *slog.Logger
}

// NewAccountStore creates a PostgreSQL Ledger Store
func NewAccountStore(logger *slog.Logger, db *persistence.PostgresDB) account.Store {
	return &AccountStore{
		db:     db.Pool(),
		logger: logger,
	}
}

// Load reads the table in insertion order, skipping rows that break account invariants
func (s *AccountStore) Load(ctx context.Context) ([]*account.Account, error) {
	rows, err := s.db.Query(ctx, selectAccountsQuery)
	if err != nil {
		s.logger.Error("Failed to query accounts", "error", err)
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	line := 0
	for rows.Next() {
		line++
		var (
			number, balance, limit int64
			digest, kindName       string
		)
		if err := rows.Scan(&number, &digest, &balance, &kindName, &limit); err != nil {
			s.logger.Warn("Skipping unreadable account row", "row", line, "error", err)
			continue
		}

		acc, err := buildAccount(line, number, digest, balance, kindName, limit)
		if err != nil {
			s.logger.Warn("Skipping malformed account row", "row", line, "account_number", number, "error", err)
			continue
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("Failed to iterate accounts", "error", err)
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// Save replaces every row in a single transaction
func (s *AccountStore) Save(ctx context.Context, accounts []*account.Account) error {
	err := persistence.ExecuteTx(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteAccountsQuery); err != nil {
			return fmt.Errorf("failed to clear accounts: %w", err)
		}
		for i, acc := range accounts {
			var limit int64
			if acc.Kind == account.KindOverdraft {
				limit = acc.OverdraftLimit
			}
			if _, err := tx.Exec(ctx, insertAccountQuery,
				i,
				acc.Number,
				acc.CredentialDigest,
				acc.Balance,
				acc.Kind.String(),
				limit,
			); err != nil {
				return fmt.Errorf("failed to insert account %d: %w", acc.Number, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to save accounts", "count", len(accounts), "error", err)
		return fmt.Errorf("failed to save accounts: %w", err)
	}
	return nil
}

func buildAccount(line int, number int64, digest string, balance int64, kindName string, limit int64) (*account.Account, error) {
	kind, err := account.ParseKind(kindName)
	if err != nil {
		return nil, account.ErrMalformedRow{Line: line, Reason: err.Error()}
	}
	acc, err := account.New(number, digest, balance, kind, limit)
	if err != nil {
		return nil, account.ErrMalformedRow{Line: line, Reason: err.Error()}
	}
	return acc, nil
}
