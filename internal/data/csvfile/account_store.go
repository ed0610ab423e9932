// Package csvfile provides the comma-separated file implementations of the Ledger Store
// and the transaction journal.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/branch-atm-ledger/internal/domain/account"
)

// AccountsHeader is the required first row of the accounts file
var AccountsHeader = []string{"Account Number", "Password", "Balance", "Account Type", "Overdraft Limit"}

const accountFields = 5

// AccountStore implements account.Store over a single CSV file
type AccountStore struct {
	path   string
	logger *slog.Logger
}

// NewAccountStore creates a CSV Ledger Store at path
func NewAccountStore(logger *slog.Logger, path string) account.Store {
	return &AccountStore{
		path:   path,
		logger: logger,
	}
}

// Load reads every account row in file order. A missing file is an empty ledger.
// Malformed rows are logged and skipped.
func (s *AccountStore) Load(ctx context.Context) ([]*account.Account, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Info("Accounts file not found, starting with an empty ledger", "path", s.path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open accounts file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var accounts []*account.Account
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				s.logger.Warn("Skipping unreadable account row", "path", s.path, "line", line, "error", err)
				continue
			}
			return nil, fmt.Errorf("failed to read accounts file: %w", err)
		}
		if line == 1 {
			continue // header
		}

		acc, err := parseAccountRow(line, row)
		if err != nil {
			s.logger.Warn("Skipping malformed account row", "path", s.path, "line", line, "error", err)
			continue
		}
		accounts = append(accounts, acc)
	}

	s.logger.Debug("Accounts loaded", "path", s.path, "count", len(accounts))
	return accounts, nil
}

// Save rewrites the whole file. Rows go to a temporary file in the same directory
// which then replaces the original, so readers never see a partial table.
func (s *AccountStore) Save(ctx context.Context, accounts []*account.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records := make([][]string, 0, len(accounts)+1)
	records = append(records, AccountsHeader)
	for _, acc := range accounts {
		records = append(records, formatAccountRow(acc))
	}

	if err := writeAtomic(s.path, records); err != nil {
		s.logger.Error("Failed to save accounts", "path", s.path, "error", err)
		return fmt.Errorf("failed to save accounts: %w", err)
	}

	s.logger.Debug("Accounts saved", "path", s.path, "count", len(accounts))
	return nil
}

func parseAccountRow(line int, row []string) (*account.Account, error) {
	if len(row) < accountFields-1 {
		return nil, account.ErrMalformedRow{Line: line, Reason: fmt.Sprintf("expected %d fields, got %d", accountFields, len(row))}
	}

	number, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
	if err != nil {
		return nil, account.ErrMalformedRow{Line: line, Reason: "invalid account number"}
	}
	digest := strings.TrimSpace(row[1])
	balance, err := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
	if err != nil {
		return nil, account.ErrMalformedRow{Line: line, Reason: "invalid balance"}
	}
	kind, err := account.ParseKind(strings.TrimSpace(row[3]))
	if err != nil {
		return nil, account.ErrMalformedRow{Line: line, Reason: err.Error()}
	}

	var limit int64
	if kind == account.KindOverdraft {
		if len(row) < accountFields {
			return nil, account.ErrMalformedRow{Line: line, Reason: "missing overdraft limit"}
		}
		limit, err = strconv.ParseInt(strings.TrimSpace(row[4]), 10, 64)
		if err != nil {
			return nil, account.ErrMalformedRow{Line: line, Reason: "invalid overdraft limit"}
		}
	}

	acc, err := account.New(number, digest, balance, kind, limit)
	if err != nil {
		return nil, account.ErrMalformedRow{Line: line, Reason: err.Error()}
	}
	return acc, nil
}

func formatAccountRow(acc *account.Account) []string {
	var extra int64
	if acc.Kind == account.KindOverdraft {
		extra = acc.OverdraftLimit
	}
	return []string{
		strconv.FormatInt(acc.Number, 10),
		acc.CredentialDigest,
		strconv.FormatInt(acc.Balance, 10),
		acc.Kind.String(),
		strconv.FormatInt(extra, 10),
	}
}

func writeAtomic(path string, records [][]string) (err error) {
	dir := filepath.Dir(path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := csv.NewWriter(tmp)
	if err = w.WriteAll(records); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
