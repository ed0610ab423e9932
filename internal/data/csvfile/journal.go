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

	"github.com/branch-atm-ledger/internal/domain/journal"
	"github.com/branch-atm-ledger/internal/domain/shared"
)

// JournalHeader is written once when the journal file is created.
// Readers also accept the legacy header without the date and time columns.
var JournalHeader = []string{"accNumber", "transactionType", "amount", "newBalance", "date", "time"}

const legacyJournalFields = 4

// Journal implements journal.Repository as an append-only CSV file
type Journal struct {
	path   string
	logger *slog.Logger
}

// NewJournal creates a CSV journal at path
func NewJournal(logger *slog.Logger, path string) journal.Repository {
	return &Journal{
		path:   path,
		logger: logger,
	}
}

// Append writes one row, creating the file with its header if needed
func (j *Journal) Append(ctx context.Context, entry *journal.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat journal: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(JournalHeader); err != nil {
			return fmt.Errorf("failed to write journal header: %w", err)
		}
	}
	if err := w.Write([]string{
		strconv.FormatInt(entry.AccountNumber, 10),
		string(entry.Type),
		strconv.FormatInt(entry.Amount, 10),
		strconv.FormatInt(entry.NewBalance, 10),
		entry.Date,
		entry.Time,
	}); err != nil {
		return fmt.Errorf("failed to write journal entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush journal: %w", err)
	}
	return nil
}

// Recent scans the whole file once, keeping a sliding window of the account's entries
func (j *Journal) Recent(ctx context.Context, accountNumber int64, limit int) ([]*journal.Entry, error) {
	f, err := os.Open(j.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	window := journal.NewWindow(limit)
	first := true
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				j.logger.Warn("Skipping unreadable journal row", "path", j.path, "error", err)
				continue
			}
			return nil, fmt.Errorf("failed to read journal: %w", err)
		}
		if first {
			first = false
			continue // header
		}
		if len(row) < legacyJournalFields {
			continue
		}

		number, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
		if err != nil || number != accountNumber {
			continue
		}

		entry, err := parseJournalRow(number, row)
		if err != nil {
			j.logger.Warn("Skipping malformed journal row", "path", j.path, "account_number", number, "error", err)
			continue
		}
		window.Push(entry)
	}

	return window.Entries(), nil
}

func parseJournalRow(number int64, row []string) (*journal.Entry, error) {
	txType, err := shared.ParseTransactionType(strings.TrimSpace(row[1]))
	if err != nil {
		return nil, err
	}
	amount, err := strconv.ParseInt(strings.TrimSpace(row[2]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	newBalance, err := strconv.ParseInt(strings.TrimSpace(row[3]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid new balance: %w", err)
	}

	entry := &journal.Entry{
		AccountNumber: number,
		Type:          txType,
		Amount:        amount,
		NewBalance:    newBalance,
	}
	if len(row) >= len(JournalHeader) {
		entry.Date = row[4]
		entry.Time = row[5]
	}
	return entry, nil
}
