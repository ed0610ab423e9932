package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/branch-atm-ledger/internal/domain/journal"
)

const (
	// JournalCollectionName is the name of the journal collection in MongoDB
	JournalCollectionName = "transaction_journal"
)

// Journal implements journal.Repository as an append-only MongoDB collection
type Journal struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewJournal creates a new MongoDB journal
func NewJournal(logger *slog.Logger, db *mongo.Database) journal.Repository {
	return &Journal{
		db:     db,
		logger: logger,
	}
}

// Append inserts one entry. Entries are never updated or deleted.
func (j *Journal) Append(ctx context.Context, entry *journal.Entry) error {
	collection := j.db.Collection(JournalCollectionName)

	if _, err := collection.InsertOne(ctx, entry); err != nil {
		j.logger.Error("Failed to append journal entry",
			"account_number", entry.AccountNumber,
			"type", string(entry.Type),
			"error", err)
		return fmt.Errorf("failed to append journal entry: %w", err)
	}

	return nil
}

// Recent fetches the newest entries for the account and returns them oldest first
func (j *Journal) Recent(ctx context.Context, accountNumber int64, limit int) ([]*journal.Entry, error) {
	collection := j.db.Collection(JournalCollectionName)

	filter := bson.M{"account_number": accountNumber}
	opts := options.Find().
		SetSort(bson.D{{Key: "recorded_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		j.logger.Error("Failed to get journal entries",
			"account_number", accountNumber,
			"error", err)
		return nil, fmt.Errorf("failed to get journal entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*journal.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		j.logger.Error("Failed to decode journal entries",
			"account_number", accountNumber,
			"error", err)
		return nil, fmt.Errorf("failed to decode journal entries: %w", err)
	}

	return oldestFirst(entries), nil
}

// oldestFirst reverses a newest-first result in place
func oldestFirst(entries []*journal.Entry) []*journal.Entry {
	for i, k := 0, len(entries)-1; i < k; i, k = i+1, k-1 {
		entries[i], entries[k] = entries[k], entries[i]
	}
	return entries
}
