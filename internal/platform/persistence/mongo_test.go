package persistence

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestMongoDB_DatabaseAndClose(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	// Connect is lazy, so no server is needed until the first operation
	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://localhost:27017"))
	require.NoError(t, err)

	mdb := &MongoDB{
		logger:   logger,
		client:   client,
		database: client.Database("atm_journal"),
	}
	assert.Equal(t, "atm_journal", mdb.Database().Name())

	require.NoError(t, mdb.Close(ctx))
	assert.Contains(t, buf.String(), "Closed MongoDB connection")
}
