package repositories

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sayit/domain"
	"sayit/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newMessage(content, recipient string, at time.Time) domain.Message {
	return domain.Message{
		ID:        uuid.New(),
		Content:   content,
		Recipient: recipient,
		CardColor: domain.CardColors[0],
		CreatedAt: at.UTC(),
	}
}

// testMessageRepository runs the behaviour every backend must share.
func testMessageRepository(t *testing.T, newRepository func(t *testing.T) IMessageRepository) {
	ctx := context.Background()
	at := time.Date(2025, 2, 14, 9, 0, 0, 0, time.UTC)

	t.Run("latest messages come newest first", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)
		alice := newMessage("first", "Alice", at)
		bob := newMessage("second", "Bob", at.Add(time.Minute))
		clara := newMessage("third", "Clara", at.Add(2*time.Minute))
		for _, message := range []domain.Message{bob, clara, alice} {
			req.NoError(repository.StoreMessage(ctx, message))
		}

		messages, err := repository.GetLatestMessages(ctx, 10)
		req.NoError(err)
		req.Equal([]domain.Message{clara, bob, alice}, messages)
	})

	t.Run("limit keeps the newest", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)
		for i := range 5 {
			req.NoError(repository.StoreMessage(ctx, newMessage("hello", "Someone", at.Add(time.Duration(i)*time.Second))))
		}

		messages, err := repository.GetLatestMessages(ctx, 2)
		req.NoError(err)
		req.Len(messages, 2)
		req.Equal(at.Add(4*time.Second), messages[0].CreatedAt)
		req.Equal(at.Add(3*time.Second), messages[1].CreatedAt)
	})

	t.Run("same instant keeps both messages", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)
		req.NoError(repository.StoreMessage(ctx, newMessage("one", "A", at)))
		req.NoError(repository.StoreMessage(ctx, newMessage("two", "B", at)))

		messages, err := repository.GetLatestMessages(ctx, 10)
		req.NoError(err)
		req.Len(messages, 2)
	})

	t.Run("empty store", func(t *testing.T) {
		messages, err := newRepository(t).GetLatestMessages(ctx, 10)
		require.NoError(t, err)
		require.Empty(t, messages)
	})

	t.Run("get then delete", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)
		message := newMessage("bye", "Dan", at)
		req.NoError(repository.StoreMessage(ctx, message))

		fetched, err := repository.GetMessage(ctx, message.ID)
		req.NoError(err)
		req.Equal(message, fetched)

		req.NoError(repository.DeleteMessage(ctx, message.ID))
		_, err = repository.GetMessage(ctx, message.ID)
		req.ErrorIs(err, errors.ErrMessageNotFound)
		req.ErrorIs(repository.DeleteMessage(ctx, message.ID), errors.ErrMessageNotFound)

		messages, err := repository.GetLatestMessages(ctx, 10)
		req.NoError(err)
		req.Empty(messages)
	})

	t.Run("unknown id", func(t *testing.T) {
		req := require.New(t)
		repository := newRepository(t)
		_, err := repository.GetMessage(ctx, uuid.New())
		req.ErrorIs(err, errors.ErrMessageNotFound)
		req.ErrorIs(repository.DeleteMessage(ctx, uuid.New()), errors.ErrMessageNotFound)
	})
}

func TestBadgerMessageRepository(t *testing.T) {
	testMessageRepository(t, func(t *testing.T) IMessageRepository {
		db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		return NewMessageRepository(db, slog.Default())
	})
}

func TestSQLiteMessageRepository(t *testing.T) {
	testMessageRepository(t, func(t *testing.T) IMessageRepository {
		db, err := OpenSQLite(filepath.Join(t.TempDir(), "sayit.db"), slog.Default())
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		return NewSQLiteMessageRepository(db, slog.Default())
	})
}

func TestOpenSQLite_MigrationsAreIdempotent(t *testing.T) {
	req := require.New(t)
	path := filepath.Join(t.TempDir(), "sayit.db")
	db, err := OpenSQLite(path, slog.Default())
	req.NoError(err)
	req.NoError(db.Close())

	db, err = OpenSQLite(path, slog.Default())
	req.NoError(err)
	defer db.Close()

	var applied int
	req.NoError(db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	req.Equal(len(migrations), applied)
}

func TestMongoMessageRepository(t *testing.T) {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	testMessageRepository(t, func(t *testing.T) IMessageRepository {
		ctx := context.Background()
		client, err := ConnectMongo(ctx, uri)
		require.NoError(t, err)
		db := client.Database("sayit_test_" + uuid.NewString()[:8])
		t.Cleanup(func() {
			_ = db.Drop(ctx)
			_ = client.Disconnect(ctx)
		})
		return NewMongoMessageRepository(db, slog.Default())
	})
}
