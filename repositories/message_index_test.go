package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"sayit/domain"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) MessageIndex {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewMessageIndex(writer, slog.Default())
}

func TestMessageIndex_Search(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newTestIndex(t)
	at := time.Now()

	birthday := newMessage("Happy birthday, have a great day", "Mom", at)
	thanks := newMessage("Thanks for the coffee", "Sam", at)
	later := newMessage("See you later", "Birthday crew", at)
	for _, message := range []domain.Message{birthday, thanks, later} {
		req.NoError(index.Index(message))
	}

	ids, err := index.Search(ctx, "BIRTHDAY", 10)
	req.NoError(err)
	req.ElementsMatch([]uuid.UUID{birthday.ID, later.ID}, ids)

	ids, err = index.Search(ctx, "coffee thanks", 10)
	req.NoError(err)
	req.Equal([]uuid.UUID{thanks.ID}, ids)

	ids, err = index.Search(ctx, "coffee birthday", 10)
	req.NoError(err)
	req.Empty(ids)

	ids, err = index.Search(ctx, "sam", 10)
	req.NoError(err)
	req.Equal([]uuid.UUID{thanks.ID}, ids)
}

func TestMessageIndex_Delete(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newTestIndex(t)
	message := newMessage("Good luck on the exam", "Lee", time.Now())
	req.NoError(index.Index(message))

	ids, err := index.Search(ctx, "exam", 10)
	req.NoError(err)
	req.Len(ids, 1)

	req.NoError(index.Delete(message.ID))
	ids, err = index.Search(ctx, "exam", 10)
	req.NoError(err)
	req.Empty(ids)
}

func TestMessageIndex_LimitAndBlankQuery(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newTestIndex(t)
	for range 5 {
		req.NoError(index.Index(newMessage("hello there", "You", time.Now())))
	}

	ids, err := index.Search(ctx, "hello", 3)
	req.NoError(err)
	req.Len(ids, 3)

	ids, err = index.Search(ctx, "   ", 3)
	req.NoError(err)
	req.Empty(ids)
}
