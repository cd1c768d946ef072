//go:generate go run go.uber.org/mock/mockgen -source=message_index.go -destination=../mocks/mock_message_index.go -package=mocks
package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"sayit/domain"

	"github.com/blugelabs/bluge"
	"github.com/blugelabs/bluge/analysis/analyzer"
	"github.com/google/uuid"
)

type IMessageIndex interface {
	Index(message domain.Message) error
	Delete(id uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]uuid.UUID, error)
}

const textField = "text"

// MessageIndex is a full-text index over recipient and content.
// Documents only carry the id; the repository stays the source of truth.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) MessageIndex {
	return MessageIndex{writer: writer, log: log}
}

func (m MessageIndex) Index(message domain.Message) error {
	standard := analyzer.NewStandardAnalyzer()
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField(textField, message.Recipient+" "+message.Content).WithAnalyzer(standard))
	if err := m.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("indexing message %s: %w", message.ID, err)
	}
	return nil
}

func (m MessageIndex) Delete(id uuid.UUID) error {
	if err := m.writer.Delete(bluge.Identifier(id.String())); err != nil {
		return fmt.Errorf("removing message %s from index: %w", id, err)
	}
	return nil
}

// Search returns the ids of messages matching every term of query, best match first.
func (m MessageIndex) Search(ctx context.Context, query string, limit int) ([]uuid.UUID, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	reader, err := m.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("opening index reader: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			m.log.Warn("Failed to close index reader", "error", err)
		}
	}()

	match := bluge.NewMatchQuery(query).
		SetField(textField).
		SetAnalyzer(analyzer.NewStandardAnalyzer()).
		SetOperator(bluge.MatchQueryOperatorAnd)
	results, err := reader.Search(ctx, bluge.NewTopNSearch(limit, match))
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	var ids []uuid.UUID
	next, err := results.Next()
	for err == nil && next != nil {
		var id uuid.UUID
		visitErr := next.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				id, err = uuid.ParseBytes(value)
				return false
			}
			return true
		})
		if visitErr != nil {
			return nil, fmt.Errorf("reading search hit: %w", visitErr)
		}
		if err != nil {
			return nil, fmt.Errorf("reading search hit: %w", err)
		}
		ids = append(ids, id)
		next, err = results.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("iterating search hits: %w", err)
	}
	return ids, nil
}
