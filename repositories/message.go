//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"sayit/domain"
	"sayit/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IMessageRepository interface {
	StoreMessage(ctx context.Context, message domain.Message) error
	GetLatestMessages(ctx context.Context, limit int) ([]domain.Message, error)
	GetMessage(ctx context.Context, id uuid.UUID) (domain.Message, error)
	DeleteMessage(ctx context.Context, id uuid.UUID) error
}

const (
	messagePrefix = "msg:"
	indexPrefix   = "idx:msg:"
	// Upper bound of a 19-digit padded UnixNano, used to start a reverse scan.
	newestSeek = "9999999999999999999"
)

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

type diskMessage struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Recipient string `json:"recipient"`
	CardColor string `json:"cardColor"`
	At        int64  `json:"at"`
}

func messageKey(message domain.Message) []byte {
	return fmt.Appendf(nil, "%s%019d:%s", messagePrefix, message.CreatedAt.UnixNano(), message.ID)
}

func indexKey(id uuid.UUID) []byte {
	return []byte(indexPrefix + id.String())
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{timestamp_padded}:{uuid}" so a lexicographic scan is chronological,
// the uuid separating messages created at the same nanosecond.
// A second key "idx:msg:{uuid}" points back to the primary key for lookups by id.
func (m MessageRepository) StoreMessage(_ context.Context, message domain.Message) error {
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	key := messageKey(message)
	err = m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, bytes); err != nil {
			return err
		}
		return txn.Set(indexKey(message.ID), key)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	return nil
}

// GetLatestMessages returns up to limit messages, newest first.
func (m MessageRepository) GetLatestMessages(_ context.Context, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.Prefix = prefix
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(append(prefix, newestSeek...)); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) == limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d message reached", limit))
				break
			}
			var disk diskMessage
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &disk)
			})
			if err != nil {
				return err
			}
			message, err := toMessage(disk)
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	return messages, nil
}

func (m MessageRepository) GetMessage(_ context.Context, id uuid.UUID) (domain.Message, error) {
	var disk diskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		key, err := primaryKey(txn, id)
		if err != nil {
			return err
		}
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &disk)
		})
	})
	switch {
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return domain.Message{}, errors.ErrMessageNotFound
	case err != nil:
		return domain.Message{}, fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	return toMessage(disk)
}

// DeleteMessage removes both keys of a message in a single transaction.
func (m MessageRepository) DeleteMessage(_ context.Context, id uuid.UUID) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		key, err := primaryKey(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(indexKey(id))
	})
	switch {
	case stderrors.Is(err, badger.ErrKeyNotFound):
		return errors.ErrMessageNotFound
	case err != nil:
		return fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	return nil
}

func primaryKey(txn *badger.Txn, id uuid.UUID) ([]byte, error) {
	item, err := txn.Get(indexKey(id))
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:        message.ID.String(),
		Content:   message.Content,
		Recipient: message.Recipient,
		CardColor: message.CardColor,
		At:        message.CreatedAt.UnixNano(),
	}
}

func toMessage(disk diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(disk.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:        parsedID,
		Content:   disk.Content,
		Recipient: disk.Recipient,
		CardColor: disk.CardColor,
		CreatedAt: time.Unix(0, disk.At).UTC(),
	}, nil
}
