package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"sayit/domain"
	"sayit/errors"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{
		name: "create messages",
		sql: `CREATE TABLE messages (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			recipient TEXT NOT NULL,
			card_color TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
	},
	{
		name: "index messages by creation time",
		sql:  `CREATE INDEX idx_messages_created_at ON messages (created_at DESC, id DESC)`,
	},
}

// SQLiteMessageRepository stores messages in a single SQLite table.
// created_at holds UnixNano so ordering matches the Badger key layout.
type SQLiteMessageRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens (or creates) the database at path and applies pending migrations.
func OpenSQLite(path string, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	// Some filesystems refuse WAL; the default journal still works.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		log.Warn("Failed to enable WAL mode, continuing without it", "error", err)
	}
	if err := migrate(db, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func migrate(db *sql.DB, log *slog.Logger) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}
	for i, m := range migrations {
		version := i + 1
		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version).Scan(&count); err != nil {
			return fmt.Errorf("check migration %d: %w", version, err)
		}
		if count > 0 {
			continue
		}
		log.Info("Running migration", "version", version, "name", m.name)
		if _, err := db.Exec(m.sql); err != nil {
			return fmt.Errorf("migration %d (%s): %w", version, m.name, err)
		}
		if _, err := db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("record migration %d: %w", version, err)
		}
	}
	return nil
}

func NewSQLiteMessageRepository(db *sql.DB, log *slog.Logger) SQLiteMessageRepository {
	return SQLiteMessageRepository{db: db, log: log}
}

func (s SQLiteMessageRepository) StoreMessage(ctx context.Context, message domain.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, content, recipient, card_color, created_at) VALUES (?, ?, ?, ?, ?)`,
		message.ID.String(), message.Content, message.Recipient, message.CardColor, message.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	return nil
}

func (s SQLiteMessageRepository) GetLatestMessages(ctx context.Context, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = -1 // no limit in SQLite
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, recipient, card_color, created_at FROM messages
		 ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrStore, err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	return messages, nil
}

func (s SQLiteMessageRepository) GetMessage(ctx context.Context, id uuid.UUID) (domain.Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, content, recipient, card_color, created_at FROM messages WHERE id = ?`, id.String())
	message, err := scanMessage(row)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		return domain.Message{}, errors.ErrMessageNotFound
	case err != nil:
		return domain.Message{}, fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	return message, nil
}

func (s SQLiteMessageRepository) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrStore, err)
	}
	if affected == 0 {
		return errors.ErrMessageNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMessage(row scanner) (domain.Message, error) {
	var (
		id        string
		message   domain.Message
		createdAt int64
	)
	if err := row.Scan(&id, &message.Content, &message.Recipient, &message.CardColor, &createdAt); err != nil {
		return domain.Message{}, err
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return domain.Message{}, err
	}
	message.ID = parsedID
	message.CreatedAt = time.Unix(0, createdAt).UTC()
	return message, nil
}
