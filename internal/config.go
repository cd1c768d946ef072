package internal

import (
	"fmt"
	"time"
)

// Storage backends selectable with STORAGE_BACKEND.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

type Config struct {
	Host        string `env:"HOST,default=0.0.0.0"`
	Port        int    `env:"PORT,default=5000"`
	FrontendURL string `env:"FRONTEND_URL,default=http://localhost:3000"`
	LogLevel    string `env:"LOG_LEVEL,default=INFO"`

	StorageBackend   string `env:"STORAGE_BACKEND,default=badger"`
	BadgerFilepath   string `env:"BADGER_FILEPATH,default=./data/badger"`
	SQLiteFilepath   string `env:"SQLITE_FILEPATH,default=./data/sayit.db"`
	MongoURI         string `env:"MONGODB_URI"`
	MongoDatabase    string `env:"MONGODB_DATABASE,default=sayit"`
	BlugeFilepath    string `env:"BLUGE_FILEPATH,default=./data/bluge"`
	DebugInspectPort int    `env:"DEBUG_INSPECT_PORT,default=8081"`

	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	GeminiModel       string        `env:"GEMINI_MODEL,default=gemini-2.5-flash"`
	ClassifierTimeout time.Duration `env:"CLASSIFIER_TIMEOUT,default=5s"`
	ModerationWords   string        `env:"MODERATION_WORDS_FILE"`
	CharReplacement   string        `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
	ModerateRecipient bool          `env:"MODERATE_RECIPIENT,default=true"`
	FeedLimit         int           `env:"FEED_LIMIT,default=100"`

	AdminPasswordHash  string        `env:"ADMIN_PASSWORD_HASH"`
	AdminTokenSecret   string        `env:"ADMIN_TOKEN_SECRET"`
	AdminTokenDuration time.Duration `env:"ADMIN_TOKEN_DURATION,default=1h"`

	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT,default=10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT,default=15s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT,default=60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT,default=10s"`
}

// Validate checks the combinations go-env cannot express with tags.
func (c Config) Validate() error {
	switch c.StorageBackend {
	case BackendBadger, BackendSQLite:
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required when STORAGE_BACKEND=%s", BackendMongo)
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.FeedLimit <= 0 {
		return fmt.Errorf("FEED_LIMIT must be positive, got %d", c.FeedLimit)
	}
	if c.AdminPasswordHash != "" && c.AdminTokenSecret == "" {
		return fmt.Errorf("ADMIN_TOKEN_SECRET is required when ADMIN_PASSWORD_HASH is set")
	}
	return nil
}

// AdminEnabled reports whether the admin routes should be exposed.
func (c Config) AdminEnabled() bool {
	return c.AdminPasswordHash != ""
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
