package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"sayit/auth"
	"sayit/infrastructure/http/server"
	"sayit/internal"
	"sayit/moderation"
	"sayit/repositories"
	"sayit/services"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and keeps deferred cleanups ahead of the process exit.
func run() (int, error) {
	// 1. Configuration & Logger
	// A missing .env is fine; real environment variables take precedence.
	_ = godotenv.Load()

	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if config.AdminEnabled() {
		if err := auth.CheckHash(config.AdminPasswordHash); err != nil {
			return exitConfig, fmt.Errorf("ADMIN_PASSWORD_HASH: %w", err)
		}
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Message store
	repository, closeStore, err := openRepository(ctx, config, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer closeStore()

	// 3. Search index
	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()
	index := repositories.NewMessageIndex(blugeWriter, logger)

	// 4. Moderation
	classifier, err := buildClassifier(ctx, config, charReplacement, logger)
	if err != nil {
		return exitConfig, err
	}

	// 5. Services & transport
	boardService := services.NewBoardService(classifier, repository, index, logger,
		services.WithFeedLimit(config.FeedLimit),
		services.WithRecipientModeration(config.ModerateRecipient))

	var issuer *auth.TokenIssuer
	if config.AdminEnabled() {
		issuer, err = auth.NewTokenIssuer(config.AdminTokenSecret, config.AdminTokenDuration)
		if err != nil {
			return exitConfig, fmt.Errorf("ADMIN_TOKEN_SECRET: %w", err)
		}
	} else {
		logger.Info("ADMIN_PASSWORD_HASH not set, delete endpoint disabled")
	}
	authService := services.NewAuthService(config.AdminPasswordHash, issuer, logger)

	address := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	httpServer := &http.Server{
		Addr:         address,
		Handler:      server.NewBoardServer(logger, boardService, authService, issuer, config.FrontendURL),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", address, "frontend", config.FrontendURL, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 7. Graceful shutdown: in-flight requests, classifier calls included, get ShutdownTimeout to finish.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return exitRuntime, fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func openRepository(ctx context.Context, config internal.Config, logger *slog.Logger) (repositories.IMessageRepository, func(), error) {
	switch config.StorageBackend {
	case internal.BackendSQLite:
		db, err := repositories.OpenSQLite(config.SQLiteFilepath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		logger.Info("Using SQLite store", "path", config.SQLiteFilepath)
		return repositories.NewSQLiteMessageRepository(db, logger), func() {
			logger.Info("Closing SQLite...")
			_ = db.Close()
		}, nil

	case internal.BackendMongo:
		client, err := repositories.ConnectMongo(ctx, config.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using MongoDB store", "database", config.MongoDatabase)
		return repositories.NewMongoMessageRepository(client.Database(config.MongoDatabase), logger), func() {
			logger.Info("Disconnecting MongoDB...")
			_ = client.Disconnect(context.Background())
		}, nil

	default:
		db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
		if err != nil {
			return nil, nil, fmt.Errorf("database opening failed: %w", err)
		}
		logger.Info("Using Badger store", "path", config.BadgerFilepath)

		if logger.Enabled(ctx, slog.LevelDebug) {
			startInspector(db, config.DebugInspectPort, logger)
		}
		return repositories.NewMessageRepository(db, logger), func() {
			// Releases the directory lock and flushes memtables.
			logger.Info("Closing BadgerDB...")
			_ = db.Close()
		}, nil
	}
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

func startInspector(db *badger.DB, port int, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/inspect", internal.InspectHandler(db, internal.MessageMapper, "msg:", 500))
	address := net.JoinHostPort("localhost", strconv.Itoa(port))
	logger.Info("Debug Badger inspector available", "url", "http://"+address+"/inspect")
	go func() {
		if err := http.ListenAndServe(address, mux); err != nil {
			logger.Warn("Debug inspector stopped", "error", err)
		}
	}()
}

// buildClassifier chains the local word list, when configured, ahead of Gemini.
func buildClassifier(ctx context.Context, config internal.Config, replacement rune, logger *slog.Logger) (moderation.Classifier, error) {
	var chain []moderation.Classifier

	if config.ModerationWords != "" {
		words, err := moderation.LoadWords(config.ModerationWords)
		if err != nil {
			return nil, fmt.Errorf("moderation words: %w", err)
		}
		moderator, err := moderation.NewModerator(words, replacement, logger)
		if err != nil {
			return nil, fmt.Errorf("moderation words: %w", err)
		}
		logger.Info("Local word list loaded", "words", len(words))
		chain = append(chain, moderator)
	}

	if config.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, remote moderation disabled")
		return moderation.Chain(append(chain, moderation.Static{})...), nil
	}
	gemini, err := moderation.NewGeminiClassifier(ctx, moderation.GeminiConfig{
		APIKey:  config.GeminiAPIKey,
		Model:   config.GeminiModel,
		Timeout: config.ClassifierTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("Gemini moderation enabled", "model", config.GeminiModel, "timeout", config.ClassifierTimeout)
	return moderation.Chain(append(chain, gemini)...), nil
}
