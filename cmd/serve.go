package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prepmate/prepmate/internal/auth"
	"github.com/prepmate/prepmate/internal/db"
	"github.com/prepmate/prepmate/internal/handlers"
	"github.com/prepmate/prepmate/internal/interview"
	"github.com/prepmate/prepmate/internal/llm"
	"github.com/prepmate/prepmate/internal/logger"
	"github.com/prepmate/prepmate/internal/ratelimit"
	"github.com/prepmate/prepmate/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:          "serve",
	Short:        "Start the HTTP API server",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := getConfig()
		if err != nil {
			return fmt.Errorf("unmarshaling config: %w", err)
		}

		log, err := logger.New(cfg.Logging.JSON, cfg.Logging.Debug)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		defer log.Sync() //nolint:errcheck

		if cfg.Auth.JWTSecret == "" {
			return errors.New("JWT_SECRET is required")
		}
		if cfg.AI.Gemini.APIKey == "" {
			return errors.New("GEMINI_API_KEY is required")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer store.Close()

		files, err := storage.NewFilesystemStore(cfg.Storage.Dir)
		if err != nil {
			return fmt.Errorf("preparing upload storage: %w", err)
		}

		ai, err := llm.NewGeminiClient(ctx, cfg.AI.Gemini.APIKey, cfg.AI.Gemini.Model, cfg.AI.Gemini.EmbeddingModel)
		if err != nil {
			return fmt.Errorf("creating gemini client: %w", err)
		}

		tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		if err != nil {
			return fmt.Errorf("creating token manager: %w", err)
		}

		interviews := interview.NewService(store, ai, log, cfg.Documents.ResumeChunkLimit)

		router := handlers.NewRouter(handlers.RouterConfig{
			Auth: &handlers.AuthHandler{Store: store, Tokens: tokens, Log: log},
			Documents: &handlers.DocumentHandler{
				Store:         store,
				Files:         files,
				Log:           log,
				MaxFileSize:   cfg.Documents.MaxFileSize,
				WordsPerChunk: cfg.Documents.WordsPerChunk,
			},
			Chat:         &handlers.ChatHandler{Interviews: interviews, Log: log},
			Middleware:   &handlers.Middleware{Tokens: tokens, Log: log},
			APILimiter:   ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window),
			LoginLimiter: ratelimit.New(cfg.RateLimit.LoginRequests, cfg.RateLimit.LoginWindow),
		})

		srv := &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Address, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      2 * time.Minute,
			IdleTimeout:       time.Minute,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("server listening",
				zap.String("addr", srv.Addr),
				zap.String("driver", cfg.Database.Driver),
				zap.String("model", cfg.AI.Gemini.Model),
			)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("serving: %w", err)
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// openStore picks the persistence backend. Postgres is the production
// path; sqlite exists for single-binary deployments and local hacking.
func openStore(cfg *Config) (db.Store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.URL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres driver")
		}
		return db.NewPostgresStore(cfg.Database.URL)
	case "sqlite":
		return db.NewSQLiteStore(cfg.Database.Path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
