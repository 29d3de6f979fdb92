// Command tennisscored is the TennisScore match service.
// It records points over HTTP, serves scores, and streams live updates.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tennisscore/tennisscore/internal/api"
	"github.com/tennisscore/tennisscore/internal/archive"
	"github.com/tennisscore/tennisscore/internal/live"
	"github.com/tennisscore/tennisscore/internal/matches"
	"github.com/tennisscore/tennisscore/internal/platform"
	"github.com/tennisscore/tennisscore/internal/recorder"
	"github.com/tennisscore/tennisscore/pkg/config"
	"github.com/tennisscore/tennisscore/pkg/scoring"
	"github.com/tennisscore/tennisscore/pkg/surface"
)

// loadConfig reads the YAML config named by TENNISSCORE_CONFIG (or found
// from the working directory) and applies environment overrides.
func loadConfig() (*config.Config, string, error) {
	path := os.Getenv("TENNISSCORE_CONFIG")
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			path = config.FindConfigFile(cwd)
		}
	}

	cfg := config.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, "", err
		}
	}

	cfg.Server.Port = envOrDefault("PORT", cfg.Server.Port)
	cfg.Server.APIKey = envOrDefault("API_KEY", cfg.Server.APIKey)
	if cfg.Database.URL == "" {
		cfg.Database.URL = "postgres://localhost:5432/tennisscore?sslmode=disable"
	}
	cfg.Database.URL = envOrDefault("DATABASE_URL", cfg.Database.URL)
	cfg.Storage.Backend = envOrDefault("STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.Path = envOrDefault("LOCAL_STORAGE_PATH", cfg.Storage.Path)
	cfg.Storage.Bucket = envOrDefault("STORAGE_BUCKET", cfg.Storage.Bucket)
	return cfg, path, cfg.Validate()
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, cfgPath, err := loadConfig()
	if err != nil {
		fatal("load config", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		fatal("open database", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		fatal("ping database", err)
	}

	version, err := platform.AutoMigrate(db)
	if err != nil {
		fatal("migrate database", err)
	}
	slog.Info("database ready", "schema_version", version)

	storage, err := archive.New(ctx, cfg.Storage)
	if err != nil {
		fatal("open archive storage", err)
	}
	if c, ok := storage.(io.Closer); ok {
		defer c.Close()
	}

	// Initialize services
	store := matches.NewStore(db)
	cache := api.NewScoreCacheFromEnv(cfg.Server.CacheSize)

	var rec *recorder.Service
	hub := live.New(func(ctx context.Context, matchID string) (any, error) {
		return snapshot(ctx, store, rec, matchID)
	})
	rec = recorder.NewService(store,
		recorder.WithCache(cache),
		recorder.WithPublisher(hub),
		recorder.WithArchive(storage),
	)

	handler := api.NewHandler(store, rec, hub, cfg.Match.DefaultFormat, cfg.Server.APIKey)

	// Set up HTTP routes
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.HandleFunc("GET /healthz", healthHandler(db))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           api.CORS(cfg.Server.CORSOrigins...)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go hub.Run(ctx)

	if cfgPath != "" {
		go func() {
			err := config.Watch(ctx, cfgPath, func(next *config.Config) {
				handler.SetDefaultFormat(next.Match.DefaultFormat)
				slog.Info("default match format updated", "format", next.Match.DefaultFormat.String())
			})
			if err != nil {
				slog.Error("config watch stopped", "path", cfgPath, "err", err)
			}
		}()
	}

	go func() {
		slog.Info("starting tennisscored", "port", cfg.Server.Port, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("listen", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
	}
}

// snapshot is what a live subscriber sees on connect: the current report
// of the match.
func snapshot(ctx context.Context, store *matches.Store, rec *recorder.Service, matchID string) (any, error) {
	m, err := store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	sc, err := rec.Score(ctx, matchID)
	if err != nil {
		return nil, err
	}
	report := &surface.Report{MatchID: matchID, Format: m.Format, Score: sc}
	if !sc.IsComplete() {
		if report.Next, err = scoring.Classify(sc, m.Format); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
