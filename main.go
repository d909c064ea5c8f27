package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"empowerher/api"
	"empowerher/config"
	"empowerher/db"
	_ "empowerher/docs" // Import for side effect: registers swagger spec via init()
	"empowerher/logger"
	"empowerher/progress"
)

// @title           EmpowerHer API
// @version         1.0.0

// @description     ## EmpowerHer API
// @description
// @description     Backend for a training app covering legal rights, voice assertiveness and self defense.
// @description     Learners complete lessons, chapters and daily challenges; each completion earns points,
// @description     advances a daily streak, raises the level every 200 points and may unlock badges.
// @description
// @description     **Progress is device-local.** There is one stats record per deployment. Signing in is optional
// @description     and only changes the profile shown; every progress route works without a token.
// @description
// @description     **Records:** `/entities/{type}` exposes the raw record store (TrainingProgress, ActivityLog,
// @description     EmergencyContact, ...). Each record gets a server assigned `id`, `createdAt` and `updatedAt`.
// @description
// @description     **Content Querying (`content_query` parameter):**
// @description     Each value is `path operator value` or a logical `and`/`or` between two conditions.
// @description     *   `path`: dot-separated field path, e.g. `module_type` or `choices_made.0`.
// @description     *   `operator`: `equals`, `notequals`, `greaterthan`, `lessthan`, `greaterthanorequals`, `lessthanorequals`,
// @description         `contains`, `startswith`, `endswith`. String operators accept an `-insensitive` suffix.
// @description     *   `value`: numbers, `true`/`false` and `null` are typed; anything else is a string. Quote strings to keep spaces exact.
// @description
// @description     Example, completed legal rights lessons:
// @description     `?content_query=module_type equals legal_rights&content_query=and&content_query=completion_percentage equals 100`

// @license.name  MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	boot, err := logger.New("dev")
	if err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: failed to build logger: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		boot.Fatal("CRITICAL: failed to load configuration", "error", err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		boot.Fatal("CRITICAL: failed to build logger", "log_mode", cfg.LogMode, "error", err)
	}
	defer log.Sync()
	cfg.Log(log)

	// --- Record Store ---
	ctx := context.Background()
	backend, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal("CRITICAL: failed to open record store", "storage", cfg.Storage, "error", err)
	}
	store := db.NewStore(backend, cfg.KeyPrefix, log)

	// --- Progress ---
	rules, err := progress.LoadRuleSet(cfg.BadgeRulesFile)
	if err != nil {
		log.Fatal("CRITICAL: failed to load badge rules", "file", cfg.BadgeRulesFile, "error", err)
	}
	evaluator := progress.NewEvaluator(rules.Rules, log)
	ledger := progress.NewLedger(evaluator, log, progress.WithLocation(cfg.Location))
	svc := progress.NewService(store, ledger, rules, log)

	router := api.SetupRouter(store, svc, cfg, log)

	// --- Start Server ---
	listenAddr := net.JoinHostPort(cfg.ListenAddress, cfg.ListenPort)
	server := &http.Server{
		Addr:              listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "address", listenAddr, "badges", len(rules.Badges), "rules", len(rules.Rules))
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = store.Close()
			log.Fatal("CRITICAL: server failed to start", "address", listenAddr, "error", err)
		}
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	}

	if err := store.Close(); err != nil {
		log.Error("failed to close record store", "error", err)
	}
}

// openBackend connects the storage backend selected by --storage.
func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (db.Backend, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage, progress is lost on restart")
		return db.NewMemoryBackend(), nil
	case config.StorageFile:
		return db.NewFileBackend(cfg.DbFilePath, cfg.EnableBackup, log)
	case config.StorageSQLite:
		return db.OpenSQLiteBackend(ctx, cfg.SqlitePath)
	case config.StorageRedis:
		return db.OpenRedisBackend(ctx, db.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case config.StoragePostgres:
		return db.OpenPostgresBackend(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage backend '%s'", cfg.Storage)
	}
}
