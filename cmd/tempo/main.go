package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tempo/config"
	"tempo/internal/api"
	"tempo/internal/clock"
	"tempo/internal/logging"
	"tempo/internal/notify"
	"tempo/internal/parse"
	"tempo/internal/runner"
	"tempo/internal/scheduler"
	"tempo/internal/storage"
	"tempo/internal/storage/sqlite"
)

const (
	shutdownTimeout   = 10 * time.Second
	defaultConfigPath = "config.json"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	useEnv := flag.Bool("env", false, "Load configuration from environment variables")
	flag.Parse()

	// Load configuration
	var cfg *config.Config
	var err error
	if *useEnv {
		cfg, err = config.LoadFromEnv()
	} else {
		cfg, err = config.Load(*configPath)
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLogger := logging.NewLogger(logging.Options{
		Format:    cfg.Logging.Format,
		Level:     logging.ParseLevel(cfg.Logging.Level),
		QueueSize: cfg.Logging.QueueSize,
	})
	defer closeLogger()

	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return err
	}

	// Initialize database
	logger.Info("Initializing SQLite database", "path", cfg.Database.Path)
	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Parser for condition expressions
	parser := parse.NewRegistry(loc)

	// Seed tasks from configuration
	if err := seedTasks(db, parser, cfg.Tasks, logger); err != nil {
		return err
	}

	// Runner registry
	runners := runner.NewRegistry()
	for _, r := range []runner.Runner{
		runner.NewCommandRunner(0),
		runner.NewWebhookRunner(nil),
		runner.NewLogRunner(logger),
	} {
		if err := runners.Register(logging.NewRunnerLogger(r, logger)); err != nil {
			return fmt.Errorf("failed to register runner: %w", err)
		}
	}

	// Optional Telegram notifier
	var notifier scheduler.Notifier
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
		if err != nil {
			return fmt.Errorf("failed to create notifier: %w", err)
		}
		notifier = tg
	}

	// Start scheduler
	logger.Info("Starting task scheduler",
		"interval", cfg.Scheduler.Interval().String(),
		"timezone", loc.String())
	sched := scheduler.NewScheduler(scheduler.Options{
		Storage:  db,
		Runners:  runners,
		Parser:   parser,
		Notifier: notifier,
		Interval: cfg.Scheduler.Interval(),
		MaxDefer: cfg.Scheduler.MaxDefer(),
		Logger:   logger,
	})
	go sched.Start()

	// REST API
	router := api.NewRouter(api.RouterConfig{
		Storage: db,
		Parser:  parser,
		Clock:   clock.RealClock{},
		APIKey:  cfg.Security.APIKey,
		Logger:  logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "addr", server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("Starting graceful shutdown", "signal", sig.String())

		sched.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		logger.Info("Graceful shutdown complete")
	}

	return nil
}

// seedTasks inserts configured tasks that do not exist yet. Expressions
// are validated up front so a typo fails at startup, not on the first tick.
func seedTasks(db storage.Storage, parser *parse.Registry, tasks []config.TaskConfig, logger *slog.Logger) error {
	ctx := context.Background()
	for _, tc := range tasks {
		if _, err := parser.Parse(tc.Expression); err != nil {
			return fmt.Errorf("task %q: %w", tc.Name, err)
		}

		enabled := true
		if tc.Enabled != nil {
			enabled = *tc.Enabled
		}
		task := &storage.Task{
			Name:       tc.Name,
			Expression: tc.Expression,
			Runner:     tc.Runner,
			Action:     tc.Action,
			Enabled:    enabled,
		}
		err := db.CreateTask(ctx, task)
		if errors.Is(err, storage.ErrTaskExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to seed task %q: %w", tc.Name, err)
		}
		logger.Info("Seeded task", "task", tc.Name, "expression", tc.Expression)
	}
	return nil
}
