package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/kanji-ink/internal/capture"
	"github.com/phrazzld/kanji-ink/internal/config"
	"github.com/phrazzld/kanji-ink/internal/events"
	"github.com/phrazzld/kanji-ink/internal/platform/contentfile"
	"github.com/phrazzld/kanji-ink/internal/platform/gemini"
	"github.com/phrazzld/kanji-ink/internal/platform/postgres"
	"github.com/phrazzld/kanji-ink/internal/redact"
	"github.com/phrazzld/kanji-ink/internal/reference"
	"github.com/phrazzld/kanji-ink/internal/store"
	"github.com/phrazzld/kanji-ink/internal/task"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil when reference content comes from a file bundle.
	db *sql.DB

	referenceStore store.ReferenceStore
	references     *reference.Cache

	taskQueue  *task.TaskQueue
	workerPool *task.WorkerPool

	emitter  *events.InMemoryEventEmitter
	sessions *capture.Manager

	// assessor is nil unless the LLM assessor is enabled.
	assessor task.Assessor
}

// newApplication creates a new application instance with all dependencies
// initialized and the worker pool started.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	if err := app.setupContent(ctx); err != nil {
		app.cleanup()
		return nil, err
	}

	app.references = reference.NewCache(app.referenceStore, logger)
	if len(cfg.Content.Warm) > 0 {
		if err := app.references.Warm(ctx, cfg.Content.WarmConcurrency, cfg.Content.Warm...); err != nil {
			app.cleanup()
			return nil, err
		}
	}

	app.taskQueue = task.NewTaskQueue(cfg.Task.QueueSize, logger)
	app.workerPool = task.NewWorkerPool(app.taskQueue, task.WorkerPoolConfig{
		WorkerCount: cfg.Task.WorkerCount,
	}, logger)

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.emitter.RegisterHandler(events.NewLoggingHandler(logger))

	app.sessions = capture.NewManager(app.references, app.taskQueue, app.emitter, capture.ManagerConfig{
		IdleTimeout: cfg.Capture.IdleTimeout,
	}, logger)

	if cfg.LLM.Enabled {
		assessor, err := gemini.NewAssessor(ctx, logger.With(slog.String("component", "assessor")), cfg.LLM)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to initialize assessor: %w", err)
		}
		app.assessor = assessor
		app.emitter.RegisterHandler(task.NewAssessmentEventHandler(assessor, app.sessions, app.taskQueue, logger))
		logger.Info("assessor initialized", slog.String("model", cfg.LLM.ModelName))
	}

	app.workerPool.Start()

	logger.Info("application initialized",
		slog.Int("worker_count", cfg.Task.WorkerCount),
		slog.Int("queue_size", cfg.Task.QueueSize),
		slog.Int("cached_characters", app.references.Len()))
	return app, nil
}

// setupContent opens the configured reference store.
func (app *application) setupContent(ctx context.Context) error {
	switch app.config.Content.Source {
	case config.ContentSourceFile:
		s, err := contentfile.Load(app.config.Content.File, app.logger)
		if err != nil {
			return err
		}
		app.referenceStore = s

	case config.ContentSourcePostgres:
		db, err := setupAppDatabase(ctx, app.config, app.logger)
		if err != nil {
			return err
		}
		app.db = db
		app.referenceStore = postgres.NewPostgresReferenceStore(db, app.logger)

	default:
		return fmt.Errorf("unknown content source %q", app.config.Content.Source)
	}
	return nil
}

// referenceWriter returns the store as a writer when it supports imports.
func (app *application) referenceWriter() store.ReferenceWriter {
	w, _ := app.referenceStore.(store.ReferenceWriter)
	return w
}

// Run serves HTTP and evicts idle sessions until ctx is canceled, then shuts
// everything down.
func (app *application) Run(ctx context.Context) error {
	sessionsCtx, stopSessions := context.WithCancel(ctx)
	sessionsDone := make(chan struct{})
	go func() {
		defer close(sessionsDone)
		app.sessions.Run(sessionsCtx)
	}()

	err := app.startHTTPServer(ctx, app.setupRouter())

	stopSessions()
	<-sessionsDone
	app.cleanup()

	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources. Queued tasks
// are drained for at most the shutdown timeout.
func (app *application) cleanup() {
	if app.taskQueue != nil {
		app.taskQueue.Close()
	}
	if app.workerPool != nil {
		drained := make(chan struct{})
		go func() {
			app.workerPool.Wait()
			close(drained)
		}()
		select {
		case <-drained:
		case <-time.After(app.config.Server.ShutdownTimeout):
			app.logger.Warn("task queue not drained before shutdown timeout",
				slog.Int("remaining", app.taskQueue.Len()))
		}
		app.workerPool.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
			app.logger.Error("error closing database connection", redact.ErrorAttr(err))
		}
	}

	app.logger.Info("application shutdown completed")
}
