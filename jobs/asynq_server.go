package jobs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/campus-atlas/campus-atlas/internal/auth"
	"github.com/campus-atlas/campus-atlas/internal/platform/httpx"
)

// Worker wraps the Asynq server.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts asynq.RedisClientOpt
	Logger    *slog.Logger
	Ingestor  *Ingestor
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Ingestor == nil {
		return nil, errors.New("jobs: ingestor is required")
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			QueueDefault: 1,
		},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeIngestFile, cfg.Ingestor.HandleIngestFileTask)
	mux.HandleFunc(TaskTypeIngestAll, cfg.Ingestor.HandleIngestAllTask)

	return &Worker{server: srv, mux: mux, logger: cfg.Logger}, nil
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("jobs: worker not configured")
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) (*Client, error) {
	return &Client{client: asynq.NewClient(redisOpts)}, nil
}

// EnqueueIngestFile enqueues a single-file ingest task.
func (c *Client) EnqueueIngestFile(ctx context.Context, payload IngestFilePayload) (*asynq.TaskInfo, error) {
	task, err := NewIngestFileTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// EnqueueIngestAll enqueues a full-directory ingest task.
func (c *Client) EnqueueIngestAll(ctx context.Context) (*asynq.TaskInfo, error) {
	task, err := NewIngestAllTask()
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

// Handler exposes HTTP endpoints for triggering and observing jobs.
type Handler struct {
	client    *Client
	inspector *asynq.Inspector
	logger    *slog.Logger
	mw        auth.Middleware
}

// NewHandler constructs an HTTP handler for jobs endpoints.
func NewHandler(client *Client, inspector *asynq.Inspector, logger *slog.Logger, mw auth.Middleware) *Handler {
	return &Handler{client: client, inspector: inspector, logger: logger, mw: mw}
}

// MountRoutes attaches job routes. Ingest triggers are admin only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/jobs/health", h.health)

	r.Group(func(r chi.Router) {
		r.Use(h.mw.Require(string(auth.RoleAdmin)))
		r.Post("/ingest", h.ingestFile)
		r.Post("/ingest/all", h.ingestAll)
	})
}

func (h *Handler) ingestFile(w http.ResponseWriter, r *http.Request) {
	file := r.URL.Query().Get("file")
	if file == "" {
		httpx.Error(w, http.StatusBadRequest, "File query parameter is required")
		return
	}
	info, err := h.client.EnqueueIngestFile(r.Context(), IngestFilePayload{File: file})
	if err != nil {
		h.logger.Error("enqueue ingest file", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{
		"message": "Data ingestion enqueued",
		"task":    info.ID,
	})
}

func (h *Handler) ingestAll(w http.ResponseWriter, r *http.Request) {
	info, err := h.client.EnqueueIngestAll(r.Context())
	if err != nil {
		h.logger.Error("enqueue ingest all", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{
		"message": "Data ingestion from all files enqueued",
		"task":    info.ID,
	})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if h.inspector == nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"queue":"default","pending":0}`))
		return
	}
	info, err := h.inspector.GetQueueInfo(QueueDefault)
	if err != nil {
		h.logger.Warn("jobs health", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	pending := 0
	queueName := QueueDefault
	if info != nil {
		pending = int(info.Pending)
		queueName = info.Queue
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"queue":"` + queueName + `","pending":` + strconv.Itoa(pending) + `}`))
}
