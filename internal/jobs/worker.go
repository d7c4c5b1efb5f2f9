package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	portsrepo "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/repositories"
	portssvc "github.com/LoganSeven/publik-famille-demo-sub017/internal/core/ports/services"
)

// Worker wraps the Asynq server processing campaign tasks.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

// WorkerConfig collects dependencies required to bootstrap the worker.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Concurrency int
	Logger      *slog.Logger
	Services    *portssvc.ServiceContainer
	Repos       portsrepo.RepositoryProvider
}

// NewWorker constructs a Worker instance.
func NewWorker(cfg WorkerConfig) *Worker {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			QueueCampaigns: 1,
		},
	})
	handlers := &taskHandlers{services: cfg.Services, repos: cfg.Repos, logger: cfg.Logger}
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypePoolRun, handlers.handlePoolRun)
	mux.HandleFunc(TaskTypeReplayError, handlers.handleReplayError)
	return &Worker{server: srv, mux: mux, logger: cfg.Logger}
}

// Run starts processing jobs until context cancellation.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("worker: not configured")
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

type taskHandlers struct {
	services *portssvc.ServiceContainer
	repos    portsrepo.RepositoryProvider
	logger   *slog.Logger
}

func (h *taskHandlers) handlePoolRun(ctx context.Context, t *asynq.Task) error {
	var payload PoolRunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	h.logger.Info("running pool task", slog.String("pool", payload.PoolID))
	return h.services.CampaignRunner.RunPool(ctx, payload.PoolID)
}

func (h *taskHandlers) handleReplayError(ctx context.Context, t *asynq.Task) error {
	var payload ReplayErrorPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	line, err := h.repos.DraftJournalLineRepo.FindDraftLineByID(ctx, payload.LineID)
	if err != nil {
		return err
	}
	h.logger.Info("replaying errored line",
		slog.String("line", line.ID),
		slog.String("slug", line.Slug),
		slog.String("user", line.UserExternalID))
	_, err = h.services.LineBuilder.ReplayError(ctx, *line)
	return err
}

// Client submits campaign tasks to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueuePoolRun enqueues a pool run.
func (c *Client) EnqueuePoolRun(ctx context.Context, payload PoolRunPayload) (*asynq.TaskInfo, error) {
	task, err := NewPoolRunTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueCampaigns))
}

// EnqueueReplayError enqueues an error replay.
func (c *Client) EnqueueReplayError(ctx context.Context, payload ReplayErrorPayload) (*asynq.TaskInfo, error) {
	task, err := NewReplayErrorTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueCampaigns))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
