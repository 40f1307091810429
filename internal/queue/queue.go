package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/USSTM/wms-backend/internal/config"
	"github.com/USSTM/wms-backend/internal/logging"
	"github.com/USSTM/wms-backend/internal/storage"
	"github.com/hibiken/asynq"
)

type TaskQueue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

func NewQueue(cfg *config.RedisConfig) (*TaskQueue, error) {
	client := asynq.NewClient(redisOpt(cfg))

	// Activate and test the connection
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis queue: %w", err)
	}

	logging.Info("Connected to Redis task queue")

	return &TaskQueue{client: client, inspector: asynq.NewInspector(redisOpt(cfg))}, nil
}

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

func (q *TaskQueue) Enqueue(taskType string, data interface{}, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	task := asynq.NewTask(taskType, payload, opts...)

	return q.client.Enqueue(task)
}

func (q *TaskQueue) Close() error {
	return errors.Join(q.client.Close(), q.inspector.Close())
}

const (
	TypeDocumentPersist = "refdata:persist"

	criticalQueue = "critical"
	listPageSize  = 100
)

// DocumentPersistPayload carries a whole serialized collection. Version
// orders writes of the same kind; zero means unversioned.
type DocumentPersistPayload struct {
	Kind    storage.Kind    `json:"kind"`
	Body    json.RawMessage `json:"body"`
	Version int64           `json:"version,omitempty"`
}

// Persister hands repository writes to the worker instead of writing them
// inline. Tasks go to the critical queue and are retried by asynq.
type Persister struct {
	queue *TaskQueue

	mu   sync.Mutex
	last int64
}

func NewPersister(q *TaskQueue) *Persister {
	return &Persister{queue: q}
}

// nextVersion is wall-clock nanoseconds, forced to increase within the
// process.
func (p *Persister) nextVersion() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := time.Now().UnixNano()
	if v <= p.last {
		v = p.last + 1
	}
	p.last = v
	return v
}

func (p *Persister) Persist(ctx context.Context, kind storage.Kind, body []byte) error {
	version := p.nextVersion()
	info, err := p.queue.Enqueue(TypeDocumentPersist,
		DocumentPersistPayload{Kind: kind, Body: body, Version: version},
		asynq.Queue(criticalQueue),
		asynq.MaxRetry(10),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s persist: %w", kind, err)
	}
	logging.Debug("Enqueued document persist", "kind", kind, "version", version, "task_id", info.ID)
	return nil
}

// Pending reports whether a persist task for kind is waiting, running or
// due for a retry on the critical queue.
func (p *Persister) Pending(ctx context.Context, kind storage.Kind) (bool, error) {
	inspector := p.queue.inspector
	lists := []func(string, ...asynq.ListOption) ([]*asynq.TaskInfo, error){
		inspector.ListPendingTasks,
		inspector.ListActiveTasks,
		inspector.ListScheduledTasks,
		inspector.ListRetryTasks,
	}
	for _, list := range lists {
		for page := 1; ; page++ {
			if err := ctx.Err(); err != nil {
				return false, err
			}
			tasks, err := list(criticalQueue, asynq.PageSize(listPageSize), asynq.Page(page))
			if errors.Is(err, asynq.ErrQueueNotFound) {
				return false, nil
			}
			if err != nil {
				return false, fmt.Errorf("failed to list persist tasks: %w", err)
			}
			for _, task := range tasks {
				if task.Type == TypeDocumentPersist && payloadKind(task.Payload) == kind {
					return true, nil
				}
			}
			if len(tasks) < listPageSize {
				break
			}
		}
	}
	return false, nil
}

func payloadKind(payload []byte) storage.Kind {
	var p struct {
		Kind storage.Kind `json:"kind"`
	}
	_ = json.Unmarshal(payload, &p)
	return p.Kind
}

type Worker struct {
	server *asynq.Server
	store  storage.DocumentStore
}

func NewWorker(cfg *config.RedisConfig, store storage.DocumentStore) *Worker {
	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			// one writer keeps documents in enqueue order within a queue
			Concurrency: 1,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logging.Error("process task failed", "type", task.Type(), "error", err)
			}),
		},
	)

	return &Worker{
		server: server,
		store:  store,
	}
}

func (w *Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeDocumentPersist, w.HandleDocumentPersist)
	return mux
}

func (w *Worker) Start() error {
	return w.server.Start(w.Mux())
}

// Run blocks until the process receives a termination signal.
func (w *Worker) Run() error {
	return w.server.Run(w.Mux())
}

func (w *Worker) Close() {
	if w.server != nil {
		w.server.Shutdown()
	}
}

func (w *Worker) HandleDocumentPersist(ctx context.Context, t *asynq.Task) error {
	var p DocumentPersistPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	if !p.Kind.Valid() {
		return fmt.Errorf("unknown document kind %q: %w", p.Kind, asynq.SkipRetry)
	}

	if p.Version > 0 {
		stored, err := w.storedVersion(ctx, p.Kind)
		if err != nil {
			return err
		}
		if p.Version < stored {
			logging.Info("Skipping superseded reference document",
				"kind", p.Kind, "version", p.Version, "stored_version", stored)
			return nil
		}
		// version before body; a retry of this task is not older than itself
		if err := w.store.Put(ctx, p.Kind.VersionDocument(), []byte(strconv.FormatInt(p.Version, 10))); err != nil {
			return fmt.Errorf("store.Put version failed: %w", err)
		}
	}

	logging.Info("Persisting reference document", "kind", p.Kind, "version", p.Version, "bytes", len(p.Body))
	if err := w.store.Put(ctx, p.Kind.Document(), p.Body); err != nil {
		return fmt.Errorf("store.Put failed: %w", err)
	}
	return nil
}

// storedVersion is the version of the last versioned write of kind, or zero.
func (w *Worker) storedVersion(ctx context.Context, kind storage.Kind) (int64, error) {
	data, err := w.store.Get(ctx, kind.VersionDocument())
	if errors.Is(err, storage.ErrDocumentNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store.Get version failed: %w", err)
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		logging.Warn("Ignoring unreadable document version", "kind", kind, "error", err)
		return 0, nil
	}
	return v, nil
}
