package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"assetcore/pkg/domain"
)

// TaskKind names a deferred side effect produced by a workflow transition.
type TaskKind string

// Side-effect kinds handled by dispatchers.
const (
	TaskNotification TaskKind = "notification"
	TaskDocument     TaskKind = "document"
)

// TaskStatus tracks a dispatched task through its lifecycle.
type TaskStatus string

// Task lifecycle states.
const (
	TaskStatusQueued    TaskStatus = "queued"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusSucceeded TaskStatus = "succeeded"
	TaskStatusFailed    TaskStatus = "failed"
)

// DocumentRequest asks a dispatcher to render a document for the record at
// Collection/Key and write the resulting reference back onto it.
type DocumentRequest struct {
	Kind       DocumentKind
	Collection string
	Key        string
	Data       DocumentData
}

// Task is one deferred side effect. Exactly one payload field is set,
// matching Kind.
type Task struct {
	Kind         TaskKind
	Notification *Message
	Document     *DocumentRequest
}

// TaskRecord is the observable state of a dispatched task.
type TaskRecord struct {
	ID          string     `json:"id"`
	Kind        TaskKind   `json:"kind"`
	Status      TaskStatus `json:"status"`
	Ref         string     `json:"ref,omitempty"`
	Error       string     `json:"error,omitempty"`
	EnqueuedAt  time.Time  `json:"enqueued_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Dispatcher accepts workflow side effects for execution. Implementations
// never fail the workflow transition that produced the task: execution
// failures surface on the task record and in logs only.
type Dispatcher interface {
	Dispatch(ctx context.Context, task Task) (TaskRecord, error)
	Task(id string) (TaskRecord, bool)
}

// DispatchOption configures ambient concerns shared by both dispatcher
// implementations.
type DispatchOption func(*dispatchConfig)

type dispatchConfig struct {
	logger  domain.Logger
	metrics MetricsRecorder
	clock   Clock
}

// WithDispatchLogger overrides the dispatcher logger.
func WithDispatchLogger(logger domain.Logger) DispatchOption {
	return func(c *dispatchConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDispatchMetrics overrides the dispatcher metrics recorder.
func WithDispatchMetrics(metrics MetricsRecorder) DispatchOption {
	return func(c *dispatchConfig) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// WithDispatchClock overrides the dispatcher time source.
func WithDispatchClock(clock Clock) DispatchOption {
	return func(c *dispatchConfig) {
		if clock != nil {
			c.clock = clock
		}
	}
}

func newDispatchConfig(opts []DispatchOption) dispatchConfig {
	cfg := dispatchConfig{
		logger:  domain.NopLogger(),
		metrics: noopMetrics{},
		clock:   ClockFunc(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

const dispatchQueueSize = 32

// Worker executes tasks on a background goroutine fed by a bounded queue.
type Worker struct {
	exec taskExecutor
	cfg  dispatchConfig

	mu      sync.RWMutex
	tasks   map[string]*TaskRecord
	started bool

	queue  chan workItem
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type workItem struct {
	id   string
	task Task
}

// NewWorker constructs a stopped worker. Call Start before dispatching.
func NewWorker(store domain.Store, notifier Notifier, renderer DocumentRenderer, opts ...DispatchOption) *Worker {
	cfg := newDispatchConfig(opts)
	return &Worker{
		exec:  taskExecutor{store: store, notifier: notifier, renderer: renderer},
		cfg:   cfg,
		tasks: make(map[string]*TaskRecord),
		queue: make(chan workItem, dispatchQueueSize),
	}
}

// Start launches the processing goroutine. Further calls are no-ops until
// Stop returns.
func (w *Worker) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.wg.Add(1)
	go w.loop()
}

// Stop cancels processing and waits for the goroutine to exit or the context
// to expire.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil
	}
	w.cancel()
	w.mu.Unlock()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		w.mu.Lock()
		w.started = false
		w.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch implements Dispatcher. Enqueueing never blocks: a full queue
// returns an error the caller is expected to log and swallow.
func (w *Worker) Dispatch(_ context.Context, task Task) (TaskRecord, error) {
	if err := validateTask(task); err != nil {
		return TaskRecord{}, err
	}
	record := TaskRecord{
		ID:         newID(),
		Kind:       task.Kind,
		Status:     TaskStatusQueued,
		EnqueuedAt: w.cfg.clock.Now(),
	}
	w.mu.Lock()
	w.tasks[record.ID] = &record
	w.mu.Unlock()
	select {
	case w.queue <- workItem{id: record.ID, task: task}:
		return record, nil
	default:
		w.mu.Lock()
		delete(w.tasks, record.ID)
		w.mu.Unlock()
		return TaskRecord{}, errors.New("dispatch queue full")
	}
}

// Task implements Dispatcher.
func (w *Worker) Task(id string) (TaskRecord, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.tasks[id]
	if !ok {
		return TaskRecord{}, false
	}
	return *record, true
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case item := <-w.queue:
			w.process(item)
		}
	}
}

func (w *Worker) process(item workItem) {
	started := w.cfg.clock.Now()
	w.update(item.id, func(r *TaskRecord) {
		r.Status = TaskStatusRunning
		r.StartedAt = &started
	})
	ref, err := w.exec.execute(w.ctx, item.task)
	completed := w.cfg.clock.Now()
	w.cfg.metrics.Observe(w.ctx, taskOperation(item.task.Kind), err == nil, completed.Sub(started))
	if err != nil {
		w.cfg.logger.Error("dispatch task failed", "task", item.id, "kind", string(item.task.Kind), "error", err)
		w.update(item.id, func(r *TaskRecord) {
			r.Status = TaskStatusFailed
			r.Error = err.Error()
			r.Ref = ref
			r.CompletedAt = &completed
		})
		return
	}
	w.update(item.id, func(r *TaskRecord) {
		r.Status = TaskStatusSucceeded
		r.Ref = ref
		r.CompletedAt = &completed
	})
}

func (w *Worker) update(id string, fn func(*TaskRecord)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if record, ok := w.tasks[id]; ok {
		fn(record)
	}
}

// InlineDispatcher executes tasks synchronously on the caller's goroutine.
// Deterministic by construction, it is the dispatcher of choice in tests.
type InlineDispatcher struct {
	exec taskExecutor
	cfg  dispatchConfig

	mu    sync.Mutex
	tasks map[string]TaskRecord
}

// NewInlineDispatcher constructs a synchronous dispatcher.
func NewInlineDispatcher(store domain.Store, notifier Notifier, renderer DocumentRenderer, opts ...DispatchOption) *InlineDispatcher {
	return &InlineDispatcher{
		exec:  taskExecutor{store: store, notifier: notifier, renderer: renderer},
		cfg:   newDispatchConfig(opts),
		tasks: make(map[string]TaskRecord),
	}
}

// Dispatch implements Dispatcher. An execution failure is recorded on the
// returned task record, not as an error: side effects stay best effort even
// when run inline.
func (d *InlineDispatcher) Dispatch(ctx context.Context, task Task) (TaskRecord, error) {
	if err := validateTask(task); err != nil {
		return TaskRecord{}, err
	}
	started := d.cfg.clock.Now()
	record := TaskRecord{
		ID:         newID(),
		Kind:       task.Kind,
		Status:     TaskStatusRunning,
		EnqueuedAt: started,
		StartedAt:  &started,
	}
	ref, err := d.exec.execute(ctx, task)
	completed := d.cfg.clock.Now()
	d.cfg.metrics.Observe(ctx, taskOperation(task.Kind), err == nil, completed.Sub(started))
	record.Ref = ref
	record.CompletedAt = &completed
	if err != nil {
		d.cfg.logger.Error("dispatch task failed", "task", record.ID, "kind", string(task.Kind), "error", err)
		record.Status = TaskStatusFailed
		record.Error = err.Error()
	} else {
		record.Status = TaskStatusSucceeded
	}
	d.mu.Lock()
	d.tasks[record.ID] = record
	d.mu.Unlock()
	return record, nil
}

// Task implements Dispatcher.
func (d *InlineDispatcher) Task(id string) (TaskRecord, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	record, ok := d.tasks[id]
	return record, ok
}

type taskExecutor struct {
	store    domain.Store
	notifier Notifier
	renderer DocumentRenderer
}

func (e taskExecutor) execute(ctx context.Context, task Task) (string, error) {
	switch task.Kind {
	case TaskNotification:
		if e.notifier == nil {
			return "", errors.New("notifier not configured")
		}
		return "", e.notifier.Send(ctx, *task.Notification)
	case TaskDocument:
		if e.renderer == nil {
			return "", errors.New("renderer not configured")
		}
		req := task.Document
		ref, err := e.renderer.Render(ctx, req.Kind, req.Data)
		if err != nil {
			return "", err
		}
		schema, ok := domain.SchemaFor(req.Collection)
		if !ok {
			return ref, fmt.Errorf("unknown collection %s", req.Collection)
		}
		// Reference writes are system activity regardless of who triggered
		// the workflow transition.
		ctx = domain.WithActor(ctx, domain.SystemActor)
		if _, err := e.store.Update(ctx, req.Collection, schema.Key, req.Key, domain.Record{domain.FieldDocumentRef: ref}); err != nil {
			return ref, fmt.Errorf("write document reference: %w", err)
		}
		return ref, nil
	default:
		return "", fmt.Errorf("unknown task kind %q", task.Kind)
	}
}

func validateTask(task Task) error {
	switch task.Kind {
	case TaskNotification:
		if task.Notification == nil {
			return errors.New("notification payload missing")
		}
		if task.Notification.To == "" {
			return errors.New("notification recipient missing")
		}
	case TaskDocument:
		if task.Document == nil {
			return errors.New("document payload missing")
		}
		if task.Document.Collection == "" || task.Document.Key == "" {
			return errors.New("document target missing")
		}
	default:
		return fmt.Errorf("unknown task kind %q", task.Kind)
	}
	return nil
}

func taskOperation(kind TaskKind) string {
	switch kind {
	case TaskNotification:
		return "dispatch_notification"
	case TaskDocument:
		return "dispatch_document"
	default:
		return "dispatch_unknown"
	}
}
