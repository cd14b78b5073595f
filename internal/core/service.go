package core

import (
	"context"
	"time"

	"assetcore/internal/infra/persistence/memory"
	"assetcore/pkg/domain"
)

// Service is the application facade over the record store: the asset
// registry, the employee directory, and the accountability and disposal
// workflows. Every operation runs through the run wrapper, which owns
// logging, metrics, and tracing.
type Service struct {
	store      domain.Store
	clock      Clock
	logger     domain.Logger
	metrics    MetricsRecorder
	tracer     Tracer
	dispatcher Dispatcher
}

// Option configures a Service during construction.
type Option func(*Service)

// WithClock overrides the service time source.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger domain.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder attaches a metrics recorder.
func WithMetricsRecorder(metrics MetricsRecorder) Option {
	return func(s *Service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithTracer attaches a tracer.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithDispatcher attaches the side-effect dispatcher. Without one the
// workflows still transition; notifications and documents are skipped.
func WithDispatcher(dispatcher Dispatcher) Option {
	return func(s *Service) {
		if dispatcher != nil {
			s.dispatcher = dispatcher
		}
	}
}

// NewService constructs a service over an existing store.
func NewService(store domain.Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		clock:   ClockFunc(nil),
		logger:  domain.NopLogger(),
		metrics: noopMetrics{},
		tracer:  noopTracer{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// NewInMemoryService constructs a service over a fresh in-memory store wired
// to the service clock and logger.
func NewInMemoryService(engine *domain.RulesEngine, opts ...Option) *Service {
	s := NewService(nil, opts...)
	s.store = memory.NewStore(engine,
		memory.WithNowFunc(func() time.Time { return s.clock.Now() }),
		memory.WithLogger(s.logger),
	)
	return s
}

// Store exposes the underlying record store.
func (s *Service) Store() domain.Store {
	return s.store
}

func (s *Service) now() time.Time {
	return s.clock.Now()
}

// run executes fn under a span, observes the outcome, and logs failures.
// Operation latency is measured with the wall clock on purpose: the injected
// clock freezes domain timestamps in tests, not durations.
func (s *Service) run(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, op)
	started := time.Now()
	s.logger.Debug("operation started", "op", op)
	err := fn(ctx)
	duration := time.Since(started)
	s.metrics.Observe(ctx, op, err == nil, duration)
	span.End(err)
	if err != nil {
		s.logger.Error("operation failed", "op", op, "error", err)
		return err
	}
	s.logger.Debug("operation completed", "op", op, "duration_ms", float64(duration)/float64(time.Millisecond))
	return nil
}

func (s *Service) dispatchNotification(ctx context.Context, msg Message) {
	if s.dispatcher == nil || !s.notificationsEnabled(ctx) {
		return
	}
	if _, err := s.dispatcher.Dispatch(ctx, Task{Kind: TaskNotification, Notification: &msg}); err != nil {
		s.logger.Warn("notification dispatch dropped", "to", msg.To, "subject", msg.Subject, "error", err)
	}
}

func (s *Service) dispatchDocument(ctx context.Context, req DocumentRequest) {
	if s.dispatcher == nil || !s.documentsEnabled(ctx) {
		return
	}
	if _, err := s.dispatcher.Dispatch(ctx, Task{Kind: TaskDocument, Document: &req}); err != nil {
		s.logger.Warn("document dispatch dropped", "collection", req.Collection, "key", req.Key, "error", err)
	}
}
