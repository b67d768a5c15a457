// Package service wires the analysis core to the queue, the workers and the
// session store, and implements what the HTTP API depends on.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/tackline/internal/adapters/mq/queue"
	"github.com/okian/tackline/internal/adapters/mq/worker"
	"github.com/okian/tackline/internal/adapters/repository"
	"github.com/okian/tackline/internal/domain/dedupe"
	"github.com/okian/tackline/internal/domain/model"
	"github.com/okian/tackline/internal/domain/segment"
	"github.com/okian/tackline/internal/domain/tack"
	"github.com/okian/tackline/pkg/logger"
	"github.com/okian/tackline/pkg/metrics"
)

const (
	defaultQueueSize   = 256
	defaultDedupeSize  = 10000
	defaultMaxSessions = 1000
	stopTimeout        = 30 * time.Second
)

// Service analyzes telemetry logs synchronously or through the worker pool.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	deduper  dedupe.Deduper
	queue    queue.Queue
	pool     *worker.Pool
	analyzer *tack.Analyzer

	workerCount    int
	queueSize      int
	dedupeSize     int
	maxSessions    int
	preStartCutoff time.Duration
	analyzerOpts   []tack.Option

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many idempotency keys are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxSessions caps the session store.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithPreStartCutoff sets the elapsed race time under which samples are
// pre-start.
func WithPreStartCutoff(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.preStartCutoff = d
		}
	}
}

// WithAnalyzerOptions passes options through to the tack analyzer.
func WithAnalyzerOptions(opts ...tack.Option) Option {
	return func(s *Service) {
		s.analyzerOpts = append(s.analyzerOpts, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a Service. Analyze works right away; Submit needs Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU(),
		queueSize:      defaultQueueSize,
		dedupeSize:     defaultDedupeSize,
		maxSessions:    defaultMaxSessions,
		preStartCutoff: segment.DefaultPreStartCutoff,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.analyzer = tack.New(append([]tack.Option{tack.WithLogger(s.logger)}, s.analyzerOpts...)...)

	return s
}

// Start builds the store, queue and worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.store = repository.NewMemoryStore(repository.WithMaxSessions(s.maxSessions))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s, s.store)
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("maxSessions", s.maxSessions),
	)

	return nil
}

// Stop closes the queue and waits for the workers to drain it.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
}

// Analyze segments samples into maneuvers and legs and measures every
// analyzable tack.
func (s *Service) Analyze(ctx context.Context, samples []model.Sample) (model.Analysis, error) {
	if len(samples) == 0 {
		return model.Analysis{}, ErrEmptyLog
	}
	if err := ctx.Err(); err != nil {
		return model.Analysis{}, err
	}

	start := time.Now()
	maneuvers := segment.Maneuvers(samples, s.preStartCutoff)
	report := s.analyzer.Analyze(ctx, maneuvers, samples)

	a := model.Analysis{
		Samples:   len(samples),
		Maneuvers: nonNil(maneuvers),
		Legs:      nonNil(segment.Legs(samples, s.preStartCutoff)),
		Tacks:     nonNil(report.Tacks),
		Skipped:   report.Skipped,
	}

	metrics.RecordAnalysisLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordAnalysis(len(a.Maneuvers), len(a.Tacks), len(a.Skipped))
	for _, t := range a.Tacks {
		if t.Loss != nil {
			metrics.RecordTackLoss(*t.Loss)
		}
	}

	return a, nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// Submit stores a pending session for samples and queues it for analysis.
// Submissions sharing a non-empty key return the first session's ID with
// duplicate set. ErrBackpressure means nothing was stored.
func (s *Service) Submit(ctx context.Context, key string, samples []model.Sample) (id string, duplicate bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return "", false, ErrNotStarted
	}
	if len(samples) == 0 {
		return "", false, ErrEmptyLog
	}

	id = uuid.NewString()
	if key != "" {
		if existing, seen := s.deduper.Claim(ctx, key, id); seen {
			metrics.RecordSessionDuplicate()
			s.logger.Debug(ctx, "duplicate upload", logger.String("session", existing))
			return existing, true, nil
		}
	}

	now := time.Now()
	err = s.store.Create(ctx, model.Session{
		ID:        id,
		Status:    model.StatusPending,
		CreatedAt: now,
		Samples:   len(samples),
	})
	if err != nil {
		s.release(ctx, key)
		return "", false, fmt.Errorf("create session: %w", err)
	}

	if !s.queue.Enqueue(ctx, model.Job{SessionID: id, Samples: samples, EnqueuedAt: now}) {
		s.release(ctx, key)
		if derr := s.store.Delete(ctx, id); derr != nil {
			s.logger.Error(ctx, "failed to drop unqueued session", logger.String("session", id), logger.Error(derr))
		}
		return "", false, ErrBackpressure
	}

	metrics.RecordSessionSubmitted()
	metrics.RecordSamplesIngested(len(samples))
	s.logger.Debug(ctx, "session queued",
		logger.String("session", id),
		logger.Int("samples", len(samples)),
	)
	return id, false, nil
}

func (s *Service) release(ctx context.Context, key string) {
	if key != "" {
		s.deduper.Release(ctx, key)
	}
}

// Session returns one session.
func (s *Service) Session(ctx context.Context, id string) (model.Session, error) {
	store, err := s.sessions()
	if err != nil {
		return model.Session{}, err
	}
	return store.Get(ctx, id)
}

// Sessions returns up to limit sessions, newest first.
func (s *Service) Sessions(ctx context.Context, limit int) ([]model.Session, error) {
	store, err := s.sessions()
	if err != nil {
		return nil, err
	}
	return store.List(ctx, limit)
}

func (s *Service) sessions() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.store == nil {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"maxSessions": s.maxSessions,
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		sessions := s.store.Count(ctx)

		stats["queueLength"] = queueLen
		stats["sessions"] = sessions
		stats["dedupeKeys"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoredSessions(sessions)
	}

	return stats
}
