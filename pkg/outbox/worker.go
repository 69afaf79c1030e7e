package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Handler processes one claimed event. Returning an error schedules a
// retry; returning nil completes the event.
type Handler func(ctx context.Context, event *Event) error

// Worker claims pending events and drives them through the handler.
type Worker struct {
	repo     WorkerStorage
	handler  Handler
	workerID uuid.UUID
	sem      chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	stopMu   sync.Mutex

	// inflight keys are reservation ids currently being processed; claims
	// skip them so one reservation's events never run concurrently.
	inflight map[string]struct{}

	pollInterval time.Duration
	lockTimeout  time.Duration
	logger       *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
}

// WorkerOption configures a Worker.
type WorkerOption func(*workerOptions)

type workerOptions struct {
	pollInterval  time.Duration
	lockTimeout   time.Duration
	maxConcurrent int
	logger        *slog.Logger
}

// WithPollInterval sets how often the worker checks for due events.
func WithPollInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

// WithLockTimeout sets the claim lock duration and the handler deadline.
func WithLockTimeout(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.lockTimeout = d
		}
	}
}

// WithMaxConcurrent bounds the number of events processed in parallel.
func WithMaxConcurrent(n int) WorkerOption {
	return func(o *workerOptions) {
		if n > 0 {
			o.maxConcurrent = n
		}
	}
}

// WithWorkerLogger sets the logger for the Worker.
func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(o *workerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewWorker creates a worker over the storage and handler.
func NewWorker(repo WorkerStorage, handler Handler, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrStorageNil
	}
	if handler == nil {
		return nil, ErrNoHandler
	}

	options := &workerOptions{
		pollInterval:  time.Second,
		lockTimeout:   2 * time.Minute,
		maxConcurrent: 4,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		repo:         repo,
		handler:      handler,
		workerID:     uuid.New(),
		sem:          make(chan struct{}, options.maxConcurrent),
		inflight:     make(map[string]struct{}),
		pollInterval: options.pollInterval,
		lockTimeout:  options.lockTimeout,
		logger:       options.logger,
	}, nil
}

// Start begins processing events in the background.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.cancel != nil {
		w.mu.Unlock()
		return ErrWorkerStarted
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	w.stopping.Store(false)
	go w.run()

	w.logger.Info("outbox worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.Int("max_concurrent", cap(w.sem)))

	return nil
}

// Stop cancels the claim loop and waits for in-flight events to finish.
func (w *Worker) Stop() error {
	w.mu.Lock()
	if w.cancel == nil {
		w.mu.Unlock()
		return ErrWorkerNotStarted
	}

	w.stopMu.Lock()
	w.stopping.Store(true)
	w.stopMu.Unlock()

	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	cancel()
	w.wg.Wait()

	w.logger.Info("outbox worker stopped",
		slog.String("worker_id", w.workerID.String()))

	return nil
}

// Run returns a function suitable for errgroup.
func (w *Worker) Run(ctx context.Context) func() error {
	return func() error {
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return w.Stop()
	}
}

func (w *Worker) run() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			select {
			case w.sem <- struct{}{}:
				w.stopMu.Lock()
				if w.stopping.Load() {
					w.stopMu.Unlock()
					<-w.sem
					return
				}
				w.wg.Add(1)
				w.stopMu.Unlock()

				go func() {
					defer w.wg.Done()
					defer func() { <-w.sem }()

					if err := w.pullAndProcess(); err != nil {
						w.logger.Error("failed to process outbox event",
							slog.String("worker_id", w.workerID.String()),
							slog.String("error", err.Error()))
					}
				}()
			default:
				// All slots busy, skip this tick.
			}
		}
	}
}

func (w *Worker) pullAndProcess() error {
	event, err := w.repo.ClaimEvent(w.ctx, w.workerID, w.busyReservations(), w.lockTimeout)
	if err != nil {
		if errors.Is(err, ErrNoEventToClaim) {
			return nil
		}
		return fmt.Errorf("failed to claim event: %w", err)
	}
	if event == nil {
		return nil
	}

	if event.ReservationID != "" {
		w.markInflight(event.ReservationID)
		defer w.clearInflight(event.ReservationID)
	}

	return w.processEvent(event)
}

func (w *Worker) processEvent(event *Event) (retErr error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			retErr = fmt.Errorf("panic in outbox handler: %v", r)
			w.logger.Error("outbox handler panicked",
				slog.String("worker_id", w.workerID.String()),
				slog.String("event_id", event.ID.String()),
				slog.Any("panic", r))
			_ = w.handleFailure(event, retErr, time.Since(start))
		}
	}()

	// Detach from the worker lifecycle so graceful shutdown lets the
	// in-flight event finish.
	ctx, cancel := context.WithTimeout(context.Background(), w.lockTimeout)
	defer cancel()

	err := w.handler(ctx, event)
	duration := time.Since(start)

	if err != nil {
		return w.handleFailure(event, err, duration)
	}
	return w.handleSuccess(event, duration)
}

func (w *Worker) handleFailure(event *Event, execErr error, duration time.Duration) error {
	w.logger.Error("outbox event failed",
		slog.String("worker_id", w.workerID.String()),
		slog.String("event_id", event.ID.String()),
		slog.String("reservation_id", event.ReservationID),
		slog.String("kind", string(event.Kind)),
		slog.Int("retry_count", int(event.RetryCount)),
		slog.Int("max_retries", int(event.MaxRetries)),
		slog.Duration("duration", duration),
		slog.String("error", execErr.Error()))

	if err := w.repo.FailEvent(w.ctx, event.ID, execErr.Error()); err != nil {
		return fmt.Errorf("failed to mark event %s as failed: %w", event.ID, err)
	}

	// The claimed copy carries the pre-failure retry count; this attempt
	// was number RetryCount+1.
	if event.RetryCount+1 >= event.MaxRetries {
		if err := w.repo.MoveToDLQ(w.ctx, event.ID); err != nil {
			return fmt.Errorf("failed to move event %s to DLQ: %w", event.ID, err)
		}
		w.logger.Warn("outbox event moved to dead letter queue",
			slog.String("worker_id", w.workerID.String()),
			slog.String("event_id", event.ID.String()),
			slog.String("reservation_id", event.ReservationID))
	}

	return nil
}

func (w *Worker) handleSuccess(event *Event, duration time.Duration) error {
	if err := w.repo.CompleteEvent(w.ctx, event.ID); err != nil {
		return fmt.Errorf("failed to mark event %s as completed: %w", event.ID, err)
	}

	w.logger.Info("outbox event processed",
		slog.String("worker_id", w.workerID.String()),
		slog.String("event_id", event.ID.String()),
		slog.String("reservation_id", event.ReservationID),
		slog.String("kind", string(event.Kind)),
		slog.Duration("duration", duration))

	return nil
}

func (w *Worker) busyReservations() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.inflight))
	for id := range w.inflight {
		out = append(out, id)
	}
	return out
}

func (w *Worker) markInflight(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inflight[id] = struct{}{}
}

func (w *Worker) clearInflight(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.inflight, id)
}
