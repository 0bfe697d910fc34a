package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ashureev/keyrelay/internal/domain"
)

// Recorder appends session records in the background so slow storage never
// holds up the relay. Failures are logged and not retried.
type Recorder struct {
	repo    Repository
	queue   chan domain.SessionLogRecord
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	written atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// RecorderStats counts what happened to submitted records.
type RecorderStats struct {
	Queued  int   `json:"queued"`
	Written int64 `json:"written"`
	Failed  int64 `json:"failed"`
	Dropped int64 `json:"dropped"`
}

// NewRecorder starts a recorder writing to repo.
func NewRecorder(repo Repository, queueSize int, timeout time.Duration, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	r := &Recorder{
		repo:    repo,
		queue:   make(chan domain.SessionLogRecord, queueSize),
		timeout: timeout,
		logger:  logger,
	}

	r.wg.Add(1)
	go r.run()

	return r
}

// Record queues rec without blocking. It reports false when the record was
// dropped because the queue is full or the recorder is closed.
func (r *Recorder) Record(rec domain.SessionLogRecord) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.dropped.Add(1)
		r.logger.Warn("Session log recorder closed, dropping record", "participant_id", rec.ParticipantID)
		return false
	}

	select {
	case r.queue <- rec:
		return true
	default:
		r.dropped.Add(1)
		r.logger.Error("Session log queue full, dropping record",
			"participant_id", rec.ParticipantID,
			"queue_len", len(r.queue),
		)
		return false
	}
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for rec := range r.queue {
		r.write(rec)
	}
}

func (r *Recorder) write(rec domain.SessionLogRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	if err := r.repo.Append(ctx, rec); err != nil {
		r.failed.Add(1)
		r.logger.Error("Failed to append session log",
			"error", err,
			"participant_id", rec.ParticipantID,
			"record_id", rec.ID,
		)
		return
	}
	r.written.Add(1)
	r.logger.Info("Session log appended",
		"participant_id", rec.ParticipantID,
		"record_id", rec.ID,
		"elapsed_ms", rec.ElapsedMillis,
		"write_ms", time.Since(start).Milliseconds(),
	)
}

// Close stops accepting records and waits for queued ones to be written,
// bounded by ctx.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		r.logger.Warn("Session log recorder shutdown timeout", "queue_remaining", len(r.queue))
		return ctx.Err()
	}
}

// Stats returns recorder counters.
func (r *Recorder) Stats() RecorderStats {
	return RecorderStats{
		Queued:  len(r.queue),
		Written: r.written.Load(),
		Failed:  r.failed.Load(),
		Dropped: r.dropped.Load(),
	}
}
