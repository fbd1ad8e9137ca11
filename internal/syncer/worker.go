package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/unclealex/devicesync/internal/queue"
)

var ErrWorkerStopped = errors.New("syncer: worker stopped")

// Synchroniser runs one sync.
type Synchroniser interface {
	Synchronise(ctx context.Context) (*Result, error)
}

// Outcome is delivered on a request's Done channel.
type Outcome struct {
	Result *Result
	Err    error
}

type Request struct {
	ID   string
	Done <-chan Outcome

	done chan Outcome
}

// Worker runs queued sync requests one at a time, in submission order.
type Worker struct {
	engine Synchroniser
	queue  *queue.Queue[*Request]

	mu      sync.RWMutex
	running string
	stopped bool
	last    *Outcome
}

func NewWorker(engine Synchroniser) *Worker {
	return &Worker{engine: engine, queue: queue.New[*Request]()}
}

// Submit queues a run. It never blocks.
func (w *Worker) Submit() *Request {
	done := make(chan Outcome, 1)
	req := &Request{ID: uuid.NewString(), Done: done, done: done}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		done <- Outcome{Err: ErrWorkerStopped}
		return req
	}

	w.queue.Enqueue(req)
	slog.Debug("sync queued", "id", req.ID, "pending", w.queue.Len())
	return req
}

// Run processes requests until ctx is done. Requests still queued then fail with
// ErrWorkerStopped.
func (w *Worker) Run(ctx context.Context) error {
	defer w.stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.queue.Ready():
		}

		for {
			req, ok := w.queue.Dequeue()
			if !ok {
				break
			}
			if ctx.Err() != nil {
				req.done <- Outcome{Err: ErrWorkerStopped}
				continue
			}
			w.process(ctx, req)
		}
	}
}

func (w *Worker) process(ctx context.Context, req *Request) {
	w.setRunning(req.ID)
	defer w.setRunning("")

	slog.Info("sync request", "id", req.ID)
	res, err := w.engine.Synchronise(ctx)
	out := Outcome{Result: res, Err: err}

	w.mu.Lock()
	w.last = &out
	w.mu.Unlock()
	req.done <- out
}

func (w *Worker) stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	for _, req := range w.queue.DequeueAll() {
		req.done <- Outcome{Err: ErrWorkerStopped}
	}
}

func (w *Worker) setRunning(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = id
}

// Running returns the ID of the request being processed, or "".
func (w *Worker) Running() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *Worker) Pending() int {
	return w.queue.Len()
}

// Last returns the outcome of the most recent run, or nil.
func (w *Worker) Last() *Outcome {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}
