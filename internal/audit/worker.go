package audit

import (
	"context"
	"log/slog"
	"time"
)

// Worker decouples request handling from the audit sink: Emit enqueues onto
// a bounded channel and Run drains it into the wrapped publisher. A full
// queue drops the event with a log line rather than blocking the request.
type Worker struct {
	sink   Publisher
	inbox  chan Event
	logger *slog.Logger
}

func NewWorker(sink Publisher, buffer int, logger *slog.Logger) *Worker {
	if buffer <= 0 {
		buffer = 256
	}
	return &Worker{
		sink:   sink,
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Emit enqueues without blocking the caller.
func (w *Worker) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case w.inbox <- event:
	default:
		w.logger.WarnContext(ctx, "audit queue full, event dropped",
			"module", event.Module,
			"action", string(event.Action),
		)
	}
	return nil
}

// Run drains the inbox until ctx is cancelled, then flushes what is queued.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.forward(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			w.forward(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) forward(ctx context.Context, event Event) {
	if err := w.sink.Emit(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "audit sink failed",
			"module", event.Module,
			"action", string(event.Action),
			"error", err,
		)
	}
}
