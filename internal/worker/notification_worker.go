package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/campuslane/learning-service/internal/events"
)

// ErrQueueFull is returned when an event is dropped because the worker is saturated.
var ErrQueueFull = errors.New("notification queue full")

// ErrStopped is returned for events published after Stop.
var ErrStopped = errors.New("notification worker stopped")

// Notifier delivers notifications for one event.
type Notifier interface {
	Notify(ctx context.Context, event events.Event) error
}

// NotificationWorker moves notification delivery off the request path.
type NotificationWorker struct {
	notifier Notifier
	logger   *zap.Logger
	queue    chan events.Event

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// NewNotificationWorker builds a worker with the given queue size.
func NewNotificationWorker(notifier Notifier, logger *zap.Logger, buffer int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = 256
	}
	return &NotificationWorker{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan events.Event, buffer),
	}
}

// Register subscribes the worker to the given event types.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher, types ...events.EventType) {
	for _, eventType := range types {
		dispatcher.Subscribe(eventType, w.Enqueue)
	}
}

// Enqueue hands an event to the worker without blocking.
func (w *NotificationWorker) Enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}
	select {
	case w.queue <- event:
		return nil
	default:
		w.logger.Warn("dropping notification", zap.String("event_id", event.ID), zap.String("event_type", string(event.Type)))
		return ErrQueueFull
	}
}

// Start launches the delivery loop. Delivery uses ctx, detached from the publishing request.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for event := range w.queue {
			if err := w.notifier.Notify(ctx, event); err != nil {
				w.logger.Error("notification failed",
					zap.String("event_id", event.ID),
					zap.String("event_type", string(event.Type)),
					zap.Error(err))
			}
		}
	}()
}

// Stop rejects new events, drains the queue and waits for the loop to exit.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

// StartNotificationWorker wires a worker to the dispatcher and starts it.
func StartNotificationWorker(ctx context.Context, dispatcher events.Dispatcher, notifier Notifier, types []events.EventType, logger *zap.Logger) *NotificationWorker {
	w := NewNotificationWorker(notifier, logger, 0)
	w.Register(dispatcher, types...)
	w.Start(ctx)
	return w
}
