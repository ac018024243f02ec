package workers

import (
	"chat-session/errors"
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// EventLoop is the single goroutine allowed to touch session state.
// Transport completions, deliveries, heartbeat ticks and user input are all
// posted to it as tasks and run one at a time, in the order they were posted.
type EventLoop struct {
	log   *slog.Logger
	tasks chan func()
	done  chan struct{}
}

func NewEventLoop(log *slog.Logger, bufferSize int) *EventLoop {
	return &EventLoop{
		log:   log,
		tasks: make(chan func(), bufferSize),
		done:  make(chan struct{}),
	}
}

// Post queues a task. It blocks while the queue is full and drops the task
// once the loop has stopped. Never call Post and wait for the result from
// inside a task.
func (l *EventLoop) Post(task func()) {
	select {
	case l.tasks <- task:
	case <-l.done:
		l.log.Debug("Task dropped", "error", errors.ErrLoopStopped)
	}
}

// Call posts task and waits for it to be executed.
func (l *EventLoop) Call(ctx context.Context, task func()) error {
	executed := make(chan struct{})
	l.Post(func() {
		defer close(executed)
		task()
	})
	select {
	case <-executed:
		return nil
	case <-l.done:
		return errors.ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *EventLoop) Run(ctx context.Context) error {
	l.log.Debug("Starting event loop")
	for {
		select {
		case <-ctx.Done():
			l.log.Debug("Stopping event loop")
			l.stop()
			return nil
		case task := <-l.tasks:
			l.execute(task)
		}
	}
}

// A panicking task is logged and forgotten, the loop keeps going.
func (l *EventLoop) execute(task func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("Task panicked", "error", fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r), "stack", string(debug.Stack()))
		}
	}()
	task()
}

func (l *EventLoop) stop() {
	select {
	case <-l.done:
	default:
		close(l.done)
	}
}
