// Package eventloop runs tasks one at a time on a single goroutine.
//
// Every piece of portal state is mutated only from inside a task, so session
// and profile code needs no locking beyond publishing read snapshots.
package eventloop

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/panics"
)

var ErrClosed = errors.New("event loop closed")

type Loop struct {
	log *logrus.Logger

	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}
}

func New(log *logrus.Logger) *Loop {
	return &Loop{
		log:  log,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post enqueues fn. It never blocks and is safe to call from any goroutine,
// including from inside a running task.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return nil
}

// Run executes tasks until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if task := l.next(); task != nil {
			l.exec(task)
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		case <-l.wake:
		}
	}
}

func (l *Loop) next() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil
	}
	task := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return task
}

func (l *Loop) exec(task func()) {
	var pc panics.Catcher
	pc.Try(task)
	if r := pc.Recovered(); r != nil {
		l.log.Errorf("Event loop task panicked: %v\n%s", r.Value, r.Stack)
	}
}

// Flush blocks until every task posted before it has run. It must not be
// called from inside a task.
func (l *Loop) Flush(ctx context.Context) error {
	ran := make(chan struct{})
	if err := l.Post(func() { close(ran) }); err != nil {
		return err
	}

	select {
	case <-ran:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do posts fn and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if err := l.Post(fn); err != nil {
		return err
	}
	return l.Flush(ctx)
}

// Done is closed once the loop is closed.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Close stops Run. Tasks still queued are dropped.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.queue = nil
	close(l.done)
}
