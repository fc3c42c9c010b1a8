package services

import (
	"context"
	"sync"
	"time"
)

// Loop runs posted closures one at a time on a single goroutine, like a
// browser event loop. Blocking work is handed to Go, which runs it elsewhere
// and posts its completion back.
type Loop struct {
	mu      sync.Mutex
	idle    *sync.Cond
	queue   []func()
	pending int
	wake    chan struct{}

	// AfterEach runs on the loop goroutine after every task.
	AfterEach func()
}

// NewLoop creates a loop. Nothing runs until Run is called.
func NewLoop() *Loop {
	l := &Loop{wake: make(chan struct{}, 1)}
	l.idle = sync.NewCond(&l.mu)
	return l
}

// Post queues fn. Safe from any goroutine, including the loop itself.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.pending++
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Go runs work on a new goroutine and posts the callback it returns. A nil
// callback posts nothing.
func (l *Loop) Go(work func() func()) {
	l.mu.Lock()
	l.pending++
	l.mu.Unlock()

	go func() {
		done := work()
		if done != nil {
			l.Post(done)
		}
		l.release()
	}()
}

// AfterFunc posts fn once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *time.Timer {
	return time.AfterFunc(d, func() { l.Post(fn) })
}

// Do posts fn and waits until it has run. It must not be called from the loop
// goroutine.
func (l *Loop) Do(fn func()) {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	<-done
}

// Settle blocks until no posted task or in-flight work remains. Timers that
// have not fired yet do not count.
func (l *Loop) Settle() {
	l.mu.Lock()
	for l.pending > 0 {
		l.idle.Wait()
	}
	l.mu.Unlock()
}

// Run executes tasks until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-l.wake:
			for {
				fn, ok := l.next()
				if !ok {
					break
				}
				fn()
				if l.AfterEach != nil {
					l.AfterEach()
				}
				l.release()
			}
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) release() {
	l.mu.Lock()
	l.pending--
	if l.pending == 0 {
		l.idle.Broadcast()
	}
	l.mu.Unlock()
}
