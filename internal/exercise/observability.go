package exercise

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

type TransitionEvent struct {
	ExerciseTypeID string
	Source         string
	Dest           string
	Trigger        string
	Delta          float64
	Score          float64
	Duration       time.Duration
}

type TransitionObserver interface {
	ObserveTransition(ev TransitionEvent)
}

type TransitionLogger struct {
	logger *slog.Logger
}

func NewTransitionLogger(logger *slog.Logger) *TransitionLogger {
	return &TransitionLogger{logger: logger}
}

func (l *TransitionLogger) ObserveTransition(ev TransitionEvent) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Debug("exercise_transition",
		"exercise_type_id", ev.ExerciseTypeID,
		"source", ev.Source,
		"dest", ev.Dest,
		"trigger", ev.Trigger,
		"delta", ev.Delta,
		"score", ev.Score,
		"duration_ms", float64(ev.Duration.Microseconds())/1000.0,
	)
}

// AsyncTransitionObserver forwards events to next from a single goroutine.
// Events are dropped when the buffer is full or after Close.
type AsyncTransitionObserver struct {
	next    TransitionObserver
	events  chan TransitionEvent
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

func NewAsyncTransitionObserver(next TransitionObserver, buffer int) *AsyncTransitionObserver {
	if buffer <= 0 {
		buffer = 1
	}

	o := &AsyncTransitionObserver{
		next:   next,
		events: make(chan TransitionEvent, buffer),
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		for ev := range o.events {
			if o.next == nil {
				continue
			}
			o.next.ObserveTransition(ev)
		}
	}()

	return o
}

func (o *AsyncTransitionObserver) ObserveTransition(ev TransitionEvent) {
	if o == nil {
		return
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		o.dropped.Add(1)
		return
	}
	select {
	case o.events <- ev:
	default:
		o.dropped.Add(1)
	}
}

func (o *AsyncTransitionObserver) Dropped() uint64 {
	if o == nil {
		return 0
	}
	return o.dropped.Load()
}

func (o *AsyncTransitionObserver) Close() {
	if o == nil {
		return
	}
	o.once.Do(func() {
		o.mu.Lock()
		o.closed = true
		close(o.events)
		o.mu.Unlock()
		o.wg.Wait()
	})
}
