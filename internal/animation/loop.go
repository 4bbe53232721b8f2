package animation

import (
	"context"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/metrics"
)

// Animation advances by one frame per Step.
type Animation interface {
	Step()
}

// Loop drives an Animation on a ticker in its own goroutine.
type Loop struct {
	name     string
	anim     Animation
	interval time.Duration
	limit    int
	onFrame  func(frame int)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewLoop creates a loop stepping anim every interval. name labels the
// frame counter metric.
func NewLoop(name string, anim Animation, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Loop{name: name, anim: anim, interval: interval}
}

// WithFrameLimit stops the loop by itself after n frames. Zero means no limit.
func (l *Loop) WithFrameLimit(n int) *Loop {
	l.limit = n
	return l
}

// OnFrame registers fn to run after every step with the 1-based frame number.
func (l *Loop) OnFrame(fn func(frame int)) *Loop {
	l.onFrame = fn
	return l
}

// Start begins stepping. It is a no-op while a previous run is still active
// or when there is nothing to animate.
func (l *Loop) Start(ctx context.Context) {
	if l.anim == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done != nil {
		select {
		case <-l.done:
		default:
			return
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done

	go func() {
		defer close(done)
		defer cancel()
		l.run(ctx)
	}()
}

func (l *Loop) run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	frames := metrics.AnimationFrames.WithLabelValues(l.name)
	for frame := 1; ; frame++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		l.anim.Step()
		frames.Inc()
		if l.onFrame != nil {
			l.onFrame(frame)
		}
		if l.limit > 0 && frame >= l.limit {
			return
		}
	}
}

// Stop ends the current run and waits for it to exit. Calling Stop more than
// once, or before Start, is safe.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until the current run ends.
func (l *Loop) Wait() {
	l.mu.Lock()
	done := l.done
	l.mu.Unlock()

	if done != nil {
		<-done
	}
}
