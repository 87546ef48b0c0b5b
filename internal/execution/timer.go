package execution

import (
	"sync"
	"time"
)

// RestPresets are the selectable rest durations between sets, in seconds.
var RestPresets = []int{60, 90, 120}

// RestTimer counts down a rest period, ticking once per interval. Callbacks
// fire on the timer's own goroutine; Stop is safe to call at any time and
// from any goroutine, including from inside a callback's caller.
type RestTimer struct {
	interval time.Duration
	onTick   func(remaining int)
	onDone   func()

	mu      sync.Mutex
	stop    chan struct{}
	running bool
}

// NewRestTimer creates a timer ticking at interval. Production callers use
// time.Second; tests shrink it.
func NewRestTimer(interval time.Duration, onTick func(remaining int), onDone func()) *RestTimer {
	return &RestTimer{
		interval: interval,
		onTick:   onTick,
		onDone:   onDone,
	}
}

// Start begins a countdown of seconds. A running countdown is cancelled and
// replaced.
func (t *RestTimer) Start(seconds int) {
	t.mu.Lock()
	if t.running {
		close(t.stop)
	}
	stop := make(chan struct{})
	t.stop = stop
	t.running = true
	t.mu.Unlock()

	go t.run(seconds, stop)
}

// Stop cancels the countdown, if one is running. No callback fires after
// Stop returns.
func (t *RestTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		close(t.stop)
		t.running = false
	}
}

// Running reports whether a countdown is in progress.
func (t *RestTimer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *RestTimer) run(seconds int, stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	remaining := seconds
	for remaining > 0 {
		select {
		case <-stop:
			return
		case <-ticker.C:
			remaining--
			if t.onTick != nil {
				t.onTick(remaining)
			}
		}
	}

	t.mu.Lock()
	if t.stop != stop || !t.running {
		// Stopped or replaced by a newer countdown while finishing.
		t.mu.Unlock()
		return
	}
	t.running = false
	t.mu.Unlock()

	if t.onDone != nil {
		t.onDone()
	}
}
