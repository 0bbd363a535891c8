package engine

import (
	"log/slog"
	"sync"
	"time"
)

// Runner drives a World forward in wall-clock time for interactive hosts.
// Speed 0 pauses; 1.0 advances one period per Interval. The zero Interval
// defaults to one second. All access to the world from other goroutines
// (the HTTP API) must go through Do.
type Runner struct {
	Interval time.Duration
	OnPeriod func(*World) // Called after every step, under the lock

	mu      sync.Mutex
	world   *World
	speed   float64
	running bool
}

// NewRunner wraps a world with a paused runner.
func NewRunner(w *World) *Runner {
	return &Runner{
		Interval: time.Second,
		world:    w,
		speed:    0,
	}
}

// Do runs fn with exclusive access to the world. Used by API handlers for
// reads, single steps, and world replacement.
func (r *Runner) Do(fn func(w *World)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.world)
}

// Replace swaps in a freshly initialized world (the setup operation).
func (r *Runner) Replace(w *World) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.world = w
}

// Speed returns the current speed multiplier.
func (r *Runner) Speed() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.speed
}

// SetSpeed adjusts the speed multiplier. 0 pauses the run.
func (r *Runner) SetSpeed(speed float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speed = speed
}

// Running reports whether the loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Run blocks, stepping the world whenever unpaused, until Stop is called.
// A terminated world idles instead of stepping so the host API stays up
// for inspection after the horizon.
func (r *Runner) Run() {
	r.mu.Lock()
	r.running = true
	r.mu.Unlock()
	slog.Info("simulation runner started", "interval", r.interval())

	for r.Running() {
		speed := r.Speed()
		if speed <= 0 {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		r.mu.Lock()
		stepped := false
		if !r.world.Terminated() {
			r.world.Step()
			stepped = true
			if r.OnPeriod != nil {
				r.OnPeriod(r.world)
			}
		}
		r.mu.Unlock()

		if !stepped {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		elapsed := time.Since(start)
		target := time.Duration(float64(r.interval()) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("simulation runner stopped")
}

// Stop halts the loop.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
}

func (r *Runner) interval() time.Duration {
	if r.Interval <= 0 {
		return time.Second
	}
	return r.Interval
}
