package ratelimit

import (
	"sync"
	"time"
)

// sweepEvery is the number of fallback hits between opportunistic sweeps of
// expired windows. Sweeping on access avoids a background timer doing work
// while the primary path is healthy and the map is idle.
const sweepEvery = 128

// localWindows is the process-local fixed-window fallback. It is mutated
// only by the process holding it; no cross-process coordination is
// attempted, which is why its guarantee is weaker than the primary path's.
type localWindows struct {
	mu      sync.Mutex
	windows map[string]*window
	hits    int
	now     func() time.Time
}

type window struct {
	count   int64
	resetAt time.Time
}

func newLocalWindows() *localWindows {
	return &localWindows{
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// hit applies the window transition for the key and returns the new count
// and the window's remaining TTL. A record older than its reset time is
// treated as absent regardless of whether it was physically purged.
func (lw *localWindows) hit(key string, windowLen time.Duration) (int64, time.Duration) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	now := lw.now()

	lw.hits++
	if lw.hits >= sweepEvery {
		lw.hits = 0
		lw.sweep(now)
	}

	w, ok := lw.windows[key]
	if !ok || !w.resetAt.After(now) {
		w = &window{count: 0, resetAt: now.Add(windowLen)}
		lw.windows[key] = w
	}

	w.count++
	return w.count, w.resetAt.Sub(now)
}

// sweep removes expired windows. Must be called with the lock held.
func (lw *localWindows) sweep(now time.Time) {
	for key, w := range lw.windows {
		if !w.resetAt.After(now) {
			delete(lw.windows, key)
		}
	}
}

// size reports the number of tracked windows, expired entries included.
func (lw *localWindows) size() int {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return len(lw.windows)
}
