package service

import (
	"context"
	"sync"
)

// JobGuard is exported for the service_test package.
type JobGuard = jobGuard

// ── jobGuard ────────────────────────────────────────────────
// Keeps named jobs (a backup run, the import of one file) from overlapping
// and lets shutdown wait for the ones in flight.

type jobGuard struct {
	mu     sync.Mutex
	active map[string]bool
	wg     sync.WaitGroup
}

// Acquire claims name. ok is false when a job of that name is already
// active; otherwise release must be called when the job ends. Calling
// release twice is harmless.
func (g *jobGuard) Acquire(name string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active[name] {
		return nil, false
	}
	if g.active == nil {
		g.active = make(map[string]bool)
	}
	g.active[name] = true
	g.wg.Add(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, name)
			g.mu.Unlock()
			g.wg.Done()
		})
	}, true
}

// Active reports whether name is currently claimed.
func (g *jobGuard) Active(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active[name]
}

// Wait returns once every active job has released, or when ctx ends.
func (g *jobGuard) Wait(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
