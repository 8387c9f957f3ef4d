package fn

import (
	"context"
	"sync"
)

// GoroutineManager launches goroutines that share a common shutdown. Every
// goroutine receives a context that is cancelled when either its parent
// context is done or Stop is called, and Stop waits for all of them to
// return.
type GoroutineManager struct {
	quit     context.Context
	quitFunc context.CancelFunc

	// mu orders wg.Add in Go against wg.Wait in Stop.
	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// NewGoroutineManager returns a running manager.
func NewGoroutineManager() *GoroutineManager {
	quit, quitFunc := context.WithCancel(context.Background())

	return &GoroutineManager{
		quit:     quit,
		quitFunc: quitFunc,
	}
}

// Go starts f in a new goroutine. It returns false, without starting
// anything, if the manager is stopped or ctx is already done. f must return
// once its context is cancelled.
func (g *GoroutineManager) Go(ctx context.Context,
	f func(ctx context.Context)) bool {

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.stopped || ctx.Err() != nil {
		return false
	}

	ctx, cancel := context.WithCancel(ctx)
	unlink := context.AfterFunc(g.quit, cancel)

	g.wg.Add(1)
	go func() {
		defer func() {
			unlink()
			cancel()
			g.wg.Done()
		}()

		f(ctx)
	}()

	return true
}

// Stop cancels every running goroutine, rejects new ones and waits for the
// running ones to return. It may be called more than once.
func (g *GoroutineManager) Stop() {
	g.mu.Lock()
	g.stopped = true
	g.quitFunc()
	g.mu.Unlock()

	g.wg.Wait()
}

// Done returns a channel that is closed once Stop has been called. The
// goroutines may still be winding down at that point.
func (g *GoroutineManager) Done() <-chan struct{} {
	return g.quit.Done()
}
