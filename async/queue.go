package async

import (
	"context"
	"sync"
	"time"

	"github.com/coinforge/walletcore/errorcodes"
	"github.com/coinforge/walletcore/fn"
)

// taskQueue is an unbounded FIFO of tasks. Workers wait on signal, which
// holds at most one pending notification.
type taskQueue struct {
	mu     sync.Mutex
	tasks  []func()
	signal chan struct{}
}

func newTaskQueue() *taskQueue {
	return &taskQueue{
		signal: make(chan struct{}, 1),
	}
}

func (q *taskQueue) notify() {
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *taskQueue) push(task func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()

	q.notify()
}

// pop removes the oldest task. The boolean reports whether more tasks are
// left behind it.
func (q *taskQueue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.tasks) == 0 {
		return nil, false
	}

	task := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]

	return task, len(q.tasks) > 0
}

func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}

type executorState uint8

const (
	stateIdle executorState = iota
	stateRunning
	stateStopped
)

// queueExecutor is the machinery shared by EventLoop and ThreadPool: a FIFO
// queue served by a fixed number of worker goroutines.
type queueExecutor struct {
	name    string
	workers int
	cfg     *contextConfig

	queue *taskQueue
	gm    *fn.GoroutineManager

	mu    sync.Mutex
	state executorState
}

func newQueueExecutor(name string, workers int,
	opts []ContextOption) *queueExecutor {

	cfg := defaultContextConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &queueExecutor{
		name:    name,
		workers: workers,
		cfg:     cfg,
		queue:   newTaskQueue(),
		gm:      fn.NewGoroutineManager(),
	}
}

// Name returns the name the context reports to its observer.
func (e *queueExecutor) Name() string {
	return e.name
}

// Start launches the worker goroutines. Tasks submitted before Start are
// kept and run once the workers are up.
func (e *queueExecutor) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != stateIdle {
		return errorcodes.Newf(
			errorcodes.ErrCodeIllegalState,
			"%s cannot be started twice", e.name,
		)
	}

	log.Debugf("Starting %s with %d worker(s)", e.name, e.workers)

	for i := 0; i < e.workers; i++ {
		e.gm.Go(context.Background(), e.work)
	}
	e.state = stateRunning

	// Wake a worker for anything queued before start.
	if e.queue.len() > 0 {
		e.queue.notify()
	}

	return nil
}

// Stop refuses new tasks, lets the workers drain what is already queued and
// waits for them to exit. It must not be called from one of the context's
// own tasks.
func (e *queueExecutor) Stop() error {
	e.mu.Lock()
	if e.state == stateStopped {
		e.mu.Unlock()

		return errorcodes.Newf(
			errorcodes.ErrCodeIllegalState,
			"%s already stopped", e.name,
		)
	}
	wasRunning := e.state == stateRunning
	e.state = stateStopped
	e.mu.Unlock()

	log.Debugf("Stopping %s", e.name)

	e.gm.Stop()

	// A context that never started has nobody to drain its queue.
	if !wasRunning {
		e.drain()
	}

	log.Debugf("%s stopped", e.name)

	return nil
}

// IsRunning reports whether Start has been called and Stop has not.
func (e *queueExecutor) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state == stateRunning
}

// Execute queues task. Tasks submitted after Stop are dropped.
func (e *queueExecutor) Execute(task func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == stateStopped {
		log.Warnf("Dropping task submitted to stopped %s", e.name)
		return
	}

	e.cfg.observer.TaskSubmitted(e.name)
	e.queue.push(task)
}

// Delay queues task once d has elapsed on the context's clock. The task is
// dropped if the context stops first.
func (e *queueExecutor) Delay(task func(), d time.Duration) {
	tick := e.cfg.clock.TickAfter(d)

	started := e.gm.Go(context.Background(), func(ctx context.Context) {
		select {
		case <-tick:
			e.Execute(task)

		case <-ctx.Done():
			log.Debugf("Dropping delayed task on %s", e.name)
		}
	})
	if !started {
		log.Warnf("Dropping delayed task submitted to stopped %s",
			e.name)
	}
}

// work is the worker loop. It serves the queue until its context is
// cancelled and then runs whatever is left.
func (e *queueExecutor) work(ctx context.Context) {
	for {
		select {
		case <-e.queue.signal:
			task, more := e.queue.pop()
			if more {
				e.queue.notify()
			}
			if task != nil {
				runTask(e.name, e.cfg, task)
			}

		case <-ctx.Done():
			e.drain()
			return
		}
	}
}

func (e *queueExecutor) drain() {
	for {
		task, _ := e.queue.pop()
		if task == nil {
			return
		}

		runTask(e.name, e.cfg, task)
	}
}

// EventLoop runs tasks one at a time, in submission order, on a single
// dedicated goroutine.
type EventLoop struct {
	*queueExecutor
}

// A compile-time check to ensure EventLoop implements ExecutionContext.
var _ ExecutionContext = (*EventLoop)(nil)

// NewEventLoop creates a stopped event loop. Call Start to begin processing.
func NewEventLoop(name string, opts ...ContextOption) *EventLoop {
	return &EventLoop{
		queueExecutor: newQueueExecutor(name, 1, opts),
	}
}

// ThreadPool runs tasks on a fixed number of worker goroutines. Tasks are
// taken in submission order but may run concurrently.
type ThreadPool struct {
	*queueExecutor
}

// A compile-time check to ensure ThreadPool implements ExecutionContext.
var _ ExecutionContext = (*ThreadPool)(nil)

// NewThreadPool creates a stopped pool with the given number of workers,
// which must be positive.
func NewThreadPool(name string, workers int,
	opts ...ContextOption) (*ThreadPool, error) {

	if workers <= 0 {
		return nil, errorcodes.Newf(
			errorcodes.ErrCodeInvalidArgument,
			"thread pool needs at least one worker, got %d",
			workers,
		)
	}

	return &ThreadPool{
		queueExecutor: newQueueExecutor(name, workers, opts),
	}, nil
}

// Workers returns the size of the pool.
func (p *ThreadPool) Workers() int {
	return p.workers
}
