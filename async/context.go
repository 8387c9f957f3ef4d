// Package async implements write-once futures and promises whose callbacks
// run on pluggable execution contexts.
package async

import (
	"runtime/debug"
	"time"

	"github.com/coinforge/walletcore/clock"
	"github.com/coinforge/walletcore/errorcodes"
)

// ExecutionContext decides where and when a task runs.
type ExecutionContext interface {
	// Execute schedules task to run as soon as the context allows.
	Execute(task func())

	// Delay schedules task to run once d has elapsed.
	Delay(task func(), d time.Duration)
}

// TaskObserver is notified about the life cycle of every task run by a
// context. It must be safe for concurrent use.
type TaskObserver interface {
	// TaskSubmitted is called when a task is accepted by the named
	// context.
	TaskSubmitted(contextName string)

	// TaskCompleted is called once a task returns or panics.
	TaskCompleted(contextName string, elapsed time.Duration,
		panicked bool)
}

type noopObserver struct{}

func (noopObserver) TaskSubmitted(string) {}

func (noopObserver) TaskCompleted(string, time.Duration, bool) {}

// contextConfig holds the options shared by all execution contexts.
type contextConfig struct {
	clock    clock.Clock
	observer TaskObserver
}

func defaultContextConfig() *contextConfig {
	return &contextConfig{
		clock:    clock.NewDefaultClock(),
		observer: noopObserver{},
	}
}

// ContextOption configures an execution context.
type ContextOption func(*contextConfig)

// WithClock sets the clock used to time delayed tasks.
func WithClock(c clock.Clock) ContextOption {
	return func(cfg *contextConfig) {
		cfg.clock = c
	}
}

// WithObserver attaches a TaskObserver to the context.
func WithObserver(o TaskObserver) ContextOption {
	return func(cfg *contextConfig) {
		if o == nil {
			o = noopObserver{}
		}
		cfg.observer = o
	}
}

// runTask executes task, recovering and logging any panic so a failing task
// never takes its context down with it.
func runTask(name string, cfg *contextConfig, task func()) {
	start := cfg.clock.Now()
	panicked := true

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Task on %s panicked: %v\n%s", name,
				errorcodes.FromPanic(r), debug.Stack())
		}

		cfg.observer.TaskCompleted(
			name, cfg.clock.Now().Sub(start), panicked,
		)
	}()

	task()
	panicked = false
}

// Immediate runs every task on the calling goroutine. Delayed tasks run on a
// goroutine of their own once the delay has elapsed.
type Immediate struct {
	name string
	cfg  *contextConfig
}

// A compile-time check to ensure Immediate implements ExecutionContext.
var _ ExecutionContext = (*Immediate)(nil)

// ImmediateContext is the shared inline context used when a caller has no
// preference.
var ImmediateContext = NewImmediate()

// NewImmediate creates an inline execution context.
func NewImmediate(opts ...ContextOption) *Immediate {
	cfg := defaultContextConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Immediate{name: "immediate", cfg: cfg}
}

// Execute runs task before returning.
func (i *Immediate) Execute(task func()) {
	i.cfg.observer.TaskSubmitted(i.name)
	runTask(i.name, i.cfg, task)
}

// Delay runs task on a new goroutine after d has elapsed on the clock.
func (i *Immediate) Delay(task func(), d time.Duration) {
	i.cfg.observer.TaskSubmitted(i.name)

	tick := i.cfg.clock.TickAfter(d)
	go func() {
		<-tick
		runTask(i.name, i.cfg, task)
	}()
}
