package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "walletcore"

// ContextMetrics records task counts and run times per execution context.
// It satisfies async.TaskObserver.
type ContextMetrics struct {
	submitted *prometheus.CounterVec
	completed *prometheus.CounterVec
	panicked  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewContextMetrics creates the collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewContextMetrics(reg prometheus.Registerer) (*ContextMetrics,
	error) {

	m := &ContextMetrics{
		submitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "tasks_submitted_total",
			Help:      "Tasks accepted by an execution context.",
		}, []string{"context"}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "tasks_completed_total",
			Help:      "Tasks that returned or panicked.",
		}, []string{"context"}),
		panicked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "task_panics_total",
			Help:      "Tasks that ended in a recovered panic.",
		}, []string{"context"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "executor",
			Name:      "task_duration_seconds",
			Help:      "Wall time spent running a task.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"context"}),
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *ContextMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.submitted, m.completed, m.panicked, m.duration,
	}
}

// TaskSubmitted counts a task accepted by the named context.
func (m *ContextMetrics) TaskSubmitted(contextName string) {
	m.submitted.WithLabelValues(contextName).Inc()
}

// TaskCompleted records the outcome and run time of a task.
func (m *ContextMetrics) TaskCompleted(contextName string,
	elapsed time.Duration, panicked bool) {

	m.completed.WithLabelValues(contextName).Inc()
	m.duration.WithLabelValues(contextName).Observe(elapsed.Seconds())

	if panicked {
		m.panicked.WithLabelValues(contextName).Inc()
	}
}
