package prometheus

import (
	"github.com/3rs4lg4d0/mailpulse/mailrec"
	"github.com/prometheus/client_golang/prometheus"
)

// Counter adapts a prometheus counter to mailrec.Counter. Negative deltas
// are ignored since prometheus counters only go up.
type Counter struct {
	Counter prometheus.Counter
}

var _ mailrec.Counter = (*Counter)(nil)

func (c *Counter) Inc(delta int64) {
	if delta <= 0 {
		return
	}
	c.Counter.Add(float64(delta))
}

// RecorderMetrics groups the recorder counters, partitioned by outcome.
type RecorderMetrics struct {
	Events *prometheus.CounterVec

	Recorded *Counter
	Dropped  *Counter
	Failed   *Counter
}

// NewRecorderMetrics registers the recorder counters in reg.
func NewRecorderMetrics(reg prometheus.Registerer) *RecorderMetrics {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mailpulse_mail_sent_events_total",
		Help: "Total mail sent events seen by the recorder, by outcome",
	}, []string{"outcome"})
	reg.MustRegister(events)

	return &RecorderMetrics{
		Events:   events,
		Recorded: &Counter{Counter: events.WithLabelValues("recorded")},
		Dropped:  &Counter{Counter: events.WithLabelValues("dropped")},
		Failed:   &Counter{Counter: events.WithLabelValues("failed")},
	}
}
