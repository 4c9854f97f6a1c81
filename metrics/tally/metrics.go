package tally

import (
	"github.com/3rs4lg4d0/mailpulse/mailrec"
	tally "github.com/uber-go/tally/v4"
)

type Counter struct {
	Counter tally.Counter
}

var _ mailrec.Counter = (*Counter)(nil)

func (c *Counter) Inc(delta int64) {
	c.Counter.Inc(delta)
}

// NewRecorderCounters creates the recorded, dropped and failed counters of
// a recorder under the "mail_sent" sub scope of s.
func NewRecorderCounters(s tally.Scope) (recorded, dropped, failed *Counter) {
	sub := s.SubScope("mail_sent")
	return &Counter{Counter: sub.Counter("recorded")},
		&Counter{Counter: sub.Counter("dropped")},
		&Counter{Counter: sub.Counter("failed")}
}
