package mailrec

import (
	"context"
	"fmt"
)

// Recorder listens for outbound mail events and forwards the recorded ones
// to an Aggregator. It holds no mutable state and is safe for concurrent use
// as long as the aggregator is.
type Recorder struct {
	settings    Settings
	aggregator  Aggregator
	rnd         RandomSource
	logger      Logger
	recordedCtr Counter
	droppedCtr  Counter
	failedCtr   Counter
}

// Option allows optional configuration.
type Option func(r *Recorder)

// WithLogger allows clients to configure an optional logger.
func WithLogger(l Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRandomSource replaces the random source used for sampling.
func WithRandomSource(rnd RandomSource) Option {
	return func(r *Recorder) {
		if rnd != nil {
			r.rnd = rnd
		}
	}
}

// WithCounters allows clients to configure optional counters for
// observability. Nil counters are ignored.
func WithCounters(recorded, dropped, failed Counter) Option {
	return func(r *Recorder) {
		if recorded != nil {
			r.recordedCtr = recorded
		}
		if dropped != nil {
			r.droppedCtr = dropped
		}
		if failed != nil {
			r.failedCtr = failed
		}
	}
}

// New creates a Recorder using the provided settings, aggregator and options.
func New(s Settings, a Aggregator, options ...Option) *Recorder {
	if a == nil {
		panic("you must provide an aggregator")
	}

	validateSettings(&s)

	r := &Recorder{
		settings:    s,
		aggregator:  a,
		rnd:         globalRand{},
		logger:      &NopLogger{},
		recordedCtr: &NopCounter{},
		droppedCtr:  &NopCounter{},
		failedCtr:   &NopCounter{},
	}

	for _, o := range options {
		o(r)
	}

	if l, ok := a.(Loggable); ok {
		l.SetLogger(r.logger)
	}

	return r
}

// Settings returns the validated settings in use.
func (r *Recorder) Settings() Settings {
	return r.settings
}

// Record handles a single "mail sent" event. Forwarding is best effort: an
// aggregator failure is logged and counted, never retried.
func (r *Recorder) Record(ctx context.Context, e *OutboundMailEvent) {
	forwarded, err := ProcessEvent(ctx, e, r.settings, r.rnd, r.aggregator)
	switch {
	case err != nil:
		r.logger.Error("forwarding the mail sent event", err)
		r.failedCtr.Inc(1)
	case forwarded:
		r.recordedCtr.Inc(1)
	default:
		r.logger.Debug(fmt.Sprintf("mail sent event to '%s' was not recorded", ExtractRecipients(e)))
		r.droppedCtr.Inc(1)
	}
}

// ProcessEvent samples and filters an event and, when it survives, forwards
// one increment of type MailSentType to the aggregator. The returned flag
// reports whether the aggregator was called.
func ProcessEvent(ctx context.Context, e *OutboundMailEvent, s Settings, rnd RandomSource, a Aggregator) (bool, error) {
	if !ShouldRecord(s, rnd) {
		return false, nil
	}

	to := ExtractRecipients(e)
	mailable := ExtractSenderClass(e)
	if IsIgnored(to, mailable, s) {
		return false, nil
	}

	key, err := BuildKey(to, e.Subject, mailable).Marshal()
	if err != nil {
		return false, err
	}
	if err := a.Increment(ctx, MailSentType, key); err != nil {
		return true, fmt.Errorf("could not increment the '%s' counter: %w", MailSentType, err)
	}
	return true, nil
}
