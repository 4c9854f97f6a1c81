package mailrec

import (
	"math/rand"
	"strings"
)

// RandomSource provides uniform floats in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// globalRand draws from the package level math/rand source, which is safe
// for concurrent use.
type globalRand struct{}

func (globalRand) Float64() float64 {
	return rand.Float64()
}

// ShouldRecord applies the sample rate. At most one value is drawn from rnd,
// and none at all when the rate is 0 or 1.
func ShouldRecord(s Settings, rnd RandomSource) bool {
	if s.SampleRate >= 1 {
		return true
	}
	if s.SampleRate <= 0 {
		return false
	}
	return rnd.Float64() <= s.SampleRate
}

// ExtractRecipients joins the event recipients with ", " preserving order.
func ExtractRecipients(e *OutboundMailEvent) string {
	return strings.Join(e.Recipients, ", ")
}

// ExtractSenderClass returns the mailable class of the event. Notifications
// are never attributed to a class.
func ExtractSenderClass(e *OutboundMailEvent) *string {
	if e.IsNotification || e.SenderClassName == "" {
		return nil
	}
	c := e.SenderClassName
	return &c
}

// IsIgnored reports whether an event must be dropped. Recipients are matched
// by substring and sender classes by exact, case sensitive comparison.
func IsIgnored(recipients string, senderClass *string, s Settings) bool {
	for _, ignored := range s.IgnoredRecipients {
		// an empty entry would match every recipient list
		if ignored != "" && strings.Contains(recipients, ignored) {
			return true
		}
	}
	if senderClass == nil {
		return false
	}
	for _, ignored := range s.IgnoredMailables {
		if *senderClass == ignored {
			return true
		}
	}
	return false
}
