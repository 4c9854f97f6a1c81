package mailrec

const (
	defaultSampleRate float64 = 1.0
	defaultLimit      int     = 10
)

// Settings holds the recorder filters and the reader display limit.
type Settings struct {
	SampleRate        float64  // fraction of events to record, in [0,1]
	IgnoredRecipients []string // events whose joined recipients contain any of these are dropped
	IgnoredMailables  []string // events whose sender class equals any of these are dropped
	Limit             int      // maximum number of rows returned by TopMails
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		SampleRate:        defaultSampleRate,
		IgnoredRecipients: []string{},
		IgnoredMailables:  []string{},
		Limit:             defaultLimit,
	}
}

// validateSettings clamps the stablished settings and sets defaults if needed.
// A zero sample rate is a valid value and means "record nothing".
func validateSettings(s *Settings) {
	if s.SampleRate > 1 {
		s.SampleRate = 1
	}
	if s.SampleRate < 0 {
		s.SampleRate = 0
	}
	if s.Limit <= 0 {
		s.Limit = defaultLimit
	}
	if s.IgnoredRecipients == nil {
		s.IgnoredRecipients = []string{}
	}
	if s.IgnoredMailables == nil {
		s.IgnoredMailables = []string{}
	}
}
