package mailrec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	// MailSentType is the aggregation type used for every recorded event.
	MailSentType = "mail_sent"

	StatusSent    = "sent"
	NoSubject     = "(no subject)"
	maxKeyPreview = 64
)

// AggregationKey is the identity of a counter in the aggregator. Field order
// is part of the wire format: two equal keys must serialize to equal bytes.
type AggregationKey struct {
	To       string  `json:"to"`
	Subject  string  `json:"subject"`
	Mailable *string `json:"mailable"`
	Status   string  `json:"status"`
}

// BuildKey builds the aggregation key of a recorded event.
func BuildKey(recipients, subject string, senderClass *string) AggregationKey {
	if subject == "" {
		subject = NoSubject
	}
	return AggregationKey{
		To:       recipients,
		Subject:  subject,
		Mailable: senderClass,
		Status:   StatusSent,
	}
}

// Marshal serializes the key deterministically. Control characters are
// escaped and invalid UTF-8 is replaced, so any input string is accepted.
func (k AggregationKey) Marshal() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(k); err != nil {
		return "", fmt.Errorf("could not serialize the aggregation key: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// MalformedKeyError is returned by ParseKey when a stored key is not a
// serialized AggregationKey.
type MalformedKeyError struct {
	Key string
	Err error
}

func (e *MalformedKeyError) Error() string {
	key := e.Key
	if len(key) > maxKeyPreview {
		key = key[:maxKeyPreview] + "..."
	}
	return fmt.Sprintf("malformed aggregation key %q: %v", key, e.Err)
}

func (e *MalformedKeyError) Unwrap() error {
	return e.Err
}

// rawKey tells missing and null fields apart from empty ones.
type rawKey struct {
	To       *string `json:"to"`
	Subject  *string `json:"subject"`
	Mailable *string `json:"mailable"`
	Status   *string `json:"status"`
}

// ParseKey parses a serialized key. Missing or null fields get the same
// defaults BuildKey applies, except the recipients which default to "".
func ParseKey(s string) (AggregationKey, error) {
	var rk *rawKey
	if err := json.Unmarshal([]byte(s), &rk); err != nil {
		return AggregationKey{}, &MalformedKeyError{Key: s, Err: err}
	}
	if rk == nil {
		return AggregationKey{}, &MalformedKeyError{Key: s, Err: errors.New("null key")}
	}

	k := AggregationKey{
		Subject:  NoSubject,
		Mailable: rk.Mailable,
		Status:   StatusSent,
	}
	if rk.To != nil {
		k.To = *rk.To
	}
	if rk.Subject != nil {
		k.Subject = *rk.Subject
	}
	if rk.Status != nil {
		k.Status = *rk.Status
	}
	return k, nil
}
