package mailrec

import "net/mail"

// Keys looked up by NewEventFromData in the framework event payload.
const (
	DataKeyNotification     = "__notification"
	DataKeyMailable         = "__mailable"
	DataKeyMailableFallback = "mailable"
)

// OutboundMailEvent is the strongly typed view of a "mail sent" event. It is
// populated once at the framework boundary and never inspected ad hoc.
type OutboundMailEvent struct {
	Recipients      []string // recipient addresses in envelope order
	Subject         string   // message subject, empty when absent
	SenderClassName string   // originating mail template class, empty when unknown
	IsNotification  bool     // the message was produced by the notification subsystem
}

// NewEventFromData builds an OutboundMailEvent from the loosely typed payload
// that frameworks attach to their "message sent" events.
func NewEventFromData(recipients []string, subject string, data map[string]any) *OutboundMailEvent {
	e := &OutboundMailEvent{
		Recipients: make([]string, 0, len(recipients)),
		Subject:    subject,
	}
	for _, r := range recipients {
		e.Recipients = append(e.Recipients, bareAddress(r))
	}

	if v, ok := data[DataKeyNotification]; ok && v != nil {
		e.IsNotification = true
		return e
	}
	for _, k := range []string{DataKeyMailable, DataKeyMailableFallback} {
		if v, ok := data[k]; ok && v != nil {
			if s, ok := v.(string); ok {
				e.SenderClassName = s
			}
			break
		}
	}
	return e
}

// bareAddress strips the display name from "Name <user@host>" recipients.
func bareAddress(r string) string {
	a, err := mail.ParseAddress(r)
	if err != nil {
		return r
	}
	return a.Address
}
