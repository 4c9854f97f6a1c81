package mailrec

import (
	"context"
	"errors"
	"fmt"
)

// MailSent is a row of the "top senders" table.
type MailSent struct {
	To       string
	Subject  string
	Mailable *string
	Status   string
	Count    int64
}

// TopMails reads the most frequent mail_sent counters from r. Entries whose
// key cannot be parsed are logged and skipped. A non-positive limit falls
// back to the default display limit.
func TopMails(ctx context.Context, r Reader, limit int, l Logger) ([]MailSent, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if l == nil {
		l = &NopLogger{}
	}

	aggs, err := r.Query(ctx, MailSentType, limit)
	if err != nil {
		return nil, fmt.Errorf("could not query the '%s' counters: %w", MailSentType, err)
	}

	mails := make([]MailSent, 0, len(aggs))
	for _, a := range aggs {
		k, err := ParseKey(a.Key)
		if err != nil {
			var mke *MalformedKeyError
			if errors.As(err, &mke) {
				l.Warn(mke.Error())
				continue
			}
			return nil, err
		}
		mails = append(mails, MailSent{
			To:       k.To,
			Subject:  k.Subject,
			Mailable: k.Mailable,
			Status:   k.Status,
			Count:    a.Count,
		})
		if len(mails) == limit {
			break
		}
	}
	return mails, nil
}
