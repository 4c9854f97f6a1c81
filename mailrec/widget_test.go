package mailrec

import (
	"context"
	"errors"
	"testing"

	"github.com/3rs4lg4d0/mailpulse/test"
	"github.com/stretchr/testify/assert"
)

// staticReader answers every query with the same aggregates.
type staticReader struct {
	aggs      []Aggregate
	err       error
	lastLimit int
}

func (s *staticReader) Query(_ context.Context, _ string, limit int) ([]Aggregate, error) {
	s.lastLimit = limit
	return s.aggs, s.err
}

func TestTopMails(t *testing.T) {
	type args struct {
		aggs  []Aggregate
		limit int
	}
	testcases := []struct {
		name         string
		args         args
		want         []MailSent
		wantWarnings int
	}{
		{
			name: "empty list",
			args: args{limit: 10},
			want: []MailSent{},
		},
		{
			name: "mailable class and count",
			args: args{
				aggs:  []Aggregate{{Key: test.MailKey("test@example.com", "Test Subject", "App\\\\Mail\\\\WelcomeEmail"), Count: 5}},
				limit: 10,
			},
			want: []MailSent{{To: "test@example.com", Subject: "Test Subject", Mailable: strPtr("App\\Mail\\WelcomeEmail"), Status: "sent", Count: 5}},
		},
		{
			name: "null subject",
			args: args{
				aggs:  []Aggregate{{Key: `{"to":"test@example.com","subject":null,"mailable":null,"status":"sent"}`, Count: 1}},
				limit: 10,
			},
			want: []MailSent{{To: "test@example.com", Subject: NoSubject, Status: "sent", Count: 1}},
		},
		{
			name: "malformed keys are skipped",
			args: args{
				aggs: []Aggregate{
					{Key: "garbage", Count: 9},
					{Key: test.MailKey("test1@example.com, test2@example.com", "Test Subject", "TestMailable"), Count: 3},
				},
				limit: 10,
			},
			want:         []MailSent{{To: "test1@example.com, test2@example.com", Subject: "Test Subject", Mailable: strPtr("TestMailable"), Status: "sent", Count: 3}},
			wantWarnings: 1,
		},
		{
			name: "limit is applied",
			args: args{
				aggs: []Aggregate{
					{Key: test.MailKey("test1@example.com", "Test Subject 1", "TestMailable"), Count: 3},
					{Key: test.MailKey("test2@example.com", "Test Subject 2", "TestMailable"), Count: 2},
					{Key: test.MailKey("test3@example.com", "Test Subject 3", "TestMailable"), Count: 1},
				},
				limit: 2,
			},
			want: []MailSent{
				{To: "test1@example.com", Subject: "Test Subject 1", Mailable: strPtr("TestMailable"), Status: "sent", Count: 3},
				{To: "test2@example.com", Subject: "Test Subject 2", Mailable: strPtr("TestMailable"), Status: "sent", Count: 2},
			},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			l := &test.TestLogger{}
			got, err := TopMails(context.Background(), &staticReader{aggs: tc.args.aggs}, tc.args.limit, l)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Len(t, l.Messages, tc.wantWarnings)
		})
	}
}

func TestTopMailsDefaultLimit(t *testing.T) {
	r := &staticReader{}
	_, err := TopMails(context.Background(), r, 0, nil)
	assert.NoError(t, err)
	assert.Equal(t, defaultLimit, r.lastLimit)
}

func TestTopMailsQueryError(t *testing.T) {
	r := &staticReader{err: errors.New("down")}
	_, err := TopMails(context.Background(), r, 10, nil)
	assert.ErrorIs(t, err, r.err)
}
