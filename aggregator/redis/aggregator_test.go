package redis

import (
	"context"
	"testing"

	"github.com/3rs4lg4d0/mailpulse/mailrec"
	"github.com/3rs4lg4d0/mailpulse/test"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestNew(t *testing.T) {
	assert.Panics(t, func() {
		New(nil, "")
	})

	_, client := setupTestRedis(t)
	a := New(client, "")
	assert.Equal(t, "mailpulse:mail_sent", a.setName(mailrec.MailSentType))
}

func TestIncrement(t *testing.T) {
	mr, client := setupTestRedis(t)
	a := New(client, "test:")
	key := test.MailKey("a@x.com", "Hi", "")

	for i := 0; i < 3; i++ {
		assert.NoError(t, a.Increment(context.Background(), mailrec.MailSentType, key))
	}

	score, err := mr.ZScore("test:mail_sent", key)
	assert.NoError(t, err)
	assert.Equal(t, float64(3), score)
}

func TestIncrementError(t *testing.T) {
	mr, client := setupTestRedis(t)
	a := New(client, "")
	mr.SetError("READONLY")

	err := a.Increment(context.Background(), mailrec.MailSentType, "k")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ZINCRBY")
}

func TestQuery(t *testing.T) {
	testcases := []struct {
		name  string
		seed  map[string]float64
		limit int
		want  []mailrec.Aggregate
	}{
		{
			name:  "empty set",
			limit: 10,
			want:  []mailrec.Aggregate{},
		},
		{
			name:  "ordered by count",
			seed:  map[string]float64{"a": 1, "b": 5, "c": 3},
			limit: 10,
			want:  []mailrec.Aggregate{{Key: "b", Count: 5}, {Key: "c", Count: 3}, {Key: "a", Count: 1}},
		},
		{
			name:  "limited",
			seed:  map[string]float64{"a": 1, "b": 5, "c": 3},
			limit: 2,
			want:  []mailrec.Aggregate{{Key: "b", Count: 5}, {Key: "c", Count: 3}},
		},
		{
			name:  "non positive limit",
			seed:  map[string]float64{"a": 1},
			limit: 0,
			want:  []mailrec.Aggregate{},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			mr, client := setupTestRedis(t)
			for k, v := range tc.seed {
				_, err := mr.ZAdd("mailpulse:mail_sent", v, k)
				assert.NoError(t, err)
			}
			a := New(client, "")
			a.SetLogger(&test.TestLogger{})

			got, err := a.Query(context.Background(), mailrec.MailSentType, tc.limit)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRecorderWithRedis(t *testing.T) {
	_, client := setupTestRedis(t)
	a := New(client, "")
	r := mailrec.New(mailrec.DefaultSettings(), a)

	r.Record(context.Background(), &mailrec.OutboundMailEvent{Recipients: []string{"a@x.com"}, Subject: "Hi"})
	r.Record(context.Background(), &mailrec.OutboundMailEvent{Recipients: []string{"a@x.com"}, Subject: "Hi"})
	r.Record(context.Background(), &mailrec.OutboundMailEvent{Recipients: []string{"b@x.com"}, Subject: "Hi"})

	mails, err := mailrec.TopMails(context.Background(), a, 10, nil)
	assert.NoError(t, err)
	assert.Len(t, mails, 2)
	assert.Equal(t, "a@x.com", mails[0].To)
	assert.Equal(t, int64(2), mails[0].Count)
}
