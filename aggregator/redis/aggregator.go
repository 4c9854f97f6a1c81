package redis

import (
	"context"
	"fmt"

	"github.com/3rs4lg4d0/mailpulse/mailrec"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "mailpulse:"

// Aggregator keeps one sorted set per aggregation type, scoring every key by
// its count.
type Aggregator struct {
	client redis.UniversalClient
	prefix string
	logger mailrec.Logger
}

var _ mailrec.Aggregator = (*Aggregator)(nil)
var _ mailrec.Reader = (*Aggregator)(nil)
var _ mailrec.Loggable = (*Aggregator)(nil)

// New creates a redis backed aggregator. An empty prefix uses "mailpulse:".
func New(client redis.UniversalClient, prefix string) *Aggregator {
	if client == nil {
		panic("client is mandatory")
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Aggregator{
		client: client,
		prefix: prefix,
		logger: &mailrec.NopLogger{},
	}
}

// SetLogger sets an optional logger.
func (a *Aggregator) SetLogger(l mailrec.Logger) {
	a.logger = l
}

// Increment adds one to the score of key in the sorted set of typ.
func (a *Aggregator) Increment(ctx context.Context, typ string, key string) error {
	if err := a.client.ZIncrBy(ctx, a.setName(typ), 1, key).Err(); err != nil {
		return fmt.Errorf("redis ZINCRBY failed: %w", err)
	}
	return nil
}

// Query returns the limit highest scored keys of typ. Redis orders equal
// scores lexicographically, so reversed ties come out in descending key order.
func (a *Aggregator) Query(ctx context.Context, typ string, limit int) ([]mailrec.Aggregate, error) {
	if limit <= 0 {
		return []mailrec.Aggregate{}, nil
	}
	zs, err := a.client.ZRevRangeWithScores(ctx, a.setName(typ), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis ZREVRANGE failed: %w", err)
	}

	aggs := make([]mailrec.Aggregate, 0, len(zs))
	for _, z := range zs {
		key, ok := z.Member.(string)
		if !ok {
			a.logger.Warn(fmt.Sprintf("skipping non string member in '%s'", a.setName(typ)))
			continue
		}
		aggs = append(aggs, mailrec.Aggregate{Key: key, Count: int64(z.Score)})
	}
	a.logger.Debug(fmt.Sprintf("read %d aggregates from '%s'", len(aggs), a.setName(typ)))
	return aggs, nil
}

func (a *Aggregator) setName(typ string) string {
	return a.prefix + typ
}
