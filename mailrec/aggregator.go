package mailrec

import "context"

// Aggregator is the external counter store that recorded events are
// forwarded to.
type Aggregator interface {
	// Increment adds one to the counter identified by (typ, key). Repeated
	// calls with byte-identical keys accumulate on the same counter.
	Increment(ctx context.Context, typ string, key string) error
}

// Aggregate is a counter read back from a Reader.
type Aggregate struct {
	Key   string
	Count int64
}

// Reader reads aggregated counters back. Implementations return at most
// limit entries ordered by count, highest first.
type Reader interface {
	Query(ctx context.Context, typ string, limit int) ([]Aggregate, error)
}

// TxKey is the context key under which database backed aggregators look for
// an ongoing business transaction.
type TxKey any
