package pgxv5

import (
	"context"
	"fmt"
	"reflect"

	"github.com/3rs4lg4d0/mailpulse/mailrec"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	incrementSql = "INSERT INTO mail_aggregate (type, key, count, updated_at) VALUES ($1, $2, 1, NOW()) " +
		"ON CONFLICT (type, key) DO UPDATE SET count = mail_aggregate.count + 1, updated_at = NOW()"
	querySql = "SELECT key, count FROM mail_aggregate WHERE type = $1 ORDER BY count DESC, key ASC LIMIT $2"
)

// dbpool is a helper interface to work with pgxpool.Pool.
type dbpool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Aggregator stores counters in the 'mail_aggregate' table through a pgx pool.
type Aggregator struct {
	txKey  mailrec.TxKey
	db     dbpool
	logger mailrec.Logger
}

var _ mailrec.Loggable = (*Aggregator)(nil)
var _ mailrec.Aggregator = (*Aggregator)(nil)
var _ mailrec.Reader = (*Aggregator)(nil)

// New creates a pgx aggregator. When txKey is not nil and the context of an
// increment carries a pgx.Tx under it, the increment joins that transaction.
func New(txKey mailrec.TxKey, pool dbpool) *Aggregator {
	if pool == nil || reflect.ValueOf(pool).IsNil() {
		panic("pool is mandatory")
	}
	return &Aggregator{
		txKey:  txKey,
		db:     pool,
		logger: &mailrec.NopLogger{},
	}
}

// SetLogger sets an optional logger.
func (a *Aggregator) SetLogger(l mailrec.Logger) {
	a.logger = l
}

// Increment upserts the counter row of (typ, key).
func (a *Aggregator) Increment(ctx context.Context, typ string, key string) error {
	var err error
	if tx, ok := a.tx(ctx); ok {
		_, err = tx.Exec(ctx, incrementSql, typ, key)
	} else {
		_, err = a.db.Exec(ctx, incrementSql, typ, key)
	}
	if err != nil {
		return fmt.Errorf("could not increment the aggregate: %w", err)
	}
	return nil
}

// Query returns the limit most counted keys of typ.
func (a *Aggregator) Query(ctx context.Context, typ string, limit int) ([]mailrec.Aggregate, error) {
	aggs := []mailrec.Aggregate{}
	if limit <= 0 {
		return aggs, nil
	}

	rows, err := a.db.Query(ctx, querySql, typ, limit)
	if err != nil {
		return nil, fmt.Errorf("could not query the aggregates: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ag mailrec.Aggregate
		if err := rows.Scan(&ag.Key, &ag.Count); err != nil {
			return nil, err
		}
		aggs = append(aggs, ag)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	a.logger.Debug(fmt.Sprintf("read %d '%s' aggregates", len(aggs), typ))
	return aggs, nil
}

func (a *Aggregator) tx(ctx context.Context) (pgx.Tx, bool) {
	if a.txKey == nil {
		return nil, false
	}
	tx, ok := ctx.Value(a.txKey).(pgx.Tx)
	return tx, ok && tx != nil
}
