package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/3rs4lg4d0/mailpulse/mailrec"
)

const (
	incrementSql = "INSERT INTO mail_aggregate (type, key, count, updated_at) VALUES (?, ?, 1, NOW()) " +
		"ON CONFLICT (type, key) DO UPDATE SET count = mail_aggregate.count + 1, updated_at = NOW()"
	querySql = "SELECT key, count FROM mail_aggregate WHERE type = ? ORDER BY count DESC, key ASC LIMIT ?"
)

// Aggregator stores counters in the 'mail_aggregate' table through a
// database/sql connection pool.
type Aggregator struct {
	txKey        mailrec.TxKey
	db           *sql.DB
	incrementSql string
	querySql     string
	logger       mailrec.Logger
}

var _ mailrec.Loggable = (*Aggregator)(nil)
var _ mailrec.Aggregator = (*Aggregator)(nil)
var _ mailrec.Reader = (*Aggregator)(nil)

// New creates a database/sql aggregator. When txKey is not nil and the
// context of an increment carries a *sql.Tx under it, the increment joins
// that transaction. useDollar switches to $n placeholders.
func New(txKey mailrec.TxKey, db *sql.DB, useDollar bool) *Aggregator {
	if db == nil {
		panic("db is mandatory")
	}

	a := &Aggregator{
		txKey:        txKey,
		db:           db,
		incrementSql: incrementSql,
		querySql:     querySql,
		logger:       &mailrec.NopLogger{},
	}
	if useDollar {
		a.incrementSql = convertToDollarPlaceholder(a.incrementSql)
		a.querySql = convertToDollarPlaceholder(a.querySql)
	}
	return a
}

// SetLogger sets an optional logger.
func (a *Aggregator) SetLogger(l mailrec.Logger) {
	a.logger = l
}

// Increment upserts the counter row of (typ, key).
func (a *Aggregator) Increment(ctx context.Context, typ string, key string) error {
	var err error
	if tx, ok := a.tx(ctx); ok {
		_, err = tx.ExecContext(ctx, a.incrementSql, typ, key)
	} else {
		_, err = a.db.ExecContext(ctx, a.incrementSql, typ, key)
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

	rows, err := a.db.QueryContext(ctx, a.querySql, typ, limit)
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

func (a *Aggregator) tx(ctx context.Context) (*sql.Tx, bool) {
	if a.txKey == nil {
		return nil, false
	}
	tx, ok := ctx.Value(a.txKey).(*sql.Tx)
	return tx, ok && tx != nil
}

// convertToDollarPlaceholder converts a query using '?' placeholders into a query
// using dollar placeholders.
func convertToDollarPlaceholder(query string) string {
	count := 0
	for strings.Contains(query, "?") {
		count++
		query = strings.Replace(query, "?", fmt.Sprintf("$%d", count), 1)
	}
	return query
}
