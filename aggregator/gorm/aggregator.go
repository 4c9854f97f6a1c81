package gorm

import (
	"context"
	"fmt"

	"github.com/3rs4lg4d0/mailpulse/mailrec"
	"gorm.io/gorm"
)

const (
	incrementSql = "INSERT INTO mail_aggregate (type, key, count, updated_at) VALUES (?, ?, 1, NOW()) " +
		"ON CONFLICT (type, key) DO UPDATE SET count = mail_aggregate.count + 1, updated_at = NOW()"
	querySql = "SELECT key, count FROM mail_aggregate WHERE type = ? ORDER BY count DESC, key ASC LIMIT ?"
)

// Aggregator stores counters in the 'mail_aggregate' table through gorm.
type Aggregator struct {
	txKey  mailrec.TxKey
	db     *gorm.DB
	logger mailrec.Logger
}

var _ mailrec.Loggable = (*Aggregator)(nil)
var _ mailrec.Aggregator = (*Aggregator)(nil)
var _ mailrec.Reader = (*Aggregator)(nil)

// New creates a gorm aggregator. When txKey is not nil and the context of
// an increment carries a *gorm.DB transaction under it, the increment joins
// that transaction.
func New(txKey mailrec.TxKey, db *gorm.DB) *Aggregator {
	if db == nil {
		panic("db is mandatory")
	}
	return &Aggregator{
		txKey:  txKey,
		db:     db,
		logger: &mailrec.NopLogger{},
	}
}

// SetLogger sets an optional logger.
func (a *Aggregator) SetLogger(l mailrec.Logger) {
	a.logger = l
}

// Increment upserts the counter row of (typ, key).
func (a *Aggregator) Increment(ctx context.Context, typ string, key string) error {
	db := a.db
	if a.txKey != nil {
		if tx, ok := ctx.Value(a.txKey).(*gorm.DB); ok && tx != nil {
			db = tx
		}
	}
	if err := db.WithContext(ctx).Exec(incrementSql, typ, key).Error; err != nil {
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

	rows, err := a.db.WithContext(ctx).Raw(querySql, typ, limit).Rows()
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
