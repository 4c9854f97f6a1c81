package pgxv5

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/3rs4lg4d0/mailpulse/mailrec"
	"github.com/3rs4lg4d0/mailpulse/test"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

var (
	pool          *pgxpool.Pool
	defaultCtxKey mailrec.TxKey = "myKey"
)

// TestMain prepares a containerized Postgres instance for the integration
// tests. In short mode the container is not started and those tests skip.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	database, err := test.InitPostgresContainer(ctx)
	if err != nil {
		fmt.Printf("A problem occurred initializing the database: %v", err)
		os.Exit(1)
	}

	dsn, err := database.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Printf("A problem occurred getting the connection string: %v", err)
		os.Exit(1)
	}

	pool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	pool.Close()
	err = database.Terminate(ctx)
	if err != nil {
		fmt.Printf("an error ocurred terminating the database container: %v", err)
	}
	os.Exit(code)
}

func requirePool(t *testing.T) {
	t.Helper()
	if pool == nil {
		t.Skip("postgres container not available in short mode")
	}
	_, err := pool.Exec(context.Background(), "DELETE FROM mail_aggregate")
	assert.NoError(t, err)
}

// failingPool fails every statement.
type failingPool struct {
	err error
}

func (p *failingPool) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, p.err
}

func (p *failingPool) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, p.err
}

func TestNew(t *testing.T) {
	testcases := []struct {
		name      string
		pool      dbpool
		wantPanic bool
	}{
		{
			name:      "pool is nil",
			pool:      nil,
			wantPanic: true,
		},
		{
			name: "pool is not nil but the underlying value is",
			pool: func() dbpool {
				var p *pgxpool.Pool
				return p
			}(),
			wantPanic: true,
		},
		{
			name:      "valid pool",
			pool:      &failingPool{},
			wantPanic: false,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.wantPanic {
				assert.Panics(t, func() {
					New(defaultCtxKey, tc.pool)
				})
			} else {
				assert.NotPanics(t, func() {
					New(defaultCtxKey, tc.pool)
				})
			}
		})
	}
}

func TestDatabaseErrors(t *testing.T) {
	a := New(defaultCtxKey, &failingPool{err: errors.New("error#1")})

	err := a.Increment(context.Background(), mailrec.MailSentType, "key")
	assert.ErrorContains(t, err, "error#1")

	_, err = a.Query(context.Background(), mailrec.MailSentType, 10)
	assert.ErrorContains(t, err, "error#1")

	aggs, err := a.Query(context.Background(), mailrec.MailSentType, 0)
	assert.NoError(t, err)
	assert.Empty(t, aggs)
}

func TestIncrementAndQuery(t *testing.T) {
	requirePool(t)
	a := New(defaultCtxKey, pool)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.Increment(ctx, mailrec.MailSentType, "a"))
		}()
	}
	wg.Wait()
	assert.NoError(t, a.Increment(ctx, mailrec.MailSentType, "b"))
	assert.NoError(t, a.Increment(ctx, "other", "c"))

	got, err := a.Query(ctx, mailrec.MailSentType, 10)
	assert.NoError(t, err)
	assert.Equal(t, []mailrec.Aggregate{{Key: "a", Count: 5}, {Key: "b", Count: 1}}, got)

	got, err = a.Query(ctx, mailrec.MailSentType, 1)
	assert.NoError(t, err)
	assert.Equal(t, []mailrec.Aggregate{{Key: "a", Count: 5}}, got)
}

func TestIncrementWithinTransaction(t *testing.T) {
	requirePool(t)
	a := New(defaultCtxKey, pool)

	tx, err := pool.Begin(context.Background())
	assert.NoError(t, err)
	ctx := context.WithValue(context.Background(), defaultCtxKey, tx)
	assert.NoError(t, a.Increment(ctx, mailrec.MailSentType, "rolled back"))
	assert.NoError(t, tx.Rollback(context.Background()))

	got, err := a.Query(context.Background(), mailrec.MailSentType, 10)
	assert.NoError(t, err)
	assert.Empty(t, got)
}
