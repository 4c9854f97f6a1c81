package test

import (
	"context"
	"database/sql/driver"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/integralist/go-findroot/find"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MailKey builds a serialized mail_sent key the way the recorder does, for
// seeding aggregators in tests.
func MailKey(to, subject, mailable string) string {
	m := "null"
	if mailable != "" {
		m = `"` + mailable + `"`
	}
	return `{"to":"` + to + `","subject":"` + subject + `","mailable":` + m + `,"status":"sent"}`
}

func AssertError(t *testing.T, err error, expectErr bool) {
	if expectErr {
		assert.Error(t, err)
	} else {
		assert.NoError(t, err)
	}
}

// InitPostgresContainer initializes a local Postgres instance using Testcontainers.
func InitPostgresContainer(ctx context.Context) (*postgres.PostgresContainer, error) {
	root, _ := find.Repo()
	return postgres.RunContainer(ctx,
		testcontainers.WithImage("docker.io/postgres:15.2-alpine"),
		postgres.WithInitScripts(
			filepath.Join(root.Path, "sql/postgres/000001_mail_aggregate.up.sql"),
		),
		postgres.WithDatabase("dbname"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(5*time.Second)),
	)
}

func GenerateAnyArgsSlice(n int) []driver.Value {
	var result []driver.Value = make([]driver.Value, n)
	for i := 0; i < n; i++ {
		result[i] = sqlmock.AnyArg()
	}
	return result
}

// MockAggregateRows expects a top-N query and answers it with the provided
// keys, counting down from len(keys).
func MockAggregateRows(mock sqlmock.Sqlmock, keys ...string) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"key", "count"})
	for i, k := range keys {
		rows.AddRow(k, int64(len(keys)-i))
	}
	mock.ExpectQuery("SELECT key, count FROM mail_aggregate.+").WillReturnRows(rows)
	return rows
}
