package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postgresDSN returns the test database or skips. The suite creates and drops
// its own table.
func postgresDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("LISTCRAWL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LISTCRAWL_TEST_POSTGRES_DSN not set")
	}
	return dsn
}

func TestPostgresSink_AppendIgnoresConflicts(t *testing.T) {
	dsn := postgresDSN(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	table := fmt.Sprintf("listcrawl_test_%d", time.Now().UnixNano())
	sink, err := NewPostgresSink(ctx, dsn, table)
	require.NoError(t, err)
	t.Cleanup(func() { sink.Close() })
	t.Cleanup(func() {
		sink.db.Exec(context.Background(), "DROP TABLE IF EXISTS "+pgx.Identifier{table}.Sanitize())
	})

	assert.Equal(t, "postgres", sink.Name())
	require.NoError(t, sink.Append(ctx, nil))
	require.NoError(t, sink.Append(ctx, recs("https://x/1", "https://x/2")))

	changed := rec("https://x/1")
	changed.Title = "changed"
	require.NoError(t, sink.Append(ctx, append(recs("https://x/3"), changed)))

	var count int
	require.NoError(t, sink.db.QueryRow(ctx, "SELECT count(*) FROM "+sink.table).Scan(&count))
	assert.Equal(t, 3, count)

	var title, brand string
	require.NoError(t, sink.db.QueryRow(ctx,
		"SELECT title, brand FROM "+sink.table+" WHERE link = $1", "https://x/1").Scan(&title, &brand))
	assert.Equal(t, "T https://x/1", title, "existing rows are left untouched")
	assert.Equal(t, "S", brand)

	// the table survives a second migration
	again, err := NewPostgresSink(ctx, dsn, table)
	require.NoError(t, err)
	again.Close()
}

func TestNewPostgresSink_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := NewPostgresSink(ctx, "postgres://nobody@127.0.0.1:1/none?connect_timeout=1", "")
	assert.Error(t, err)
}
