package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisIndex(t *testing.T, mr *miniredis.Miniredis) *RedisIndex {
	t.Helper()
	idx, err := NewRedisIndex(context.Background(), mr.Addr(), "test:links")
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func TestRedisIndex_Basics(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	idx := newRedisIndex(t, mr)

	ok, err := idx.Contains(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, idx.Add(ctx, "a", "b"))
	require.NoError(t, idx.Add(ctx))
	ok, err = idx.Contains(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, idx.Len(ctx))

	members, err := mr.Members("test:links")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, members)
}

func TestRedisIndex_ClaimAndRelease(t *testing.T) {
	ctx := context.Background()
	idx := newRedisIndex(t, miniredis.RunT(t))
	require.NoError(t, idx.Add(ctx, "a"))

	claimed, err := idx.Claim(ctx, "a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, claimed)

	claimed, err = idx.Claim(ctx, "b", "c")
	require.NoError(t, err)
	assert.Empty(t, claimed)

	require.NoError(t, idx.Release(ctx, "c"))
	claimed, err = idx.Claim(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, claimed)
}

func TestRedisIndex_LenWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	idx := newRedisIndex(t, mr)
	mr.Close()
	assert.Equal(t, -1, idx.Len(context.Background()))
}

func TestNewRedisIndex_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisIndex(context.Background(), addr, "")
	assert.Error(t, err)
}

func TestStore_SeedsRedisIndexFromFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "listings.csv")
	content := "\xEF\xBB\xBFbrand;title;price;seller_name;rating;reviews_count;link\n" +
		"S;A;1;N/A;0.0;no reviews;a\n" +
		"S;B;2;N/A;0.0;no reviews;b\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	idx := newRedisIndex(t, miniredis.RunT(t))
	s, err := Open(ctx, path, Options{Index: idx})
	require.NoError(t, err)

	assert.Equal(t, 2, s.Len(ctx))
	n, err := s.Append(ctx, recs("a", "c"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, dataLines(t, path), 3)
}

func TestStore_SharedRedisIndexWritesEachLinkOnce(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	path := filepath.Join(t.TempDir(), "listings.csv")

	open := func() *Store {
		s, err := Open(ctx, path, Options{Index: newRedisIndex(t, mr)})
		require.NoError(t, err)
		return s
	}
	first, second := open(), open()

	const rounds = 200
	for i := 0; i < rounds; i++ {
		batch := recs(fmt.Sprintf("https://x/%d", i))

		var wg sync.WaitGroup
		written := make([]int, 2)
		for j, s := range []*Store{first, second} {
			wg.Add(1)
			go func(j int, s *Store) {
				defer wg.Done()
				n, err := s.Append(ctx, batch)
				assert.NoError(t, err)
				written[j] = n
			}(j, s)
		}
		wg.Wait()
		require.Equal(t, 1, written[0]+written[1], "round %d", i)
	}

	assert.Len(t, dataLines(t, path), rounds)
}
