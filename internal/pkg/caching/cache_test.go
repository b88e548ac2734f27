package caching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string
	Count int
}

func TestUseCache(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(100, time.Minute)

	calls := 0
	load := func() (*entry, error) {
		calls++
		return &entry{Name: "history", Count: 3}, nil
	}

	v, err := UseCache(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "history", v.Name)

	v, err = UseCache(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 3, v.Count)
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = UseCache(ctx, c, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestUseCacheDoesNotStoreErrors(t *testing.T) {
	ctx := context.Background()
	c := NewLocalCache(100, time.Minute)
	boom := errors.New("boom")

	_, err := UseCache(ctx, c, "k", time.Minute, func() (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := UseCache(ctx, c, "k", time.Minute, func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestVersionedKey(t *testing.T) {
	assert.Equal(t, "v3:category:abc", VersionedKey(3, "category", "abc"))
	assert.Equal(t, "v0", VersionedKey(0))
}
