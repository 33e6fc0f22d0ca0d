package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenitsu0509/Employee-NLQ/pkg/datasource"
	"github.com/zenitsu0509/Employee-NLQ/pkg/models"
)

func resultFor(query string) *models.QueryResult {
	return &models.QueryResult{Query: query, Type: models.QueryTypeSQL}
}

func TestFingerprintStability(t *testing.T) {
	identity := datasource.Identity("postgres://db:5432/hr")

	a := Fingerprint(identity, "How many employees?", map[string]string{"top_k": "10"})
	b := Fingerprint(identity, "  how   many employees? ", map[string]string{"top_k": "10"})
	assert.Equal(t, a, b)

	c := Fingerprint(identity, "How many employees?", map[string]string{"top_k": "20"})
	assert.NotEqual(t, a, c)

	d := Fingerprint(datasource.Identity("postgres://other:5432/hr"), "How many employees?", map[string]string{"top_k": "10"})
	assert.NotEqual(t, a, d)
}

func TestMemoryCacheHitAndExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, 0)
	defer c.Close()

	current := time.Now()
	c.now = func() time.Time { return current }

	require.NoError(t, c.Set(ctx, "k", resultFor("q"), 5*time.Minute))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "q", got.Query)

	current = current.Add(6 * time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache(10, 0)
	defer c.Close()

	_, ok, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheEvictsOldestWhenFull(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, 0)
	defer c.Close()

	current := time.Now()
	c.now = func() time.Time { return current }

	require.NoError(t, c.Set(ctx, "a", resultFor("a"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", resultFor("b"), 2*time.Minute))
	require.NoError(t, c.Set(ctx, "c", resultFor("c"), 3*time.Minute))

	assert.Equal(t, 2, c.Len())
	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok, "entry closest to expiry should be evicted")
	_, ok, _ = c.Get(ctx, "b")
	assert.True(t, ok)
	_, ok, _ = c.Get(ctx, "c")
	assert.True(t, ok)
}

func TestMemoryCacheOverwriteDoesNotEvict(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2, 0)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "a", resultFor("a"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", resultFor("b"), time.Minute))
	require.NoError(t, c.Set(ctx, "a", resultFor("a2"), time.Minute))

	assert.Equal(t, 2, c.Len())
	got, ok, _ := c.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "a2", got.Query)
}

func TestMemoryCacheSweep(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(10, 0)
	defer c.Close()

	current := time.Now()
	c.now = func() time.Time { return current }

	require.NoError(t, c.Set(ctx, "a", resultFor("a"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", resultFor("b"), time.Hour))

	current = current.Add(10 * time.Minute)
	c.sweep()

	assert.Equal(t, 1, c.Len())
}
