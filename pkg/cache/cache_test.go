package cache

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "pubmed:1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "pubmed:1", []byte("TI  - Title"), time.Hour))
	value, ok, err := m.Get(ctx, "pubmed:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "TI  - Title", string(value))

	require.NoError(t, m.Delete(ctx, "pubmed:1"))
	_, ok, _ = m.Get(ctx, "pubmed:1")
	assert.False(t, ok)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, m.Set(ctx, "forever", []byte("v"), 0))

	now = now.Add(time.Minute)
	_, ok, _ := m.Get(ctx, "k")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	value := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", value, 0))
	value[0] = 'x'

	got, _, _ := m.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
}

func TestGetOrLoad(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	calls := 0
	load := func() ([]byte, error) {
		calls++
		return []byte("loaded"), nil
	}

	for i := 0; i < 2; i++ {
		value, err := GetOrLoad(ctx, m, "k", time.Hour, load)
		require.NoError(t, err)
		assert.Equal(t, "loaded", string(value))
	}
	assert.Equal(t, 1, calls)
}

func TestGetOrLoadDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := GetOrLoad(ctx, m, "k", time.Hour, func() ([]byte, error) {
		return nil, errors.New("pubmed down")
	})
	assert.EqualError(t, err, "pubmed down")

	_, ok, _ := m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, c)

	c, err = New("redis://localhost:6379/0")
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, c)

	_, err = New("http://localhost")
	assert.Error(t, err)
}

func TestGetOrLoadFallsBackWhenRedisIsDown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	r, err := NewRedis("redis://" + addr + "/0")
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	value, err := GetOrLoad(ctx, r, "k", time.Hour, func() ([]byte, error) {
		return []byte("fresh"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(value))
}
