package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertAndGet(t *testing.T) {
	t.Parallel()

	c, err := New[int64, string](4)
	require.NoError(t, err)

	c.Insert(1, "a")
	got, ok := c.Get(1)
	require.True(t, ok)
	require.Equal(t, "a", got)

	_, ok = c.Get(2)
	require.False(t, ok)
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c, err := New[int, string](3)
	require.NoError(t, err)

	c.Insert(1, "a")
	c.Insert(2, "b")
	c.Insert(3, "c")

	// Touch key 1 so key 2 becomes the oldest.
	_, ok := c.Get(1)
	require.True(t, ok)

	c.Insert(4, "d")

	_, ok = c.Get(2)
	require.False(t, ok, "least-recently-used key should be evicted")
	for _, key := range []int{1, 3, 4} {
		_, ok := c.Get(key)
		require.True(t, ok, "key %d should survive eviction", key)
	}
	require.Equal(t, 3, c.Len())
}

func TestRemoveReturnsHeldValue(t *testing.T) {
	t.Parallel()

	c, err := New[int, string](2)
	require.NoError(t, err)

	c.Insert(7, "x")
	got, ok := c.Remove(7)
	require.True(t, ok)
	require.Equal(t, "x", got)

	_, ok = c.Remove(7)
	require.False(t, ok)
	_, ok = c.Get(7)
	require.False(t, ok)
}

func TestReplaceRefreshesRecency(t *testing.T) {
	t.Parallel()

	c, err := New[int, string](2)
	require.NoError(t, err)

	c.Insert(1, "a")
	c.Insert(2, "b")
	c.Replace(1, "a2")
	c.Insert(3, "c")

	_, ok := c.Get(2)
	require.False(t, ok, "key 2 should be the eviction victim after replace touched key 1")

	got, ok := c.Get(1)
	require.True(t, ok)
	require.Equal(t, "a2", got)
}

func TestClear(t *testing.T) {
	t.Parallel()

	c, err := New[int, int](8)
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		c.Insert(i, i)
	}
	c.Clear()
	require.Equal(t, 0, c.Len())
}

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	t.Parallel()

	_, err := New[int, int](0)
	require.Error(t, err)
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	c, err := New[string, int](64)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%32)
				c.Insert(key, g)
				c.Get(key)
				if i%17 == 0 {
					c.Remove(key)
				}
			}
		}(g)
	}
	wg.Wait()
}
