package lnutils

import (
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyncMap(t *testing.T) {
	t.Parallel()

	var m SyncMap[string, int]

	_, ok := m.Load("a")
	require.False(t, ok)

	m.Store("a", 1)
	v, ok := m.Load("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	v, loaded := m.LoadOrStore("a", 2)
	require.True(t, loaded)
	require.Equal(t, 1, v)

	v, loaded = m.LoadOrStore("b", 2)
	require.False(t, loaded)
	require.Equal(t, 2, v)
	require.Equal(t, 2, m.Len())

	var keys []string
	m.Range(func(k string, _ int) bool {
		keys = append(keys, k)
		return true
	})
	sort.Strings(keys)
	require.Equal(t, []string{"a", "b"}, keys)

	m.Delete("a")
	require.Equal(t, 1, m.Len())
}

// TestSyncMapLoadOrStoreSingleWinner checks that racing LoadOrStore calls
// agree on one stored value.
func TestSyncMapLoadOrStoreSingleWinner(t *testing.T) {
	t.Parallel()

	var (
		m       SyncMap[int, int]
		wg      sync.WaitGroup
		results = make([]int, 32)
	)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = m.LoadOrStore(0, i)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.Equal(t, results[0], r)
	}
}

func TestLogClosures(t *testing.T) {
	t.Parallel()

	calls := 0
	c := NewLogClosure(func() string {
		calls++
		return "value"
	})
	require.Zero(t, calls)
	require.Equal(t, "value", c.String())
	require.Equal(t, 1, calls)

	require.Contains(t, SpewLogClosure([]byte{1}).String(), "00000000")
	require.Equal(t, strings.Repeat("=", 80), NewSeparatorClosure().String())
	require.Equal(t, "key", LogPubKey("key", nil).Key)
}
