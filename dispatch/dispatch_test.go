package dispatch

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursorShrinkingChunks(t *testing.T) {
	c := NewCursor(32, 2)

	chunk1, ok := c.Next()
	require.True(t, ok)
	require.Equal(t, Chunk{First: 0, Count: 16}, chunk1)

	chunk2, ok := c.Next()
	require.True(t, ok)
	require.Equal(t, Chunk{First: 16, Count: 16}, chunk2)

	_, ok = c.Next()
	require.False(t, ok)
}

func TestCursorUnevenRemainder(t *testing.T) {
	// 17 targets, 2 workers: ceil(17/2) = 9 then the remaining 8.
	c := NewCursor(17, 2)

	chunk1, _ := c.Next()
	require.Equal(t, Chunk{First: 0, Count: 9}, chunk1)

	chunk2, _ := c.Next()
	require.Equal(t, Chunk{First: 9, Count: 8}, chunk2)

	_, ok := c.Next()
	require.False(t, ok)
}

func TestRunCoversEveryTargetExactlyOnce(t *testing.T) {
	const length = 101
	var mu sync.Mutex
	var covered []uint64

	Run(length, 8, func(chunk Chunk) {
		mu.Lock()
		defer mu.Unlock()
		for i := uint64(0); i < chunk.Count; i++ {
			covered = append(covered, chunk.First+i)
		}
	})

	require.Len(t, covered, length)
	sort.Slice(covered, func(i, j int) bool { return covered[i] < covered[j] })
	for i, v := range covered {
		require.Equal(t, uint64(i), v)
	}
}

func TestRunSingleWorker(t *testing.T) {
	var seen uint64
	Run(40, 1, func(chunk Chunk) { seen += chunk.Count })
	require.Equal(t, uint64(40), seen)
}
