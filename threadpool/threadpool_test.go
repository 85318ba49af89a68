package threadpool

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunInvokesEveryWorkerExactlyOnce(t *testing.T) {
	pool := New(6)
	var mu sync.Mutex
	var seen []int

	pool.Run(func(tid int) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, tid)
	})

	require.Equal(t, 6, pool.Size())
	sort.Ints(seen)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5}, seen)
}

func TestRunSingleWorkerIsInline(t *testing.T) {
	pool := New(1)
	ran := false
	pool.Run(func(tid int) {
		require.Equal(t, 0, tid)
		ran = true
	})
	require.True(t, ran)
}

func TestNewClampsToOne(t *testing.T) {
	pool := New(0)
	require.Equal(t, 1, pool.Size())
}
