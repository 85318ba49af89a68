// Copyright 2024 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package threadpool provides the abstract worker pool the aligner
// orchestrator drives: a fixed-size set of workers, each invoked once per
// search with its own worker id, joined by a single barrier.
package threadpool

import "sync"

// Pool runs a fixed number of worker tasks, each receiving its own worker
// id in [0, Size()), and blocks until every task has completed one pass.
// It is pre-sized at construction and reused across every query the
// aligner processes (spec.md's "Collaborator: thread pool").
type Pool interface {
	// Size returns the number of workers the pool was built with.
	Size() int
	// Run invokes worker once for every id in [0, Size()), then blocks
	// until all of them have returned.
	Run(worker func(tid int))
}

// WaitGroupPool is a Pool backed by a fixed-size sync.WaitGroup fan-out,
// the same idiom the teacher uses for its PAM-shard worker pool
// (cmd/bio-bam-sort/sorter/pam.go): one goroutine per worker slot, no
// persistent goroutines kept alive between calls to Run.
type WaitGroupPool struct {
	size int
}

// New returns a WaitGroupPool sized for the given worker count. size must
// be at least 1.
func New(size int) *WaitGroupPool {
	if size < 1 {
		size = 1
	}
	return &WaitGroupPool{size: size}
}

// Size implements Pool.
func (p *WaitGroupPool) Size() int { return p.size }

// Run implements Pool. When the pool has a single worker, it is invoked
// inline without spawning a goroutine, matching search_do's fallback when
// thr == 1 (scan.cc).
func (p *WaitGroupPool) Run(worker func(tid int)) {
	if p.size == 1 {
		worker(0)
		return
	}

	var wg sync.WaitGroup
	wg.Add(p.size)
	for tid := 0; tid < p.size; tid++ {
		tid := tid
		go func() {
			defer wg.Done()
			worker(tid)
		}()
	}
	wg.Wait()
}
