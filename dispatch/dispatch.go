// Copyright 2024 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package dispatch hands out shrinking chunks of a query's target list to
// a fixed pool of worker threads, ported from swarm's search_getwork /
// search_chunk (scan.cc).
package dispatch

import "sync"

// Chunk is one unit of work handed to a worker: search targets[First:First+Count]
// against the current query.
type Chunk struct {
	First uint64
	Count uint64
}

// Cursor hands out shrinking chunks of a fixed-length target list across a
// known number of workers, so that stragglers near the end of the list get
// progressively smaller chunks and no single thread idles while others
// still have a large remaining share (scan.cc's search_getwork).
type Cursor struct {
	mu              sync.Mutex
	next            uint64
	length          uint64
	remainingChunks uint64
}

// NewCursor returns a Cursor over a target list of the given length, to be
// drained by workerCount workers. workerCount must be at least 1.
func NewCursor(length, workerCount uint64) *Cursor {
	return &Cursor{
		length:          length,
		remainingChunks: workerCount,
	}
}

// Next returns the next chunk of work and true, or a zero Chunk and false
// once the target list is exhausted. It is safe to call concurrently from
// multiple worker goroutines.
func (c *Cursor) Next() (Chunk, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.next >= c.length {
		return Chunk{}, false
	}

	chunkSize := (c.length - c.next + c.remainingChunks - 1) / c.remainingChunks
	chunk := Chunk{First: c.next, Count: chunkSize}

	c.next += chunkSize
	c.remainingChunks--

	return chunk, true
}

// Run starts workerCount goroutines, each repeatedly pulling a chunk from
// the cursor and invoking work on it until the cursor is exhausted. Run
// blocks until every worker has finished. It mirrors the teacher's
// channel-free WaitGroup-fan-out idiom (see the PAM shard generator in
// cmd/bio-bam-sort/sorter/pam.go) rather than swarm's raw pthread_create
// loop.
func Run(length, workerCount uint64, work func(Chunk)) {
	if workerCount <= 1 {
		cur := NewCursor(length, 1)
		for {
			chunk, ok := cur.Next()
			if !ok {
				return
			}
			work(chunk)
		}
	}

	cur := NewCursor(length, workerCount)
	var wg sync.WaitGroup
	wg.Add(int(workerCount))
	for w := uint64(0); w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for {
				chunk, ok := cur.Next()
				if !ok {
					return
				}
				work(chunk)
			}
		}()
	}
	wg.Wait()
}
