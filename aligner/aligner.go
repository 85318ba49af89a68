// Copyright 2024 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package aligner is the orchestrator: given a query and a list of target
// ids, it picks the 8-bit or 16-bit cell width, drives the work dispatcher
// and channel scheduler across a thread pool, and re-runs any
// 8-bit-saturated target at 16 bits. Ported from swarm's search_do
// (scan.cc).
package aligner

import (
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/swarmalign/dispatch"
	"github.com/grailbio/swarmalign/scheduler"
	"github.com/grailbio/swarmalign/scorematrix"
	"github.com/grailbio/swarmalign/threadpool"
	"github.com/grailbio/swarmalign/vec"
)

// Database supplies a target sequence by its integer id.
type Database interface {
	// GetSequence returns the packed bases and length of the sequence
	// identified by id. The address remains valid for the lifetime of
	// the search.
	GetSequence(id uint64) (seq []byte, length int)
}

// Query is the immutable input sequence aligned against every target in a
// single SearchDo call.
type Query struct {
	ID   uint64
	Seq  []byte
	Len  int
}

// Config holds the scoring parameters shared by every query the Aligner
// processes.
type Config struct {
	MismatchPenalty int
	GapOpen         int
	GapExtend       int
}

// Aligner is the per-database orchestrator. It is safe to reuse across
// many queries; per-thread scratch is grown lazily and kept between calls
// (spec.md §3's "Lifecycle").
type Aligner struct {
	db                Database
	pool              threadpool.Pool
	matrix8           scorematrix.Matrix8
	matrix16          scorematrix.Matrix16
	gapOpen           int
	gapExtend         int
	longestDBSequence int

	scratch8  []*scheduler.Scratch8
	scratch16 []*scheduler.Scratch16
}

// New builds an Aligner over db, driven by pool, for a database whose
// longest sequence is longestDBSequence bases.
func New(db Database, pool threadpool.Pool, cfg Config, longestDBSequence int) (*Aligner, error) {
	if longestDBSequence <= 0 {
		return nil, errors.New("aligner: longestDBSequence must be positive")
	}
	return &Aligner{
		db:                db,
		pool:              pool,
		matrix8:           scorematrix.Build8(byte(cfg.MismatchPenalty)),
		matrix16:          scorematrix.Build16(uint16(cfg.MismatchPenalty)),
		gapOpen:           cfg.GapOpen,
		gapExtend:         cfg.GapExtend,
		longestDBSequence: longestDBSequence,
		scratch8:          make([]*scheduler.Scratch8, pool.Size()),
		scratch16:         make([]*scheduler.Scratch16, pool.Size()),
	}, nil
}

// channels returns CHANNELS(bits) (spec.md's constants).
func channels(bits int) int64 {
	if bits == 16 {
		return 8
	}
	return 16
}

// AdjustThreadCount monotonically reduces threads while the remaining
// target count could not give every thread but one a full channel's worth
// of work, so no thread is launched only to immediately find no work.
// Ported from swarm's adjust_thread_number (scan.cc).
func AdjustThreadCount(bits int, remainingSequences uint64, threads int) int {
	c := channels(bits)
	for int64(remainingSequences) <= int64(threads-1)*c {
		threads--
	}
	return threads
}

// SearchDo aligns query against every target in targetIDs, writing one
// Result per target id (same indexing as targetIDs) into results. Targets
// whose 8-bit score saturates are transparently re-run at 16 bits.
func (a *Aligner) SearchDo(query Query, targetIDs []uint64, results []scheduler.Result) error {
	if query.Len <= 0 {
		return errors.New("aligner: zero-length query")
	}
	if len(targetIDs) != len(results) {
		return errors.New("aligner: targetIDs and results length mismatch")
	}
	if len(targetIDs) == 0 {
		return nil
	}

	a.searchBits(8, query, targetIDs, results)

	var saturated []int
	for i, res := range results {
		if res.Diff == vec.MaxByte {
			saturated = append(saturated, i)
		}
	}
	if len(saturated) == 0 {
		return nil
	}

	subIDs := make([]uint64, len(saturated))
	subResults := make([]scheduler.Result, len(saturated))
	for i, idx := range saturated {
		subIDs[i] = targetIDs[idx]
	}
	a.searchBits(16, query, subIDs, subResults)
	for i, idx := range saturated {
		results[idx] = subResults[i]
	}
	for _, res := range subResults {
		if res.Diff == vec.MaxWord {
			log.Error.Printf("aligner: query %d has a target whose score saturates even at 16 bits", query.ID)
			break
		}
	}
	return nil
}

func (a *Aligner) searchBits(bits int, query Query, targetIDs []uint64, results []scheduler.Result) {
	total := uint64(len(targetIDs))
	thr := AdjustThreadCount(bits, total, a.pool.Size())

	qtable := scheduler.QueryTable(query.Seq, query.Len)
	cur := dispatch.NewCursor(total, uint64(thr))

	worker := func(tid int) {
		for {
			chunk, ok := cur.Next()
			if !ok {
				return
			}
			targets := make([]scheduler.Target, chunk.Count)
			for i := uint64(0); i < chunk.Count; i++ {
				id := targetIDs[chunk.First+i]
				seq, length := a.db.GetSequence(id)
				targets[i] = scheduler.Target{Seq: seq, Len: length}
			}
			sub := results[chunk.First : chunk.First+chunk.Count]

			if bits == 16 {
				scratch := a.scratch16ForThread(tid, query.Len)
				scheduler.Search16(query.Seq, query.Len, uint16(a.gapOpen), uint16(a.gapExtend), a.matrix16, qtable, targets, a.longestDBSequence, scratch, sub)
			} else {
				scratch := a.scratch8ForThread(tid, query.Len)
				scheduler.Search8(query.Seq, query.Len, byte(a.gapOpen), byte(a.gapExtend), a.matrix8, qtable, targets, a.longestDBSequence, scratch, sub)
			}
		}
	}

	if thr == 1 {
		worker(0)
		return
	}
	a.pool.Run(worker)
}

func (a *Aligner) scratch8ForThread(tid, qlen int) *scheduler.Scratch8 {
	s := a.scratch8[tid]
	if s == nil || len(s.HE) < qlen {
		s = scheduler.NewScratch8(qlen, a.longestDBSequence)
		a.scratch8[tid] = s
	}
	return s
}

func (a *Aligner) scratch16ForThread(tid, qlen int) *scheduler.Scratch16 {
	s := a.scratch16[tid]
	if s == nil || len(s.HE) < qlen {
		s = scheduler.NewScratch16(qlen, a.longestDBSequence)
		a.scratch16[tid] = s
	}
	return s
}
