// Copyright 2024 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package scheduler implements the channel scheduler: it sweeps a chunk of
// database targets across the fixed set of SIMD channels, retiring and
// restarting channels independently as their sequences end mid-block, and
// hands each finished channel off to the backtracker. Ported from swarm's
// search8/search16 (search8.cc).
package scheduler

import (
	"github.com/grailbio/swarmalign/backtrack"
	"github.com/grailbio/swarmalign/kernel"
	"github.com/grailbio/swarmalign/nt"
	"github.com/grailbio/swarmalign/profile"
	"github.com/grailbio/swarmalign/ring"
	"github.com/grailbio/swarmalign/scorematrix"
	"github.com/grailbio/swarmalign/vec"
)

// Target is one database sequence to align against the query.
type Target struct {
	Seq []byte // packed, nt.Extract-addressable
	Len int
}

// Result is the outcome of aligning one Target against the query.
type Result struct {
	Score    int
	Diff     int
	AlignLen int

	// Checksum hashes the retired channel's own direction bits (ring.Ring8/
	// 16.Checksum), independent of which physical channel carried the
	// sequence. Two searches that dispatch the same target to different
	// channels -- under a different thread count, or a different chunk
	// order -- must agree on this value even though they may disagree on
	// which channel produced it.
	Checksum uint64
}

// Scratch8 is the per-thread working set the 8-bit-cell scheduler sweeps
// across every chunk of every query: the hearray and the direction ring.
// Allocated once at search begin and reused thereafter (spec.md §3's
// "Lifecycle").
type Scratch8 struct {
	HE   []kernel.HE8
	Ring *ring.Ring8
}

// NewScratch8 allocates scratch space for a query of qlen positions
// against a database whose longest sequence is longestDBSequence bases.
func NewScratch8(qlen, longestDBSequence int) *Scratch8 {
	return &Scratch8{
		HE:   make([]kernel.HE8, qlen),
		Ring: ring.NewRing8(longestDBSequence),
	}
}

// QueryTable returns the per-position nucleotide code ({0,1,2,3}) the
// profile builder indexes with, computed once per query and reused across
// every chunk (search_init in scan.cc).
func QueryTable(query []byte, qlen int) []byte {
	t := make([]byte, qlen)
	for i := range t {
		t[i] = nt.Extract(query, i)
	}
	return t
}

// Search8 aligns every target in targets against the query, 16 sequences
// at a time across the channels of the 8-bit-cell layout, writing one
// Result per target (indexed the same as targets). A channel whose
// sequence ends mid-block is retired -- its score read off and its
// alignment backtracked -- and immediately restarted with the next
// unassigned target, without waiting for the other channels to catch up.
//
// A Result whose Score saturated at 255 carries an undefined AlignLen;
// the caller is expected to re-run that target through Search16 to get an
// exact score and alignment length (spec.md's two-pass 8-bit/16-bit
// design).
func Search8(query []byte, qlen int, gapOpen, gapExtend byte, matrix scorematrix.Matrix8, qtable []byte, targets []Target, longestDBSequence int, scratch *Scratch8, results []Result) {
	if len(targets) == 0 {
		return
	}
	for i := range scratch.HE {
		scratch.HE[i] = kernel.HE8{}
	}

	q := vec.Dup8(gapOpen + gapExtend)
	r := vec.Dup8(gapExtend)

	var t0 vec.Vec8
	t0[0] = vec.MaxByte

	var dPos, dLen [vec.Channels8]int
	var dOffset [vec.Channels8]int
	var dSeq [vec.Channels8][]byte
	var seqID [vec.Channels8]int
	for c := range seqID {
		seqID[c] = -1
	}

	nextID := 0
	done := 0
	easy := false
	var dseq profile.DSeq8
	var f0, h0 vec.Vec8
	var s [4]vec.Vec8
	var dir [][4]kernel.DirWord8
	dirHead := 0
	ringSize := scratch.Ring.Size()

	fillChannel := func(c int) (endedInBlock bool) {
		for j := 0; j < profile.CDEPTH; j++ {
			if dPos[c] < dLen[c] {
				dseq[j][c] = 1 + nt.Extract(dSeq[c], dPos[c])
				dPos[c]++
			} else {
				dseq[j][c] = 0
			}
		}
		return dPos[c] == dLen[c]
	}

	for {
		if easy {
			for c := 0; c < vec.Channels8; c++ {
				if fillChannel(c) {
					easy = false
				}
			}
			prof := profile.FillShuffle8(matrix, dseq)
			s, dir = kernel.AlignRegular8(prof, qtable, scratch.HE, f0, h0, q, r)
		} else {
			easy = true
			m := vec.Vec8{}
			t := t0
			for c := 0; c < vec.Channels8; c++ {
				switch {
				case dPos[c] < dLen[c]:
					if fillChannel(c) {
						easy = false
					}
				default:
					m = vec.Add8(m, t)

					if candID := seqID[c]; candID >= 0 {
						z := (dLen[c] - 1) % profile.CDEPTH
						score := int(s[z][c])
						results[candID].Score = score
						if score < vec.MaxByte {
							aligned, diff := backtrack.Walk8(query, qlen, dSeq[c], dLen[c], scratch.Ring, dOffset[c], c)
							results[candID].AlignLen = aligned
							results[candID].Diff = diff
							results[candID].Checksum = scratch.Ring.Checksum(dOffset[c], qlen, dLen[c], c)
						} else {
							results[candID].Diff = vec.MaxByte
						}
						done++
					}

					if nextID < len(targets) {
						tgt := targets[nextID]
						seqID[c] = nextID
						dSeq[c] = tgt.Seq
						dLen[c] = tgt.Len
						dPos[c] = 0
						dOffset[c] = dirHead
						nextID++

						h0[c] = 0
						f0[c] = byte(2*int(gapOpen) + 2*int(gapExtend))

						if fillChannel(c) {
							easy = false
						}
					} else {
						seqID[c] = -1
						dSeq[c] = nil
						dPos[c] = 0
						dLen[c] = 0
						for j := 0; j < profile.CDEPTH; j++ {
							dseq[j][c] = 0
						}
					}
				}
				t = vec.ShiftLeft1(t)
			}

			if done == len(targets) {
				return
			}

			prof := profile.FillShuffle8(matrix, dseq)
			mq := vec.And8(m, q)
			mr := vec.And8(m, r)
			s, dir = kernel.AlignMasked8(prof, qtable, scratch.HE, f0, h0, q, r, m, mq, mr)
		}

		scratch.Ring.WriteBlock(dirHead, dir)
		dirHead = (dirHead + 4*longestDBSequence) % ringSize

		f0 = vec.Add8(f0, r)
		f0 = vec.Add8(f0, r)
		f0 = vec.Add8(f0, r)
		h0 = vec.Sub8(f0, q)
		f0 = vec.Add8(f0, r)
	}
}

// Scratch16 is the 16-bit-cell counterpart of Scratch8.
type Scratch16 struct {
	HE   []kernel.HE16
	Ring *ring.Ring16
}

// NewScratch16 is the 16-bit-cell counterpart of NewScratch8.
func NewScratch16(qlen, longestDBSequence int) *Scratch16 {
	return &Scratch16{
		HE:   make([]kernel.HE16, qlen),
		Ring: ring.NewRing16(longestDBSequence),
	}
}

// Search16 is the 16-bit-cell (8-channel) counterpart of Search8, used by
// aligner.SearchDo to re-run any target whose 8-bit score saturated.
func Search16(query []byte, qlen int, gapOpen, gapExtend uint16, matrix scorematrix.Matrix16, qtable []byte, targets []Target, longestDBSequence int, scratch *Scratch16, results []Result) {
	if len(targets) == 0 {
		return
	}
	for i := range scratch.HE {
		scratch.HE[i] = kernel.HE16{}
	}

	q := vec.Dup16(gapOpen + gapExtend)
	r := vec.Dup16(gapExtend)

	var t0 vec.Vec16
	t0[0] = vec.MaxWord

	var dPos, dLen [vec.Channels16]int
	var dOffset [vec.Channels16]int
	var dSeq [vec.Channels16][]byte
	var seqID [vec.Channels16]int
	for c := range seqID {
		seqID[c] = -1
	}

	nextID := 0
	done := 0
	easy := false
	var dseq profile.DSeq16
	var f0, h0 vec.Vec16
	var s [4]vec.Vec16
	var dir [][4]kernel.DirWord16
	dirHead := 0
	ringSize := scratch.Ring.Size()

	fillChannel := func(c int) (endedInBlock bool) {
		for j := 0; j < profile.CDEPTH; j++ {
			if dPos[c] < dLen[c] {
				dseq[j][c] = 1 + nt.Extract(dSeq[c], dPos[c])
				dPos[c]++
			} else {
				dseq[j][c] = 0
			}
		}
		return dPos[c] == dLen[c]
	}

	for {
		if easy {
			for c := 0; c < vec.Channels16; c++ {
				if fillChannel(c) {
					easy = false
				}
			}
			prof := profile.FillShuffle16(matrix, dseq)
			s, dir = kernel.AlignRegular16(prof, qtable, scratch.HE, f0, h0, q, r)
		} else {
			easy = true
			m := vec.Vec16{}
			t := t0
			for c := 0; c < vec.Channels16; c++ {
				switch {
				case dPos[c] < dLen[c]:
					if fillChannel(c) {
						easy = false
					}
				default:
					m = vec.Add16(m, t)

					if candID := seqID[c]; candID >= 0 {
						z := (dLen[c] - 1) % profile.CDEPTH
						score := int(s[z][c])
						results[candID].Score = score
						if score < vec.MaxWord {
							aligned, diff := backtrack.Walk16(query, qlen, dSeq[c], dLen[c], scratch.Ring, dOffset[c], c)
							results[candID].AlignLen = aligned
							results[candID].Diff = diff
							results[candID].Checksum = scratch.Ring.Checksum(dOffset[c], qlen, dLen[c], c)
						} else {
							results[candID].Diff = vec.MaxWord
						}
						done++
					}

					if nextID < len(targets) {
						tgt := targets[nextID]
						seqID[c] = nextID
						dSeq[c] = tgt.Seq
						dLen[c] = tgt.Len
						dPos[c] = 0
						dOffset[c] = dirHead
						nextID++

						h0[c] = 0
						f0[c] = uint16(2*int(gapOpen) + 2*int(gapExtend))

						if fillChannel(c) {
							easy = false
						}
					} else {
						seqID[c] = -1
						dSeq[c] = nil
						dPos[c] = 0
						dLen[c] = 0
						for j := 0; j < profile.CDEPTH; j++ {
							dseq[j][c] = 0
						}
					}
				}
				t = vec.ShiftLeft1Word(t)
			}

			if done == len(targets) {
				return
			}

			prof := profile.FillShuffle16(matrix, dseq)
			mq := vec.And16(m, q)
			mr := vec.And16(m, r)
			s, dir = kernel.AlignMasked16(prof, qtable, scratch.HE, f0, h0, q, r, m, mq, mr)
		}

		scratch.Ring.WriteBlock(dirHead, dir)
		dirHead = (dirHead + 4*longestDBSequence) % ringSize

		f0 = vec.Add16(f0, r)
		f0 = vec.Add16(f0, r)
		f0 = vec.Add16(f0, r)
		h0 = vec.Sub16(f0, q)
		f0 = vec.Add16(f0, r)
	}
}
