// Copyright 2024 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package scorematrix builds the per-cell-width substitution cost tables
// the query profile builder consumes. A database symbol of 0 is reserved
// for block padding (a channel whose sequence has already ended) and
// always costs zero, regardless of the query symbol, so that padding never
// perturbs a neighbouring live channel's score.
package scorematrix

import "github.com/grailbio/swarmalign/vec"

// Cost returns the substitution cost of query symbol q ({0..3}) against
// database symbol d ({0..4}, 0 meaning padding), given a flat mismatch
// penalty. This is the single source of truth the vectorised matrices
// below are built from.
func Cost(q, d byte, mismatchPenalty int) int {
	if d == 0 {
		return 0
	}
	if d-1 == q {
		return 0
	}
	return mismatchPenalty
}

// Matrix8 holds one row per query nucleotide (0..3); Row(q)[d] is the cost
// of aligning query symbol q against database symbol d ({0..4}).
// Lanes 5..15 are unused filler, present only because Vec8 is a
// fixed-width 16-lane SIMD register; the profile builder never indexes
// them because database bytes are always in {0..4}.
type Matrix8 [4]vec.Vec8

// Build8 constructs the 8-bit-cell score matrix for a given mismatch
// penalty. Mirrors score_matrix.h's byte layout from the original swarm
// implementation, re-expressed as one lookup row per query symbol instead
// of a flat byte table, since the exact flat layout is an implementation
// detail (spec.md §4.2).
func Build8(mismatchPenalty byte) Matrix8 {
	var m Matrix8
	for q := 0; q < 4; q++ {
		for d := 0; d < 5; d++ {
			m[q][d] = byte(Cost(byte(q), byte(d), int(mismatchPenalty)))
		}
	}
	return m
}

// Row returns the cost row for query symbol q.
func (m Matrix8) Row(q byte) vec.Vec8 {
	return m[q]
}

// Column returns, for a single database symbol d, the cost against every
// query symbol 0..3 in lanes 0..3; lanes 4..15 are zero filler. This is the
// per-channel "load a score-matrix row indexed by the database byte" step
// the generic profile builder gathers before transposing (spec.md §4.3),
// mirrored on search8.cc's d[i] = dseq[...]<<5 row lookup.
func (m Matrix8) Column(d byte) (out vec.Vec8) {
	for q := 0; q < 4; q++ {
		out[q] = m[q][d]
	}
	return out
}

// Matrix16 is the 16-bit-cell counterpart of Matrix8.
type Matrix16 [4]vec.Vec16

// Build16 constructs the 16-bit-cell score matrix.
func Build16(mismatchPenalty uint16) Matrix16 {
	var m Matrix16
	for q := 0; q < 4; q++ {
		for d := 0; d < 5; d++ {
			m[q][d] = uint16(Cost(byte(q), byte(d), int(mismatchPenalty)))
		}
	}
	return m
}

// Row returns the cost row for query symbol q.
func (m Matrix16) Row(q byte) vec.Vec16 {
	return m[q]
}

// Column is the 16-bit-cell counterpart of Matrix8.Column: lanes 4..7 are
// zero filler (Vec16 only has 8 lanes, of which only 4 carry a meaningful
// query symbol).
func (m Matrix16) Column(d byte) (out vec.Vec16) {
	for q := 0; q < 4; q++ {
		out[q] = m[q][d]
	}
	return out
}
