// Copyright 2024 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package profile builds the query profile the strip aligner sweeps
// against: for every query position's nucleotide and every database
// column in the current 4-column block, a per-channel substitution cost
// vector. Two independent implementations are provided, grounded on
// swarm's dprofile_fill8 (generic, merge/gather based) and
// dprofile_shuffle8 (table-lookup based); both must agree byte for byte
// for every input (spec.md §8, property 6), which is exercised by
// profile_test.go.
package profile

import (
	"github.com/grailbio/swarmalign/scorematrix"
	"github.com/grailbio/swarmalign/vec"
)

// CDEPTH is the number of database columns materialised per block.
const CDEPTH = 4

// DSeq8 holds one database symbol byte ({0..4}, 0 = padding) per channel,
// for each of the CDEPTH columns of the current block, for the 16-channel
// (8-bit cell) path.
type DSeq8 [CDEPTH]vec.Vec8

// DSeq16 is the 8-channel (16-bit cell) counterpart of DSeq8.
type DSeq16 [CDEPTH][vec.Channels16]byte

// Profile8 is addressed profile[queryNT][blockIndex], yielding the
// per-channel substitution cost vector for that query nucleotide against
// the block's four database columns. (The flat dprofile[nt*stride+block]
// addressing of spec.md §3 is an implementation detail; indexing by a
// 2-D array expresses the same contract.)
type Profile8 [4][CDEPTH]vec.Vec8

// Profile16 is the 16-bit-cell counterpart of Profile8.
type Profile16 [4][CDEPTH]vec.Vec16

// FillGeneric8 builds the profile the way dprofile_fill8 does: load, for
// every channel, the score-matrix column for that channel's database
// symbol (one vec.Vec8 per channel, lanes 0..3 holding the cost against
// query symbols 0..3), then transpose those 16 per-channel loads into 4
// per-query-symbol vectors with a cascade of pairwise merges at byte, word,
// dword and qword granularity (vec.MergeLo8/Hi8, ...Lo16/Hi16, ...Lo32/Hi32,
// ...Lo64/Hi64). This is a genuinely different derivation from
// FillShuffle8's direct table lookup below, required to agree with it byte
// for byte (spec.md §8, property 6).
func FillGeneric8(matrix scorematrix.Matrix8, dseq DSeq8) (p Profile8) {
	for block := 0; block < CDEPTH; block++ {
		var gather [vec.Channels8]vec.Vec8
		for c := 0; c < vec.Channels8; c++ {
			gather[c] = matrix.Column(dseq[block][c])
		}

		// Stage 1 (byte granularity): pair up adjacent channels.
		var s1 [vec.Channels8]vec.Vec8
		for k := 0; k < vec.Channels8/2; k++ {
			s1[k] = vec.MergeLo8(gather[2*k], gather[2*k+1])
		}

		// Stage 2 (word granularity): pair up adjacent stage-1 results.
		var s2 [4]vec.Vec8
		for m := 0; m < 4; m++ {
			s2[m] = vec.MergeLo16(s1[2*m], s1[2*m+1])
		}

		// Stage 3 (dword granularity): combine groups of 4 channels,
		// separating query symbols 0/1 (lo) from 2/3 (hi).
		lo01 := vec.MergeLo32(s2[0], s2[1])
		hi23 := vec.MergeHi32(s2[0], s2[1])
		lo01b := vec.MergeLo32(s2[2], s2[3])
		hi23b := vec.MergeHi32(s2[2], s2[3])

		// Stage 4 (qword granularity): combine the two 8-channel halves
		// into the full 16-channel profile vector for each query symbol.
		p[0][block] = vec.MergeLo64(lo01, lo01b)
		p[1][block] = vec.MergeHi64(lo01, lo01b)
		p[2][block] = vec.MergeLo64(hi23, hi23b)
		p[3][block] = vec.MergeHi64(hi23, hi23b)
	}
	return p
}

// FillShuffle8 builds the profile using the vec.Shuffle8 capability (the
// portable equivalent of SSSE3's PSHUFB), one shuffle per block per query
// symbol, grounded on dprofile_shuffle8.
func FillShuffle8(matrix scorematrix.Matrix8, dseq DSeq8) (p Profile8) {
	for q := 0; q < 4; q++ {
		row := matrix.Row(byte(q))
		for block := 0; block < CDEPTH; block++ {
			p[q][block] = vec.Shuffle8(row, dseq[block])
		}
	}
	return p
}

// FillGeneric16 is the 16-bit-cell counterpart of FillGeneric8. Channels16
// is only 8 (2^3), so the transpose needs one fewer merge stage: lane,
// pair, then quad granularity.
func FillGeneric16(matrix scorematrix.Matrix16, dseq DSeq16) (p Profile16) {
	for block := 0; block < CDEPTH; block++ {
		var gather [vec.Channels16]vec.Vec16
		for c := 0; c < vec.Channels16; c++ {
			gather[c] = matrix.Column(dseq[block][c])
		}

		// Stage 1 (lane granularity): pair up adjacent channels.
		var s1 [vec.Channels16]vec.Vec16
		for k := 0; k < vec.Channels16/2; k++ {
			s1[k] = vec.MergeLoLane16(gather[2*k], gather[2*k+1])
		}

		// Stage 2 (pair granularity): combine groups of 4 channels,
		// separating query symbols 0/1 (lo) from 2/3 (hi).
		lo01 := vec.MergeLoPair16(s1[0], s1[1])
		hi23 := vec.MergeHiPair16(s1[0], s1[1])
		lo01b := vec.MergeLoPair16(s1[2], s1[3])
		hi23b := vec.MergeHiPair16(s1[2], s1[3])

		// Stage 3 (quad granularity): combine the two 4-channel halves
		// into the full 8-channel profile vector for each query symbol.
		p[0][block] = vec.MergeLoQuad16(lo01, lo01b)
		p[1][block] = vec.MergeHiQuad16(lo01, lo01b)
		p[2][block] = vec.MergeLoQuad16(hi23, hi23b)
		p[3][block] = vec.MergeHiQuad16(hi23, hi23b)
	}
	return p
}

// FillShuffle16 is the 16-bit-cell counterpart of FillShuffle8.
func FillShuffle16(matrix scorematrix.Matrix16, dseq DSeq16) (p Profile16) {
	for q := 0; q < 4; q++ {
		row := matrix.Row(byte(q))
		for block := 0; block < CDEPTH; block++ {
			p[q][block] = vec.Shuffle16(row, dseq[block])
		}
	}
	return p
}
