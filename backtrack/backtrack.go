// Copyright 2024 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package backtrack reconstructs the alignment length and mismatch count
// for a single retired channel from the direction ring, ported from
// swarm's backtrack_8/backtrack_16 (spec.md §4.7).
package backtrack

import (
	"github.com/grailbio/swarmalign/nt"
	"github.com/grailbio/swarmalign/ring"
)

// opKind is the direction of the previous backtracking step.
type opKind byte

const (
	opNone opKind = iota
	opInsertion
	opDeletion
	opMatch
)

// Walk8 reconstructs the alignment for one channel of an 8-bit-cell
// search, walking the direction ring from (qlen-1, dlen-1) back to
// (-1, -1). It returns the total aligned length and the mismatch/indel
// ("diff") count.
func Walk8(qseq []byte, qlen int, dseq []byte, dlen int, r *ring.Ring8, off, channel int) (aligned, diff int) {
	mask := uint16(1) << uint(channel)
	i, j := qlen-1, dlen-1
	matches := 0
	op := opNone

	for i >= 0 && j >= 0 {
		aligned++
		w := r.At(off, i, j)
		switch {
		case op == opInsertion && w.ExtLeft&mask == 0:
			j--
		case op == opDeletion && w.ExtUp&mask == 0:
			i--
		case w.Left&mask != 0:
			j--
			op = opInsertion
		case w.Up&mask == 0:
			i--
			op = opDeletion
		default:
			if nt.Extract(qseq, i) == nt.Extract(dseq, j) {
				matches++
			}
			i--
			j--
			op = opMatch
		}
	}
	for ; i >= 0; i-- {
		aligned++
	}
	for ; j >= 0; j-- {
		aligned++
	}
	return aligned, aligned - matches
}

// Walk16 is the 16-bit-cell counterpart of Walk8.
func Walk16(qseq []byte, qlen int, dseq []byte, dlen int, r *ring.Ring16, off, channel int) (aligned, diff int) {
	mask := uint8(1) << uint(channel)
	i, j := qlen-1, dlen-1
	matches := 0
	op := opNone

	for i >= 0 && j >= 0 {
		aligned++
		w := r.At(off, i, j)
		switch {
		case op == opInsertion && w.ExtLeft&mask == 0:
			j--
		case op == opDeletion && w.ExtUp&mask == 0:
			i--
		case w.Left&mask != 0:
			j--
			op = opInsertion
		case w.Up&mask == 0:
			i--
			op = opDeletion
		default:
			if nt.Extract(qseq, i) == nt.Extract(dseq, j) {
				matches++
			}
			i--
			j--
			op = opMatch
		}
	}
	for ; i >= 0; i-- {
		aligned++
	}
	for ; j >= 0; j-- {
		aligned++
	}
	return aligned, aligned - matches
}
