// Copyright 2024 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package kernel implements the one-cell SIMD update (spec.md §4.4,
// onestep) and the strip aligner that sweeps it across the query axis for
// one block of four database columns (spec.md §4.5, align_cells_regular /
// align_cells_masked), ported from swarm's onestep_8/align_cells_regular_8/
// align_cells_masked_8 and their 16-bit-cell counterparts.
package kernel

import (
	"github.com/grailbio/swarmalign/profile"
	"github.com/grailbio/swarmalign/vec"
)

// HE8 holds one hearray entry: the best score (H) and the horizontal-gap
// auxiliary (E) ending at a single query position, across all 16 channels.
type HE8 struct {
	H, E vec.Vec8
}

// HE16 is the 16-bit-cell counterpart of HE8.
type HE16 struct {
	H, E vec.Vec16
}

// DirWord8 packs the four per-channel direction bitmasks written by one
// onestep call in the 8-bit (16-channel) path: bit c of each field is
// channel c's decision. This is the same information spec.md §3 describes
// as a 64-bit ring word's four 16-bit fields, expressed as a struct instead
// of hand-packed bits (see DESIGN.md).
type DirWord8 struct {
	Up, Left, ExtUp, ExtLeft uint16
}

// DirWord16 is the 16-bit-cell (8-channel) counterpart of DirWord8; each
// field only uses its low 8 bits.
type DirWord16 struct {
	Up, Left, ExtUp, ExtLeft uint8
}

// OneStep8 performs one DP cell update across all 16 channels, exactly
// following spec.md §4.4's pseudocode. h, f and e are the incoming
// H/F/E state; v is the substitution cost vector for this cell; qr is the
// gap-open-plus-extend constant, r the gap-extend constant. It returns the
// updated H/F/E state, the newly published score N, and the direction
// bits for this cell.
func OneStep8(h, f, e, v, qr, r vec.Vec8) (hOut, n, fOut, eOut vec.Vec8, dir DirWord8) {
	h = vec.Add8(h, v)
	w := h
	h = vec.Min8(h, f)
	dir.Up = vec.MaskEq8(w, h)
	h = vec.Min8(h, e)
	dir.Left = vec.MaskEq8(h, e)
	n = h
	h = vec.Add8(h, qr)
	f = vec.Add8(f, r)
	e = vec.Add8(e, r)
	f = vec.Min8(h, f)
	dir.ExtUp = vec.MaskEq8(h, f)
	e = vec.Min8(h, e)
	dir.ExtLeft = vec.MaskEq8(h, e)
	return h, n, f, e, dir
}

// OneStep16 is the 16-bit-cell counterpart of OneStep8.
func OneStep16(h, f, e, v, qr, r vec.Vec16) (hOut, n, fOut, eOut vec.Vec16, dir DirWord16) {
	h = vec.Add16(h, v)
	w := h
	h = vec.Min16(h, f)
	dir.Up = vec.MaskEq16(w, h)
	h = vec.Min16(h, e)
	dir.Left = vec.MaskEq16(h, e)
	n = h
	h = vec.Add16(h, qr)
	f = vec.Add16(f, r)
	e = vec.Add16(e, r)
	f = vec.Min16(h, f)
	dir.ExtUp = vec.MaskEq16(h, f)
	e = vec.Min16(h, e)
	dir.ExtLeft = vec.MaskEq16(h, e)
	return h, n, f, e, dir
}

// AlignRegular8 sweeps the query axis for one block of four database
// columns, carrying H and E unchanged from the hearray between blocks.
// he is mutated in place (the new per-position H/E state for the next
// block); it returns the final-column scores S[0..3] and, for every query
// position, the four direction words emitted by that position's onestep
// calls (one per database column of this block). Ported from
// align_cells_regular_8.
func AlignRegular8(prof profile.Profile8, qtable []byte, he []HE8, f0, h0, q, r vec.Vec8) (s [4]vec.Vec8, dir [][4]DirWord8) {
	ql := len(qtable)
	dir = make([][4]DirWord8, ql)

	f0v := f0
	f1 := vec.Add8(f0v, r)
	f2 := vec.Add8(f1, r)
	f3 := vec.Add8(f2, r)

	h0v := h0
	h1 := vec.Sub8(f0v, q)
	h2 := vec.Add8(h1, r)
	h3 := vec.Add8(h2, r)
	var h5, h6, h7, h8 vec.Vec8

	for i := 0; i < ql; i++ {
		row := prof[qtable[i]]
		h4 := he[i].H
		e := he[i].E
		var d [4]DirWord8

		h0v, h5, f0v, e, d[0] = OneStep8(h0v, f0v, e, row[0], q, r)
		h1, h6, f1, e, d[1] = OneStep8(h1, f1, e, row[1], q, r)
		h2, h7, f2, e, d[2] = OneStep8(h2, f2, e, row[2], q, r)
		h3, h8, f3, e, d[3] = OneStep8(h3, f3, e, row[3], q, r)

		he[i] = HE8{H: h8, E: e}
		dir[i] = d

		h0v, h1, h2, h3 = h4, h5, h6, h7
	}

	s[0], s[1], s[2], s[3] = h5, h6, h7, h8
	return s, dir
}

// AlignMasked8 is the masked variant of AlignRegular8, used for the block
// immediately after one or more channels started a new sequence. Before
// each query position's onestep group, the carried H and E are
// conditionally reinitialised for restarting channels: H/E have the mask m
// subtracted then the running gap-open value mq added (mq0 additionally
// added to E once), and mq is then advanced by mr so later query positions
// see the correct running gap-open penalty. Ported from
// align_cells_masked_8.
func AlignMasked8(prof profile.Profile8, qtable []byte, he []HE8, f0, h0, q, r, m, mq, mr vec.Vec8) (s [4]vec.Vec8, dir [][4]DirWord8) {
	ql := len(qtable)
	dir = make([][4]DirWord8, ql)
	mq0 := mq

	f0v := f0
	f1 := vec.Add8(f0v, r)
	f2 := vec.Add8(f1, r)
	f3 := vec.Add8(f2, r)

	h0v := h0
	h1 := vec.Sub8(f0v, q)
	h2 := vec.Add8(h1, r)
	h3 := vec.Add8(h2, r)
	var h5, h6, h7, h8 vec.Vec8

	for i := 0; i < ql; i++ {
		row := prof[qtable[i]]
		h4 := he[i].H
		e := he[i].E

		h4 = vec.Sub8(h4, m)
		e = vec.Sub8(e, m)
		h4 = vec.Add8(h4, mq)
		e = vec.Add8(e, mq)
		e = vec.Add8(e, mq0)
		mq = vec.Add8(mq, mr)

		var d [4]DirWord8
		h0v, h5, f0v, e, d[0] = OneStep8(h0v, f0v, e, row[0], q, r)
		h1, h6, f1, e, d[1] = OneStep8(h1, f1, e, row[1], q, r)
		h2, h7, f2, e, d[2] = OneStep8(h2, f2, e, row[2], q, r)
		h3, h8, f3, e, d[3] = OneStep8(h3, f3, e, row[3], q, r)

		he[i] = HE8{H: h8, E: e}
		dir[i] = d

		h0v, h1, h2, h3 = h4, h5, h6, h7
	}

	s[0], s[1], s[2], s[3] = h5, h6, h7, h8
	return s, dir
}

// AlignRegular16 is the 16-bit-cell counterpart of AlignRegular8.
func AlignRegular16(prof profile.Profile16, qtable []byte, he []HE16, f0, h0, q, r vec.Vec16) (s [4]vec.Vec16, dir [][4]DirWord16) {
	ql := len(qtable)
	dir = make([][4]DirWord16, ql)

	f0v := f0
	f1 := vec.Add16(f0v, r)
	f2 := vec.Add16(f1, r)
	f3 := vec.Add16(f2, r)

	h0v := h0
	h1 := vec.Sub16(f0v, q)
	h2 := vec.Add16(h1, r)
	h3 := vec.Add16(h2, r)
	var h5, h6, h7, h8 vec.Vec16

	for i := 0; i < ql; i++ {
		row := prof[qtable[i]]
		h4 := he[i].H
		e := he[i].E
		var d [4]DirWord16

		h0v, h5, f0v, e, d[0] = OneStep16(h0v, f0v, e, row[0], q, r)
		h1, h6, f1, e, d[1] = OneStep16(h1, f1, e, row[1], q, r)
		h2, h7, f2, e, d[2] = OneStep16(h2, f2, e, row[2], q, r)
		h3, h8, f3, e, d[3] = OneStep16(h3, f3, e, row[3], q, r)

		he[i] = HE16{H: h8, E: e}
		dir[i] = d

		h0v, h1, h2, h3 = h4, h5, h6, h7
	}

	s[0], s[1], s[2], s[3] = h5, h6, h7, h8
	return s, dir
}

// AlignMasked16 is the 16-bit-cell counterpart of AlignMasked8.
func AlignMasked16(prof profile.Profile16, qtable []byte, he []HE16, f0, h0, q, r, m, mq, mr vec.Vec16) (s [4]vec.Vec16, dir [][4]DirWord16) {
	ql := len(qtable)
	dir = make([][4]DirWord16, ql)
	mq0 := mq

	f0v := f0
	f1 := vec.Add16(f0v, r)
	f2 := vec.Add16(f1, r)
	f3 := vec.Add16(f2, r)

	h0v := h0
	h1 := vec.Sub16(f0v, q)
	h2 := vec.Add16(h1, r)
	h3 := vec.Add16(h2, r)
	var h5, h6, h7, h8 vec.Vec16

	for i := 0; i < ql; i++ {
		row := prof[qtable[i]]
		h4 := he[i].H
		e := he[i].E

		h4 = vec.Sub16(h4, m)
		e = vec.Sub16(e, m)
		h4 = vec.Add16(h4, mq)
		e = vec.Add16(e, mq)
		e = vec.Add16(e, mq0)
		mq = vec.Add16(mq, mr)

		var d [4]DirWord16
		h0v, h5, f0v, e, d[0] = OneStep16(h0v, f0v, e, row[0], q, r)
		h1, h6, f1, e, d[1] = OneStep16(h1, f1, e, row[1], q, r)
		h2, h7, f2, e, d[2] = OneStep16(h2, f2, e, row[2], q, r)
		h3, h8, f3, e, d[3] = OneStep16(h3, f3, e, row[3], q, r)

		he[i] = HE16{H: h8, E: e}
		dir[i] = d

		h0v, h1, h2, h3 = h4, h5, h6, h7
	}

	s[0], s[1], s[2], s[3] = h5, h6, h7, h8
	return s, dir
}
