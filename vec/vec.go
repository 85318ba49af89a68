// Copyright 2024 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package vec implements the small SIMD capability the aligner is built on
// top of: saturating add/sub, unsigned min, duplicate-scalar,
// lane-byte-shuffle, compare-equal-to-bitmask, and a one-lane left shift.
// Channels8 lanes track the 8-bit cell width (16 database sequences in
// flight); Channels16 lanes track the 16-bit cell width (8 sequences).
//
// Every real SIMD backend (SSE2/SSSE3, NEON, VSX) implements this same
// capability set against a 128-bit register; this package supplies the
// portable reference implementation described in the design notes, which
// every caller in this module is written against. See DESIGN.md for why no
// assembly backend is included here.
package vec

// Channels8 is the number of independent database sequences tracked by one
// Vec8 (one lane per 8-bit cell).
const Channels8 = 16

// Channels16 is the number of independent database sequences tracked by one
// Vec16 (one lane per 16-bit cell).
const Channels16 = 8

// MaxByte is the saturation ceiling for an 8-bit cell.
const MaxByte = 0xff

// MaxWord is the saturation ceiling for a 16-bit cell.
const MaxWord = 0xffff

// Vec8 holds one 8-bit DP score per channel, lane c tracking database
// sequence c.
type Vec8 [Channels8]byte

// Vec16 holds one 16-bit DP score per channel.
type Vec16 [Channels16]uint16

// Dup8 returns a vector with every lane set to v.
func Dup8(v byte) (out Vec8) {
	for c := range out {
		out[c] = v
	}
	return out
}

// Dup16 returns a vector with every lane set to v.
func Dup16(v uint16) (out Vec16) {
	for c := range out {
		out[c] = v
	}
	return out
}

// Add8 computes a saturating unsigned per-lane addition.
func Add8(a, b Vec8) (out Vec8) {
	for c := range out {
		s := uint16(a[c]) + uint16(b[c])
		if s > MaxByte {
			s = MaxByte
		}
		out[c] = byte(s)
	}
	return out
}

// Sub8 computes a saturating unsigned per-lane subtraction.
func Sub8(a, b Vec8) (out Vec8) {
	for c := range out {
		if a[c] > b[c] {
			out[c] = a[c] - b[c]
		}
	}
	return out
}

// Min8 computes the per-lane unsigned minimum.
func Min8(a, b Vec8) (out Vec8) {
	for c := range out {
		if a[c] < b[c] {
			out[c] = a[c]
		} else {
			out[c] = b[c]
		}
	}
	return out
}

// MaskEq8 compares a and b lane-by-lane and packs the per-lane equality
// flags into the low 16 bits of the result, bit c set iff a[c] == b[c].
// This is the portable equivalent of x86's pmovmskb-after-pcmpeqb pair.
func MaskEq8(a, b Vec8) uint16 {
	var mask uint16
	for c := range a {
		if a[c] == b[c] {
			mask |= 1 << uint(c)
		}
	}
	return mask
}

// Shuffle8 performs a table lookup: out[c] = table[idx[c] & 0xf], the
// portable equivalent of SSSE3's PSHUFB used by the shuffle profile path.
func Shuffle8(table Vec8, idx Vec8) (out Vec8) {
	for c := range out {
		out[c] = table[idx[c]&0x0f]
	}
	return out
}

// ShiftLeft1 shifts every lane one position towards higher channel
// indices, introducing a zero lane at channel 0 and dropping the top lane.
// It is used to walk a single active-channel bit through all lanes when
// building the restart bitmask M (spec.md §4.6, §9 "T = T0 << c").
func ShiftLeft1(v Vec8) (out Vec8) {
	out[0] = 0
	copy(out[1:], v[:len(v)-1])
	return out
}

// And8 computes a per-lane bitwise AND. Used to mask the gap-open/extend
// constants down to only the lanes of channels that just restarted with a
// new sequence (spec.md §4.6's MQ/MR).
func And8(a, b Vec8) (out Vec8) {
	for c := range out {
		out[c] = a[c] & b[c]
	}
	return out
}

// MergeLo8 and MergeHi8 interleave the low (resp. high) 8 lanes of a and b
// byte by byte, the portable equivalent of SSE2's PUNPCKLBW/PUNPCKHBW. The
// generic query profile builder uses these, together with MergeLo/Hi at
// the wider granularities below, to transpose 16 per-channel gathers into
// per-query-symbol vectors (spec.md §4.3; search8.cc's dprofile_fill8).
func MergeLo8(a, b Vec8) (out Vec8) {
	for i := 0; i < 8; i++ {
		out[2*i] = a[i]
		out[2*i+1] = b[i]
	}
	return out
}

func MergeHi8(a, b Vec8) (out Vec8) {
	for i := 0; i < 8; i++ {
		out[2*i] = a[8+i]
		out[2*i+1] = b[8+i]
	}
	return out
}

// MergeLo16 and MergeHi16 interleave at 16-bit-word granularity (pairs of
// bytes), the equivalent of PUNPCKLWD/PUNPCKHWD, over the low (resp. high)
// 8 bytes of each input.
func MergeLo16(a, b Vec8) (out Vec8) {
	for i := 0; i < 4; i++ {
		copy(out[4*i:4*i+2], a[2*i:2*i+2])
		copy(out[4*i+2:4*i+4], b[2*i:2*i+2])
	}
	return out
}

func MergeHi16(a, b Vec8) (out Vec8) {
	for i := 0; i < 4; i++ {
		copy(out[4*i:4*i+2], a[8+2*i:8+2*i+2])
		copy(out[4*i+2:4*i+4], b[8+2*i:8+2*i+2])
	}
	return out
}

// MergeLo32 and MergeHi32 interleave at 32-bit-dword granularity, the
// equivalent of PUNPCKLDQ/PUNPCKHDQ.
func MergeLo32(a, b Vec8) (out Vec8) {
	copy(out[0:4], a[0:4])
	copy(out[4:8], b[0:4])
	copy(out[8:12], a[4:8])
	copy(out[12:16], b[4:8])
	return out
}

func MergeHi32(a, b Vec8) (out Vec8) {
	copy(out[0:4], a[8:12])
	copy(out[4:8], b[8:12])
	copy(out[8:12], a[12:16])
	copy(out[12:16], b[12:16])
	return out
}

// MergeLo64 and MergeHi64 interleave at 64-bit-qword granularity, the
// equivalent of PUNPCKLQDQ/PUNPCKHQDQ: a concatenation of the low (resp.
// high) half of each input.
func MergeLo64(a, b Vec8) (out Vec8) {
	copy(out[0:8], a[0:8])
	copy(out[8:16], b[0:8])
	return out
}

func MergeHi64(a, b Vec8) (out Vec8) {
	copy(out[0:8], a[8:16])
	copy(out[8:16], b[8:16])
	return out
}

// Add16, Sub16 and Min16 are the 16-bit-cell counterparts of Add8/Sub8/Min8.

func Add16(a, b Vec16) (out Vec16) {
	for c := range out {
		s := uint32(a[c]) + uint32(b[c])
		if s > MaxWord {
			s = MaxWord
		}
		out[c] = uint16(s)
	}
	return out
}

func Sub16(a, b Vec16) (out Vec16) {
	for c := range out {
		if a[c] > b[c] {
			out[c] = a[c] - b[c]
		}
	}
	return out
}

func Min16(a, b Vec16) (out Vec16) {
	for c := range out {
		if a[c] < b[c] {
			out[c] = a[c]
		} else {
			out[c] = b[c]
		}
	}
	return out
}

// MaskEq16 is the 16-bit-cell counterpart of MaskEq8; the mask occupies the
// low 8 bits (one per channel).
func MaskEq16(a, b Vec16) uint8 {
	var mask uint8
	for c := range a {
		if a[c] == b[c] {
			mask |= 1 << uint(c)
		}
	}
	return mask
}

// Shuffle16 is the 16-bit-cell counterpart of Shuffle8: out[c] =
// table[idx[c] & 0x7]. idx lanes are bytes because database symbols are
// always small values ({0..4}), even though the cell width is 16 bits.
func Shuffle16(table Vec16, idx [Channels16]byte) (out Vec16) {
	for c := range out {
		out[c] = table[idx[c]&0x07]
	}
	return out
}

// And16 is the 16-bit-cell counterpart of And8.
func And16(a, b Vec16) (out Vec16) {
	for c := range out {
		out[c] = a[c] & b[c]
	}
	return out
}

// ShiftLeft1Word is the 16-bit-cell counterpart of ShiftLeft1.
func ShiftLeft1Word(v Vec16) (out Vec16) {
	out[0] = 0
	copy(out[1:], v[:len(v)-1])
	return out
}

// MergeLoLane16 and MergeHiLane16 interleave single 16-bit lanes, the Vec16
// (8-channel) counterpart of MergeLo8/MergeHi8's byte granularity. Because
// Channels16 is only 8 (2^3), the generic 16-bit profile builder needs
// three merge stages instead of Vec8's four.
func MergeLoLane16(a, b Vec16) (out Vec16) {
	for i := 0; i < 4; i++ {
		out[2*i] = a[i]
		out[2*i+1] = b[i]
	}
	return out
}

func MergeHiLane16(a, b Vec16) (out Vec16) {
	for i := 0; i < 4; i++ {
		out[2*i] = a[4+i]
		out[2*i+1] = b[4+i]
	}
	return out
}

// MergeLoPair16 and MergeHiPair16 interleave 2-lane groups (32 bits' worth
// of lanes).
func MergeLoPair16(a, b Vec16) (out Vec16) {
	copy(out[0:2], a[0:2])
	copy(out[2:4], b[0:2])
	copy(out[4:6], a[2:4])
	copy(out[6:8], b[2:4])
	return out
}

func MergeHiPair16(a, b Vec16) (out Vec16) {
	copy(out[0:2], a[4:6])
	copy(out[2:4], b[4:6])
	copy(out[4:6], a[6:8])
	copy(out[6:8], b[6:8])
	return out
}

// MergeLoQuad16 and MergeHiQuad16 interleave 4-lane (half-register) groups,
// the final merge stage that produces a full 8-channel profile vector.
func MergeLoQuad16(a, b Vec16) (out Vec16) {
	copy(out[0:4], a[0:4])
	copy(out[4:8], b[0:4])
	return out
}

func MergeHiQuad16(a, b Vec16) (out Vec16) {
	copy(out[0:4], a[4:8])
	copy(out[4:8], b[4:8])
	return out
}
