// Copyright 2024 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package ring implements the direction ring buffer (spec.md §3): a flat,
// wrapping array of per-cell direction words shared by every channel of a
// single 8-bit or 16-bit search pass. Swarm addresses this buffer with raw
// pointer arithmetic into a 64-bit-word array and a power-of-two-free
// modulo; this package expresses the same addressing as an explicit
// indexing helper (spec.md §9's "reimplement as an explicit indexing
// helper" design note) instead of pointer arithmetic, and stores one
// direction word per ring slot as a small struct (kernel.DirWord8/16)
// rather than hand-packing four 16-bit (or 8-bit) fields into one raw
// uint64 -- see DESIGN.md for why.
//
// Unlike circular.Bitmap in the teacher repo, this ring's size is not
// constrained to be a power of two (stride = 4 * longest database
// sequence is caller-determined), so indexing uses a modulo rather than a
// bitmask.
package ring

import (
	"blainsmith.com/go/seahash"
	"github.com/grailbio/swarmalign/kernel"
)

// sizeFor returns the number of words needed for a ring sized to hold
// every cell of the longest possible database sequence for every channel
// (spec.md §3 invariant 5).
func sizeFor(longestDBSequence int) int {
	return longestDBSequence * ((longestDBSequence + 3) / 4) * 4
}

// Ring8 is the direction ring for the 8-bit (16-channel) search pass.
type Ring8 struct {
	words  []kernel.DirWord8
	stride int
}

// NewRing8 allocates a ring sized for the given longest database sequence
// length. Allocated once per thread at search-begin and reused across
// every query and chunk (spec.md §3 "Lifecycle").
func NewRing8(longestDBSequence int) *Ring8 {
	return &Ring8{
		words:  make([]kernel.DirWord8, sizeFor(longestDBSequence)),
		stride: 4 * longestDBSequence,
	}
}

// Size returns the number of words in the ring.
func (r *Ring8) Size() int { return len(r.words) }

// WriteBlock writes the direction words produced by one AlignRegular8 or
// AlignMasked8 call, whose dir slice holds, for every query position i,
// the four per-database-column direction words of this block. off is the
// ring position of (query position 0, database column 0) for this block,
// i.e. the scheduler's current write-head value.
func (r *Ring8) WriteBlock(off int, dir [][4]kernel.DirWord8) {
	n := len(r.words)
	for i, quad := range dir {
		base := off + 4*i
		for d := 0; d < 4; d++ {
			r.words[(base+d)%n] = quad[d]
		}
	}
}

// At returns the direction word for global query position i and global
// database column j, given the ring position off at which this channel's
// sequence started (spec.md §3's addressing formula, with stride = 4 *
// longest database sequence).
func (r *Ring8) At(off, i, j int) kernel.DirWord8 {
	n := len(r.words)
	idx := (off + r.stride*(j/4) + 4*i + j%4) % n
	return r.words[idx]
}

// Verify checks spec.md §3 invariant 2 for a channel that wrote
// blockCount blocks: its data must fit inside the ring without the write
// head wrapping over the channel's first block. It is not called on the
// hot path; only tests call it.
func (r *Ring8) Verify(blockCount int) bool {
	return blockCount*r.stride <= len(r.words)
}

// Checksum hashes the direction bits a single channel wrote across its
// whole alignment (seahash, a fast non-cryptographic hash already in the
// teacher's dependency closure), extracting only that channel's bit out of
// each shared direction word the same way backtrack.Walk8 does. Since the
// result depends only on the retired channel's own direction bits and not
// on which physical lane it happened to occupy, two runs that dispatch the
// same sequence to different channels (e.g. under a different thread
// count) must still produce the same Checksum for it -- the scheduler
// reports this value on every retired channel whose score did not
// saturate (see Search8's retirement branch) so callers can assert
// exactly that.
func (r *Ring8) Checksum(off, qlen, dlen, channel int) uint64 {
	mask := uint16(1) << uint(channel)
	buf := make([]byte, 0, qlen*dlen)
	for i := 0; i < qlen; i++ {
		for j := 0; j < dlen; j++ {
			w := r.At(off, i, j)
			var bits byte
			if w.Up&mask != 0 {
				bits |= 1
			}
			if w.Left&mask != 0 {
				bits |= 2
			}
			if w.ExtUp&mask != 0 {
				bits |= 4
			}
			if w.ExtLeft&mask != 0 {
				bits |= 8
			}
			buf = append(buf, bits)
		}
	}
	return seahash.Sum64(buf)
}

// Ring16 is the 16-bit-cell (8-channel) counterpart of Ring8.
type Ring16 struct {
	words  []kernel.DirWord16
	stride int
}

// NewRing16 allocates a ring sized for the given longest database
// sequence length.
func NewRing16(longestDBSequence int) *Ring16 {
	return &Ring16{
		words:  make([]kernel.DirWord16, sizeFor(longestDBSequence)),
		stride: 4 * longestDBSequence,
	}
}

// Size returns the number of words in the ring.
func (r *Ring16) Size() int { return len(r.words) }

// WriteBlock is the 16-bit-cell counterpart of Ring8.WriteBlock.
func (r *Ring16) WriteBlock(off int, dir [][4]kernel.DirWord16) {
	n := len(r.words)
	for i, quad := range dir {
		base := off + 4*i
		for d := 0; d < 4; d++ {
			r.words[(base+d)%n] = quad[d]
		}
	}
}

// At is the 16-bit-cell counterpart of Ring8.At.
func (r *Ring16) At(off, i, j int) kernel.DirWord16 {
	n := len(r.words)
	idx := (off + r.stride*(j/4) + 4*i + j%4) % n
	return r.words[idx]
}

// Verify is the 16-bit-cell counterpart of Ring8.Verify.
func (r *Ring16) Verify(blockCount int) bool {
	return blockCount*r.stride <= len(r.words)
}

// Checksum is the 16-bit-cell counterpart of Ring8.Checksum.
func (r *Ring16) Checksum(off, qlen, dlen, channel int) uint64 {
	mask := uint8(1) << uint(channel)
	buf := make([]byte, 0, qlen*dlen)
	for i := 0; i < qlen; i++ {
		for j := 0; j < dlen; j++ {
			w := r.At(off, i, j)
			var bits byte
			if w.Up&mask != 0 {
				bits |= 1
			}
			if w.Left&mask != 0 {
				bits |= 2
			}
			if w.ExtUp&mask != 0 {
				bits |= 4
			}
			if w.ExtLeft&mask != 0 {
				bits |= 8
			}
			buf = append(buf, bits)
		}
	}
	return seahash.Sum64(buf)
}
