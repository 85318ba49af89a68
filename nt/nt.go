// Copyright 2024 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package nt packs and unpacks the 4-letter nucleotide alphabet that every
// other package in swarmalign addresses sequences through. A sequence is
// stored two bits per base, four bases per byte, low bits first.
package nt

import "github.com/grailbio/base/log"

// Alphabet lists the four supported nucleotide symbols in code order, so
// that Alphabet[Extract(seq, i)] recovers the ASCII base at position i.
var Alphabet = [4]byte{'A', 'C', 'G', 'T'}

// BasesPerByte is the number of packed 2-bit codes that fit in one byte.
const BasesPerByte = 4

// Extract returns the 2-bit code ({0,1,2,3}) at position pos in a packed
// sequence buffer. It is the sole producer of symbols consumed by the rest
// of the aligner, for both the query and every database sequence.
func Extract(seq []byte, pos int) byte {
	return (seq[pos/BasesPerByte] >> uint((pos%BasesPerByte)*2)) & 3
}

// Pack encodes codes (each expected to be in {0,1,2,3}) into a freshly
// allocated packed buffer, the inverse of Extract applied pointwise. It
// supports the database loader's FASTA-style ingestion path; the DP kernel
// itself only ever calls Extract.
func Pack(codes []byte) []byte {
	out := make([]byte, (len(codes)+BasesPerByte-1)/BasesPerByte)
	for i, c := range codes {
		if c > 3 {
			log.Panicf("nt.Pack: code %d at position %d out of range", c, i)
		}
		out[i/BasesPerByte] |= c << uint((i%BasesPerByte)*2)
	}
	return out
}

// CodeOf maps an ASCII nucleotide character to its 2-bit code. It panics on
// any byte outside the 4-letter alphabet; ambiguity codes are explicitly
// out of scope (spec Non-goals).
func CodeOf(base byte) byte {
	switch base {
	case 'A', 'a':
		return 0
	case 'C', 'c':
		return 1
	case 'G', 'g':
		return 2
	case 'T', 't':
		return 3
	default:
		log.Panicf("nt.CodeOf: unsupported base %q", base)
		return 0
	}
}

// PackString encodes an ASCII nucleotide string into a packed buffer,
// convenience wrapper used by the database loader and tests.
func PackString(seq string) []byte {
	codes := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		codes[i] = CodeOf(seq[i])
	}
	return Pack(codes)
}
