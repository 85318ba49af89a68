package profile

import (
	"math/rand"
	"testing"

	"github.com/grailbio/swarmalign/scorematrix"
	"github.com/grailbio/swarmalign/vec"
	"github.com/stretchr/testify/require"
)

func randomDSeq8(r *rand.Rand) DSeq8 {
	var d DSeq8
	for block := 0; block < CDEPTH; block++ {
		for c := 0; c < vec.Channels8; c++ {
			d[block][c] = byte(r.Intn(5))
		}
	}
	return d
}

func TestGenericAndShuffleAgree8(t *testing.T) {
	matrix := scorematrix.Build8(4)
	r := rand.New(rand.NewSource(1))
	for trial := 0; trial < 200; trial++ {
		dseq := randomDSeq8(r)
		require.Equal(t, FillGeneric8(matrix, dseq), FillShuffle8(matrix, dseq))
	}
}

func TestGenericAndShuffleAgree16(t *testing.T) {
	matrix := scorematrix.Build16(4)
	r := rand.New(rand.NewSource(2))
	for trial := 0; trial < 200; trial++ {
		var dseq DSeq16
		for block := 0; block < CDEPTH; block++ {
			for c := 0; c < vec.Channels16; c++ {
				dseq[block][c] = byte(r.Intn(5))
			}
		}
		require.Equal(t, FillGeneric16(matrix, dseq), FillShuffle16(matrix, dseq))
	}
}

func TestPaddingContributesNoCost(t *testing.T) {
	matrix := scorematrix.Build8(9)
	var dseq DSeq8
	// Channel 0 is padding (0) in every block; every other channel mismatches.
	for block := 0; block < CDEPTH; block++ {
		for c := 0; c < vec.Channels8; c++ {
			dseq[block][c] = 2 // nucleotide C (code 1, stored as 1+code), relative to query A below
		}
		dseq[block][0] = 0
	}
	p := FillGeneric8(matrix, dseq)
	for block := 0; block < CDEPTH; block++ {
		require.Equal(t, byte(0), p[0][block][0], "padded channel must cost 0")
	}
}
