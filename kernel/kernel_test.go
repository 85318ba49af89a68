package kernel

import (
	"testing"

	"github.com/grailbio/swarmalign/vec"
	"github.com/stretchr/testify/require"
)

func TestOneStep8MatchCosts0AndNoGaps(t *testing.T) {
	// h=0 (start of alignment), f and e saturated high (no gap taken),
	// matching substitution cost v=0: expect new published score 0.
	h := vec.Dup8(0)
	f := vec.Dup8(200)
	e := vec.Dup8(200)
	v := vec.Dup8(0)
	qr := vec.Dup8(16)
	r := vec.Dup8(4)

	_, n, _, _, dir := OneStep8(h, f, e, v, qr, r)
	require.Equal(t, vec.Dup8(0), n)
	// F never lowers H, so H before and after the F minimum are equal in
	// every lane and the up mask is all ones; H ties E in no lane, so the
	// left mask is all zero.
	require.Equal(t, uint16(0xffff), dir.Up)
	require.Equal(t, uint16(0), dir.Left)
}

func TestOneStep8MismatchAddsPenalty(t *testing.T) {
	h := vec.Dup8(0)
	f := vec.Dup8(200)
	e := vec.Dup8(200)
	v := vec.Dup8(1) // mismatch penalty
	qr := vec.Dup8(16)
	r := vec.Dup8(4)

	_, n, _, _, _ := OneStep8(h, f, e, v, qr, r)
	require.Equal(t, vec.Dup8(1), n)
}

func TestAlignRegular8SingleColumnSingleQueryPosition(t *testing.T) {
	// qlen = 1, a single query position whose profile row is all zero
	// cost (perfect match). F0/H0 start at zero gap state typical of a
	// freshly started channel. The carried E of 0 lets columns 1..3 be
	// reached by extending a horizontal gap, one r (4) per column.
	var prof [4][4]vec.Vec8
	qtable := []byte{0}
	he := []HE8{{H: vec.Dup8(0), E: vec.Dup8(0)}}
	q := vec.Dup8(16)
	r := vec.Dup8(4)
	f0 := vec.Dup8(2 * 16)
	h0 := vec.Dup8(0)

	s, dir := AlignRegular8(prof, qtable, he, f0, h0, q, r)
	require.Len(t, dir, 1)
	require.Equal(t, vec.Dup8(0), s[0])
	require.Equal(t, vec.Dup8(12), s[3])
}
