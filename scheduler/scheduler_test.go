package scheduler

import (
	"testing"

	"github.com/grailbio/swarmalign/nt"
	"github.com/grailbio/swarmalign/scorematrix"
	"github.com/stretchr/testify/require"
)

const (
	testMismatch  = 1
	testGapOpen   = 12
	testGapExtend = 4
)

func align8(t *testing.T, query, target string) Result {
	t.Helper()
	qseq := nt.PackString(query)
	dseq := nt.PackString(target)
	qlen := len(query)

	matrix := scorematrix.Build8(testMismatch)
	qtable := QueryTable(qseq, qlen)
	longest := len(target)
	if qlen > longest {
		longest = qlen
	}
	scratch := NewScratch8(qlen, longest)
	results := make([]Result, 1)

	Search8(qseq, qlen, testGapOpen, testGapExtend, matrix, qtable,
		[]Target{{Seq: dseq, Len: len(target)}}, longest, scratch, results)

	return results[0]
}

func TestSearch8WorkedExamples(t *testing.T) {
	cases := []struct {
		query, target      string
		score, diff, alignLen int
	}{
		{"ACGT", "ACGT", 0, 0, 4},
		{"ACGT", "ACCT", 1, 1, 4},
		{"ACGT", "ACG", 16, 1, 4},
		{"ACGT", "ACGTA", 16, 1, 5},
		{"AAAA", "TTTT", 4, 4, 4},
		{"AAAAAAAA", "A", 36, 7, 8},
	}

	for _, c := range cases {
		got := align8(t, c.query, c.target)
		require.Equalf(t, c.score, got.Score, "score for %s/%s", c.query, c.target)
		require.Equalf(t, c.diff, got.Diff, "diff for %s/%s", c.query, c.target)
		require.Equalf(t, c.alignLen, got.AlignLen, "alignLen for %s/%s", c.query, c.target)
	}
}

func TestSearch8MultipleTargetsAcrossChannels(t *testing.T) {
	qseq := nt.PackString("ACGT")
	matrix := scorematrix.Build8(testMismatch)
	qtable := QueryTable(qseq, 4)

	targets := make([]Target, 20)
	for i := range targets {
		targets[i] = Target{Seq: nt.PackString("ACGT"), Len: 4}
	}
	scratch := NewScratch8(4, 4)
	results := make([]Result, len(targets))

	Search8(qseq, 4, testGapOpen, testGapExtend, matrix, qtable, targets, 4, scratch, results)

	for i, got := range results {
		require.Equalf(t, 0, got.Score, "target %d score", i)
		require.Equalf(t, 0, got.Diff, "target %d diff", i)
		require.Equalf(t, 4, got.AlignLen, "target %d alignLen", i)
	}
}
