package aligner

import (
	"testing"

	"github.com/grailbio/swarmalign/nt"
	"github.com/grailbio/swarmalign/scheduler"
	"github.com/grailbio/swarmalign/threadpool"
	"github.com/stretchr/testify/require"
)

type fakeDB struct {
	seqs map[uint64][]byte
	lens map[uint64]int
}

func newFakeDB() *fakeDB {
	return &fakeDB{seqs: map[uint64][]byte{}, lens: map[uint64]int{}}
}

func (d *fakeDB) add(id uint64, s string) {
	d.seqs[id] = nt.PackString(s)
	d.lens[id] = len(s)
}

func (d *fakeDB) GetSequence(id uint64) ([]byte, int) {
	return d.seqs[id], d.lens[id]
}

func newTestAligner(t *testing.T, db *fakeDB, longest, poolSize int) *Aligner {
	t.Helper()
	a, err := New(db, threadpool.New(poolSize), Config{MismatchPenalty: 1, GapOpen: 12, GapExtend: 4}, longest)
	require.NoError(t, err)
	return a
}

func TestSearchDoWorkedExamples(t *testing.T) {
	db := newFakeDB()
	targetSeqs := []string{"ACGT", "ACCT", "ACG", "ACGTA"}
	for i, s := range targetSeqs {
		db.add(uint64(i), s)
	}
	a := newTestAligner(t, db, 5, 4)

	ids := []uint64{0, 1, 2, 3}
	results := make([]scheduler.Result, len(ids))
	require.NoError(t, a.SearchDo(Query{ID: 1, Seq: nt.PackString("ACGT"), Len: 4}, ids, results))

	expect := []struct {
		score, diff, alignLen int
	}{
		{0, 0, 4},
		{1, 1, 4},
		{16, 1, 4},
		{16, 1, 5},
	}
	for i, want := range expect {
		require.Equalf(t, want.score, results[i].Score, "target %d score", i)
		require.Equalf(t, want.diff, results[i].Diff, "target %d diff", i)
		require.Equalf(t, want.alignLen, results[i].AlignLen, "target %d alignLen", i)
	}
}

func TestSearchDoIdenticalAcrossThreadCounts(t *testing.T) {
	db := newFakeDB()
	for i := 0; i < 40; i++ {
		db.add(uint64(i), "ACGTACGTACGT")
	}
	db.add(20, "ACGTTCGTACGT")

	ids := make([]uint64, 40)
	for i := range ids {
		ids[i] = uint64(i)
	}
	query := Query{ID: 1, Seq: nt.PackString("ACGTACGTACGT"), Len: 12}

	var baseline []scheduler.Result
	for _, poolSize := range []int{1, 2, 3, 8} {
		a := newTestAligner(t, db, 12, poolSize)
		results := make([]scheduler.Result, len(ids))
		require.NoError(t, a.SearchDo(query, ids, results))
		if baseline == nil {
			baseline = results
		} else {
			require.Equal(t, baseline, results)
		}
	}
}

func TestSearchDoEmptyTargetsIsNoop(t *testing.T) {
	db := newFakeDB()
	a := newTestAligner(t, db, 4, 2)
	results := []scheduler.Result{}
	require.NoError(t, a.SearchDo(Query{ID: 1, Seq: nt.PackString("ACGT"), Len: 4}, nil, results))
}

func TestSearchDoRejectsZeroLengthQuery(t *testing.T) {
	db := newFakeDB()
	db.add(0, "ACGT")
	a := newTestAligner(t, db, 4, 1)
	results := make([]scheduler.Result, 1)
	err := a.SearchDo(Query{ID: 1, Seq: nil, Len: 0}, []uint64{0}, results)
	require.Error(t, err)
}

func TestAdjustThreadCount(t *testing.T) {
	require.Equal(t, 2, AdjustThreadCount(8, 32, 10))
	require.Equal(t, 2, AdjustThreadCount(8, 32, 3))
	require.Equal(t, 2, AdjustThreadCount(8, 31, 2))
	require.Equal(t, 2, AdjustThreadCount(8, 17, 2))
	require.Equal(t, 1, AdjustThreadCount(8, 16, 2))
	require.Equal(t, 1, AdjustThreadCount(8, 1, 2))
	require.Equal(t, 1, AdjustThreadCount(8, 32, 1))
	require.Equal(t, 3, AdjustThreadCount(16, 17, 10))
	require.Equal(t, 3, AdjustThreadCount(16, 17, 3))
	require.Equal(t, 2, AdjustThreadCount(16, 16, 3))
	require.Equal(t, 2, AdjustThreadCount(16, 15, 2))
	require.Equal(t, 1, AdjustThreadCount(16, 1, 3))
	require.Equal(t, 1, AdjustThreadCount(16, 17, 1))
}
