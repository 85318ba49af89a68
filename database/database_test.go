package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreAddAndGet(t *testing.T) {
	s := NewStore()

	id, inserted := s.Add(1, []byte("ACGT"), 4)
	require.True(t, inserted)
	require.Equal(t, uint64(1), id)
	require.True(t, s.Contains(1))
	require.Equal(t, 1, s.Len())

	seq, length := s.GetSequence(1)
	require.Equal(t, []byte("ACGT"), seq)
	require.Equal(t, 4, length)
}

func TestStoreAddDetectsExactDuplicate(t *testing.T) {
	s := NewStore()
	_, inserted := s.Add(1, []byte("ACGT"), 4)
	require.True(t, inserted)

	dup, inserted := s.Add(2, []byte("ACGT"), 4)
	require.False(t, inserted)
	require.Equal(t, uint64(1), dup)
	require.Equal(t, 1, s.Len())
	require.False(t, s.Contains(2))
}

func TestStoreAddAllowsSameFingerprintDifferentSequence(t *testing.T) {
	s := NewStore()
	s.Add(1, []byte("ACGT"), 4)

	// Different length, possibly colliding fingerprint bucket; must not be
	// treated as a duplicate.
	_, inserted := s.Add(2, []byte("ACG"), 3)
	require.True(t, inserted)
	require.Equal(t, 2, s.Len())
}

func TestStoreGetSequenceMissingID(t *testing.T) {
	s := NewStore()
	seq, length := s.GetSequence(99)
	require.Nil(t, seq)
	require.Equal(t, 0, length)
}

func TestStoreContainsMissingID(t *testing.T) {
	s := NewStore()
	require.False(t, s.Contains(42))
}

func TestSnappyStoreRoundTrips(t *testing.T) {
	s := NewSnappyStore()
	id, inserted := s.Add(1, []byte("ACGTACGTACGT"), 12)
	require.True(t, inserted)
	require.Equal(t, uint64(1), id)

	seq, length := s.GetSequence(1)
	require.Equal(t, []byte("ACGTACGTACGT"), seq)
	require.Equal(t, 12, length)
	require.Equal(t, 1, s.Len())
	require.NoError(t, s.DecodeAll())
}

func TestSnappyStoreAddDetectsExactDuplicate(t *testing.T) {
	s := NewSnappyStore()
	s.Add(1, []byte("ACGT"), 4)

	dup, inserted := s.Add(2, []byte("ACGT"), 4)
	require.False(t, inserted)
	require.Equal(t, uint64(1), dup)
	require.Equal(t, 1, s.Len())
}

func TestSnappyStoreGetSequenceMissingID(t *testing.T) {
	s := NewSnappyStore()
	seq, length := s.GetSequence(7)
	require.Nil(t, seq)
	require.Equal(t, 0, length)
}
