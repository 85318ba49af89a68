// Copyright 2024 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package database implements the aligner.Database collaborator: an
// in-memory sequence store addressed by integer id, ordered by an llrb
// tree and deduplicated by a farmhash fingerprint of the packed bases, so
// that an exact duplicate is stored once and Add hands back the id already
// holding it.
package database

import (
	"sync"

	"github.com/biogo/store/llrb"
	farm "github.com/dgryski/go-farm"
)

// idKey lets llrb.Tree order and look up sequence ids.
type idKey uint64

// Compare implements llrb.Comparable.
func (k idKey) Compare(o llrb.Comparable) int {
	other := o.(idKey)
	switch {
	case k < other:
		return -1
	case k > other:
		return 1
	default:
		return 0
	}
}

// Sequence is one packed nucleotide record held by a Store.
type Sequence struct {
	ID  uint64
	Seq []byte
	Len int
}

// Store is an in-memory sequence database addressed by integer id. It
// satisfies the aligner.Database interface directly.
type Store struct {
	mu           sync.RWMutex
	ids          llrb.Tree
	seqs         map[uint64]Sequence
	fingerprints map[uint64][]uint64 // farmhash -> candidate ids sharing it
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		seqs:         make(map[uint64]Sequence),
		fingerprints: make(map[uint64][]uint64),
	}
}

// Add registers seq (length bases, packed) under id. If a sequence with
// identical packed bytes and length is already present, Add leaves the
// store unchanged and returns that sequence's id with inserted=false;
// otherwise it inserts the new sequence and returns (id, true).
func (s *Store) Add(id uint64, seq []byte, length int) (dup uint64, inserted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fp := farm.Hash64(seq)
	for _, candidate := range s.fingerprints[fp] {
		if existing, ok := s.seqs[candidate]; ok && existing.Len == length && bytesEqual(existing.Seq, seq) {
			return candidate, false
		}
	}

	s.seqs[id] = Sequence{ID: id, Seq: seq, Len: length}
	s.ids.Insert(idKey(id))
	s.fingerprints[fp] = append(s.fingerprints[fp], id)
	return id, true
}

// Contains reports whether id has been registered.
func (s *Store) Contains(id uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids.Get(idKey(id)) != nil
}

// GetSequence implements aligner.Database.
func (s *Store) GetSequence(id uint64) ([]byte, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.seqs[id]
	if !ok {
		return nil, 0
	}
	return rec.Seq, rec.Len
}

// Len returns the number of distinct sequences registered.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seqs)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
