// Copyright 2024 GRAIL, Inc.  All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package database

import (
	"sync"

	"github.com/biogo/store/llrb"
	farm "github.com/dgryski/go-farm"
	"github.com/golang/snappy"
	"github.com/grailbio/base/errors"
)

// SnappyStore is a Store variant that keeps each sequence's packed bytes
// snappy-compressed in memory, decompressing on every GetSequence call.
// Intended for databases whose packed representation still dominates
// working-set size even at two bits per base.
type SnappyStore struct {
	mu           sync.RWMutex
	ids          llrb.Tree
	compressed   map[uint64][]byte
	lens         map[uint64]int
	fingerprints map[uint64][]uint64
}

// NewSnappyStore returns an empty SnappyStore.
func NewSnappyStore() *SnappyStore {
	return &SnappyStore{
		compressed:   make(map[uint64][]byte),
		lens:         make(map[uint64]int),
		fingerprints: make(map[uint64][]uint64),
	}
}

// Add is the SnappyStore counterpart of Store.Add: seq is fingerprinted
// and compared uncompressed, then stored snappy-compressed.
func (s *SnappyStore) Add(id uint64, seq []byte, length int) (dup uint64, inserted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fp := farm.Hash64(seq)
	for _, candidate := range s.fingerprints[fp] {
		existingLen, ok := s.lens[candidate]
		if !ok || existingLen != length {
			continue
		}
		existing, err := snappy.Decode(nil, s.compressed[candidate])
		if err == nil && bytesEqual(existing, seq) {
			return candidate, false
		}
	}

	s.compressed[id] = snappy.Encode(nil, seq)
	s.lens[id] = length
	s.ids.Insert(idKey(id))
	s.fingerprints[fp] = append(s.fingerprints[fp], id)
	return id, true
}

// GetSequence implements aligner.Database, decompressing the stored
// sequence on every call.
func (s *SnappyStore) GetSequence(id uint64) ([]byte, int) {
	s.mu.RLock()
	comp, ok := s.compressed[id]
	length := s.lens[id]
	s.mu.RUnlock()
	if !ok {
		return nil, 0
	}
	seq, err := snappy.Decode(nil, comp)
	if err != nil {
		return nil, 0
	}
	return seq, length
}

// Contains reports whether id has been registered.
func (s *SnappyStore) Contains(id uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids.Get(idKey(id)) != nil
}

// Len returns the number of distinct sequences registered.
func (s *SnappyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.compressed)
}

// DecodeAll eagerly decompresses every stored sequence, returning an
// error that wraps the first decode failure encountered (corruption in
// the backing store); used by integrity checks, not the hot path.
func (s *SnappyStore) DecodeAll() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, comp := range s.compressed {
		if _, err := snappy.Decode(nil, comp); err != nil {
			return errors.E(err, "database: corrupt snappy record", id)
		}
	}
	return nil
}
