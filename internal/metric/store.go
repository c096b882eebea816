// Copyright ©2022 Evolution. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Centralised store of per-input analysis records.

package metric

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrRecordNotFound = errors.New("record not found")

type ID int64

// Store accumulates one Record per analyzed input. It backs the combined
// CSV report when a single invocation analyzes multiple files.
type Store struct {
	mu      sync.RWMutex
	records map[ID]Record
	next    ID
}

func NewStore() *Store {
	return &Store{
		records: make(map[ID]Record),
	}
}

func (s *Store) Insert(r Record) ID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[s.next] = r
	id := s.next
	s.next++

	return id
}

func (s *Store) Get(id ID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return r, fmt.Errorf("getting record: %w", ErrRecordNotFound)
	}

	return r, nil
}

// GetIDs returns record IDs in insertion order.
func (s *Store) GetIDs() []ID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]ID, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) Update(id ID, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[id]; !exists {
		return fmt.Errorf("updating record: %w", ErrRecordNotFound)
	}

	s.records[id] = r
	return nil
}

// Record contains analysis results for a single input file.
type Record struct {
	Name       string
	SourceFile string
	Width      int
	Height     int
	FrameCount int

	SIMean  float64
	SIMin   float64
	SIMax   float64
	SIStDev float64

	TIMean  float64
	TIMin   float64
	TIMax   float64
	TIStDev float64
}
