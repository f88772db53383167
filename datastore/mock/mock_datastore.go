/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of datastore.Session for testing
package mock

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/suparena/dataservice/datastore"
	"github.com/suparena/dataservice/errors"
	"github.com/suparena/dataservice/storagemodels"
)

// QueryRecord captures how a native query was built when it was executed.
type QueryRecord struct {
	Kind         string
	Filters      []string
	Orders       []string
	Limit        int
	Offset       int
	PrefetchSize int
	ChunkSize    int
	Method       string
}

// Session is an in-memory datastore.Session.
type Session struct {
	mu          sync.RWMutex
	consistency storagemodels.Consistency
	data        map[string]map[storagemodels.Key]storagemodels.Item
	sequences   map[string]int64
	queries     []QueryRecord
	deleted     [][]storagemodels.Key

	putError    error
	deleteError error
	queryError  error
	getError    error
}

// New creates an empty in-memory session with the given consistency.
func New(consistency storagemodels.Consistency) *Session {
	return &Session{
		consistency: consistency,
		data:        make(map[string]map[storagemodels.Key]storagemodels.Item),
		sequences:   make(map[string]int64),
	}
}

// WithPutError makes PutMulti return an error
func (m *Session) WithPutError(err error) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putError = err
	return m
}

// WithDeleteError makes DeleteMulti return an error
func (m *Session) WithDeleteError(err error) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteError = err
	return m
}

// WithQueryError makes every query execution return an error
func (m *Session) WithQueryError(err error) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryError = err
	return m
}

// WithGetError makes Get and GetMulti return an error
func (m *Session) WithGetError(err error) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getError = err
	return m
}

// Consistency returns the consistency the session was created with.
func (m *Session) Consistency() storagemodels.Consistency {
	return m.consistency
}

// NewQuery starts a query over kind.
func (m *Session) NewQuery(kind string) datastore.NativeQuery {
	return &Query{session: m, kind: kind}
}

// Get retrieves an item by key
func (m *Session) Get(ctx context.Context, key storagemodels.Key) (storagemodels.Item, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getError != nil {
		return nil, m.getError
	}

	item, exists := m.data[key.Kind][key]
	if !exists {
		return nil, errors.NewNotFoundError(key.Kind, key.String())
	}
	return maps.Clone(item), nil
}

// GetMulti retrieves every stored item among keys
func (m *Session) GetMulti(ctx context.Context, keys []storagemodels.Key) (map[storagemodels.Key]storagemodels.Item, error) {
	for _, key := range keys {
		if err := key.Validate(); err != nil {
			return nil, err
		}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getError != nil {
		return nil, m.getError
	}

	result := make(map[storagemodels.Key]storagemodels.Item, len(keys))
	for _, key := range keys {
		if item, exists := m.data[key.Kind][key]; exists {
			result[key] = maps.Clone(item)
		}
	}
	return result, nil
}

// AllocateID hands out increasing IDs per kind, skipping IDs already in use.
func (m *Session) AllocateID(ctx context.Context, kind string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putError != nil {
		return 0, m.putError
	}

	for {
		m.sequences[kind]++
		id := m.sequences[kind]
		if _, taken := m.data[kind][storagemodels.NumericKey(kind, id)]; !taken {
			return id, nil
		}
	}
}

// PutMulti stores items under complete keys
func (m *Session) PutMulti(ctx context.Context, entries []storagemodels.Entry) error {
	for _, e := range entries {
		if err := e.Key.Validate(); err != nil {
			return err
		}
		if e.Key.Incomplete() {
			return errors.NewValidationError("key", "numeric key "+e.Key.String()+" has no ID")
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putError != nil {
		return m.putError
	}

	for _, e := range entries {
		bucket, ok := m.data[e.Key.Kind]
		if !ok {
			bucket = make(map[storagemodels.Key]storagemodels.Item)
			m.data[e.Key.Kind] = bucket
		}
		bucket[e.Key] = maps.Clone(e.Item)
	}
	return nil
}

// DeleteMulti removes keys. Keys that are not stored are ignored.
func (m *Session) DeleteMulti(ctx context.Context, keys []storagemodels.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteError != nil {
		return m.deleteError
	}

	m.deleted = append(m.deleted, slices.Clone(keys))
	for _, key := range keys {
		delete(m.data[key.Kind], key)
	}
	return nil
}

// Helper methods for testing

// Count returns the number of stored entities of kind
func (m *Session) Count(kind string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data[kind])
}

// Keys returns the stored keys of kind in key order
func (m *Session) Keys(kind string) []storagemodels.Key {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.data[kind])
}

// Queries returns every executed query in execution order
func (m *Session) Queries() []QueryRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.queries)
}

// LastQuery returns the most recently executed query
func (m *Session) LastQuery() (QueryRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.queries) == 0 {
		return QueryRecord{}, false
	}
	return m.queries[len(m.queries)-1], true
}

// DeleteCalls returns the key sets passed to each DeleteMulti call
func (m *Session) DeleteCalls() [][]storagemodels.Key {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.deleted)
}

// Clear removes all data and recorded calls
func (m *Session) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]map[storagemodels.Key]storagemodels.Item)
	m.sequences = make(map[string]int64)
	m.queries = nil
	m.deleted = nil
}

func sortedKeys(bucket map[storagemodels.Key]storagemodels.Item) []storagemodels.Key {
	keys := slices.Collect(maps.Keys(bucket))
	slices.SortFunc(keys, func(a, b storagemodels.Key) int {
		switch {
		case a.Less(b):
			return -1
		case b.Less(a):
			return 1
		}
		return 0
	})
	return keys
}
