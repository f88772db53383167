/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"maps"

	"github.com/suparena/dataservice/datastore"
	"github.com/suparena/dataservice/errors"
	"github.com/suparena/dataservice/storagemodels"
)

// Query is the in-memory datastore.NativeQuery.
type Query struct {
	session      *Session
	kind         string
	conditions   []datastore.Condition
	orders       []datastore.Order
	filterConds  []string
	orderConds   []string
	limit        int
	offset       int
	prefetchSize int
	chunkSize    int
	err          error
}

// Filter adds a filter condition such as "age >="
func (q *Query) Filter(condition string, value any) datastore.NativeQuery {
	q.filterConds = append(q.filterConds, condition)
	c, err := datastore.NewCondition(condition, value)
	if err != nil {
		q.setErr(err)
		return q
	}
	q.conditions = append(q.conditions, c)
	return q
}

// Order adds a sort directive such as "-createdAt"
func (q *Query) Order(condition string) datastore.NativeQuery {
	q.orderConds = append(q.orderConds, condition)
	o, err := datastore.ParseOrder(condition)
	if err != nil {
		q.setErr(err)
		return q
	}
	q.orders = append(q.orders, o)
	return q
}

// Limit sets the query limit
func (q *Query) Limit(n int) datastore.NativeQuery {
	q.limit = n
	return q
}

// Offset sets the query offset
func (q *Query) Offset(n int) datastore.NativeQuery {
	q.offset = n
	return q
}

// PrefetchSize is recorded for assertions; the in-memory store has no round trips
func (q *Query) PrefetchSize(n int) datastore.NativeQuery {
	q.prefetchSize = n
	return q
}

// ChunkSize is recorded for assertions; the in-memory store has no round trips
func (q *Query) ChunkSize(n int) datastore.NativeQuery {
	q.chunkSize = n
	return q
}

// First returns the first matching item
func (q *Query) First(ctx context.Context) (storagemodels.Item, error) {
	entries, err := q.run("First", 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.NewNotFoundError(q.kind, "query")
	}
	return entries[0].Item, nil
}

// List returns every matching item
func (q *Query) List(ctx context.Context) ([]storagemodels.Item, error) {
	entries, err := q.run("List", q.limit)
	if err != nil {
		return nil, err
	}
	items := make([]storagemodels.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.Item)
	}
	return items, nil
}

// ListKeys returns the keys of every matching item
func (q *Query) ListKeys(ctx context.Context) ([]storagemodels.Key, error) {
	entries, err := q.run("ListKeys", q.limit)
	if err != nil {
		return nil, err
	}
	keys := make([]storagemodels.Key, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys, nil
}

// Count returns the number of matching items
func (q *Query) Count(ctx context.Context) (int64, error) {
	entries, err := q.run("Count", q.limit)
	if err != nil {
		return 0, err
	}
	return int64(len(entries)), nil
}

func (q *Query) setErr(err error) {
	if q.err == nil {
		q.err = err
	}
}

// run filters, sorts and windows the kind's entries in key order.
func (q *Query) run(method string, limit int) ([]storagemodels.Entry, error) {
	m := q.session
	m.mu.Lock()
	m.queries = append(m.queries, QueryRecord{
		Kind:         q.kind,
		Filters:      append([]string(nil), q.filterConds...),
		Orders:       append([]string(nil), q.orderConds...),
		Limit:        q.limit,
		Offset:       q.offset,
		PrefetchSize: q.prefetchSize,
		ChunkSize:    q.chunkSize,
		Method:       method,
	})
	queryError := m.queryError
	m.mu.Unlock()

	if q.err != nil {
		return nil, q.err
	}
	if queryError != nil {
		return nil, queryError
	}

	m.mu.RLock()
	bucket := m.data[q.kind]
	matched := make([]storagemodels.Entry, 0, len(bucket))
	for _, key := range sortedKeys(bucket) {
		item := bucket[key]
		if datastore.MatchesAll(item, q.conditions) {
			matched = append(matched, storagemodels.Entry{Key: key, Item: maps.Clone(item)})
		}
	}
	m.mu.RUnlock()

	datastore.SortEntries(matched, q.orders)
	start, end := datastore.Window(len(matched), limit, q.offset)
	return matched[start:end], nil
}
