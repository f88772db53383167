/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/dataservice/storagemodels"
)

// Session is an open handle on a backing store.
// Its consistency is fixed for the lifetime of the handle.
type Session interface {
	Consistency() storagemodels.Consistency

	// NewQuery starts a native query scoped to one kind.
	NewQuery(kind string) NativeQuery

	// Get returns the item stored under key, or an error matching
	// errors.ErrNotFound when there is none.
	Get(ctx context.Context, key storagemodels.Key) (storagemodels.Item, error)

	// GetMulti returns the items found for keys. Missing keys are absent from the map.
	GetMulti(ctx context.Context, keys []storagemodels.Key) (map[storagemodels.Key]storagemodels.Item, error)

	// AllocateID reserves a fresh numeric ID for kind.
	AllocateID(ctx context.Context, kind string) (int64, error)

	PutMulti(ctx context.Context, entries []storagemodels.Entry) error

	DeleteMulti(ctx context.Context, keys []storagemodels.Key) error
}

// NativeQuery is a store query under construction.
//
// Builder methods return the query itself so calls can be chained. A
// malformed condition does not fail the builder call; the error is returned
// by the first executing method (First, List, ListKeys or Count).
type NativeQuery interface {
	// Filter adds a comparison. condition is "field" or "field op" with op one
	// of =, >, >=, <, <=.
	Filter(condition string, value any) NativeQuery

	// Order adds a sort directive: "field" ascending, "-field" descending.
	Order(condition string) NativeQuery

	// Limit caps the number of results. n <= 0 means no limit.
	Limit(n int) NativeQuery

	// Offset skips leading results. n <= 0 means no offset.
	Offset(n int) NativeQuery

	// PrefetchSize sets how many results the first round trip fetches.
	PrefetchSize(n int) NativeQuery

	// ChunkSize sets how many results each following round trip fetches.
	ChunkSize(n int) NativeQuery

	// First returns the first matching item, or an error matching
	// errors.ErrNotFound when nothing matches.
	First(ctx context.Context) (storagemodels.Item, error)

	List(ctx context.Context) ([]storagemodels.Item, error)

	ListKeys(ctx context.Context) ([]storagemodels.Key, error)

	Count(ctx context.Context) (int64, error)
}
