/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/dataservice/errors"
	"github.com/suparena/dataservice/storagemodels"
)

// ChunkSize is the prefetch and chunk size used for multi-result fetches.
const ChunkSize = 500

// QueryTranslator turns store-agnostic queries into native queries on a
// Session and executes them in chunks.
//
// It is stateless apart from the session handle, so it is safe for concurrent
// use whenever the session is.
type QueryTranslator struct {
	session Session
}

// NewQueryTranslator creates a translator bound to session.
func NewQueryTranslator(session Session) *QueryTranslator {
	return &QueryTranslator{session: session}
}

// Session returns the session the translator issues queries against.
func (t *QueryTranslator) Session() Session {
	return t.session
}

// FilterOperator maps a filter kind to its native operator.
func FilterOperator(kind storagemodels.FilterKind) (Operator, bool) {
	switch kind {
	case storagemodels.Equal:
		return OpEqual, true
	case storagemodels.GreaterThan:
		return OpGreaterThan, true
	case storagemodels.GreaterThanOrEqual:
		return OpGreaterThanOrEqual, true
	case storagemodels.LessThan:
		return OpLessThan, true
	case storagemodels.LessThanOrEqual:
		return OpLessThanOrEqual, true
	}
	return "", false
}

// OrderCondition renders an order filter as a native sort directive.
func OrderCondition(order storagemodels.OrderFilter) (string, bool) {
	switch order.Kind {
	case storagemodels.Ascending:
		return order.Field, true
	case storagemodels.Descending:
		return "-" + order.Field, true
	}
	return "", false
}

// Translate builds a native query for kind. Filters and orders are applied in
// the order they appear in q; limit and offset are passed through unchanged.
func (t *QueryTranslator) Translate(q storagemodels.Query, kind string) (NativeQuery, error) {
	nq := t.session.NewQuery(kind)

	for _, f := range q.FieldFilters {
		op, ok := FilterOperator(f.Kind)
		if !ok {
			return nil, errors.NewUnsupportedFilterKindError(f.Field, int(f.Kind))
		}
		nq = nq.Filter(f.Field+" "+string(op), f.Value)
	}

	for _, o := range q.OrderFilters {
		cond, ok := OrderCondition(o)
		if !ok {
			return nil, errors.NewUnsupportedOrderKindError(o.Field, int(o.Kind))
		}
		nq = nq.Order(cond)
	}

	return nq.Limit(q.Limit).Offset(q.Offset), nil
}

// FetchMany executes nq in chunks of ChunkSize and returns every result.
// The slice is never nil.
func (t *QueryTranslator) FetchMany(ctx context.Context, nq NativeQuery) ([]storagemodels.Item, error) {
	items, err := nq.PrefetchSize(ChunkSize).ChunkSize(ChunkSize).List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []storagemodels.Item{}
	}
	return items, nil
}

// FetchManyKeys is FetchMany returning keys only.
func (t *QueryTranslator) FetchManyKeys(ctx context.Context, nq NativeQuery) ([]storagemodels.Key, error) {
	keys, err := nq.PrefetchSize(ChunkSize).ChunkSize(ChunkSize).ListKeys(ctx)
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []storagemodels.Key{}
	}
	return keys, nil
}

// CountMatching returns the store's count of results for nq.
func (t *QueryTranslator) CountMatching(ctx context.Context, nq NativeQuery) (int64, error) {
	return nq.Count(ctx)
}
