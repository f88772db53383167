/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Item is an encoded entity: attribute name to DynamoDB attribute value.
// Every backend stores and returns entities in this form.
type Item = map[string]types.AttributeValue

// Consistency is the read consistency of a store session.
type Consistency int

const (
	// Strong reads observe every acknowledged write.
	Strong Consistency = iota
	// Eventual reads may lag behind recent writes.
	Eventual
)

func (c Consistency) String() string {
	if c == Eventual {
		return "eventual"
	}
	return "strong"
}

// FilterKind is the comparison applied by a FieldFilter.
type FilterKind int

const (
	Equal FilterKind = iota + 1
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
)

func (k FilterKind) String() string {
	switch k {
	case Equal:
		return "EQUAL"
	case GreaterThan:
		return "GREATER_THAN"
	case GreaterThanOrEqual:
		return "GREATER_THAN_OR_EQUAL"
	case LessThan:
		return "LESS_THAN"
	case LessThanOrEqual:
		return "LESS_THAN_OR_EQUAL"
	}
	return fmt.Sprintf("FilterKind(%d)", int(k))
}

// OrderKind is the direction of an OrderFilter.
type OrderKind int

const (
	Ascending OrderKind = iota + 1
	Descending
)

func (k OrderKind) String() string {
	switch k {
	case Ascending:
		return "ASCENDING"
	case Descending:
		return "DESCENDING"
	}
	return fmt.Sprintf("OrderKind(%d)", int(k))
}

// FieldFilter restricts results to entities whose field compares to Value.
type FieldFilter struct {
	Field string
	Kind  FilterKind
	Value any
}

// OrderFilter sorts results by a field.
type OrderFilter struct {
	Field string
	Kind  OrderKind
}

// Query is a store-agnostic description of a result set.
// Filters and orders are applied in insertion order.
// A Limit or Offset of zero or less means "not set"; see the datastore package.
type Query struct {
	FieldFilters []FieldFilter
	OrderFilters []OrderFilter
	Limit        int
	Offset       int
}

// NewQuery returns an empty query matching every entity of a kind.
func NewQuery() Query {
	return Query{}
}

// Filter adds an equality filter.
func (q Query) Filter(field string, value any) Query {
	return q.FilterKind(field, Equal, value)
}

// FilterKind adds a filter with an explicit comparison.
// The receiver is left untouched; the returned query owns a fresh slice.
func (q Query) FilterKind(field string, kind FilterKind, value any) Query {
	q.FieldFilters = append(q.FieldFilters[:len(q.FieldFilters):len(q.FieldFilters)], FieldFilter{
		Field: field,
		Kind:  kind,
		Value: value,
	})
	return q
}

// OrderBy adds an ordering directive.
func (q Query) OrderBy(field string, kind OrderKind) Query {
	q.OrderFilters = append(q.OrderFilters[:len(q.OrderFilters):len(q.OrderFilters)], OrderFilter{
		Field: field,
		Kind:  kind,
	})
	return q
}

// WithLimit sets the maximum number of results.
func (q Query) WithLimit(limit int) Query {
	q.Limit = limit
	return q
}

// WithOffset sets the number of leading results to skip.
func (q Query) WithOffset(offset int) Query {
	q.Offset = offset
	return q
}
