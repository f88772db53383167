/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"bytes"
	"math/big"
	"reflect"
	"slices"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/dataservice/storagemodels"
)

// CompareValues orders two scalar attribute values of the same type.
// Numbers compare numerically, strings and binaries lexically, false sorts
// before true and NULLs are equal. The second result is false when the values
// have different types or are not scalars.
func CompareValues(a, b types.AttributeValue) (int, bool) {
	switch av := a.(type) {
	case *types.AttributeValueMemberN:
		bv, ok := b.(*types.AttributeValueMemberN)
		if !ok {
			return 0, false
		}
		return compareNumbers(av.Value, bv.Value)
	case *types.AttributeValueMemberS:
		bv, ok := b.(*types.AttributeValueMemberS)
		if !ok {
			return 0, false
		}
		switch {
		case av.Value < bv.Value:
			return -1, true
		case av.Value > bv.Value:
			return 1, true
		}
		return 0, true
	case *types.AttributeValueMemberB:
		bv, ok := b.(*types.AttributeValueMemberB)
		if !ok {
			return 0, false
		}
		return bytes.Compare(av.Value, bv.Value), true
	case *types.AttributeValueMemberBOOL:
		bv, ok := b.(*types.AttributeValueMemberBOOL)
		if !ok {
			return 0, false
		}
		switch {
		case av.Value == bv.Value:
			return 0, true
		case !av.Value:
			return -1, true
		}
		return 1, true
	case *types.AttributeValueMemberNULL:
		if _, ok := b.(*types.AttributeValueMemberNULL); ok {
			return 0, true
		}
	}
	return 0, false
}

// ValuesEqual reports whether two attribute values are equal. Scalars compare
// by value ("18" equals "18.0" as numbers); sets, lists and maps compare
// structurally.
func ValuesEqual(a, b types.AttributeValue) bool {
	if cmp, ok := CompareValues(a, b); ok {
		return cmp == 0
	}
	return reflect.DeepEqual(a, b)
}

func compareNumbers(a, b string) (int, bool) {
	x, ok := new(big.Rat).SetString(a)
	if !ok {
		return 0, false
	}
	y, ok := new(big.Rat).SetString(b)
	if !ok {
		return 0, false
	}
	return x.Cmp(y), true
}

// typeRank orders values of different types so sorting stays total:
// missing < NULL < BOOL < N < S < B < anything else.
func typeRank(v types.AttributeValue) int {
	switch v.(type) {
	case nil:
		return 0
	case *types.AttributeValueMemberNULL:
		return 1
	case *types.AttributeValueMemberBOOL:
		return 2
	case *types.AttributeValueMemberN:
		return 3
	case *types.AttributeValueMemberS:
		return 4
	case *types.AttributeValueMemberB:
		return 5
	}
	return 6
}

func compareForSort(a, b types.AttributeValue) int {
	if cmp, ok := CompareValues(a, b); ok {
		return cmp
	}
	return typeRank(a) - typeRank(b)
}

// SortEntries stably sorts entries by the given orders, applied in sequence.
// Entries that tie on every order keep their input order.
func SortEntries(entries []storagemodels.Entry, orders []Order) {
	if len(orders) == 0 {
		return
	}
	slices.SortStableFunc(entries, func(a, b storagemodels.Entry) int {
		for _, o := range orders {
			cmp := compareForSort(a.Item[o.Field], b.Item[o.Field])
			if cmp == 0 {
				continue
			}
			if o.Descending {
				return -cmp
			}
			return cmp
		}
		return 0
	})
}

// Window returns the [start, end) bounds selected by limit and offset over n
// results. Non-positive limit and offset are treated as unset.
func Window(n, limit, offset int) (int, int) {
	start := 0
	if offset > 0 {
		start = min(offset, n)
	}
	end := n
	if limit > 0 {
		end = min(start+limit, n)
	}
	return start, end
}

// Wanted returns how many leading results must be collected to satisfy limit
// and offset, or -1 when every result is needed.
func Wanted(limit, offset int) int {
	if limit <= 0 {
		return -1
	}
	return limit + max(offset, 0)
}
