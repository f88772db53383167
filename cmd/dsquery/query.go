/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/suparena/dataservice/storagemodels"
)

// whereOperators is ordered so a two-character operator wins over its prefix
var whereOperators = []struct {
	token string
	kind  storagemodels.FilterKind
}{
	{">=", storagemodels.GreaterThanOrEqual},
	{"<=", storagemodels.LessThanOrEqual},
	{">", storagemodels.GreaterThan},
	{"<", storagemodels.LessThan},
	{"=", storagemodels.Equal},
}

// parseWhere turns "age>=18" into a field filter. The field ends at the
// first operator character, so the value may itself contain operators.
func parseWhere(expr string) (storagemodels.FieldFilter, error) {
	i := strings.IndexAny(expr, "<>=")
	if i < 0 {
		return storagemodels.FieldFilter{}, fmt.Errorf("no comparison operator in %q", expr)
	}
	field := strings.TrimSpace(expr[:i])
	if field == "" {
		return storagemodels.FieldFilter{}, fmt.Errorf("missing field in %q", expr)
	}
	for _, op := range whereOperators {
		if !strings.HasPrefix(expr[i:], op.token) {
			continue
		}
		return storagemodels.FieldFilter{
			Field: field,
			Kind:  op.kind,
			Value: parseValue(strings.TrimSpace(expr[i+len(op.token):])),
		}, nil
	}
	return storagemodels.FieldFilter{}, fmt.Errorf("no comparison operator in %q", expr)
}

// parseValue guesses the type of a literal. Quoted literals are always strings.
func parseValue(s string) any {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return s
}

// parseOrder turns "-createdAt" into a descending order filter
func parseOrder(expr string) (storagemodels.OrderFilter, error) {
	field, descending := strings.CutPrefix(strings.TrimSpace(expr), "-")
	if field == "" {
		return storagemodels.OrderFilter{}, fmt.Errorf("missing field in order %q", expr)
	}
	kind := storagemodels.Ascending
	if descending {
		kind = storagemodels.Descending
	}
	return storagemodels.OrderFilter{Field: field, Kind: kind}, nil
}

// buildQuery assembles a query from the command line flags
func buildQuery(wheres, orders []string, limit, offset int) (storagemodels.Query, error) {
	q := storagemodels.NewQuery().WithLimit(limit).WithOffset(offset)
	for _, w := range wheres {
		f, err := parseWhere(w)
		if err != nil {
			return storagemodels.Query{}, err
		}
		q = q.FilterKind(f.Field, f.Kind, f.Value)
	}
	for _, o := range orders {
		order, err := parseOrder(o)
		if err != nil {
			return storagemodels.Query{}, err
		}
		q = q.OrderBy(order.Field, order.Kind)
	}
	return q, nil
}
