/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/dataservice/errors"
	"github.com/suparena/dataservice/storagemodels"
)

// Operator is the native comparison of a filter condition.
type Operator string

const (
	OpEqual              Operator = "="
	OpGreaterThan        Operator = ">"
	OpGreaterThanOrEqual Operator = ">="
	OpLessThan           Operator = "<"
	OpLessThanOrEqual    Operator = "<="
)

// Condition is a parsed filter: field, operator and encoded value.
type Condition struct {
	Field    string
	Operator Operator
	Value    types.AttributeValue
}

// Order is a parsed sort directive.
type Order struct {
	Field      string
	Descending bool
}

// ParseFilterCondition splits "field op" into its parts. A bare field name
// means equality.
func ParseFilterCondition(condition string) (string, Operator, error) {
	parts := strings.Fields(condition)
	switch len(parts) {
	case 1:
		return parts[0], OpEqual, nil
	case 2:
		op := Operator(parts[1])
		switch op {
		case OpEqual, OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
			return parts[0], op, nil
		}
		return "", "", errors.NewValidationError("condition", "unsupported operator "+parts[1]+" in "+condition)
	}
	return "", "", errors.NewValidationError("condition", "malformed filter condition "+condition)
}

// ParseOrder reads "field" as ascending and "-field" as descending.
func ParseOrder(condition string) (Order, error) {
	condition = strings.TrimSpace(condition)
	desc := strings.HasPrefix(condition, "-")
	field := strings.TrimPrefix(condition, "-")
	if field == "" || strings.ContainsAny(field, " \t") {
		return Order{}, errors.NewValidationError("order", "malformed order condition "+condition)
	}
	return Order{Field: field, Descending: desc}, nil
}

// NewCondition parses a filter condition and encodes its value.
func NewCondition(condition string, value any) (Condition, error) {
	field, op, err := ParseFilterCondition(condition)
	if err != nil {
		return Condition{}, err
	}
	av, err := EncodeValue(value)
	if err != nil {
		return Condition{}, errors.NewValidationError(field, err.Error())
	}
	return Condition{Field: field, Operator: op, Value: av}, nil
}

// Matches reports whether item satisfies the condition. A missing attribute
// never matches, and range operators never match values of different types.
func (c Condition) Matches(item storagemodels.Item) bool {
	v, ok := item[c.Field]
	if !ok {
		return false
	}
	if c.Operator == OpEqual {
		return ValuesEqual(v, c.Value)
	}

	cmp, ok := CompareValues(v, c.Value)
	if !ok {
		return false
	}
	switch c.Operator {
	case OpGreaterThan:
		return cmp > 0
	case OpGreaterThanOrEqual:
		return cmp >= 0
	case OpLessThan:
		return cmp < 0
	case OpLessThanOrEqual:
		return cmp <= 0
	}
	return false
}

// MatchesAll reports whether item satisfies every condition.
func MatchesAll(item storagemodels.Item, conditions []Condition) bool {
	for _, c := range conditions {
		if !c.Matches(item) {
			return false
		}
	}
	return true
}
