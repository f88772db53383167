/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/dataservice/errors"
	"github.com/suparena/dataservice/storagemodels"
)

// Layout holds the attribute names of the single-table design
type Layout struct {
	// PartitionKeyName is the table partition key attribute. It holds the kind.
	PartitionKeyName string
	// SortKeyName is the table sort key attribute. It holds the encoded key.
	SortKeyName string
	// TypeAttributeName is written on every entity item with its kind
	TypeAttributeName string
	// SequencePartition is the partition holding one ID counter item per kind
	SequencePartition string
	// SequenceAttributeName is the counter attribute on sequence items
	SequenceAttributeName string
}

// DefaultLayout matches tables created with PK/SK string keys
var DefaultLayout = Layout{
	PartitionKeyName:      "PK",
	SortKeyName:           "SK",
	TypeAttributeName:     "EntityType",
	SequencePartition:     "__sequence__",
	SequenceAttributeName: "NextID",
}

const (
	numericPrefix = "ID#"
	namedPrefix   = "NAME#"
)

// withDefaults fills empty names from DefaultLayout
func (l Layout) withDefaults() Layout {
	if l.PartitionKeyName == "" {
		l.PartitionKeyName = DefaultLayout.PartitionKeyName
	}
	if l.SortKeyName == "" {
		l.SortKeyName = DefaultLayout.SortKeyName
	}
	if l.TypeAttributeName == "" {
		l.TypeAttributeName = DefaultLayout.TypeAttributeName
	}
	if l.SequencePartition == "" {
		l.SequencePartition = DefaultLayout.SequencePartition
	}
	if l.SequenceAttributeName == "" {
		l.SequenceAttributeName = DefaultLayout.SequenceAttributeName
	}
	return l
}

// EncodeSortKey renders a key as its sort key value. Numeric IDs are never
// negative and are zero padded so the table's native order matches numeric order.
func EncodeSortKey(key storagemodels.Key) (string, error) {
	if err := key.Validate(); err != nil {
		return "", err
	}
	if key.IsNumeric() {
		return fmt.Sprintf("%s%020d", numericPrefix, key.ID), nil
	}
	return namedPrefix + key.Name, nil
}

// DecodeSortKey parses a sort key value written by EncodeSortKey.
func DecodeSortKey(kind, sk string) (storagemodels.Key, error) {
	switch {
	case strings.HasPrefix(sk, numericPrefix):
		id, err := strconv.ParseInt(strings.TrimPrefix(sk, numericPrefix), 10, 64)
		if err != nil {
			return storagemodels.Key{}, fmt.Errorf("malformed numeric sort key %q: %w", sk, err)
		}
		key := storagemodels.NumericKey(kind, id)
		if err := key.Validate(); err != nil {
			return storagemodels.Key{}, err
		}
		return key, nil
	case strings.HasPrefix(sk, namedPrefix):
		return storagemodels.NamedKey(kind, strings.TrimPrefix(sk, namedPrefix)), nil
	}
	return storagemodels.Key{}, errors.NewValidationError("SK", fmt.Sprintf("sort key %q is neither numeric nor named", sk))
}

// primaryKey builds the table key for key
func (l Layout) primaryKey(key storagemodels.Key) (map[string]types.AttributeValue, error) {
	sk, err := EncodeSortKey(key)
	if err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{
		l.PartitionKeyName: &types.AttributeValueMemberS{Value: key.Kind},
		l.SortKeyName:      &types.AttributeValueMemberS{Value: sk},
	}, nil
}

// toStored adds the key and type attributes to an entity item
func (l Layout) toStored(e storagemodels.Entry) (storagemodels.Item, error) {
	pk, err := l.primaryKey(e.Key)
	if err != nil {
		return nil, err
	}
	stored := make(storagemodels.Item, len(e.Item)+3)
	for name, v := range e.Item {
		stored[name] = v
	}
	for name, v := range pk {
		stored[name] = v
	}
	stored[l.TypeAttributeName] = &types.AttributeValueMemberS{Value: e.Key.Kind}
	return stored, nil
}

// fromStored splits a stored item into its key and entity attributes
func (l Layout) fromStored(kind string, stored storagemodels.Item) (storagemodels.Entry, error) {
	sk, ok := stored[l.SortKeyName].(*types.AttributeValueMemberS)
	if !ok {
		return storagemodels.Entry{}, fmt.Errorf("item of kind %s has no string %s attribute", kind, l.SortKeyName)
	}
	key, err := DecodeSortKey(kind, sk.Value)
	if err != nil {
		return storagemodels.Entry{}, err
	}

	item := make(storagemodels.Item, len(stored))
	for name, v := range stored {
		switch name {
		case l.PartitionKeyName, l.SortKeyName, l.TypeAttributeName:
			continue
		}
		item[name] = v
	}
	return storagemodels.Entry{Key: key, Item: item}, nil
}
