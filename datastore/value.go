/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"
	"github.com/suparena/dataservice/storagemodels"
)

// FormatTime renders t the way time values are stored: UTC, RFC3339 with
// millisecond precision. Strings in this format sort chronologically.
func FormatTime(t time.Time) string {
	return strfmt.DateTime(t.UTC()).String()
}

// EncodeValue converts a filter value into an attribute value.
// Times are stored as FormatTime strings so range filters compare them
// chronologically.
func EncodeValue(value any) (types.AttributeValue, error) {
	switch v := value.(type) {
	case types.AttributeValue:
		return v, nil
	case time.Time:
		return &types.AttributeValueMemberS{Value: FormatTime(v)}, nil
	case strfmt.DateTime:
		return &types.AttributeValueMemberS{Value: FormatTime(time.Time(v))}, nil
	case *strfmt.DateTime:
		if v == nil {
			return &types.AttributeValueMemberNULL{Value: true}, nil
		}
		return &types.AttributeValueMemberS{Value: FormatTime(time.Time(*v))}, nil
	}

	av, err := attributevalue.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode filter value %v: %w", value, err)
	}
	return av, nil
}

func encodeTime(t time.Time) (types.AttributeValue, error) {
	return &types.AttributeValueMemberS{Value: FormatTime(t)}, nil
}

// MarshalItem encodes an entity into an Item. time.Time fields are written
// as FormatTime strings so they compare like EncodeValue filter values.
func MarshalItem(entity any) (storagemodels.Item, error) {
	return attributevalue.MarshalMapWithOptions(entity, func(o *attributevalue.EncoderOptions) {
		o.EncodeTime = encodeTime
	})
}

// UnmarshalItem decodes an Item into out, which must be a pointer.
func UnmarshalItem(item storagemodels.Item, out any) error {
	return attributevalue.UnmarshalMap(item, out)
}
