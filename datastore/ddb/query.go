/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/dataservice/datastore"
	"github.com/suparena/dataservice/errors"
	"github.com/suparena/dataservice/storagemodels"
)

// Query implements datastore.NativeQuery with DynamoDB Query calls on the
// kind's partition. Filters become a FilterExpression; orders and the
// offset/limit window are applied to the fetched items.
type Query struct {
	session      *Session
	kind         string
	conditions   []datastore.Condition
	orders       []datastore.Order
	limit        int
	offset       int
	prefetchSize int
	chunkSize    int
	err          error
}

// Filter adds a condition such as "age >="
func (q *Query) Filter(condition string, value any) datastore.NativeQuery {
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
	o, err := datastore.ParseOrder(condition)
	if err != nil {
		q.setErr(err)
		return q
	}
	q.orders = append(q.orders, o)
	return q
}

// Limit caps the number of results; n <= 0 means no limit
func (q *Query) Limit(n int) datastore.NativeQuery {
	q.limit = n
	return q
}

// Offset skips the first n results; n <= 0 means none
func (q *Query) Offset(n int) datastore.NativeQuery {
	q.offset = n
	return q
}

// PrefetchSize sets the page size of the first Query call
func (q *Query) PrefetchSize(n int) datastore.NativeQuery {
	q.prefetchSize = n
	return q
}

// ChunkSize sets the page size of every following Query call
func (q *Query) ChunkSize(n int) datastore.NativeQuery {
	q.chunkSize = n
	return q
}

// First returns the first matching item
func (q *Query) First(ctx context.Context) (storagemodels.Item, error) {
	entries, err := q.run(ctx, 1, nil)
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
	entries, err := q.run(ctx, q.limit, nil)
	if err != nil {
		return nil, err
	}
	items := make([]storagemodels.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.Item)
	}
	return items, nil
}

// ListKeys returns the keys of every matching item. Only the sort key and
// the ordered attributes are read.
func (q *Query) ListKeys(ctx context.Context) ([]storagemodels.Key, error) {
	projection := []string{q.session.layout.SortKeyName}
	for _, o := range q.orders {
		projection = append(projection, o.Field)
	}

	entries, err := q.run(ctx, q.limit, projection)
	if err != nil {
		return nil, err
	}
	keys := make([]storagemodels.Key, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys, nil
}

// Count returns the number of matching items within the offset/limit window
func (q *Query) Count(ctx context.Context) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}

	var total int64
	input := q.input(nil)
	input.Select = types.SelectCount
	err := q.pages(ctx, input, func(out *sdk.QueryOutput) bool {
		total += int64(out.Count)
		return true
	})
	if err != nil {
		return 0, err
	}

	start, end := datastore.Window(int(total), q.limit, q.offset)
	return int64(end - start), nil
}

func (q *Query) setErr(err error) {
	if q.err == nil {
		q.err = err
	}
}

// run fetches matching entries then sorts and windows them. Without orders
// paging stops as soon as the window is filled.
func (q *Query) run(ctx context.Context, limit int, projection []string) ([]storagemodels.Entry, error) {
	if q.err != nil {
		return nil, q.err
	}

	wanted := -1
	if len(q.orders) == 0 {
		wanted = datastore.Wanted(limit, q.offset)
	}

	var entries []storagemodels.Entry
	var decodeErr error
	err := q.pages(ctx, q.input(projection), func(out *sdk.QueryOutput) bool {
		for _, stored := range out.Items {
			entry, err := q.session.layout.fromStored(q.kind, stored)
			if err != nil {
				decodeErr = err
				return false
			}
			entries = append(entries, entry)
		}
		return wanted < 0 || len(entries) < wanted
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	datastore.SortEntries(entries, q.orders)
	start, end := datastore.Window(len(entries), limit, q.offset)
	return entries[start:end], nil
}

// pages issues Query calls following LastEvaluatedKey until the partition is
// exhausted or fn returns false. The first page is prefetchSize items, the
// rest chunkSize.
func (q *Query) pages(ctx context.Context, input *sdk.QueryInput, fn func(*sdk.QueryOutput) bool) error {
	pageSize := q.prefetchSize
	for page := 1; ; page++ {
		input.Limit = nil
		if pageSize > 0 {
			input.Limit = aws.Int32(int32(pageSize))
		}

		out, err := q.session.client.Query(ctx, input)
		if err != nil {
			return fmt.Errorf("query error on %s: %w", q.kind, err)
		}
		q.session.log.Debug().
			Str("kind", q.kind).
			Int("page", page).
			Int32("count", out.Count).
			Int32("scanned", out.ScannedCount).
			Msg("query page")

		if !fn(out) || len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
		pageSize = q.chunkSize
	}
}

// input builds the QueryInput for the kind partition with the filters
// rendered as "#f0 >= :v0 AND ..."
func (q *Query) input(projection []string) *sdk.QueryInput {
	layout := q.session.layout
	names := map[string]string{"#pk": layout.PartitionKeyName}
	values := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: q.kind},
	}

	input := &sdk.QueryInput{
		TableName:              aws.String(q.session.table),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ConsistentRead:         q.session.consistentRead(),
	}

	if len(q.conditions) > 0 {
		clauses := make([]string, 0, len(q.conditions))
		for i, c := range q.conditions {
			name := fmt.Sprintf("#f%d", i)
			value := fmt.Sprintf(":v%d", i)
			names[name] = c.Field
			values[value] = c.Value
			clauses = append(clauses, fmt.Sprintf("%s %s %s", name, c.Operator, value))
		}
		input.FilterExpression = aws.String(strings.Join(clauses, " AND "))
	}

	if len(projection) > 0 {
		placeholders := make([]string, 0, len(projection))
		for i, field := range projection {
			name := fmt.Sprintf("#p%d", i)
			names[name] = field
			placeholders = append(placeholders, name)
		}
		input.ProjectionExpression = aws.String(strings.Join(placeholders, ", "))
	}

	input.ExpressionAttributeNames = names
	input.ExpressionAttributeValues = values
	return input
}
