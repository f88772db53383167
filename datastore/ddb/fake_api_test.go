/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/dataservice/datastore"
	"github.com/suparena/dataservice/storagemodels"
)

// fakeAPI is an in-memory stand-in for the DynamoDB calls Session makes.
// It understands exactly the expressions Session generates.
type fakeAPI struct {
	mu    sync.Mutex
	table map[string]map[string]storagemodels.Item // PK -> SK -> item

	queries          []*sdk.QueryInput
	queryLimits      []int32
	batchWriteSizes  []int
	batchGetSizes    []int
	unprocessedOnce  bool
	alwaysUnprocess  bool
	queryErr         error
	consistentReads  []bool
	returnedLastKeys int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{table: make(map[string]map[string]storagemodels.Item)}
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (f *fakeAPI) lookup(key map[string]types.AttributeValue) (storagemodels.Item, bool) {
	item, ok := f.table[str(key["PK"])][str(key["SK"])]
	return item, ok
}

func (f *fakeAPI) GetItem(ctx context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.consistentReads = append(f.consistentReads, aws.ToBool(in.ConsistentRead))
	item, ok := f.lookup(in.Key)
	if !ok {
		return &sdk.GetItemOutput{}, nil
	}
	return &sdk.GetItemOutput{Item: maps.Clone(item)}, nil
}

func (f *fakeAPI) Query(ctx context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, in)
	f.queryLimits = append(f.queryLimits, aws.ToInt32(in.Limit))
	f.consistentReads = append(f.consistentReads, aws.ToBool(in.ConsistentRead))
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	partition := f.table[str(in.ExpressionAttributeValues[":pk"])]
	sks := slices.Sorted(maps.Keys(partition))
	if in.ExclusiveStartKey != nil {
		after := str(in.ExclusiveStartKey["SK"])
		i, found := slices.BinarySearch(sks, after)
		if found {
			i++
		}
		sks = sks[i:]
	}

	conditions := parseFilter(in)
	out := &sdk.QueryOutput{}
	for i, sk := range sks {
		if in.Limit != nil && i == int(*in.Limit) {
			break
		}
		item := partition[sk]
		out.ScannedCount++
		if in.Limit != nil && i == int(*in.Limit)-1 {
			// DynamoDB hands back a key whenever the limit is reached
			out.LastEvaluatedKey = map[string]types.AttributeValue{
				"PK": item["PK"],
				"SK": item["SK"],
			}
			f.returnedLastKeys++
		}
		if !datastore.MatchesAll(item, conditions) {
			continue
		}
		out.Count++
		if in.Select == types.SelectCount {
			continue
		}
		out.Items = append(out.Items, project(in, item))
	}
	return out, nil
}

func parseFilter(in *sdk.QueryInput) []datastore.Condition {
	if in.FilterExpression == nil {
		return nil
	}
	var conditions []datastore.Condition
	for _, clause := range strings.Split(*in.FilterExpression, " AND ") {
		parts := strings.Fields(clause)
		conditions = append(conditions, datastore.Condition{
			Field:    in.ExpressionAttributeNames[parts[0]],
			Operator: datastore.Operator(parts[1]),
			Value:    in.ExpressionAttributeValues[parts[2]],
		})
	}
	return conditions
}

func project(in *sdk.QueryInput, item storagemodels.Item) storagemodels.Item {
	if in.ProjectionExpression == nil {
		return maps.Clone(item)
	}
	projected := make(storagemodels.Item)
	for _, placeholder := range strings.Split(*in.ProjectionExpression, ", ") {
		name := in.ExpressionAttributeNames[placeholder]
		if v, ok := item[name]; ok {
			projected[name] = v
		}
	}
	return projected
}

func (f *fakeAPI) BatchGetItem(ctx context.Context, in *sdk.BatchGetItemInput, _ ...func(*sdk.Options)) (*sdk.BatchGetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := &sdk.BatchGetItemOutput{Responses: make(map[string][]map[string]types.AttributeValue)}
	for table, ka := range in.RequestItems {
		f.batchGetSizes = append(f.batchGetSizes, len(ka.Keys))
		keys := ka.Keys
		if f.alwaysUnprocess {
			out.UnprocessedKeys = map[string]types.KeysAndAttributes{table: ka}
			continue
		}
		if f.unprocessedOnce && len(keys) > 1 {
			f.unprocessedOnce = false
			out.UnprocessedKeys = map[string]types.KeysAndAttributes{
				table: {Keys: keys[len(keys)-1:], ConsistentRead: ka.ConsistentRead},
			}
			keys = keys[:len(keys)-1]
		}
		for _, key := range keys {
			if item, ok := f.lookup(key); ok {
				out.Responses[table] = append(out.Responses[table], maps.Clone(item))
			}
		}
	}
	return out, nil
}

func (f *fakeAPI) BatchWriteItem(ctx context.Context, in *sdk.BatchWriteItemInput, _ ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := &sdk.BatchWriteItemOutput{}
	for table, reqs := range in.RequestItems {
		f.batchWriteSizes = append(f.batchWriteSizes, len(reqs))
		if f.alwaysUnprocess {
			out.UnprocessedItems = map[string][]types.WriteRequest{table: reqs}
			continue
		}
		if f.unprocessedOnce && len(reqs) > 1 {
			f.unprocessedOnce = false
			out.UnprocessedItems = map[string][]types.WriteRequest{table: reqs[len(reqs)-1:]}
			reqs = reqs[:len(reqs)-1]
		}
		for _, req := range reqs {
			switch {
			case req.PutRequest != nil:
				item := req.PutRequest.Item
				pk := str(item["PK"])
				if f.table[pk] == nil {
					f.table[pk] = make(map[string]storagemodels.Item)
				}
				f.table[pk][str(item["SK"])] = maps.Clone(item)
			case req.DeleteRequest != nil:
				delete(f.table[str(req.DeleteRequest.Key["PK"])], str(req.DeleteRequest.Key["SK"]))
			}
		}
	}
	return out, nil
}

func (f *fakeAPI) UpdateItem(ctx context.Context, in *sdk.UpdateItemInput, _ ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pk, sk := str(in.Key["PK"]), str(in.Key["SK"])
	if f.table[pk] == nil {
		f.table[pk] = make(map[string]storagemodels.Item)
	}
	item := f.table[pk][sk]
	if item == nil {
		item = storagemodels.Item{"PK": in.Key["PK"], "SK": in.Key["SK"]}
		f.table[pk][sk] = item
	}

	attr := in.ExpressionAttributeNames["#seq"]
	var current int64
	if n, ok := item[attr].(*types.AttributeValueMemberN); ok {
		current, _ = strconv.ParseInt(n.Value, 10, 64)
	}
	step, _ := strconv.ParseInt(in.ExpressionAttributeValues[":one"].(*types.AttributeValueMemberN).Value, 10, 64)
	next := &types.AttributeValueMemberN{Value: strconv.FormatInt(current+step, 10)}
	item[attr] = next

	return &sdk.UpdateItemOutput{Attributes: map[string]types.AttributeValue{attr: next}}, nil
}
