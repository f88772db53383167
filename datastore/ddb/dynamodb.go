/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
	"github.com/suparena/dataservice/datastore"
	"github.com/suparena/dataservice/errors"
	"github.com/suparena/dataservice/storagemodels"
)

const (
	// batchGetLimit is the most keys BatchGetItem accepts per request
	batchGetLimit = 100
	// batchWriteLimit is the most requests BatchWriteItem accepts per call
	batchWriteLimit = 25

	// DefaultRetryBackoff is the first wait before unprocessed batch items are resubmitted
	DefaultRetryBackoff = 50 * time.Millisecond
	// maxRetryBackoff caps the doubling wait between resubmissions
	maxRetryBackoff = 5 * time.Second
)

// API is the subset of *dynamodb.Client used by Session
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	BatchGetItem(ctx context.Context, params *sdk.BatchGetItemInput, optFns ...func(*sdk.Options)) (*sdk.BatchGetItemOutput, error)
	BatchWriteItem(ctx context.Context, params *sdk.BatchWriteItemInput, optFns ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error)
	UpdateItem(ctx context.Context, params *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
}

// Options configures NewSession
type Options struct {
	AccessKey string
	SecretKey string
	Region    string
	// Endpoint overrides the service endpoint, e.g. http://localhost:8000 for DynamoDB Local
	Endpoint    string
	Table       string
	Consistency storagemodels.Consistency
	Layout      Layout
	Logger      zerolog.Logger
	// RetryBackoff overrides DefaultRetryBackoff when positive
	RetryBackoff time.Duration
}

// Session implements datastore.Session on a single DynamoDB table
type Session struct {
	client      API
	table       string
	consistency storagemodels.Consistency
	layout      Layout
	log         zerolog.Logger
	backoff     time.Duration
}

var _ datastore.Session = (*Session)(nil)

// NewDynamoDBClient initializes a DynamoDB client. Static credentials are
// used when an access key is given, otherwise the default AWS chain applies.
func NewDynamoDBClient(ctx context.Context, opts Options) (*sdk.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	}), nil
}

// NewSession connects to the table named in opts.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.Table == "" {
		return nil, errors.NewValidationError("Table", "table name is required")
	}

	client, err := NewDynamoDBClient(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}

	s := NewSessionFromClient(client, opts.Table, opts.Consistency)
	s.layout = opts.Layout.withDefaults()
	if opts.RetryBackoff > 0 {
		s.backoff = opts.RetryBackoff
	}
	s.log = opts.Logger.With().Str("table", opts.Table).Logger()
	s.log.Info().
		Str("region", opts.Region).
		Str("endpoint", opts.Endpoint).
		Stringer("consistency", opts.Consistency).
		Msg("DynamoDB session initialized")
	return s, nil
}

// NewSessionFromClient wraps an existing client. Logging is disabled until
// WithLogger is called.
func NewSessionFromClient(client API, table string, consistency storagemodels.Consistency) *Session {
	return &Session{
		client:      client,
		table:       table,
		consistency: consistency,
		layout:      DefaultLayout,
		log:         zerolog.Nop(),
		backoff:     DefaultRetryBackoff,
	}
}

// WithLogger sets the session logger
func (s *Session) WithLogger(log zerolog.Logger) *Session {
	s.log = log
	return s
}

// WithLayout overrides the table attribute names
func (s *Session) WithLayout(layout Layout) *Session {
	s.layout = layout.withDefaults()
	return s
}

// WithRetryBackoff sets the first wait before unprocessed batch items are
// resubmitted. The wait doubles on every further round.
func (s *Session) WithRetryBackoff(d time.Duration) *Session {
	s.backoff = d
	return s
}

// awaitResubmit blocks before round attempt of a batch. The first round
// does not wait.
func (s *Session) awaitResubmit(ctx context.Context, attempt int) error {
	if attempt == 0 {
		return ctx.Err()
	}
	backoff := s.backoff << min(attempt-1, 16)
	if backoff > maxRetryBackoff || backoff < 0 {
		backoff = maxRetryBackoff
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}

// Consistency returns the read consistency fixed at construction
func (s *Session) Consistency() storagemodels.Consistency {
	return s.consistency
}

func (s *Session) consistentRead() *bool {
	return aws.Bool(s.consistency == storagemodels.Strong)
}

// NewQuery starts a query over one kind's partition
func (s *Session) NewQuery(kind string) datastore.NativeQuery {
	return &Query{session: s, kind: kind}
}

// Get reads one item. A missing item is reported as a not-found error.
func (s *Session) Get(ctx context.Context, key storagemodels.Key) (storagemodels.Item, error) {
	pk, err := s.layout.primaryKey(key)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            pk,
		ConsistentRead: s.consistentRead(),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil {
		return nil, errors.NewNotFoundError(key.Kind, key.String())
	}

	entry, err := s.layout.fromStored(key.Kind, out.Item)
	if err != nil {
		return nil, err
	}
	return entry.Item, nil
}

// GetMulti reads many items with BatchGetItem. Missing keys are absent from the result.
func (s *Session) GetMulti(ctx context.Context, keys []storagemodels.Key) (map[storagemodels.Key]storagemodels.Item, error) {
	result := make(map[storagemodels.Key]storagemodels.Item, len(keys))
	unique := dedupe(keys)

	for batch := range slices.Chunk(unique, batchGetLimit) {
		requested := make([]map[string]types.AttributeValue, 0, len(batch))
		for _, key := range batch {
			pk, err := s.layout.primaryKey(key)
			if err != nil {
				return nil, err
			}
			requested = append(requested, pk)
		}

		request := map[string]types.KeysAndAttributes{
			s.table: {Keys: requested, ConsistentRead: s.consistentRead()},
		}
		for attempt := 0; len(request) > 0; attempt++ {
			if err := s.awaitResubmit(ctx, attempt); err != nil {
				return nil, err
			}
			out, err := s.client.BatchGetItem(ctx, &sdk.BatchGetItemInput{RequestItems: request})
			if err != nil {
				return nil, fmt.Errorf("BatchGetItem error: %w", err)
			}
			for _, stored := range out.Responses[s.table] {
				kind, err := s.kindOf(stored)
				if err != nil {
					return nil, err
				}
				entry, err := s.layout.fromStored(kind, stored)
				if err != nil {
					return nil, err
				}
				result[entry.Key] = entry.Item
			}
			request = pending(out.UnprocessedKeys)
		}
	}

	return result, nil
}

// AllocateID advances the kind's counter item and returns the new value
func (s *Session) AllocateID(ctx context.Context, kind string) (int64, error) {
	out, err := s.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			s.layout.PartitionKeyName: &types.AttributeValueMemberS{Value: s.layout.SequencePartition},
			s.layout.SortKeyName:      &types.AttributeValueMemberS{Value: kind},
		},
		UpdateExpression:          aws.String("ADD #seq :one"),
		ExpressionAttributeNames:  map[string]string{"#seq": s.layout.SequenceAttributeName},
		ExpressionAttributeValues: map[string]types.AttributeValue{":one": &types.AttributeValueMemberN{Value: "1"}},
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("UpdateItem error allocating %s ID: %w", kind, err)
	}

	var id int64
	if err := attributevalue.Unmarshal(out.Attributes[s.layout.SequenceAttributeName], &id); err != nil {
		return 0, fmt.Errorf("failed to unmarshal allocated %s ID: %w", kind, err)
	}
	return id, nil
}

// PutMulti writes entries with BatchWriteItem. Incomplete keys are rejected.
func (s *Session) PutMulti(ctx context.Context, entries []storagemodels.Entry) error {
	requests := make([]types.WriteRequest, 0, len(entries))
	index := make(map[storagemodels.Key]int, len(entries))
	for _, e := range entries {
		if e.Key.Incomplete() {
			return errors.NewValidationError("ID", "cannot put incomplete key "+e.Key.String())
		}
		stored, err := s.layout.toStored(e)
		if err != nil {
			return err
		}
		req := types.WriteRequest{PutRequest: &types.PutRequest{Item: stored}}
		// a batch may not hold the same key twice; the last write wins
		if i, seen := index[e.Key]; seen {
			requests[i] = req
			continue
		}
		index[e.Key] = len(requests)
		requests = append(requests, req)
	}
	return s.batchWrite(ctx, requests)
}

// DeleteMulti removes keys with BatchWriteItem. Missing keys are ignored.
func (s *Session) DeleteMulti(ctx context.Context, keys []storagemodels.Key) error {
	unique := dedupe(keys)
	requests := make([]types.WriteRequest, 0, len(unique))
	for _, key := range unique {
		pk, err := s.layout.primaryKey(key)
		if err != nil {
			return err
		}
		requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: pk}})
	}
	return s.batchWrite(ctx, requests)
}

// batchWrite sends requests in groups the API accepts and resubmits the
// items DynamoDB reports as unprocessed
func (s *Session) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	for batch := range slices.Chunk(requests, batchWriteLimit) {
		request := map[string][]types.WriteRequest{s.table: batch}
		for attempt := 0; len(request) > 0; attempt++ {
			if err := s.awaitResubmit(ctx, attempt); err != nil {
				return err
			}
			out, err := s.client.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{RequestItems: request})
			if err != nil {
				return fmt.Errorf("BatchWriteItem error: %w", err)
			}
			request = pendingWrites(out.UnprocessedItems)
			s.log.Debug().Int("requests", len(batch)).Int("unprocessed", len(request[s.table])).Msg("batch write")
		}
	}
	return nil
}

func (s *Session) kindOf(stored storagemodels.Item) (string, error) {
	if av, ok := stored[s.layout.PartitionKeyName].(*types.AttributeValueMemberS); ok {
		return av.Value, nil
	}
	return "", fmt.Errorf("item has no string %s attribute", s.layout.PartitionKeyName)
}

func dedupe(keys []storagemodels.Key) []storagemodels.Key {
	seen := make(map[storagemodels.Key]struct{}, len(keys))
	unique := make([]storagemodels.Key, 0, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, key)
	}
	return unique
}

func pending(unprocessed map[string]types.KeysAndAttributes) map[string]types.KeysAndAttributes {
	for table, ka := range unprocessed {
		if len(ka.Keys) == 0 {
			delete(unprocessed, table)
		}
	}
	if len(unprocessed) == 0 {
		return nil
	}
	return unprocessed
}

func pendingWrites(unprocessed map[string][]types.WriteRequest) map[string][]types.WriteRequest {
	for table, reqs := range unprocessed {
		if len(reqs) == 0 {
			delete(unprocessed, table)
		}
	}
	if len(unprocessed) == 0 {
		return nil
	}
	return unprocessed
}
