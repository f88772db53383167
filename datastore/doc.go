/*
Package datastore defines the backing-store contract of the data service and
the translator that drives it.

A backing store is reached through a Session, which hands out NativeQuery
builders scoped to one kind:

	type NativeQuery interface {
	    Filter(condition string, value any) NativeQuery   // "age >=", "name"
	    Order(condition string) NativeQuery                // "name", "-createdAt"
	    Limit(n int) NativeQuery
	    Offset(n int) NativeQuery
	    PrefetchSize(n int) NativeQuery
	    ChunkSize(n int) NativeQuery
	    First(ctx context.Context) (storagemodels.Item, error)
	    List(ctx context.Context) ([]storagemodels.Item, error)
	    ListKeys(ctx context.Context) ([]storagemodels.Key, error)
	    Count(ctx context.Context) (int64, error)
	}

QueryTranslator maps a storagemodels.Query onto that builder:

	EQUAL                 -> "field ="
	GREATER_THAN          -> "field >"
	GREATER_THAN_OR_EQUAL -> "field >="
	LESS_THAN             -> "field <"
	LESS_THAN_OR_EQUAL    -> "field <="
	ASCENDING             -> "field"
	DESCENDING            -> "-field"

and executes it with a prefetch and chunk size of 500.

Limit and offset are passed through without validation. Every backend in this
module treats a limit of zero or less as "no limit" and an offset of zero or
less as "no offset".

The helpers in this package (ParseFilterCondition, ParseOrder, CompareValues,
SortEntries, Window) give backends a single definition of condition syntax and
value ordering.

Implementations:
  - ddb: DynamoDB single-table backend
  - mock: in-memory backend for tests
*/
package datastore
