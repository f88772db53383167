/*
Package storagemodels defines the data structures shared by the data service,
its translator and every backing store.

Key Types:

Query:
A store-agnostic description of a result set. Filters and orders keep their
insertion order because composite indexes in the backing store are order
sensitive:

	q := storagemodels.NewQuery().
	    FilterKind("age", storagemodels.GreaterThanOrEqual, 18).
	    OrderBy("name", storagemodels.Ascending).
	    WithLimit(10)

Builder methods return a new Query and never mutate the receiver.

Key:
A tagged variant identifying one entity, either by numeric ID or string name:

	k1 := storagemodels.NumericKey("Person", 42)
	k2 := storagemodels.NamedKey("Setting", "theme")

The zero KeyType is neither variant and is rejected with
errors.ErrUnsupportedKeyType.

Item:
The encoded form of an entity, a map of DynamoDB attribute values produced
by the attributevalue package. Every backend speaks Items.
*/
package storagemodels
