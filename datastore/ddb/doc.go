/*
Package ddb provides a DynamoDB implementation of datastore.Session.

Every kind lives in its own partition of a single table:

	PK          SK                          EntityType
	Person      ID#00000000000000000007     Person
	Setting     NAME#theme                  Setting
	__sequence__  Person                    (NextID counter)

Numeric IDs are zero padded so the table order matches numeric order.
AllocateID advances the kind's counter item with an atomic ADD.

Queries read the kind partition page by page. The first page holds
PrefetchSize items and every following page ChunkSize items. Filters are
sent as a FilterExpression:

	store.NewQuery("Person").Filter("Age >=", 18).Order("Name").Limit(10)
	// KeyConditionExpression: #pk = :pk
	// FilterExpression:       #f0 >= :v0

Orders and the offset/limit window are applied to the fetched items, so an
ordered query reads the whole matching set. Batch reads and writes are
split into the groups BatchGetItem and BatchWriteItem accept.
*/
package ddb
