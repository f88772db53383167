/*
Package registry maps Go entity types to the kinds they are stored under.

A kind is the store-side name of an entity type (the DynamoDB EntityType
attribute, the in-memory bucket name). Each registration also tells the data
service how to read the key out of an entity and, for numeric keys, how to
write a store-allocated ID back into it:

	registry.RegisterKind[Person]("Person",
	    func(p Person) storagemodels.Key {
	        return storagemodels.NumericKey("Person", p.ID)
	    },
	    registry.WithIDSetter(func(p *Person, id int64) { p.ID = id }),
	)

The registry is thread-safe and should be populated during initialization,
typically in init() functions.
*/
package registry
