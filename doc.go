/*
Package dataservice provides typed data access over a pluggable backing store.

A DataService[T] stores entities of a registered kind and answers queries
expressed as store-agnostic storagemodels.Query values. Queries are mapped
onto the store's native filter and order primitives by a
datastore.QueryTranslator and large results are fetched in chunks.

The workflow is:
  - Register each entity type with registry.RegisterKind
  - Open a datastore.Session (ddb.NewSession, or mock.New in tests)
  - Create a DataService[T] per kind and call its operations

Lookups by key, field or query return nil when nothing matches and list
lookups return an empty slice, so callers only handle real store failures.
Store failures are never retried.

Basic Usage:

	registry.RegisterKind("Person",
	    func(p Person) storagemodels.Key { return storagemodels.NumericKey("Person", p.ID) },
	    registry.WithIDSetter(func(p *Person, id int64) { p.ID = id }),
	)

	session, _ := ddb.NewSession(ctx, ddb.Options{Region: "us-east-1", Table: "app"})
	people, _ := dataservice.New[Person](session)

	key, _ := people.Put(ctx, &Person{Name: "Ann", Age: 30})

	adults, _ := people.GetList(ctx, storagemodels.NewQuery().
	    FilterKind("Age", storagemodels.GreaterThanOrEqual, 18).
	    OrderBy("Name", storagemodels.Ascending).
	    WithLimit(10))

Services keeps named data services per entity type for applications that
talk to more than one table.
*/
package dataservice
