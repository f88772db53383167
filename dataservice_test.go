/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dataservice_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/suparena/dataservice"
	"github.com/suparena/dataservice/datastore/mock"
	"github.com/suparena/dataservice/datastore/testmodels"
	"github.com/suparena/dataservice/errors"
	"github.com/suparena/dataservice/storagemodels"
)

type Person = testmodels.Person
type Setting = testmodels.Setting

func init() {
	testmodels.RegisterKinds()
}

func newPeople(t *testing.T) (*dataservice.DataService[Person], *mock.Session) {
	t.Helper()
	session := mock.New(storagemodels.Strong)
	svc, err := dataservice.New[Person](session)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return svc, session
}

func putPeople(t *testing.T, svc *dataservice.DataService[Person], people ...Person) []storagemodels.Key {
	t.Helper()
	ptrs := make([]*Person, len(people))
	for i := range people {
		ptrs[i] = &people[i]
	}
	keys, err := svc.PutAll(context.Background(), ptrs)
	if err != nil {
		t.Fatalf("PutAll failed: %v", err)
	}
	return keys
}

func names(people []Person) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.Name
	}
	return out
}

func TestNew(t *testing.T) {
	type unregistered struct{ ID int64 }

	_, err := dataservice.New[unregistered](mock.New(storagemodels.Strong))
	if !errors.IsUnregisteredKind(err) {
		t.Fatalf("Expected unregistered kind error, got %v", err)
	}

	svc, _ := newPeople(t)
	if svc.Kind() != testmodels.PersonKind {
		t.Fatalf("Expected kind %s, got %s", testmodels.PersonKind, svc.Kind())
	}
}

func TestPut(t *testing.T) {
	ctx := context.Background()

	t.Run("AllocatesAndWritesBackIDs", func(t *testing.T) {
		svc, session := newPeople(t)

		p := &Person{Name: "Ann", Age: 30, Email: "ann@example.com"}
		key, err := svc.Put(ctx, p)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if p.ID == 0 || key.ID != p.ID || !key.IsNumeric() {
			t.Fatalf("Expected allocated ID written back, got key %v and person %+v", key, p)
		}

		q := &Person{Name: "Bob"}
		key2, _ := svc.Put(ctx, q)
		if key2 == key {
			t.Fatalf("Expected distinct keys, got %v twice", key)
		}
		if session.Count(testmodels.PersonKind) != 2 {
			t.Fatalf("Expected 2 stored people, got %d", session.Count(testmodels.PersonKind))
		}

		got, err := svc.GetByID(ctx, p.ID)
		if err != nil || got == nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.Name != "Ann" || got.Email != "ann@example.com" {
			t.Fatalf("Round trip mismatch: %+v", got)
		}
	})

	t.Run("KeepsExplicitIDs", func(t *testing.T) {
		svc, _ := newPeople(t)
		keys := putPeople(t, svc, Person{ID: 42, Name: "Zed"})
		if keys[0] != storagemodels.NumericKey(testmodels.PersonKind, 42) {
			t.Fatalf("Expected Person(42), got %v", keys[0])
		}
	})

	t.Run("NamedKeys", func(t *testing.T) {
		session := mock.New(storagemodels.Eventual)
		settings, err := dataservice.New[Setting](session)
		if err != nil {
			t.Fatalf("New failed: %v", err)
		}

		if _, err := settings.Put(ctx, &Setting{Name: "theme", Value: "dark"}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, err := settings.GetByName(ctx, "theme")
		if err != nil || got == nil || got.Value != "dark" {
			t.Fatalf("Expected dark theme, got %+v (%v)", got, err)
		}

		if _, err := settings.Put(ctx, &Setting{}); !errors.IsValidationError(err) {
			t.Fatalf("Expected validation error for empty name, got %v", err)
		}
	})

	t.Run("StoreErrorPropagates", func(t *testing.T) {
		svc, session := newPeople(t)
		boom := fmt.Errorf("write capacity exceeded")
		session.WithPutError(boom)

		if _, err := svc.Put(ctx, &Person{ID: 1}); !stderrors.Is(err, boom) {
			t.Fatalf("Expected wrapped put error, got %v", err)
		}
	})

	t.Run("NilEntity", func(t *testing.T) {
		svc, _ := newPeople(t)
		if _, err := svc.Put(ctx, nil); !errors.IsValidationError(err) {
			t.Fatalf("Expected validation error, got %v", err)
		}
	})
}

func TestGetVariantsSwallowNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPeople(t)

	if p, err := svc.Get(ctx); p != nil || err != nil {
		t.Fatalf("Get on empty kind: expected nil, nil; got %+v, %v", p, err)
	}

	putPeople(t, svc, Person{ID: 1, Name: "Ann", Age: 30})

	cases := map[string]func() (*Person, error){
		"GetByID":    func() (*Person, error) { return svc.GetByID(ctx, 999) },
		"GetByKey":   func() (*Person, error) { return svc.GetByKey(ctx, storagemodels.NumericKey(testmodels.PersonKind, 2)) },
		"GetByField": func() (*Person, error) { return svc.GetByField(ctx, "Name", "Nobody") },
		"GetByQuery": func() (*Person, error) {
			return svc.GetByQuery(ctx, storagemodels.NewQuery().FilterKind("Age", storagemodels.GreaterThan, 99))
		},
	}
	for name, get := range cases {
		t.Run(name, func(t *testing.T) {
			p, err := get()
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if p != nil {
				t.Fatalf("Expected nil, got %+v", p)
			}
		})
	}

	if p, err := svc.GetByField(ctx, "Name", "Ann"); err != nil || p == nil || p.ID != 1 {
		t.Fatalf("Expected Ann, got %+v (%v)", p, err)
	}
	if p, err := svc.Get(ctx); err != nil || p == nil {
		t.Fatalf("Expected first person, got %+v (%v)", p, err)
	}
}

func TestGetKeyValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPeople(t)

	if _, err := svc.GetByKey(ctx, storagemodels.Key{Kind: testmodels.PersonKind}); !errors.IsUnsupportedKeyType(err) {
		t.Fatalf("Expected unsupported key type, got %v", err)
	}
	if _, err := svc.GetByKey(ctx, storagemodels.NumericKey("Order", 1)); !errors.IsValidationError(err) {
		t.Fatalf("Expected validation error for foreign kind, got %v", err)
	}
}

func TestGetErrorsAreNotSwallowed(t *testing.T) {
	ctx := context.Background()
	svc, session := newPeople(t)
	putPeople(t, svc, Person{ID: 1, Name: "Ann"})

	boom := fmt.Errorf("connection reset")
	session.WithGetError(boom).WithQueryError(boom)

	if _, err := svc.GetByID(ctx, 1); !stderrors.Is(err, boom) {
		t.Errorf("GetByID: expected store error, got %v", err)
	}
	if _, err := svc.GetByField(ctx, "Name", "Ann"); !stderrors.Is(err, boom) {
		t.Errorf("GetByField: expected store error, got %v", err)
	}
	if _, err := svc.GetAll(ctx); !stderrors.Is(err, boom) {
		t.Errorf("GetAll: expected store error, got %v", err)
	}
	if _, err := svc.Count(ctx); !stderrors.Is(err, boom) {
		t.Errorf("Count: expected store error, got %v", err)
	}
}

func TestLists(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyResultsAreNotNil", func(t *testing.T) {
		svc, _ := newPeople(t)

		all, err := svc.GetAll(ctx)
		if err != nil || all == nil || len(all) != 0 {
			t.Fatalf("Expected empty non-nil list, got %#v (%v)", all, err)
		}
		byField, err := svc.GetListByField(ctx, "Age", 1)
		if err != nil || byField == nil || len(byField) != 0 {
			t.Fatalf("Expected empty non-nil list, got %#v (%v)", byField, err)
		}
		many, err := svc.GetMany(ctx, storagemodels.NewQuery())
		if err != nil || many == nil {
			t.Fatalf("Expected empty non-nil list, got %#v (%v)", many, err)
		}
		keys, err := svc.GetKeyList(ctx, storagemodels.NewQuery())
		if err != nil || keys == nil {
			t.Fatalf("Expected empty non-nil keys, got %#v (%v)", keys, err)
		}
	})

	t.Run("StoreNotFoundBecomesEmptyList", func(t *testing.T) {
		svc, session := newPeople(t)
		putPeople(t, svc, Person{ID: 1, Name: "Ann", Age: 30})
		notFound := errors.NewNotFoundError(testmodels.PersonKind, "query")
		session.WithQueryError(notFound)

		lists := map[string]func() ([]Person, error){
			"GetList":        func() ([]Person, error) { return svc.GetList(ctx, storagemodels.NewQuery()) },
			"GetListByField": func() ([]Person, error) { return svc.GetListByField(ctx, "Age", 30) },
			"GetAll":         func() ([]Person, error) { return svc.GetAll(ctx) },
		}
		for name, list := range lists {
			got, err := list()
			if err != nil || got == nil || len(got) != 0 {
				t.Errorf("%s: expected empty non-nil list, got %#v (%v)", name, got, err)
			}
		}

		if _, err := svc.GetMany(ctx, storagemodels.NewQuery()); !errors.IsNotFound(err) {
			t.Fatalf("GetMany: expected not-found to propagate, got %v", err)
		}

		session.WithGetError(notFound)
		found, err := svc.GetListFromKeys(ctx, []storagemodels.Key{storagemodels.NumericKey(testmodels.PersonKind, 1)})
		if err != nil || found == nil || len(found) != 0 {
			t.Fatalf("Expected empty non-nil map, got %#v (%v)", found, err)
		}
	})

	t.Run("AdultsByNameWithLimit", func(t *testing.T) {
		svc, session := newPeople(t)
		adults := []string{"Mo", "Abe", "Kai", "Ed", "Lu", "Bea", "Jo", "Cy", "Ida", "Flo", "Gus", "Hal", "Di", "Ned", "Oz"}
		for i, name := range adults {
			putPeople(t, svc, Person{ID: int64(i + 1), Name: name, Age: 18 + i})
		}
		putPeople(t, svc, Person{ID: 50, Name: "Aaron", Age: 12}, Person{ID: 51, Name: "Aaliyah", Age: 17})

		q := storagemodels.NewQuery().
			FilterKind("Age", storagemodels.GreaterThanOrEqual, 18).
			OrderBy("Name", storagemodels.Ascending).
			WithLimit(10)
		list, err := svc.GetList(ctx, q)
		if err != nil {
			t.Fatalf("GetList failed: %v", err)
		}
		want := []string{"Abe", "Bea", "Cy", "Di", "Ed", "Flo", "Gus", "Hal", "Ida", "Jo"}
		if fmt.Sprint(names(list)) != fmt.Sprint(want) {
			t.Fatalf("Expected %v, got %v", want, names(list))
		}

		rec, _ := session.LastQuery()
		if rec.PrefetchSize != 500 || rec.ChunkSize != 500 {
			t.Fatalf("Expected chunked fetch, got %+v", rec)
		}
		if fmt.Sprint(rec.Filters) != "[Age >=]" || fmt.Sprint(rec.Orders) != "[Name]" || rec.Limit != 10 {
			t.Fatalf("Unexpected translated query %+v", rec)
		}
	})

	t.Run("NewestFirst", func(t *testing.T) {
		svc, session := newPeople(t)
		base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
		putPeople(t, svc,
			Person{ID: 1, Name: "old", CreatedAt: base},
			Person{ID: 2, Name: "newest", CreatedAt: base.Add(48 * time.Hour)},
			Person{ID: 3, Name: "middle", CreatedAt: base.Add(90 * time.Minute)},
		)

		list, err := svc.GetList(ctx, storagemodels.NewQuery().OrderBy("CreatedAt", storagemodels.Descending))
		if err != nil {
			t.Fatalf("GetList failed: %v", err)
		}
		if fmt.Sprint(names(list)) != "[newest middle old]" {
			t.Fatalf("Expected newest first, got %v", names(list))
		}
		if !list[0].CreatedAt.Equal(base.Add(48 * time.Hour)) {
			t.Fatalf("CreatedAt did not round trip: %v", list[0].CreatedAt)
		}

		rec, _ := session.LastQuery()
		if len(rec.Filters) != 0 || fmt.Sprint(rec.Orders) != "[-CreatedAt]" {
			t.Fatalf("Unexpected translated query %+v", rec)
		}

		since, err := svc.GetList(ctx, storagemodels.NewQuery().FilterKind("CreatedAt", storagemodels.GreaterThan, base))
		if err != nil || len(since) != 2 {
			t.Fatalf("Expected 2 people created after base, got %v (%v)", names(since), err)
		}
	})

	t.Run("GetListFromKeys", func(t *testing.T) {
		svc, session := newPeople(t)
		keys := putPeople(t, svc, Person{ID: 1, Name: "Ann"}, Person{ID: 2, Name: "Bob"})

		found, err := svc.GetListFromKeys(ctx, append(keys, storagemodels.NumericKey(testmodels.PersonKind, 3)))
		if err != nil {
			t.Fatalf("GetListFromKeys failed: %v", err)
		}
		if len(found) != 2 || found[keys[1]].Name != "Bob" {
			t.Fatalf("Unexpected result %+v", found)
		}

		session.WithGetError(fmt.Errorf("must not be called"))
		empty, err := svc.GetListFromKeys(ctx, nil)
		if err != nil || empty == nil || len(empty) != 0 {
			t.Fatalf("Expected empty non-nil map without a store call, got %v (%v)", empty, err)
		}
	})
}

func TestMaxID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPeople(t)

	id, err := svc.MaxID(ctx)
	if err != nil || id != 0 {
		t.Fatalf("Expected 0 on empty kind, got %d (%v)", id, err)
	}

	putPeople(t, svc, Person{ID: 3}, Person{ID: 7}, Person{ID: 2})
	id, err = svc.MaxID(ctx)
	if err != nil || id != 7 {
		t.Fatalf("Expected 7, got %d (%v)", id, err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	seed := func(t *testing.T) (*dataservice.DataService[Person], *mock.Session) {
		svc, session := newPeople(t)
		for i := 1; i <= 10; i++ {
			putPeople(t, svc, Person{ID: int64(i), Name: fmt.Sprintf("P%d", i), Age: i * 10})
		}
		return svc, session
	}

	t.Run("DeleteByQueryRemovesExactlyTheMatches", func(t *testing.T) {
		svc, session := seed(t)
		err := svc.DeleteByQuery(ctx, storagemodels.NewQuery().FilterKind("Age", storagemodels.LessThanOrEqual, 40))
		if err != nil {
			t.Fatalf("DeleteByQuery failed: %v", err)
		}

		calls := session.DeleteCalls()
		if len(calls) != 1 || len(calls[0]) != 4 {
			t.Fatalf("Expected one bulk delete of 4 keys, got %v", calls)
		}
		rest, _ := svc.GetAll(ctx)
		for _, p := range rest {
			if p.Age <= 40 {
				t.Fatalf("Matching person %+v survived", p)
			}
		}
		if len(rest) != 6 {
			t.Fatalf("Expected 6 survivors, got %d", len(rest))
		}
		rec, _ := session.LastQuery()
		if rec.Method != "List" {
			t.Fatalf("Expected last query to be the survivor listing, got %+v", rec)
		}
	})

	t.Run("DeleteByQueryFetchesKeysOnly", func(t *testing.T) {
		svc, session := seed(t)
		_ = svc.DeleteAll(ctx)
		rec, _ := session.LastQuery()
		if rec.Method != "ListKeys" || rec.ChunkSize != 500 {
			t.Fatalf("Expected a chunked key fetch, got %+v", rec)
		}
		if session.Count(testmodels.PersonKind) != 0 {
			t.Fatalf("Expected empty kind, got %d", session.Count(testmodels.PersonKind))
		}
	})

	t.Run("EmptyMatchSkipsStore", func(t *testing.T) {
		svc, session := seed(t)
		if err := svc.DeleteByQuery(ctx, storagemodels.NewQuery().Filter("Age", -1)); err != nil {
			t.Fatalf("DeleteByQuery failed: %v", err)
		}
		if err := svc.DeleteKeys(ctx, nil); err != nil {
			t.Fatalf("DeleteKeys failed: %v", err)
		}
		if len(session.DeleteCalls()) != 0 {
			t.Fatalf("Expected no delete calls, got %v", session.DeleteCalls())
		}
	})

	t.Run("EntitiesAndKeys", func(t *testing.T) {
		svc, session := seed(t)
		if err := svc.Delete(ctx, &Person{ID: 1}); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if err := svc.DeleteEntities(ctx, []*Person{{ID: 2}, {ID: 3}}); err != nil {
			t.Fatalf("DeleteEntities failed: %v", err)
		}
		if err := svc.DeleteKeys(ctx, []storagemodels.Key{storagemodels.NumericKey(testmodels.PersonKind, 4)}); err != nil {
			t.Fatalf("DeleteKeys failed: %v", err)
		}
		if session.Count(testmodels.PersonKind) != 6 {
			t.Fatalf("Expected 6 remaining, got %d", session.Count(testmodels.PersonKind))
		}
	})

	t.Run("StoreErrorPropagates", func(t *testing.T) {
		svc, session := seed(t)
		boom := fmt.Errorf("timeout")
		session.WithDeleteError(boom)
		if err := svc.DeleteAll(ctx); !stderrors.Is(err, boom) {
			t.Fatalf("Expected delete error, got %v", err)
		}
	})
}

func TestCount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newPeople(t)
	putPeople(t, svc,
		Person{ID: 1, Name: "Ann", Age: 20},
		Person{ID: 2, Name: "Bob", Age: 20},
		Person{ID: 3, Name: "Cy", Age: 35},
	)

	if n, err := svc.Count(ctx); err != nil || n != 3 {
		t.Fatalf("Count: expected 3, got %d (%v)", n, err)
	}
	if n, err := svc.CountByField(ctx, "Age", 20); err != nil || n != 2 {
		t.Fatalf("CountByField: expected 2, got %d (%v)", n, err)
	}
	q := storagemodels.NewQuery().FilterKind("Age", storagemodels.LessThan, 30).WithLimit(1)
	if n, err := svc.CountByQuery(ctx, q); err != nil || n != 1 {
		t.Fatalf("CountByQuery: expected 1, got %d (%v)", n, err)
	}
}
