/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dataservice

import (
	"context"
	"fmt"

	"github.com/suparena/dataservice/datastore"
	"github.com/suparena/dataservice/errors"
	"github.com/suparena/dataservice/registry"
	"github.com/suparena/dataservice/storagemodels"
)

// DataService provides typed CRUD and query operations for entities of type T.
//
// Point lookups return nil instead of a not-found error and list lookups
// return an empty slice, so callers have no separate not-found path. Every
// other store failure is returned unchanged and is never retried.
type DataService[T any] struct {
	translator *datastore.QueryTranslator
	kind       registry.KindInfo[T]
}

// New creates a DataService for the kind registered for T.
func New[T any](session datastore.Session) (*DataService[T], error) {
	info, err := registry.Lookup[T]()
	if err != nil {
		return nil, err
	}
	return &DataService[T]{
		translator: datastore.NewQueryTranslator(session),
		kind:       info,
	}, nil
}

// Kind returns the kind entities of T are stored under.
func (s *DataService[T]) Kind() string {
	return s.kind.Name
}

// Translator returns the query translator backing the service.
func (s *DataService[T]) Translator() *datastore.QueryTranslator {
	return s.translator
}

func (s *DataService[T]) session() datastore.Session {
	return s.translator.Session()
}

// Put stores entity and returns its key. A numeric key with ID 0 gets an ID
// allocated by the store, written back into entity when the kind has an ID setter.
func (s *DataService[T]) Put(ctx context.Context, entity *T) (storagemodels.Key, error) {
	keys, err := s.PutAll(ctx, []*T{entity})
	if err != nil {
		return storagemodels.Key{}, err
	}
	return keys[0], nil
}

// PutAll stores entities in one batch and returns their keys in order.
func (s *DataService[T]) PutAll(ctx context.Context, entities []*T) ([]storagemodels.Key, error) {
	entries := make([]storagemodels.Entry, 0, len(entities))
	for _, entity := range entities {
		if entity == nil {
			return nil, errors.NewValidationError("", "cannot put a nil entity")
		}

		key, err := s.keyOf(*entity)
		if err != nil {
			return nil, err
		}
		if key.Incomplete() {
			if key, err = s.allocate(ctx, entity); err != nil {
				return nil, err
			}
		}

		item, err := datastore.MarshalItem(*entity)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		entries = append(entries, storagemodels.Entry{Key: key, Item: item})
	}
	if len(entries) == 0 {
		return []storagemodels.Key{}, nil
	}

	if err := s.session().PutMulti(ctx, entries); err != nil {
		return nil, fmt.Errorf("failed to put %d %s entities: %w", len(entries), s.kind.Name, err)
	}

	keys := make([]storagemodels.Key, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys, nil
}

func (s *DataService[T]) allocate(ctx context.Context, entity *T) (storagemodels.Key, error) {
	if s.kind.SetID == nil {
		return storagemodels.Key{}, errors.NewValidationError("ID", "kind "+s.kind.Name+" has no ID setter, cannot allocate an ID")
	}
	id, err := s.session().AllocateID(ctx, s.kind.Name)
	if err != nil {
		return storagemodels.Key{}, fmt.Errorf("failed to allocate %s ID: %w", s.kind.Name, err)
	}
	s.kind.SetID(entity, id)
	return s.keyOf(*entity)
}

// keyOf extracts and validates an entity key.
func (s *DataService[T]) keyOf(entity T) (storagemodels.Key, error) {
	key := s.kind.KeyOf(entity)
	if err := s.checkKey(key); err != nil {
		return storagemodels.Key{}, err
	}
	return key, nil
}

func (s *DataService[T]) checkKey(key storagemodels.Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if key.Kind != s.kind.Name {
		return errors.NewValidationError("Kind", fmt.Sprintf("key %s does not belong to kind %s", key, s.kind.Name))
	}
	return nil
}

// Get returns the first entity of the kind, or nil when there is none.
func (s *DataService[T]) Get(ctx context.Context) (*T, error) {
	return s.GetByQuery(ctx, storagemodels.NewQuery())
}

// GetByKey returns the entity stored under key, or nil when there is none.
// Keys that are neither numeric nor named fail with errors.ErrUnsupportedKeyType.
func (s *DataService[T]) GetByKey(ctx context.Context, key storagemodels.Key) (*T, error) {
	if err := s.checkKey(key); err != nil {
		return nil, err
	}

	item, err := s.session().Get(ctx, key)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return s.decode(item)
}

// GetByID returns the entity with a numeric ID, or nil.
func (s *DataService[T]) GetByID(ctx context.Context, id int64) (*T, error) {
	return s.GetByKey(ctx, storagemodels.NumericKey(s.kind.Name, id))
}

// GetByName returns the entity with a string name, or nil.
func (s *DataService[T]) GetByName(ctx context.Context, name string) (*T, error) {
	return s.GetByKey(ctx, storagemodels.NamedKey(s.kind.Name, name))
}

// GetByField returns the first entity whose field equals value, or nil.
func (s *DataService[T]) GetByField(ctx context.Context, field string, value any) (*T, error) {
	return s.GetByQuery(ctx, storagemodels.NewQuery().Filter(field, value))
}

// GetByQuery returns the first entity matching q, or nil.
func (s *DataService[T]) GetByQuery(ctx context.Context, q storagemodels.Query) (*T, error) {
	nq, err := s.translator.Translate(q, s.kind.Name)
	if err != nil {
		return nil, err
	}

	item, err := nq.First(ctx)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query %s: %w", s.kind.Name, err)
	}
	return s.decode(item)
}

// GetList returns every entity matching q. It is never nil.
func (s *DataService[T]) GetList(ctx context.Context, q storagemodels.Query) ([]T, error) {
	list, err := s.GetMany(ctx, q)
	if err != nil {
		if errors.IsNotFound(err) {
			return []T{}, nil
		}
		return nil, err
	}
	return list, nil
}

// GetListByField returns every entity whose field equals value.
func (s *DataService[T]) GetListByField(ctx context.Context, field string, value any) ([]T, error) {
	return s.GetList(ctx, storagemodels.NewQuery().Filter(field, value))
}

// GetAll returns every entity of the kind.
func (s *DataService[T]) GetAll(ctx context.Context) ([]T, error) {
	return s.GetList(ctx, storagemodels.NewQuery())
}

// GetMany fetches every entity matching q in chunks of datastore.ChunkSize.
// Unlike GetList it returns store errors, including not-found, as they are.
func (s *DataService[T]) GetMany(ctx context.Context, q storagemodels.Query) ([]T, error) {
	nq, err := s.translator.Translate(q, s.kind.Name)
	if err != nil {
		return nil, err
	}

	items, err := s.translator.FetchMany(ctx, nq)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.kind.Name, err)
	}

	list := make([]T, 0, len(items))
	for _, item := range items {
		entity, err := s.decode(item)
		if err != nil {
			return nil, err
		}
		list = append(list, *entity)
	}
	return list, nil
}

// GetKeyList returns the keys of every entity matching q.
func (s *DataService[T]) GetKeyList(ctx context.Context, q storagemodels.Query) ([]storagemodels.Key, error) {
	nq, err := s.translator.Translate(q, s.kind.Name)
	if err != nil {
		return nil, err
	}

	keys, err := s.translator.FetchManyKeys(ctx, nq)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s keys: %w", s.kind.Name, err)
	}
	return keys, nil
}

// GetListFromKeys returns the entities found for keys. Missing keys are
// absent from the map; it is never nil.
func (s *DataService[T]) GetListFromKeys(ctx context.Context, keys []storagemodels.Key) (map[storagemodels.Key]T, error) {
	for _, key := range keys {
		if err := s.checkKey(key); err != nil {
			return nil, err
		}
	}
	if len(keys) == 0 {
		return map[storagemodels.Key]T{}, nil
	}

	items, err := s.session().GetMulti(ctx, keys)
	if err != nil {
		if errors.IsNotFound(err) {
			return map[storagemodels.Key]T{}, nil
		}
		return nil, fmt.Errorf("failed to get %d %s entities: %w", len(keys), s.kind.Name, err)
	}

	result := make(map[storagemodels.Key]T, len(items))
	for key, item := range items {
		entity, err := s.decode(item)
		if err != nil {
			return nil, err
		}
		result[key] = *entity
	}
	return result, nil
}

// Delete removes entity.
func (s *DataService[T]) Delete(ctx context.Context, entity *T) error {
	return s.DeleteEntities(ctx, []*T{entity})
}

// DeleteEntities removes entities in one batch.
func (s *DataService[T]) DeleteEntities(ctx context.Context, entities []*T) error {
	keys := make([]storagemodels.Key, 0, len(entities))
	for _, entity := range entities {
		if entity == nil {
			return errors.NewValidationError("", "cannot delete a nil entity")
		}
		key, err := s.keyOf(*entity)
		if err != nil {
			return err
		}
		keys = append(keys, key)
	}
	return s.DeleteKeys(ctx, keys)
}

// DeleteKeys removes the entities stored under keys in one batch.
func (s *DataService[T]) DeleteKeys(ctx context.Context, keys []storagemodels.Key) error {
	for _, key := range keys {
		if err := s.checkKey(key); err != nil {
			return err
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.session().DeleteMulti(ctx, keys); err != nil {
		return fmt.Errorf("failed to delete %d %s entities: %w", len(keys), s.kind.Name, err)
	}
	return nil
}

// DeleteAll removes every entity of the kind.
func (s *DataService[T]) DeleteAll(ctx context.Context) error {
	return s.DeleteByQuery(ctx, storagemodels.NewQuery())
}

// DeleteByQuery removes exactly the entities matching q. Only keys are
// fetched; entity bodies are never loaded.
func (s *DataService[T]) DeleteByQuery(ctx context.Context, q storagemodels.Query) error {
	keys, err := s.GetKeyList(ctx, q)
	if err != nil {
		return err
	}
	return s.DeleteKeys(ctx, keys)
}

// MaxID returns the largest numeric ID among the kind's keys, or 0 when there
// are none.
//
// This scans every key of the kind. Its cost grows linearly with the number of
// stored entities and it does not scale to large kinds.
func (s *DataService[T]) MaxID(ctx context.Context) (int64, error) {
	keys, err := s.GetKeyList(ctx, storagemodels.NewQuery())
	if err != nil {
		return 0, err
	}

	var maxID int64
	for _, key := range keys {
		if key.IsNumeric() && key.ID > maxID {
			maxID = key.ID
		}
	}
	return maxID, nil
}

// Count returns the number of entities of the kind.
func (s *DataService[T]) Count(ctx context.Context) (int64, error) {
	return s.CountByQuery(ctx, storagemodels.NewQuery())
}

// CountByField returns the number of entities whose field equals value.
func (s *DataService[T]) CountByField(ctx context.Context, field string, value any) (int64, error) {
	return s.CountByQuery(ctx, storagemodels.NewQuery().Filter(field, value))
}

// CountByQuery returns the store's count of entities matching q.
func (s *DataService[T]) CountByQuery(ctx context.Context, q storagemodels.Query) (int64, error) {
	nq, err := s.translator.Translate(q, s.kind.Name)
	if err != nil {
		return 0, err
	}

	n, err := s.translator.CountMatching(ctx, nq)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", s.kind.Name, err)
	}
	return n, nil
}

func (s *DataService[T]) decode(item storagemodels.Item) (*T, error) {
	entity := new(T)
	if err := datastore.UnmarshalItem(item, entity); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", s.kind.Name, err)
	}
	return entity, nil
}
