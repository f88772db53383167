/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/suparena/dataservice/errors"
	"github.com/suparena/dataservice/storagemodels"
)

// KindInfo describes how entities of type T are stored.
type KindInfo[T any] struct {
	// Name is the kind the entities are stored under.
	Name string
	// KeyOf extracts the key of an entity.
	KeyOf func(T) storagemodels.Key
	// SetID writes a store-allocated numeric ID into an entity. Optional.
	SetID func(*T, int64)
}

// Option customises a kind registration.
type Option[T any] func(*KindInfo[T])

// WithIDSetter lets the store write allocated numeric IDs back into entities.
func WithIDSetter[T any](fn func(*T, int64)) Option[T] {
	return func(info *KindInfo[T]) {
		info.SetID = fn
	}
}

var (
	kindRegistry = make(map[reflect.Type]any)
	kindNames    = make(map[string]reflect.Type)
	mu           sync.RWMutex
)

// RegisterKind associates the Go type T with a kind name and key extractor.
// Registering the same type again replaces its entry. Binding a kind name
// that already belongs to another type panics to prevent accidental overrides.
func RegisterKind[T any](name string, keyOf func(T) storagemodels.Key, opts ...Option[T]) {
	if name == "" {
		panic("kind registry: empty kind name")
	}
	if keyOf == nil {
		panic(fmt.Sprintf("kind registry: kind %q registered without a key function", name))
	}

	t := typeOf[T]()
	info := KindInfo[T]{Name: name, KeyOf: keyOf}
	for _, opt := range opts {
		opt(&info)
	}

	mu.Lock()
	defer mu.Unlock()
	if owner, exists := kindNames[name]; exists && owner != t {
		panic(fmt.Sprintf("kind registry: kind %q already registered for %v", name, owner))
	}
	if prev, exists := kindRegistry[t]; exists {
		delete(kindNames, prev.(KindInfo[T]).Name)
	}
	kindRegistry[t] = info
	kindNames[name] = t
}

// Lookup returns the registration for type T.
func Lookup[T any]() (KindInfo[T], error) {
	t := typeOf[T]()

	mu.RLock()
	defer mu.RUnlock()
	info, ok := kindRegistry[t]
	if !ok {
		return KindInfo[T]{}, errors.NewUnregisteredKindError(t.String())
	}
	return info.(KindInfo[T]), nil
}

// KindNames returns every registered kind name.
func KindNames() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(kindNames))
	for name := range kindNames {
		names = append(names, name)
	}
	return names
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
