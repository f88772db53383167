/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package dataservice

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"
)

// typedServices holds the named data services of one entity type.
type typedServices[T any] struct {
	mu       sync.RWMutex
	services map[string]*DataService[T]
}

func newTypedServices[T any]() *typedServices[T] {
	return &typedServices[T]{
		services: make(map[string]*DataService[T]),
	}
}

func (ts *typedServices[T]) register(name string, svc *DataService[T]) error {
	if svc == nil {
		return fmt.Errorf("data service %q is nil", name)
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.services[name]; exists {
		return fmt.Errorf("data service with name %q already registered", name)
	}
	ts.services[name] = svc
	return nil
}

func (ts *typedServices[T]) get(name string) (*DataService[T], error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	svc, exists := ts.services[name]
	if !exists {
		return nil, fmt.Errorf("data service with name %q not found", name)
	}
	return svc, nil
}

func (ts *typedServices[T]) remove(name string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if _, exists := ts.services[name]; !exists {
		return fmt.Errorf("data service with name %q not found", name)
	}
	delete(ts.services, name)
	return nil
}

func (ts *typedServices[T]) names() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	return slices.Sorted(maps.Keys(ts.services))
}

// Services is a thread-safe registry of data services keyed by entity type
// and name. The same name may be used for different entity types, e.g. a
// "primary" and a "replica" service per kind.
type Services struct {
	mu     sync.RWMutex
	byType map[reflect.Type]any
}

// NewServices creates an empty Services registry.
func NewServices() *Services {
	return &Services{
		byType: make(map[reflect.Type]any),
	}
}

// typed returns the per-type registry for T, creating it if necessary
func typed[T any](s *Services) *typedServices[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	typ := reflect.TypeFor[T]()
	if ts, exists := s.byType[typ]; exists {
		return ts.(*typedServices[T])
	}

	ts := newTypedServices[T]()
	s.byType[typ] = ts
	return ts
}

// Register adds svc under name for entity type T.
func Register[T any](s *Services, name string, svc *DataService[T]) error {
	return typed[T](s).register(name, svc)
}

// Lookup returns the data service registered under name for entity type T.
func Lookup[T any](s *Services, name string) (*DataService[T], error) {
	return typed[T](s).get(name)
}

// Remove drops the data service registered under name for entity type T.
func Remove[T any](s *Services, name string) error {
	return typed[T](s).remove(name)
}

// List returns the sorted names registered for entity type T.
func List[T any](s *Services) []string {
	return typed[T](s).names()
}
