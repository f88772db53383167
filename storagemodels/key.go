/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"

	"github.com/suparena/dataservice/errors"
)

// KeyType tags the variant held by a Key.
type KeyType int

const (
	// NumericKeyType keys are identified by a store-assigned int64 ID.
	NumericKeyType KeyType = iota + 1
	// NamedKeyType keys are identified by a caller-chosen string name.
	NamedKeyType
)

// Key identifies one stored entity of a kind.
// Exactly one of ID and Name is meaningful, selected by Type.
// Keys are comparable and may be used as map keys.
type Key struct {
	Kind string
	Type KeyType
	ID   int64
	Name string
}

// NumericKey builds a key identified by a numeric ID.
// An ID of 0 asks the store to allocate one on put.
func NumericKey(kind string, id int64) Key {
	return Key{Kind: kind, Type: NumericKeyType, ID: id}
}

// NamedKey builds a key identified by a string name.
func NamedKey(kind, name string) Key {
	return Key{Kind: kind, Type: NamedKeyType, Name: name}
}

// IsNumeric reports whether k holds a numeric ID.
func (k Key) IsNumeric() bool { return k.Type == NumericKeyType }

// IsNamed reports whether k holds a string name.
func (k Key) IsNamed() bool { return k.Type == NamedKeyType }

// Incomplete reports whether k is a numeric key still waiting for an ID.
func (k Key) Incomplete() bool {
	return k.Type == NumericKeyType && k.ID == 0
}

// Validate rejects keys that carry neither a numeric ID nor a string name.
func (k Key) Validate() error {
	switch k.Type {
	case NumericKeyType:
		if k.ID < 0 {
			return errors.NewValidationError("ID", fmt.Sprintf("numeric key %d must not be negative", k.ID))
		}
		return nil
	case NamedKeyType:
		if k.Name == "" {
			return errors.NewValidationError("Name", "named key requires a non-empty name")
		}
		return nil
	}
	return errors.NewUnsupportedKeyTypeError(k.Kind, int(k.Type))
}

func (k Key) String() string {
	switch k.Type {
	case NumericKeyType:
		return fmt.Sprintf("%s(%d)", k.Kind, k.ID)
	case NamedKeyType:
		return fmt.Sprintf("%s(%q)", k.Kind, k.Name)
	}
	return fmt.Sprintf("%s(?)", k.Kind)
}

// Less orders keys of one kind: numeric IDs ascending, then names ascending.
func (k Key) Less(other Key) bool {
	if k.Kind != other.Kind {
		return k.Kind < other.Kind
	}
	if k.Type != other.Type {
		return k.Type < other.Type
	}
	if k.Type == NumericKeyType {
		return k.ID < other.ID
	}
	return k.Name < other.Name
}

// Entry pairs a key with the encoded entity stored under it.
type Entry struct {
	Key  Key
	Item Item
}
