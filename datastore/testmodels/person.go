/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package testmodels

import (
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/suparena/dataservice/registry"
	"github.com/suparena/dataservice/storagemodels"
)

const (
	PersonKind  = "Person"
	SettingKind = "Setting"
)

type Person struct {

	// Store-allocated numeric identifier. Zero until the person is first saved.
	ID int64

	// Display name of the person.
	// Required: true
	Name string

	// Age in years.
	Age int

	// Contact email.
	// Format: email
	Email strfmt.Email `dynamodbav:",omitempty"`

	// Timestamp when the person was created.
	// Format: date-time
	CreatedAt time.Time
}

// Setting is keyed by a string name instead of a numeric ID.
type Setting struct {
	Name  string
	Value string
}

// RegisterKinds binds the test models to their kinds. Safe to call repeatedly.
func RegisterKinds() {
	registry.RegisterKind(PersonKind,
		func(p Person) storagemodels.Key { return storagemodels.NumericKey(PersonKind, p.ID) },
		registry.WithIDSetter(func(p *Person, id int64) { p.ID = id }),
	)
	registry.RegisterKind(SettingKind,
		func(s Setting) storagemodels.Key { return storagemodels.NamedKey(SettingKind, s.Name) },
	)
}
