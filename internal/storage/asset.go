package storage

import (
	"fmt"
	"regexp"

	"github.com/pixil98/go-errors"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidatingSpec is anything loadable from an asset file.
type ValidatingSpec interface {
	Validate() error
}

// Identifier is the stable string id an asset is referenced by.
type Identifier string

func (id Identifier) String() string {
	return string(id)
}

func (id Identifier) Valid() bool {
	return identifierPattern.MatchString(string(id))
}

// Asset is the on-disk envelope around a spec.
type Asset[T ValidatingSpec] struct {
	Version    uint       `json:"version"`
	Identifier Identifier `json:"id"`
	Spec       T          `json:"spec"`
}

func (a *Asset[T]) Id() Identifier {
	return a.Identifier
}

func (a *Asset[T]) Validate() error {
	el := errors.NewErrorList()

	if a.Version == 0 {
		el.Add(fmt.Errorf("version must be set"))
	}

	if a.Identifier == "" {
		el.Add(fmt.Errorf("id must be set"))
	} else if !a.Identifier.Valid() {
		el.Add(fmt.Errorf("id %q contains invalid characters", a.Identifier))
	}

	el.Add(a.Spec.Validate())

	return el.Err()
}
