package command

import (
	"fmt"

	"github.com/pixil98/go-errors"

	"github.com/emberfallmud/emberfall/internal/store"
)

type DatabaseConfig struct {
	Path string `json:"path"`
}

func (d *DatabaseConfig) validate() error {
	el := errors.NewErrorList()

	if d.Path == "" {
		el.Add(fmt.Errorf("database path is required"))
	}

	return el.Err()
}

func (d *DatabaseConfig) Open() (*store.Store, error) {
	return store.Open(d.Path)
}
