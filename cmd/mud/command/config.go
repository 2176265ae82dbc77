package command

import (
	"github.com/pixil98/go-errors"
)

type Config struct {
	Assets   AssetsConfig   `json:"assets"`
	Database DatabaseConfig `json:"database"`
	Nats     NatsConfig     `json:"nats"`
	Metrics  MetricsConfig  `json:"metrics"`
	Game     GameConfig     `json:"game"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Assets.validate())
	el.Add(c.Database.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Metrics.validate())
	el.Add(c.Game.validate())

	return el.Err()
}
