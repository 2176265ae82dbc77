package command

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/pixil98/go-service"

	"github.com/emberfallmud/emberfall/internal/commands"
	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/gateway"
	"github.com/emberfallmud/emberfall/internal/loot"
	"github.com/emberfallmud/emberfall/internal/messaging"
	"github.com/emberfallmud/emberfall/internal/metrics"
	"github.com/emberfallmud/emberfall/internal/sim"
	"github.com/emberfallmud/emberfall/internal/store"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Load the static asset library
	lib, err := cfg.Assets.BuildLibrary()
	if err != nil {
		return nil, fmt.Errorf("loading assets: %w", err)
	}

	// Open the document store
	db, err := cfg.Database.Open()
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	for _, a := range cfg.Game.SeedAccounts {
		if err := db.EnsureAccount(a.Id, a.Password, a.Admin); err != nil {
			return nil, fmt.Errorf("seeding account %q: %w", a.Id, err)
		}
	}

	// Build the world
	settings := game.DefaultSettings()
	settings.AdminAccounts = cfg.Game.AdminAccounts
	world := game.NewWorld(lib, settings)

	bands, err := db.LoadBands()
	if err != nil {
		return nil, fmt.Errorf("loading bands: %w", err)
	}
	world.LoadBands(bands)

	// Create the message bus
	bus, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	publisher := messaging.NewPublisher(bus)

	// Wire the executor and the simulation loop
	treasure := loot.NewManager(lib, loot.NewRoller(), time.Now())
	executor := commands.NewExecutor(world, db, publisher, treasure)
	scheduler := sim.NewScheduler(executor, publisher, treasure)
	gw := gateway.NewGateway(world, executor, bus, publisher, db)
	writer := store.NewWriter(world, db, settings.WriterInterval)

	metrics.Register(prometheus.DefaultRegisterer)

	return service.WorkerList{
		"nats":      bus,
		"gateway":   gw,
		"scheduler": scheduler,
		"writer":    writer,
		"metrics":   metrics.NewServer(cfg.Metrics.addr()),
	}, nil
}
