package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"

	"github.com/emberfallmud/emberfall/internal/assets"
	"github.com/emberfallmud/emberfall/internal/storage"
)

type AssetsConfig struct {
	Items      AssetConfig[*assets.Item]          `json:"items"`
	Monsters   AssetConfig[*assets.Monster]       `json:"monsters"`
	Rooms      AssetConfig[*assets.Room]          `json:"rooms"`
	LootTables AssetConfig[*assets.LootTable]     `json:"loot_tables"`
	Skills     AssetConfig[*assets.Skill]         `json:"skills"`
	Criticals  AssetConfig[*assets.CriticalTable] `json:"criticals"`
	Factions   AssetConfig[*assets.Faction]       `json:"factions"`
	Races      AssetConfig[*assets.Race]          `json:"races"`
	Leveling   AssetConfig[*assets.Leveling]      `json:"leveling"`
}

func (c *AssetsConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Items.Validate("items"))
	el.Add(c.Monsters.Validate("monsters"))
	el.Add(c.Rooms.Validate("rooms"))
	el.Add(c.LootTables.Validate("loot_tables"))
	el.Add(c.Skills.Validate("skills"))
	el.Add(c.Criticals.Validate("criticals"))
	el.Add(c.Factions.Validate("factions"))
	el.Add(c.Races.Validate("races"))
	el.Add(c.Leveling.Validate("leveling"))
	return el.Err()
}

func (c *AssetsConfig) BuildLibrary() (*assets.Library, error) {
	items, err := c.Items.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating item store: %w", err)
	}
	monsters, err := c.Monsters.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating monster store: %w", err)
	}
	rooms, err := c.Rooms.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating room store: %w", err)
	}
	lootTables, err := c.LootTables.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating loot table store: %w", err)
	}
	skills, err := c.Skills.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating skill store: %w", err)
	}
	criticals, err := c.Criticals.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating critical table store: %w", err)
	}
	factions, err := c.Factions.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating faction store: %w", err)
	}
	races, err := c.Races.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating race store: %w", err)
	}
	leveling, err := c.Leveling.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating leveling store: %w", err)
	}

	lib := &assets.Library{
		Items:      items,
		Monsters:   monsters,
		Rooms:      rooms,
		LootTables: lootTables,
		Skills:     skills,
		Criticals:  criticals,
		Factions:   factions,
		Races:      races,
		Leveling:   leveling,
	}

	if err := lib.Resolve(); err != nil {
		return nil, fmt.Errorf("resolving references: %w", err)
	}

	return lib, nil
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
