package assets

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// Library aggregates every static asset store. It is immutable after
// Resolve and safe for concurrent reads.
type Library struct {
	Items      storage.Storer[*Item]
	Monsters   storage.Storer[*Monster]
	Rooms      storage.Storer[*Room]
	LootTables storage.Storer[*LootTable]
	Skills     storage.Storer[*Skill]
	Criticals  storage.Storer[*CriticalTable]
	Factions   storage.Storer[*Faction]
	Races      storage.Storer[*Race]
	Leveling   storage.Storer[*Leveling]
}

// Resolve checks every cross-store reference. Broken references are
// a boot-time failure, not a runtime surprise.
func (l *Library) Resolve() error {
	el := errors.NewErrorList()

	for id, m := range l.Monsters.GetAll() {
		if m.LootTable != "" && l.LootTables.Get(m.LootTable) == nil {
			el.Add(fmt.Errorf("monster %s: loot table %q not found", id, m.LootTable))
		}
		if m.Skinnable != nil && l.Items.Get(m.Skinnable.ItemId) == nil {
			el.Add(fmt.Errorf("monster %s: skin item %q not found", id, m.Skinnable.ItemId))
		}
		for slot, itemId := range m.Equipped {
			if l.Items.Get(itemId) == nil {
				el.Add(fmt.Errorf("monster %s: equipped %s item %q not found", id, slot, itemId))
			}
		}
	}

	for id, r := range l.Rooms.GetAll() {
		for dir, dest := range r.Exits {
			if l.Rooms.Get(storage.Identifier(dest)) == nil {
				el.Add(fmt.Errorf("room %s: exit %s leads to unknown room %q", id, dir, dest))
			}
		}
		for n, stub := range r.Mobs {
			if l.Monsters.Get(stub.MonsterId) == nil {
				el.Add(fmt.Errorf("room %s: mob %d references unknown monster %q", id, n, stub.MonsterId))
			}
		}
		for n, stub := range r.Items {
			if l.Items.Get(stub.ItemId) == nil {
				el.Add(fmt.Errorf("room %s: item %d references unknown item %q", id, n, stub.ItemId))
			}
		}
	}

	for id, t := range l.LootTables.GetAll() {
		for n, e := range t.Entries {
			if l.Items.Get(e.ItemId) == nil {
				el.Add(fmt.Errorf("loot table %s: entry %d references unknown item %q", id, n, e.ItemId))
			}
		}
	}

	return el.Err()
}

// Critical looks up the critical result for a damage type, location,
// and rank, falling back to the slash table for unknown types.
func (l *Library) Critical(damageType, location string, rank int) CriticalHit {
	table := l.Criticals.Get(storage.Identifier(damageType))
	if table == nil {
		table = l.Criticals.Get("slash")
	}
	if table == nil {
		if rank <= 0 {
			return CriticalHit{}
		}
		return CriticalHit{Message: "A solid hit!", ExtraDamage: 1, WoundRank: 1}
	}
	return table.Lookup(location, rank)
}
