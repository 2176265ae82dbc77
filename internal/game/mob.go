package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/emberfallmud/emberfall/internal/assets"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// Mob is a live monster or npc instance in a room. The template is
// merged underneath the room's placement stub at hydration; any field
// the stub sets wins.
type Mob struct {
	Uid        string
	TemplateId storage.Identifier
	Template   *assets.Monster

	Name    string
	MaxHP   int
	Faction string
	Stats   map[string]int
}

// HydrateMob merges a monster template under a room placement stub.
// A stub without a uid gets a fresh one.
func HydrateMob(stub assets.MobStub, tmpl *assets.Monster) *Mob {
	m := &Mob{
		Uid:        stub.Uid,
		TemplateId: stub.MonsterId,
		Template:   tmpl,
		Name:       tmpl.Name,
		MaxHP:      tmpl.MaxHP,
		Faction:    tmpl.Faction,
	}
	if m.Uid == "" {
		m.Uid = uuid.NewString()
	}
	if stub.Name != "" {
		m.Name = stub.Name
	}
	if stub.MaxHP > 0 {
		m.MaxHP = stub.MaxHP
	}
	if stub.Faction != "" {
		m.Faction = stub.Faction
	}

	m.Stats = map[string]int{}
	for k, v := range tmpl.Stats {
		m.Stats[k] = v
	}
	for k, v := range stub.Stats {
		m.Stats[k] = v
	}
	return m
}

// SpawnMob builds a fresh instance straight from a template, used by
// the respawn sweep. Always gets a new uid.
func SpawnMob(id storage.Identifier, tmpl *assets.Monster) *Mob {
	return HydrateMob(assets.MobStub{MonsterId: id}, tmpl)
}

// Stat returns the merged attribute value, falling back to the
// baseline of 50 when the template never set it.
func (m *Mob) Stat(name string) int {
	if v, ok := m.Stats[name]; ok {
		return v
	}
	return 50
}

// StatBonus returns the derived bonus. Monsters have no race table;
// the template's stats already include any innate adjustment.
func (m *Mob) StatBonus(name string) int {
	return assets.StatBonus(m.Stat(name), 0)
}

// SkillRank returns the template's rank in a skill.
func (m *Mob) SkillRank(skill string) int {
	if m.Template == nil {
		return 0
	}
	return m.Template.Skills[skill]
}

// MatchKeyword reports whether word targets this mob, checking the
// instance name before the template keyword list.
func (m *Mob) MatchKeyword(word string) bool {
	if m.Template != nil && m.Template.MatchKeyword(word) {
		return true
	}
	return matchName(m.Name, word)
}

// Corpse is the container left behind by a defeated mob. Static loot
// is rolled at creation; dynamic treasure waits for the first SEARCH.
type Corpse struct {
	Uid        string
	Name       string
	Keywords   []string
	TemplateId storage.Identifier
	Level      int

	DecayAt time.Time

	Items []assets.ItemRef
	Coins int

	Skinnable *assets.SkinYield
	Skinned   bool

	DynamicLootDone    bool
	SearchedAndEmptied bool
}

// MatchKeyword reports whether word targets this corpse.
func (c *Corpse) MatchKeyword(word string) bool {
	if word == "corpse" {
		return true
	}
	for _, k := range c.Keywords {
		if matchName(k, word) {
			return true
		}
	}
	return matchName(c.Name, word)
}
