package game

import (
	"strings"

	"github.com/emberfallmud/emberfall/internal/assets"
	"github.com/emberfallmud/emberfall/internal/storage"
)

func matchName(name, word string) bool {
	n := strings.ToLower(name)
	w := strings.ToLower(word)
	if n == w {
		return true
	}
	for _, part := range strings.Fields(n) {
		if part == w {
			return true
		}
	}
	return false
}

// Room is the runtime state of a hydrated room. The static template
// stays in the asset cache; this holds only what changes at runtime.
// All mutation happens under the world's per-room lock (World.WithRoom).
type Room struct {
	Id       storage.Identifier
	Template *assets.Room

	Mobs    []*Mob
	Items   []assets.ItemRef
	Corpses []*Corpse

	// Private table bookkeeping. The first entrant owns the table;
	// succession passes to the oldest remaining occupant.
	Owner   string
	Invited []string
}

// Exit resolves a direction to a destination room id.
func (r *Room) Exit(direction string) (storage.Identifier, bool) {
	dest, ok := r.Template.Exits[strings.ToLower(direction)]
	return storage.Identifier(dest), ok
}

// FindMob returns the first live mob matching the keyword.
func (r *Room) FindMob(word string) *Mob {
	for _, m := range r.Mobs {
		if m.MatchKeyword(word) {
			return m
		}
	}
	return nil
}

// MobByUid returns the mob with the given uid, or nil.
func (r *Room) MobByUid(uid string) *Mob {
	for _, m := range r.Mobs {
		if m.Uid == uid {
			return m
		}
	}
	return nil
}

// RemoveMob takes a mob out of the room by uid. Returns the removed
// mob, or nil when it was already gone.
func (r *Room) RemoveMob(uid string) *Mob {
	for i, m := range r.Mobs {
		if m.Uid == uid {
			r.Mobs = append(r.Mobs[:i], r.Mobs[i+1:]...)
			return m
		}
	}
	return nil
}

// HasTemplate reports whether a live instance of the template is
// already present. Unique mobs use this to block double spawns.
func (r *Room) HasTemplate(id storage.Identifier) bool {
	for _, m := range r.Mobs {
		if m.TemplateId == id {
			return true
		}
	}
	return false
}

// FindItem returns the index of the first floor item matching word
// against the item templates in lib, or -1.
func (r *Room) FindItem(lib *assets.Library, word string) int {
	for i, ref := range r.Items {
		tmpl := lib.Items.Get(ref.ItemId)
		if tmpl != nil && tmpl.MatchKeyword(word) {
			return i
		}
	}
	return -1
}

// RemoveItem takes a specific item instance off the floor.
func (r *Room) RemoveItem(ref assets.ItemRef) bool {
	for i, held := range r.Items {
		if held.Same(ref) {
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			return true
		}
	}
	return false
}

// FindCorpse returns the first corpse matching the keyword.
func (r *Room) FindCorpse(word string) *Corpse {
	for _, c := range r.Corpses {
		if c.MatchKeyword(word) {
			return c
		}
	}
	return nil
}

// RemoveCorpse takes a corpse out of the room by uid.
func (r *Room) RemoveCorpse(uid string) *Corpse {
	for i, c := range r.Corpses {
		if c.Uid == uid {
			r.Corpses = append(r.Corpses[:i], r.Corpses[i+1:]...)
			return c
		}
	}
	return nil
}

// IsInvited reports whether a player may join a private table.
func (r *Room) IsInvited(name string) bool {
	if r.Owner == "" || r.Owner == name {
		return true
	}
	for _, n := range r.Invited {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
