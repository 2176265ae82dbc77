package game

import (
	"time"

	"github.com/emberfallmud/emberfall/internal/assets"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// Stances order from full offense to full defense. The stance name
// indexes the per-side combat multiplier tables.
var Stances = []string{"offensive", "advance", "forward", "neutral", "guarded", "defensive"}

// Postures a player can hold. Posture scales both attack and defense
// by a fraction and is forced to prone on death.
var Postures = []string{"standing", "crouching", "kneeling", "sitting", "prone", "meditating"}

// Game states gate which verbs the executor will dispatch.
const (
	StateChargen  = "chargen"
	StateTraining = "training"
	StatePlaying  = "playing"
)

func ValidStance(s string) bool {
	for _, v := range Stances {
		if v == s {
			return true
		}
	}
	return false
}

func ValidPosture(p string) bool {
	for _, v := range Postures {
		if v == p {
			return true
		}
	}
	return false
}

// Buff is a timed AS/DS/stat adjustment.
type Buff struct {
	Name      string    `json:"name"`
	ASBonus   int       `json:"as_bonus,omitempty"`
	DSBonus   int       `json:"ds_bonus,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

const messageHistoryCap = 50

// Player is the persisted character plus its session-scoped buffers.
// All fields with json tags round-trip through the document store.
type Player struct {
	Name      string             `json:"name"`
	AccountId string             `json:"account_id,omitempty"`
	Admin     bool               `json:"admin,omitempty"`
	RoomId    storage.Identifier `json:"current_room_id"`

	Race       storage.Identifier `json:"race,omitempty"`
	Appearance map[string]string  `json:"appearance,omitempty"`

	GameState   string `json:"game_state"`
	ChargenStep int    `json:"chargen_step,omitempty"`

	Stats map[string]int `json:"stats"`

	HP      int `json:"hp"`
	Mana    int `json:"mana"`
	Stamina int `json:"stamina"`
	Spirit  int `json:"spirit"`

	Level         int `json:"level"`
	Experience    int `json:"experience"`
	UnabsorbedExp int `json:"unabsorbed_exp"`
	PTPs          int `json:"ptps"`
	MTPs          int `json:"mtps"`
	STPs          int `json:"stps"`

	// Death bookkeeping. ConLost tracks constitution drained by
	// deaths; ConRecovery accumulates absorbed exp toward restoring
	// it, one point per 2000.
	DeathsRecent     int `json:"deaths_recent,omitempty"`
	ConLost          int `json:"con_lost,omitempty"`
	ConRecovery      int `json:"con_recovery,omitempty"`
	DeathStingPoints int `json:"death_sting_points,omitempty"`

	Skills                map[string]int `json:"skills,omitempty"`
	SkillLearning         map[string]int `json:"skill_learning_progress,omitempty"`
	RanksTrainedThisLevel map[string]int `json:"ranks_trained_this_level,omitempty"`

	Wealth    int                       `json:"wealth"`
	Inventory []assets.ItemRef          `json:"inventory,omitempty"`
	WornItems map[string]assets.ItemRef `json:"worn_items,omitempty"`
	Locker    []assets.ItemRef          `json:"locker,omitempty"`

	Wounds   map[string]int  `json:"wounds,omitempty"`
	Scars    map[string]int  `json:"scars,omitempty"`
	Bandaged map[string]bool `json:"bandaged,omitempty"`

	Stance  string `json:"stance"`
	Posture string `json:"posture"`

	Buffs []Buff `json:"buffs,omitempty"`

	Flags storage.ExtensionState `json:"flags,omitempty"`

	QuestCounters   map[string]int  `json:"quest_counters,omitempty"`
	CompletedQuests []string        `json:"completed_quests,omitempty"`
	FactionStanding map[string]int  `json:"faction_standing,omitempty"`
	KnownSpells     []string        `json:"known_spells,omitempty"`
	KnownManeuvers  []string        `json:"known_maneuvers,omitempty"`
	VisitedRooms    map[string]bool `json:"visited_rooms,omitempty"`

	Friends []string          `json:"friends,omitempty"`
	Ignored []string          `json:"ignored,omitempty"`
	Aliases map[string]string `json:"aliases,omitempty"`
	Deities []string          `json:"deities,omitempty"`
	Guilds  []string          `json:"guilds,omitempty"`

	BandId  string `json:"band_id,omitempty"`
	GroupId string `json:"group_id,omitempty"`

	MessageHistory []string `json:"message_history,omitempty"`

	// Session state, never persisted.
	messages []string
	race     *assets.Race
	dirty    bool

	RTEnd      time.Time     `json:"-"`
	RTDuration time.Duration `json:"-"`
	RTType     string        `json:"-"` // hard or soft
}

// NewPlayer builds a fresh character at the chargen start room.
func NewPlayer(name, accountId string, startRoom storage.Identifier) *Player {
	p := &Player{
		Name:        name,
		AccountId:   accountId,
		RoomId:      startRoom,
		GameState:   StateChargen,
		Stats:       map[string]int{},
		Skills:      map[string]int{},
		WornItems:   map[string]assets.ItemRef{},
		Wounds:      map[string]int{},
		Scars:       map[string]int{},
		Level:       1,
		Stance:      "neutral",
		Posture:     "standing",
	}
	for _, s := range assets.StatNames {
		p.Stats[s] = 50
	}
	p.HP = p.MaxHP()
	p.Mana = p.MaxMana()
	p.Stamina = p.MaxStamina()
	p.Spirit = p.MaxSpirit()
	p.dirty = true
	return p
}

// SetRace binds the loaded race asset so stat bonuses include racial
// modifiers. Called on hydration and after chargen picks a race.
func (p *Player) SetRace(r *assets.Race) { p.race = r }

// Stat returns the raw attribute value, zero for unknown names.
func (p *Player) Stat(name string) int { return p.Stats[name] }

// StatBonus returns the derived bonus including racial modifier.
func (p *Player) StatBonus(name string) int {
	return assets.StatBonus(p.Stats[name], p.race.Modifier(name))
}

// SkillRank returns trained ranks in a skill.
func (p *Player) SkillRank(skill string) int { return p.Skills[skill] }

// SkillBonus returns the diminishing-returns bonus for a skill.
func (p *Player) SkillBonus(skill string) int {
	return assets.SkillBonus(p.Skills[skill])
}

// Derived maxima. Pure functions of stats, skills, and race.

func (p *Player) MaxHP() int {
	return 100 + 5*p.StatBonus("CON") + 6*p.SkillRank("physical_fitness")
}

func (p *Player) MaxMana() int {
	return 100 + 5*p.StatBonus("ESS") + 4*p.SkillRank("mana_control")
}

func (p *Player) MaxStamina() int {
	return 100 + 3*(p.StatBonus("STR")+p.StatBonus("CON")) + 2*p.SkillRank("physical_fitness")
}

func (p *Player) MaxSpirit() int {
	return 10 + p.StatBonus("AUR")/2 + p.StatBonus("ZEA")/4
}

// ClampVitals pulls every vital back into [0, max]. Run after any
// mutation that could overshoot.
func (p *Player) ClampVitals() {
	p.HP = clamp(p.HP, 0, p.MaxHP())
	p.Mana = clamp(p.Mana, 0, p.MaxMana())
	p.Stamina = clamp(p.Stamina, 0, p.MaxStamina())
	p.Spirit = clamp(p.Spirit, 0, p.MaxSpirit())
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Dirty reports whether the player has unsaved changes.
func (p *Player) Dirty() bool { return p.dirty }

// MarkDirty flags the player for the next persistence pass.
func (p *Player) MarkDirty() { p.dirty = true }

// ClearDirty is called by the writer after a successful save.
func (p *Player) ClearDirty() { p.dirty = false }

// Queue appends a line to the player's outgoing message buffer.
func (p *Player) Queue(msg string) {
	p.messages = append(p.messages, msg)
	p.MessageHistory = append(p.MessageHistory, msg)
	if len(p.MessageHistory) > messageHistoryCap {
		p.MessageHistory = p.MessageHistory[len(p.MessageHistory)-messageHistoryCap:]
	}
}

// DrainMessages empties and returns the outgoing buffer.
func (p *Player) DrainMessages() []string {
	out := p.messages
	p.messages = nil
	return out
}

// InHardRT reports whether a blocking roundtime is still running.
func (p *Player) InHardRT(now time.Time) bool {
	return p.RTType == "hard" && now.Before(p.RTEnd)
}

// SetRoundtime starts a roundtime window of the given kind.
func (p *Player) SetRoundtime(now time.Time, d time.Duration, kind string) {
	p.RTEnd = now.Add(d)
	p.RTDuration = d
	p.RTType = kind
}

// Wielded returns the item ref in a hand slot.
func (p *Player) Wielded(slot string) assets.ItemRef {
	if p.WornItems == nil {
		return assets.ItemRef{}
	}
	return p.WornItems[slot]
}

// Equip places a ref into a slot, displacing nothing. Callers check
// occupancy first.
func (p *Player) Equip(slot string, ref assets.ItemRef) {
	if p.WornItems == nil {
		p.WornItems = map[string]assets.ItemRef{}
	}
	p.WornItems[slot] = ref
	p.dirty = true
}

// Unequip clears a slot and returns what was there.
func (p *Player) Unequip(slot string) assets.ItemRef {
	if p.WornItems == nil {
		return assets.ItemRef{}
	}
	ref := p.WornItems[slot]
	delete(p.WornItems, slot)
	if !ref.Empty() {
		p.dirty = true
	}
	return ref
}

// ReceiveItem places an incoming item in the right hand, then the
// left, then the inventory, whichever is free first.
func (p *Player) ReceiveItem(ref assets.ItemRef) string {
	if p.Wielded("mainhand").Empty() {
		p.Equip("mainhand", ref)
		return "mainhand"
	}
	if p.Wielded("offhand").Empty() {
		p.Equip("offhand", ref)
		return "offhand"
	}
	p.Inventory = append(p.Inventory, ref)
	p.dirty = true
	return "inventory"
}

// RemoveItem takes a specific item instance out of whichever hand
// slot or inventory position holds it. Returns false when the player
// no longer has it.
func (p *Player) RemoveItem(ref assets.ItemRef) bool {
	for _, slot := range []string{"mainhand", "offhand"} {
		if held := p.Wielded(slot); !held.Empty() && held.Same(ref) {
			p.Unequip(slot)
			return true
		}
	}
	for i, held := range p.Inventory {
		if held.Same(ref) {
			p.Inventory = append(p.Inventory[:i], p.Inventory[i+1:]...)
			p.dirty = true
			return true
		}
	}
	return false
}

// HasItem reports whether the player holds the instance anywhere.
func (p *Player) HasItem(ref assets.ItemRef) bool {
	for _, slot := range []string{"mainhand", "offhand"} {
		if held := p.Wielded(slot); !held.Empty() && held.Same(ref) {
			return true
		}
	}
	for _, held := range p.Inventory {
		if held.Same(ref) {
			return true
		}
	}
	return false
}

// ApplyWound raises the wound at a location to at least rank. A hit
// on an already wounded location aggravates it by one instead, and
// tears any bandage. Returns the resulting rank.
func (p *Player) ApplyWound(location string, rank int) int {
	if p.Wounds == nil {
		p.Wounds = map[string]int{}
	}
	cur := p.Wounds[location]
	next := rank
	if cur > 0 {
		next = cur + 1
		if p.Bandaged[location] {
			delete(p.Bandaged, location)
		}
	}
	if next > 3 {
		next = 3
	}
	if next != cur {
		p.Wounds[location] = next
		p.dirty = true
	}
	return next
}

// ActiveBuffs drops expired buffs and returns the survivors.
func (p *Player) ActiveBuffs(now time.Time) []Buff {
	kept := p.Buffs[:0]
	for _, b := range p.Buffs {
		if b.ExpiresAt.After(now) {
			kept = append(kept, b)
		}
	}
	if len(kept) != len(p.Buffs) {
		p.Buffs = kept
		p.dirty = true
	}
	return p.Buffs
}

// BuffAS sums attack bonuses from unexpired buffs.
func (p *Player) BuffAS(now time.Time) int {
	total := 0
	for _, b := range p.ActiveBuffs(now) {
		total += b.ASBonus
	}
	return total
}

// BuffDS sums defense bonuses from unexpired buffs.
func (p *Player) BuffDS(now time.Time) int {
	total := 0
	for _, b := range p.ActiveBuffs(now) {
		total += b.DSBonus
	}
	return total
}

// VisitRoom records a room on the player's map.
func (p *Player) VisitRoom(id storage.Identifier) {
	if p.VisitedRooms == nil {
		p.VisitedRooms = map[string]bool{}
	}
	if !p.VisitedRooms[id.String()] {
		p.VisitedRooms[id.String()] = true
		p.dirty = true
	}
}

// Ignores reports whether name is on the ignore list.
func (p *Player) Ignores(name string) bool {
	for _, n := range p.Ignored {
		if n == name {
			return true
		}
	}
	return false
}
