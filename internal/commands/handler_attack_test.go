package commands

import (
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/emberfallmud/emberfall/internal/game"
)

// scriptRoller feeds fixed values into the combat resolver.
type scriptRoller struct {
	d100   int
	ints   []int
	floats []float64
}

func (r *scriptRoller) D100() int { return r.d100 }

func (r *scriptRoller) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptRoller) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

// moveToRat walks a player to the room with the resident giant rat.
func moveToRat(t *testing.T, e *Executor, name string) {
	t.Helper()
	_, err := e.Execute(name, "north", "sid-"+game.Key(name), "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
}

func TestAttackMissingTarget(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	fred := joinPlayer(e, "Fred")

	resp, err := e.Execute(fred.Name, "attack", "sid-fred", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	testutil.AssertEqual(t, "message", messagesContain(resp.Messages, "Attack what?"), true)

	resp, err = e.Execute(fred.Name, "attack rat", "sid-fred", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	testutil.AssertEqual(t, "message", messagesContain(resp.Messages, "You don't see a **rat** here to attack."), true)
}

func TestAttackEngagesBothSides(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	e.Roll = &scriptRoller{d100: 1}
	fred := joinPlayer(e, "Fred")
	moveToRat(t, e, fred.Name)

	_, err := e.Execute(fred.Name, "attack rat", "sid-fred", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	// Attacker enters hard roundtime and both sides carry combat state.
	testutil.AssertEqual(t, "hard roundtime", fred.InHardRT(e.now()), true)

	cs := e.World.CombatState("fred")
	testutil.AssertEqual(t, "combat state", cs != nil, true)
	testutil.AssertEqual(t, "state type", cs.Type, game.StateTypeCombat)

	mobState := e.World.CombatState(cs.TargetId)
	testutil.AssertEqual(t, "mob state", mobState != nil, true)
	testutil.AssertEqual(t, "target", mobState.TargetId, "fred")
}

func TestKillMobGrantsExperienceAndCorpse(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	fred := joinPlayer(e, "Fred")
	moveToRat(t, e, fred.Name)
	fred.DrainMessages()

	room, err := e.World.Room("north_road")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	rat := room.FindMob("rat")
	testutil.AssertEqual(t, "mob found", rat != nil, true)

	c := &Context{Ex: e, World: e.World, Player: fred, Room: room, Now: e.now()}
	e.KillMob(c, rat)

	msgs := fred.DrainMessages()
	testutil.AssertEqual(t, "message", messagesContain(msgs, "experience"), true)
	testutil.AssertEqual(t, "message", messagesContain(msgs, "The corpse of a giant rat falls to the ground."), true)

	testutil.AssertEqual(t, "field exp", fred.UnabsorbedExp > 0, true)
	testutil.AssertEqual(t, "corpse count", len(room.Corpses), 1)
	testutil.AssertEqual(t, "mob removed", room.FindMob("rat") == nil, true)
	testutil.AssertEqual(t, "defeated entry", e.World.Defeated(rat.Uid) != nil, true)
	testutil.AssertEqual(t, "quest counter", fred.QuestCounters["rodent"], 1)
}

func TestKillPlayerMovesToDeathRoom(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	fred := joinPlayer(e, "Fred")
	fred.HP = 0

	e.KillPlayer(e.World, fred, e.now())

	testutil.AssertEqual(t, "room", fred.RoomId, e.World.Settings.DeathRoom)
	testutil.AssertEqual(t, "hp", fred.HP, 1)
	testutil.AssertEqual(t, "death count", fred.DeathsRecent, 1)
	testutil.AssertEqual(t, "death sting", fred.DeathStingPoints > 0, true)
	testutil.AssertEqual(t, "posture", fred.Posture, "prone")
	testutil.AssertEqual(t, "message", messagesContain(fred.DrainMessages(), "You have been slain"), true)
}
