package commands

import (
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"

	"github.com/emberfallmud/emberfall/internal/assets"
	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/loot"
	"github.com/emberfallmud/emberfall/internal/messaging"
	"github.com/emberfallmud/emberfall/internal/storage"
)

type fakeAssets[T storage.ValidatingSpec] struct {
	recs map[storage.Identifier]T
}

func (s *fakeAssets[T]) Save(id storage.Identifier, o T) error {
	s.recs[id] = o
	return nil
}

func (s *fakeAssets[T]) Get(id storage.Identifier) T {
	return s.recs[id]
}

func (s *fakeAssets[T]) GetAll() map[storage.Identifier]T {
	return s.recs
}

func (s *fakeAssets[T]) Len() int {
	return len(s.recs)
}

func testLibrary() *assets.Library {
	return &assets.Library{
		Items: &fakeAssets[*assets.Item]{recs: map[storage.Identifier]*assets.Item{
			"dagger": {Name: "a steel dagger", Keywords: []string{"dagger"}, Type: "weapon", Skill: "brawling"},
			"apple":  {Name: "a red apple", Keywords: []string{"apple"}},
		}},
		Monsters: &fakeAssets[*assets.Monster]{recs: map[storage.Identifier]*assets.Monster{
			"giant_rat": {
				Name:       "giant rat",
				Keywords:   []string{"rat"},
				Type:       "monster",
				Level:      1,
				MaxHP:      10,
				Faction:    "vermin",
				Family:     "rodent",
				Experience: 100,
			},
		}},
		Rooms: &fakeAssets[*assets.Room]{recs: map[storage.Identifier]*assets.Room{
			"town_square": {
				Name:         "Town Square",
				Descriptions: map[string]string{"default": "The square bustles."},
				Exits:        map[string]string{"north": "north_road"},
				Town:         true,
			},
			"north_road": {
				Name:         "North Road",
				Descriptions: map[string]string{"default": "A dusty road."},
				Exits:        map[string]string{"south": "town_square"},
				Mobs:         []assets.MobStub{{Uid: "rat-1", MonsterId: "giant_rat"}},
			},
			"inn_room": {
				Name:         "Inn Room",
				Descriptions: map[string]string{"default": "A small rented room."},
				Exits:        map[string]string{},
			},
			"temple_of_light": {
				Name:         "Temple of Light",
				Descriptions: map[string]string{"default": "Soft light fills the sanctum."},
				Exits:        map[string]string{},
			},
		}},
		LootTables: &fakeAssets[*assets.LootTable]{recs: map[storage.Identifier]*assets.LootTable{}},
		Skills:     &fakeAssets[*assets.Skill]{recs: map[storage.Identifier]*assets.Skill{}},
		Criticals:  &fakeAssets[*assets.CriticalTable]{recs: map[storage.Identifier]*assets.CriticalTable{}},
		Factions:   &fakeAssets[*assets.Faction]{recs: map[storage.Identifier]*assets.Faction{}},
		Races:      &fakeAssets[*assets.Race]{recs: map[storage.Identifier]*assets.Race{}},
		Leveling: &fakeAssets[*assets.Leveling]{recs: map[storage.Identifier]*assets.Leveling{
			"default": {Levels: []assets.LevelRow{
				{Experience: 0, PTP: 20, MTP: 20, STP: 20},
				{Experience: 2500, PTP: 20, MTP: 20, STP: 20},
				{Experience: 5000, PTP: 20, MTP: 20, STP: 20},
			}},
		}},
	}
}

type fakePlayerStore struct {
	players map[string]*game.Player
	bands   map[string]*game.Band
}

func newFakePlayerStore() *fakePlayerStore {
	return &fakePlayerStore{
		players: map[string]*game.Player{},
		bands:   map[string]*game.Band{},
	}
}

func (s *fakePlayerStore) GetPlayer(name string) (*game.Player, error) {
	return s.players[game.Key(name)], nil
}

func (s *fakePlayerStore) PutPlayer(p *game.Player) error {
	s.players[game.Key(p.Name)] = p
	return nil
}

func (s *fakePlayerStore) PutBand(b *game.Band) error {
	s.bands[b.Id] = b
	return nil
}

func (s *fakePlayerStore) DeleteBand(id string) error {
	delete(s.bands, id)
	return nil
}

type sentEnvelope struct {
	player string
	env    messaging.Envelope
}

type fakeNotifier struct {
	sent []sentEnvelope
}

func (n *fakeNotifier) Send(playerName string, env messaging.Envelope) error {
	n.sent = append(n.sent, sentEnvelope{player: game.Key(playerName), env: env})
	return nil
}

func (n *fakeNotifier) BroadcastRoom(w *game.World, roomId storage.Identifier, env messaging.Envelope, skip ...string) error {
	skipSet := map[string]bool{}
	for _, s := range skip {
		skipSet[game.Key(s)] = true
	}
	for _, name := range w.PlayersIn(roomId) {
		if skipSet[game.Key(name)] {
			continue
		}
		n.Send(name, env)
	}
	return nil
}

// textsFor returns every envelope text delivered to a player.
func (n *fakeNotifier) textsFor(player string) []string {
	var out []string
	for _, s := range n.sent {
		if s.player == game.Key(player) {
			out = append(out, s.env.Text)
		}
	}
	return out
}

func newTestExecutor(t *testing.T) (*Executor, *fakePlayerStore, *fakeNotifier) {
	t.Helper()
	lib := testLibrary()
	w := game.NewWorld(lib, game.DefaultSettings())
	store := newFakePlayerStore()
	notify := &fakeNotifier{}
	treasure := loot.NewManager(lib, loot.NewRoller(), time.Now())

	e := NewExecutor(w, store, notify, treasure)
	e.Clock = func() time.Time { return time.Unix(1700000000, 0) }
	return e, store, notify
}

// joinPlayer puts a playing character online in town_square.
func joinPlayer(e *Executor, name string) *game.Player {
	p := game.NewPlayer(name, "acct-"+game.Key(name), "town_square")
	p.GameState = game.StatePlaying
	p.HP = p.MaxHP()
	sess := &game.Session{Player: p, Sid: "sid-" + game.Key(name), LastSeen: e.now()}
	e.World.SetSession(sess)
	e.World.AddPlayerToIndex(p.Name, p.RoomId)
	return p
}

func messagesContain(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestExecuteUnknownVerb(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	p := joinPlayer(e, "Fred")

	resp, err := e.Execute(p.Name, "frobnicate", "sid-fred", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	testutil.AssertEqual(t, "message", messagesContain(resp.Messages, "I don't know the command **'frobnicate'**."), true)
}

func TestExecuteEmptyLine(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	p := joinPlayer(e, "Fred")

	resp, err := e.Execute(p.Name, "   ", "sid-fred", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	testutil.AssertEqual(t, "message", messagesContain(resp.Messages, "What?"), true)
}

func TestExecuteFrozenGate(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	p := joinPlayer(e, "Fred")
	p.Flags.Set("frozen", true)

	resp, err := e.Execute(p.Name, "go north", "sid-fred", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	testutil.AssertEqual(t, "message", messagesContain(resp.Messages, "You are frozen and cannot act."), true)
	testutil.AssertEqual(t, "room", p.RoomId.String(), "town_square")

	// Allowed verbs still work while frozen.
	resp, err = e.Execute(p.Name, "say hello", "sid-fred", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	testutil.AssertEqual(t, "message", messagesContain(resp.Messages, `You say, "hello"`), true)
}

func TestExecuteHardRoundtimeQueues(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	p := joinPlayer(e, "Fred")
	now := e.now()
	p.SetRoundtime(now, 5*time.Second, "hard")

	resp, err := e.Execute(p.Name, "go north", "sid-fred", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	testutil.AssertEqual(t, "message", messagesContain(resp.Messages, "Wait 5.0 seconds."), true)

	sess := e.World.Session(p.Name)
	testutil.AssertEqual(t, "queue depth", len(sess.Queue), 1)
	testutil.AssertEqual(t, "queued command", sess.Queue[0], "go north")

	// look is allowed through the roundtime.
	resp, err = e.Execute(p.Name, "look", "sid-fred", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	testutil.AssertEqual(t, "message", messagesContain(resp.Messages, "Town Square"), true)
	testutil.AssertEqual(t, "queue depth", len(sess.Queue), 1)
}

func TestExecuteQueueOverflow(t *testing.T) {
	e, _, _ := newTestExecutor(t)
	p := joinPlayer(e, "Fred")
	p.SetRoundtime(e.now(), 5*time.Second, "hard")

	for i := 0; i < e.World.Settings.CommandQueueDepth; i++ {
		_, err := e.Execute(p.Name, "go north", "sid-fred", "")
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
	}
	resp, err := e.Execute(p.Name, "go north", "sid-fred", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	testutil.AssertEqual(t, "message", messagesContain(resp.Messages, "(Too many commands queued; this one was dropped.)"), true)

	sess := e.World.Session(p.Name)
	testutil.AssertEqual(t, "queue depth", len(sess.Queue), e.World.Settings.CommandQueueDepth)
}

func TestExecuteMovement(t *testing.T) {
	e, _, notify := newTestExecutor(t)
	p := joinPlayer(e, "Fred")
	watcher := joinPlayer(e, "Wilma")

	resp, err := e.Execute(p.Name, "north", "sid-fred", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	testutil.AssertEqual(t, "room", p.RoomId.String(), "north_road")
	testutil.AssertEqual(t, "message", messagesContain(resp.Messages, "North Road"), true)

	// The player left behind sees the departure broadcast.
	texts := notify.textsFor(watcher.Name)
	testutil.AssertEqual(t, "message", messagesContain(texts, "Fred"), true)
}

func TestSayReachesRoomOnly(t *testing.T) {
	e, _, notify := newTestExecutor(t)
	p := joinPlayer(e, "Fred")
	near := joinPlayer(e, "Wilma")
	far := joinPlayer(e, "Barney")
	e.World.MoveIndex(far.Name, far.RoomId, "north_road")
	far.RoomId = "north_road"

	resp, err := e.Execute(p.Name, "say hello there", "sid-fred", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	testutil.AssertEqual(t, "message", messagesContain(resp.Messages, `You say, "hello there"`), true)

	testutil.AssertEqual(t, "message", messagesContain(notify.textsFor(near.Name), `Fred says, "hello there"`), true)
	testutil.AssertEqual(t, "message", messagesContain(notify.textsFor(far.Name), "hello there"), false)
}

func TestCriticalVerbSaves(t *testing.T) {
	e, store, _ := newTestExecutor(t)
	p := joinPlayer(e, "Fred")

	_, err := e.Execute(p.Name, "save", "sid-fred", "")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	saved, err := store.GetPlayer("fred")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	testutil.AssertEqual(t, "saved player", saved, p)
}
