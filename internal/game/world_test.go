package game

import (
	"testing"
	"time"

	"github.com/pixil98/go-testutil"

	"github.com/emberfallmud/emberfall/internal/assets"
	"github.com/emberfallmud/emberfall/internal/storage"
)

type fakeStore[T storage.ValidatingSpec] struct {
	recs map[storage.Identifier]T
}

func (s *fakeStore[T]) Save(id storage.Identifier, o T) error {
	s.recs[id] = o
	return nil
}

func (s *fakeStore[T]) Get(id storage.Identifier) T {
	return s.recs[id]
}

func (s *fakeStore[T]) GetAll() map[storage.Identifier]T {
	return s.recs
}

func (s *fakeStore[T]) Len() int {
	return len(s.recs)
}

func testLibrary() *assets.Library {
	return &assets.Library{
		Items: &fakeStore[*assets.Item]{recs: map[storage.Identifier]*assets.Item{
			"dagger": {Name: "a steel dagger", Keywords: []string{"dagger"}, Type: "weapon", Skill: "brawling"},
		}},
		Monsters: &fakeStore[*assets.Monster]{recs: map[storage.Identifier]*assets.Monster{
			"giant_rat": {
				Name:     "giant rat",
				Keywords: []string{"rat"},
				Type:     "monster",
				Level:    1,
				MaxHP:    30,
				Faction:  "vermin",
			},
		}},
		Rooms: &fakeStore[*assets.Room]{recs: map[storage.Identifier]*assets.Room{
			"town_square": {
				Name:         "Town Square",
				Descriptions: map[string]string{"default": "The square bustles."},
				Exits:        map[string]string{"north": "north_road"},
			},
			"north_road": {
				Name:         "North Road",
				Descriptions: map[string]string{"default": "A dusty road."},
				Exits:        map[string]string{"south": "town_square"},
				Mobs:         []assets.MobStub{{Uid: "rat-1", MonsterId: "giant_rat"}},
				Items:        []assets.ItemStub{{Uid: "d-1", ItemId: "dagger"}},
			},
		}},
		Leveling: &fakeStore[*assets.Leveling]{recs: map[storage.Identifier]*assets.Leveling{}},
	}
}

func TestRoomHydration(t *testing.T) {
	w := NewWorld(testLibrary(), DefaultSettings())

	r, err := w.Room("north_road")
	if err != nil {
		t.Fatalf("hydrating room: %v", err)
	}
	testutil.AssertEqual(t, "mob count", len(r.Mobs), 1)
	testutil.AssertEqual(t, "mob name", r.Mobs[0].Name, "giant rat")
	testutil.AssertEqual(t, "item count", len(r.Items), 1)

	loc, ok := w.MobRoom("rat-1")
	testutil.AssertEqual(t, "mob indexed", ok, true)
	testutil.AssertEqual(t, "mob room", loc, storage.Identifier("north_road"))

	// A second reference returns the same active room.
	again, err := w.Room("north_road")
	if err != nil {
		t.Fatalf("rehydrating room: %v", err)
	}
	testutil.AssertEqual(t, "cached", r == again, true)
}

func TestRoomHydrationSkipsDefeated(t *testing.T) {
	w := NewWorld(testLibrary(), DefaultSettings())
	w.SetDefeated("rat-1", &DefeatedMob{RoomId: "north_road", TemplateId: "giant_rat"})

	r, err := w.Room("north_road")
	if err != nil {
		t.Fatalf("hydrating room: %v", err)
	}
	testutil.AssertEqual(t, "mob count", len(r.Mobs), 0)
}

func TestUnknownRoom(t *testing.T) {
	w := NewWorld(testLibrary(), DefaultSettings())

	_, err := w.Room("nowhere")

	testutil.AssertErrorContains(t, err, "unknown room")
}

func TestSpatialIndexMove(t *testing.T) {
	w := NewWorld(testLibrary(), DefaultSettings())
	w.AddPlayerToIndex("Aralyn", "town_square")

	w.MoveIndex("Aralyn", "town_square", "north_road")

	testutil.AssertEqual(t, "old room", len(w.PlayersIn("town_square")), 0)

	names := w.PlayersIn("north_road")
	testutil.AssertEqual(t, "new room", len(names), 1)
	testutil.AssertEqual(t, "name folded", names[0], "aralyn")
}

func TestRemoveSessionClearsIndex(t *testing.T) {
	w := NewWorld(testLibrary(), DefaultSettings())
	p := testPlayer("Aralyn")
	p.RoomId = "town_square"
	w.SetSession(&Session{Player: p, Sid: "sid-1"})
	w.AddPlayerToIndex(p.Name, p.RoomId)

	s := w.RemoveSession("aralyn")

	testutil.AssertEqual(t, "session returned", s.Sid, "sid-1")
	testutil.AssertEqual(t, "index cleared", len(w.PlayersIn("town_square")), 0)
	testutil.AssertEqual(t, "session gone", w.Session("Aralyn") == nil, true)
}

func TestSinglePendingTradePerReceiver(t *testing.T) {
	w := NewWorld(testLibrary(), DefaultSettings())
	now := time.Now()

	w.SetTrade("Borin", &PendingTrade{FromPlayer: "aralyn", ItemName: "a steel dagger", OfferTime: now})
	w.SetTrade("borin", &PendingTrade{FromPlayer: "cade", ItemName: "a club", OfferTime: now})

	testutil.AssertEqual(t, "one pending", len(w.Trades()), 1)
	testutil.AssertEqual(t, "latest wins", w.Trade("BORIN").FromPlayer, "cade")

	w.RemoveTrade("borin")
	testutil.AssertEqual(t, "cleared", len(w.Trades()), 0)
}

func TestTradeExpiry(t *testing.T) {
	now := time.Now()
	tr := &PendingTrade{OfferTime: now}

	testutil.AssertEqual(t, "fresh", tr.Expired(now.Add(10*time.Second), 30*time.Second), false)
	testutil.AssertEqual(t, "stale", tr.Expired(now.Add(31*time.Second), 30*time.Second), true)
}

func TestEventQueueBoundedDrain(t *testing.T) {
	w := NewWorld(testLibrary(), DefaultSettings())
	ran := 0
	for i := 0; i < 5; i++ {
		w.Enqueue("test", func() { ran++ })
	}

	batch := w.DrainEvents(3)
	testutil.AssertEqual(t, "first batch", len(batch), 3)
	for _, ev := range batch {
		testutil.AssertEqual(t, "has id", ev.Id != "", true)
		ev.Fn()
	}

	rest := w.DrainEvents(10)
	testutil.AssertEqual(t, "second batch", len(rest), 2)
	testutil.AssertEqual(t, "ran", ran, 3)
}

func TestDamageMobSeedsFromMax(t *testing.T) {
	w := NewWorld(testLibrary(), DefaultSettings())

	remaining := w.DamageMob("rat-1", 30, 12)
	testutil.AssertEqual(t, "first hit", remaining, 18)

	remaining = w.DamageMob("rat-1", 30, 20)
	testutil.AssertEqual(t, "second hit", remaining, -2)
}

func TestMobRuntimeOverrides(t *testing.T) {
	tmpl := &assets.Monster{Name: "giant rat", MaxHP: 30, Faction: "vermin", Stats: map[string]int{"STR": 60}}

	m := HydrateMob(assets.MobStub{
		Uid:       "rat-9",
		MonsterId: "giant_rat",
		Name:      "grizzled giant rat",
		MaxHP:     45,
		Stats:     map[string]int{"STR": 70},
	}, tmpl)

	testutil.AssertEqual(t, "name override", m.Name, "grizzled giant rat")
	testutil.AssertEqual(t, "hp override", m.MaxHP, 45)
	testutil.AssertEqual(t, "stat override", m.Stat("STR"), 70)
	testutil.AssertEqual(t, "faction inherited", m.Faction, "vermin")
	testutil.AssertEqual(t, "default stat", m.Stat("AGI"), 50)

	fresh := SpawnMob("giant_rat", tmpl)
	testutil.AssertEqual(t, "fresh uid", fresh.Uid != "", true)
	testutil.AssertEqual(t, "uids differ", fresh.Uid != m.Uid, true)
}
