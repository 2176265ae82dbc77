package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"

	"github.com/emberfallmud/emberfall/internal/game"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "world.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPlayerRoundTrip(t *testing.T) {
	s := testStore(t)

	p := game.NewPlayer("Aralyn", "acct-1", "town_square")
	p.Level = 3
	p.Skills["one_handed_edged"] = 12
	p.Wounds["chest"] = 2

	if err := s.PutPlayer(p); err != nil {
		t.Fatalf("put player: %v", err)
	}

	// Lookup is case-folded.
	got, err := s.GetPlayer("ARALYN")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	if got == nil {
		t.Fatal("player not found")
	}

	testutil.AssertEqual(t, "name", got.Name, "Aralyn")
	testutil.AssertEqual(t, "level", got.Level, 3)
	testutil.AssertEqual(t, "room", got.RoomId, p.RoomId)
	testutil.AssertEqual(t, "skill", got.Skills["one_handed_edged"], 12)
	testutil.AssertEqual(t, "wound", got.Wounds["chest"], 2)
}

func TestGetPlayerMissing(t *testing.T) {
	s := testStore(t)

	got, err := s.GetPlayer("nobody")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	testutil.AssertEqual(t, "missing", got == nil, true)
	testutil.AssertEqual(t, "exists", s.PlayerExists("nobody"), false)
}

func TestAccountAuth(t *testing.T) {
	s := testStore(t)

	if err := s.EnsureAccount("keeper", "hunter2", true); err != nil {
		t.Fatalf("ensure account: %v", err)
	}
	// A second call must not overwrite the stored hash.
	if err := s.EnsureAccount("keeper", "different", false); err != nil {
		t.Fatalf("ensure account again: %v", err)
	}

	a, err := s.Authenticate("Keeper", "hunter2")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	testutil.AssertEqual(t, "admin", a.Admin, true)

	_, err = s.Authenticate("keeper", "wrong")
	testutil.AssertErrorContains(t, err, "bad credentials")

	_, err = s.Authenticate("ghost", "hunter2")
	testutil.AssertErrorContains(t, err, "unknown account")
}

func TestBandRoundTrip(t *testing.T) {
	s := testStore(t)

	b := &game.Band{Id: "band-1", Name: "The Emberfall Vanguard", Leader: "aralyn", Members: []string{"aralyn", "borin"}, XPBank: 120}
	if err := s.PutBand(b); err != nil {
		t.Fatalf("put band: %v", err)
	}

	bands, err := s.LoadBands()
	if err != nil {
		t.Fatalf("load bands: %v", err)
	}
	testutil.AssertEqual(t, "count", len(bands), 1)
	testutil.AssertEqual(t, "name", bands["band-1"].Name, "The Emberfall Vanguard")
	testutil.AssertEqual(t, "bank", bands["band-1"].XPBank, 120)
}

func TestWriterFlush(t *testing.T) {
	s := testStore(t)
	w := game.NewWorld(nil, game.DefaultSettings())

	p := game.NewPlayer("Aralyn", "acct-1", "town_square")
	w.SetSession(&game.Session{Player: p, Sid: "sid-1", LastSeen: time.Now()})

	writer := NewWriter(w, s, time.Minute)
	writer.Flush(context.Background())

	testutil.AssertEqual(t, "dirty cleared", p.Dirty(), false)
	testutil.AssertEqual(t, "persisted", s.PlayerExists("aralyn"), true)

	// A clean player is skipped on the next pass.
	writer.Flush(context.Background())
	testutil.AssertEqual(t, "still clean", p.Dirty(), false)
}
