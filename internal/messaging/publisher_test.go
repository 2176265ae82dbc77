package messaging

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/emberfallmud/emberfall/internal/game"
)

type recordingSender struct {
	subjects []string
	frames   [][]byte
}

func (r *recordingSender) Publish(subject string, data []byte) error {
	r.subjects = append(r.subjects, subject)
	r.frames = append(r.frames, data)
	return nil
}

func testWorld(names ...string) *game.World {
	w := game.NewWorld(nil, game.DefaultSettings())
	for _, name := range names {
		p := game.NewPlayer(name, "acct", "town_square")
		w.SetSession(&game.Session{Player: p, Sid: "sid-" + name})
		w.AddPlayerToIndex(name, "town_square")
	}
	return w
}

func TestSendSubject(t *testing.T) {
	rec := &recordingSender{}
	pub := NewPublisher(rec)

	err := pub.Send("Aralyn", Envelope{Type: EventMessage, Text: "hello"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	testutil.AssertEqual(t, "subject", rec.subjects[0], "player.aralyn")

	var env Envelope
	if err := json.Unmarshal(rec.frames[0], &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	testutil.AssertEqual(t, "type", env.Type, EventMessage)
	testutil.AssertEqual(t, "text", env.Text, "hello")
}

func TestBroadcastRoomSkips(t *testing.T) {
	w := testWorld("Aralyn", "Borin", "Celia")
	rec := &recordingSender{}
	pub := NewPublisher(rec)

	err := pub.BroadcastRoom(w, "town_square", Envelope{Type: EventMessage, Text: "A bell tolls."}, "Borin")
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	sort.Strings(rec.subjects)
	testutil.AssertEqual(t, "recipients", len(rec.subjects), 2)
	testutil.AssertEqual(t, "first", rec.subjects[0], "player.aralyn")
	testutil.AssertEqual(t, "second", rec.subjects[1], "player.celia")
}

func TestBroadcastHonorsFlags(t *testing.T) {
	w := testWorld("Aralyn", "Borin")
	if err := w.Player("Borin").Flags.Set("ambient", false); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	rec := &recordingSender{}
	pub := NewPublisher(rec)

	err := pub.BroadcastRoom(w, "town_square", Envelope{Type: EventAmbient, Text: "Rain patters on the cobblestones."})
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	testutil.AssertEqual(t, "recipients", len(rec.subjects), 1)
	testutil.AssertEqual(t, "subject", rec.subjects[0], "player.aralyn")
}

func TestShouldDeliver(t *testing.T) {
	tests := map[string]struct {
		eventType string
		flag      string
		value     bool
		exp       bool
	}{
		"message always":      {eventType: EventMessage, exp: true},
		"ambient default on":  {eventType: EventAmbient, exp: true},
		"ambient off":         {eventType: EventAmbientMove, flag: "ambient", value: false, exp: false},
		"death default on":    {eventType: EventCombatDeath, exp: true},
		"death off":           {eventType: EventCombatDeath, flag: "showdeath", value: false, exp: false},
		"vitals ignore flags": {eventType: EventUpdateVitals, flag: "ambient", value: false, exp: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			p := game.NewPlayer("Aralyn", "acct", "town_square")
			if tc.flag != "" {
				if err := p.Flags.Set(tc.flag, tc.value); err != nil {
					t.Fatalf("set flag: %v", err)
				}
			}
			testutil.AssertEqual(t, "deliver", ShouldDeliver(tc.eventType, p), tc.exp)
		})
	}
}
