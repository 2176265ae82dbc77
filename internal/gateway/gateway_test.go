package gateway

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/store"
)

type fakeBus struct {
	published map[string][]byte
}

func (b *fakeBus) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	return func() {}, nil
}

func (b *fakeBus) Publish(subject string, data []byte) error {
	if b.published == nil {
		b.published = map[string][]byte{}
	}
	b.published[subject] = data
	return nil
}

type fakeAuth struct {
	account *store.Account
}

func (a *fakeAuth) Authenticate(id, password string) (*store.Account, error) {
	if a.account != nil && a.account.Id == id {
		return a.account, nil
	}
	return nil, fmt.Errorf("authentication failed")
}

func TestHandleAuth(t *testing.T) {
	tests := map[string]struct {
		frame     AuthFrame
		account   *store.Account
		wantReply bool
		wantOk    bool
		wantAdmin bool
	}{
		"valid credentials": {
			frame:     AuthFrame{Account: "fred", Password: "secret", Sid: "s1"},
			account:   &store.Account{Id: "fred"},
			wantReply: true,
			wantOk:    true,
		},
		"admin account": {
			frame:     AuthFrame{Account: "gm", Password: "secret", Sid: "s2"},
			account:   &store.Account{Id: "gm", Admin: true},
			wantReply: true,
			wantOk:    true,
			wantAdmin: true,
		},
		"bad credentials": {
			frame:     AuthFrame{Account: "mallory", Password: "guess", Sid: "s3"},
			wantReply: true,
			wantOk:    false,
		},
		"missing sid dropped": {
			frame:     AuthFrame{Account: "fred", Password: "secret"},
			account:   &store.Account{Id: "fred"},
			wantReply: false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			bus := &fakeBus{}
			g := &Gateway{Bus: bus, Accounts: &fakeAuth{account: tt.account}}

			data, err := json.Marshal(tt.frame)
			if err != nil {
				t.Fatalf("marshal frame: %v", err)
			}
			g.handleAuth(data)

			reply, ok := bus.published["auth."+tt.frame.Sid]
			testutil.AssertEqual(t, "reply published", ok, tt.wantReply)
			if !ok {
				return
			}

			var result AuthResult
			if err := json.Unmarshal(reply, &result); err != nil {
				t.Fatalf("unmarshal reply: %v", err)
			}
			testutil.AssertEqual(t, "ok", result.Ok, tt.wantOk)
			testutil.AssertEqual(t, "admin", result.Admin, tt.wantAdmin)
			if !tt.wantOk {
				testutil.AssertEqual(t, "error message", result.Error, "Invalid account name or password.")
			}
		})
	}
}

func TestHandleEnqueues(t *testing.T) {
	w := game.NewWorld(nil, game.DefaultSettings())
	g := &Gateway{World: w}

	tests := map[string]struct {
		payload    string
		wantEvents int
	}{
		"valid frame":    {`{"player":"fred","sid":"s1","line":"look"}`, 1},
		"missing player": {`{"sid":"s1","line":"look"}`, 0},
		"malformed json": {`{nope`, 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			g.handle([]byte(tt.payload))
			testutil.AssertEqual(t, "event count", len(w.DrainEvents(10)), tt.wantEvents)
		})
	}
}
