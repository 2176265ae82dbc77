package storage

import (
	"encoding/json"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestExtensionState_RoundTrip(t *testing.T) {
	var e ExtensionState

	err := e.Set("ambient", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = e.Set("title", "the Bold")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var ambient bool
	found, err := e.Get("ambient", &ambient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "found", found, true)
	testutil.AssertEqual(t, "ambient", ambient, true)

	var title string
	found, err = e.Get("title", &title)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "found", found, true)
	testutil.AssertEqual(t, "title", title, "the Bold")
}

func TestExtensionState_GetMissing(t *testing.T) {
	var e ExtensionState

	var out int
	found, err := e.Get("nope", &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "found", found, false)
}

func TestExtensionState_Bool(t *testing.T) {
	tests := map[string]struct {
		state ExtensionState
		key   string
		def   bool
		exp   bool
	}{
		"unset uses default true": {
			state: ExtensionState{},
			key:   "ambient",
			def:   true,
			exp:   true,
		},
		"unset uses default false": {
			state: ExtensionState{},
			key:   "ambient",
			exp:   false,
		},
		"set false overrides default": {
			state: ExtensionState{"ambient": json.RawMessage(`false`)},
			key:   "ambient",
			def:   true,
			exp:   false,
		},
		"malformed falls back to default": {
			state: ExtensionState{"ambient": json.RawMessage(`"what"`)},
			key:   "ambient",
			def:   true,
			exp:   true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "value", tt.state.Bool(tt.key, tt.def), tt.exp)
		})
	}
}

func TestExtensionState_Delete(t *testing.T) {
	e := ExtensionState{"gone": json.RawMessage(`1`)}
	e.Delete("gone")

	var out int
	found, _ := e.Get("gone", &out)
	testutil.AssertEqual(t, "found after delete", found, false)

	// Delete on nil map is a no-op
	var nilState ExtensionState
	nilState.Delete("anything")
}
