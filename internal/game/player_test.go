package game

import (
	"testing"
	"time"

	"github.com/pixil98/go-testutil"

	"github.com/emberfallmud/emberfall/internal/assets"
)

func testPlayer(name string) *Player {
	p := NewPlayer(name, "acct", "inn_room")
	p.GameState = StatePlaying
	return p
}

func TestReceiveItemPlacement(t *testing.T) {
	p := testPlayer("Aralyn")

	dagger := assets.ItemRef{ItemId: "dagger", Uid: "d1"}
	sword := assets.ItemRef{ItemId: "short_sword", Uid: "s1"}
	club := assets.ItemRef{ItemId: "club", Uid: "c1"}

	testutil.AssertEqual(t, "first item", p.ReceiveItem(dagger), "mainhand")
	testutil.AssertEqual(t, "second item", p.ReceiveItem(sword), "offhand")
	testutil.AssertEqual(t, "third item", p.ReceiveItem(club), "inventory")

	testutil.AssertEqual(t, "mainhand", p.Wielded("mainhand").Uid, "d1")
	testutil.AssertEqual(t, "offhand", p.Wielded("offhand").Uid, "s1")
	testutil.AssertEqual(t, "inventory size", len(p.Inventory), 1)
}

func TestRemoveItem(t *testing.T) {
	tests := map[string]struct {
		place    func(p *Player, ref assets.ItemRef)
		remove   assets.ItemRef
		expFound bool
	}{
		"from mainhand": {
			place:    func(p *Player, ref assets.ItemRef) { p.Equip("mainhand", ref) },
			remove:   assets.ItemRef{ItemId: "dagger", Uid: "d1"},
			expFound: true,
		},
		"from inventory": {
			place:    func(p *Player, ref assets.ItemRef) { p.Inventory = append(p.Inventory, ref) },
			remove:   assets.ItemRef{ItemId: "dagger", Uid: "d1"},
			expFound: true,
		},
		"wrong instance": {
			place:    func(p *Player, ref assets.ItemRef) { p.Equip("mainhand", ref) },
			remove:   assets.ItemRef{ItemId: "dagger", Uid: "other"},
			expFound: false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := testPlayer("Aralyn")
			tt.place(p, assets.ItemRef{ItemId: "dagger", Uid: "d1"})

			testutil.AssertEqual(t, "removed", p.RemoveItem(tt.remove), tt.expFound)
			testutil.AssertEqual(t, "still has", p.HasItem(assets.ItemRef{ItemId: "dagger", Uid: "d1"}), !tt.expFound)
		})
	}
}

func TestApplyWound(t *testing.T) {
	tests := map[string]struct {
		existing   int
		bandaged   bool
		rank       int
		expRank    int
		expBandage bool
	}{
		"fresh wound":          {existing: 0, rank: 2, expRank: 2},
		"aggravate":            {existing: 1, rank: 1, expRank: 2},
		"aggravate tears wrap": {existing: 2, bandaged: true, rank: 1, expRank: 3, expBandage: false},
		"caps at three":        {existing: 3, rank: 3, expRank: 3},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := testPlayer("Aralyn")
			if tt.existing > 0 {
				p.Wounds["chest"] = tt.existing
			}
			if tt.bandaged {
				p.Bandaged = map[string]bool{"chest": true}
			}

			got := p.ApplyWound("chest", tt.rank)

			testutil.AssertEqual(t, "rank", got, tt.expRank)
			testutil.AssertEqual(t, "bandaged", p.Bandaged["chest"], tt.expBandage)
		})
	}
}

func TestClampVitals(t *testing.T) {
	p := testPlayer("Aralyn")
	p.HP = p.MaxHP() + 50
	p.Mana = -3

	p.ClampVitals()

	testutil.AssertEqual(t, "hp", p.HP, p.MaxHP())
	testutil.AssertEqual(t, "mana", p.Mana, 0)
}

func TestHardRoundtime(t *testing.T) {
	p := testPlayer("Aralyn")
	now := time.Now()

	p.SetRoundtime(now, 3*time.Second, "hard")

	testutil.AssertEqual(t, "during", p.InHardRT(now.Add(time.Second)), true)
	testutil.AssertEqual(t, "after", p.InHardRT(now.Add(4*time.Second)), false)
}

func TestBuffExpiry(t *testing.T) {
	p := testPlayer("Aralyn")
	now := time.Now()
	p.Buffs = []Buff{
		{Name: "bravery", ASBonus: 15, ExpiresAt: now.Add(time.Minute)},
		{Name: "faded", ASBonus: 10, ExpiresAt: now.Add(-time.Second)},
	}

	testutil.AssertEqual(t, "as bonus", p.BuffAS(now), 15)
	testutil.AssertEqual(t, "remaining buffs", len(p.Buffs), 1)
}

func TestMessageHistoryBounded(t *testing.T) {
	p := testPlayer("Aralyn")
	for i := 0; i < messageHistoryCap+10; i++ {
		p.Queue("line")
	}

	testutil.AssertEqual(t, "history length", len(p.MessageHistory), messageHistoryCap)
	testutil.AssertEqual(t, "buffered", len(p.DrainMessages()), messageHistoryCap+10)
	testutil.AssertEqual(t, "drained", len(p.DrainMessages()), 0)
}

func TestStatBonusUsesRace(t *testing.T) {
	p := testPlayer("Aralyn")
	p.Stats["STR"] = 70
	p.SetRace(&assets.Race{Name: "Dwarf", StatModifiers: map[string]int{"STR": 5}})

	testutil.AssertEqual(t, "bonus", p.StatBonus("STR"), 15)
}
