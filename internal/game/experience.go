package game

import "github.com/emberfallmud/emberfall/internal/assets"

// Experience flows through two pools: kills deposit into the field
// (unabsorbed) pool, and the global tick drains it into absorbed
// experience, against which level-ups are checked.

// GrantExperience routes a nominal award. Band members bank it for
// the shared payout tick; everyone else accrues field experience
// directly.
func GrantExperience(w *World, p *Player, nominal int) (added int, saturated bool) {
	if nominal <= 0 {
		return 0, false
	}
	if p.BandId != "" && w.Band(p.BandId) != nil {
		w.BankBandXP(p.BandId, nominal)
		return 0, false
	}
	return p.AddFieldExp(nominal)
}

// FieldExpCap is how much unabsorbed experience the mind can hold.
func (p *Player) FieldExpCap() int {
	return 800 + p.Stat("LOG") + p.Stat("DIS")
}

// AddFieldExp accrues experience into the field pool. A fuller pool
// learns slower: every 100 points already held shaves 5% off the
// incoming amount. Returns what was actually added and whether the
// pool saturated.
func (p *Player) AddFieldExp(amount int) (added int, saturated bool) {
	if amount <= 0 {
		return 0, false
	}

	decline := 1.0 - 0.05*float64(p.UnabsorbedExp/100)
	if decline < 0 {
		decline = 0
	}
	added = int(float64(amount) * decline)

	limit := p.FieldExpCap()
	if p.UnabsorbedExp+added >= limit {
		added = limit - p.UnabsorbedExp
		saturated = true
	}
	if added < 0 {
		added = 0
	}

	p.UnabsorbedExp += added
	if added > 0 {
		p.MarkDirty()
	}
	return added, saturated
}

// AbsorbPulse moves experience from the field pool into absorbed
// experience. Rate scales with LOG and with resting on a node or in
// town. While death-sting points remain, half of each pulse burns
// sting instead of teaching. Returns the absorbed amount.
func (p *Player) AbsorbPulse(onNode, inTown bool) int {
	if p.UnabsorbedExp <= 0 {
		return 0
	}

	rate := 20 + p.StatBonus("LOG")
	if rate < 5 {
		rate = 5
	}
	if onNode {
		rate += 15
	} else if inTown {
		rate += 5
	}

	pulled := rate
	if pulled > p.UnabsorbedExp {
		pulled = p.UnabsorbedExp
	}
	p.UnabsorbedExp -= pulled

	if p.DeathStingPoints > 0 {
		burn := pulled / 2
		if burn > p.DeathStingPoints {
			burn = p.DeathStingPoints
		}
		p.DeathStingPoints -= burn
		pulled -= burn
	}

	p.Experience += pulled
	p.recoverCon(pulled)
	p.MarkDirty()
	return pulled
}

// recoverCon credits absorbed experience toward constitution lost to
// death; every 2000 points restores one point.
func (p *Player) recoverCon(points int) {
	if p.ConLost <= 0 {
		return
	}
	p.ConRecovery += points
	for p.ConRecovery >= 2000 && p.ConLost > 0 {
		p.ConRecovery -= 2000
		p.Stats["CON"]++
		p.ConLost--
	}
	if p.ConLost == 0 {
		p.ConRecovery = 0
	}
}

// ApplyDeathPenalties runs the character-side bookkeeping of dying:
// hp to zero, prone, recent-death counter, bounded CON drain, and
// death-sting points that dampen experience until burned off.
// Returns the CON lost to this death.
func (p *Player) ApplyDeathPenalties() int {
	p.HP = 0
	p.Posture = "prone"

	p.DeathsRecent++
	if p.DeathsRecent > 5 {
		p.DeathsRecent = 5
	}

	conLoss := 3 + p.DeathsRecent
	if remaining := 25 - p.ConLost; conLoss > remaining {
		conLoss = remaining
	}
	if conLoss < 0 {
		conLoss = 0
	}
	p.Stats["CON"] -= conLoss
	p.ConLost += conLoss

	p.DeathStingPoints += 2000
	p.MarkDirty()
	return conLoss
}

// MindStatus describes how full the field pool is, mildest first.
var mindStatuses = []string{
	"clear as a bell",
	"fresh and clear",
	"clear",
	"muddled",
	"becoming numbed",
	"numbed",
	"must rest",
	"completely saturated",
}

// MindStatus maps the field-pool fraction onto the status ladder.
func (p *Player) MindStatus() string {
	limit := p.FieldExpCap()
	if limit <= 0 || p.UnabsorbedExp <= 0 {
		return mindStatuses[0]
	}
	frac := float64(p.UnabsorbedExp) / float64(limit)
	idx := int(frac * float64(len(mindStatuses)))
	if idx >= len(mindStatuses) {
		idx = len(mindStatuses) - 1
	}
	return mindStatuses[idx]
}

// ExpToNext returns absorbed experience still needed for the next
// level, or 0 when the level table is exhausted.
func (p *Player) ExpToNext(table *assets.Leveling) int {
	if table == nil {
		return 0
	}
	next := table.NextLevelAt(p.Level)
	if next < 0 {
		return 0
	}
	remaining := next - p.Experience
	if remaining < 0 {
		return 0
	}
	return remaining
}

// KillExperience computes the nominal experience for defeating a mob,
// scaled by the level gap and the size of the killing group. The
// total carries a 10% bonus per extra member and splits evenly,
// rounding down.
func KillExperience(playerLevel, mobLevel, groupSize int) int {
	diff := playerLevel - mobLevel

	var base int
	switch {
	case diff >= 10:
		return 0
	case diff >= 1:
		base = 100 - 10*diff
	case diff == 0:
		base = 100
	case diff >= -4:
		base = 100 + 10*(-diff)
	default:
		base = 150
	}

	if groupSize <= 1 {
		return base
	}
	total := float64(base) * (1.0 + 0.1*float64(groupSize-1))
	return int(total) / groupSize
}

// PayoutBands flushes every band's experience bank to its online
// members, skipping anyone still under death sting. Uneven splits
// round down; the remainder stays banked for the next payout.
func PayoutBands(w *World) {
	for _, b := range w.Bands() {
		w.bandMu.Lock()
		bank := b.XPBank
		w.bandMu.Unlock()
		if bank <= 0 {
			continue
		}

		var eligible []*Player
		for _, m := range b.Members {
			p := w.Player(m)
			if p != nil && p.DeathStingPoints == 0 {
				eligible = append(eligible, p)
			}
		}
		if len(eligible) == 0 {
			continue
		}

		share := bank / len(eligible)
		if share == 0 {
			continue
		}
		for _, p := range eligible {
			p.AddFieldExp(share)
		}

		w.bandMu.Lock()
		b.XPBank -= share * len(eligible)
		w.bandMu.Unlock()
	}
}
