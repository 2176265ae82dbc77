package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/emberfallmud/emberfall/internal/combat"
	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/loot"
	"github.com/emberfallmud/emberfall/internal/messaging"
	"github.com/emberfallmud/emberfall/internal/storage"
)

func handleAttack(c *Context) error {
	if len(c.Args) == 0 {
		return NewUserError("Attack what?")
	}
	p := c.Player
	word := strings.Join(c.Args, " ")

	m := c.Room.FindMob(word)
	if m == nil {
		return NewUserError(fmt.Sprintf("You don't see a **%s** here to attack.", word))
	}
	if c.World.Defeated(m.Uid) != nil {
		return NewUserError(fmt.Sprintf("The %s is already dead.", m.Name))
	}

	attacker := combat.PlayerProfile(c.World.Library, p, c.Now)
	defender := combat.MobProfile(c.World.Library, m)
	res := combat.Resolve(attacker, defender, c.World.Library, c.Ex.Rules, c.Ex.Roll)

	p.Queue(res.AttemptAttacker)
	p.Queue(res.RollString)
	p.Queue(res.ResultAttacker)
	if res.CriticalMsg != "" {
		p.Queue(res.CriticalMsg)
	}

	c.Ex.broadcast(c.Room.Id, messaging.Envelope{
		Type: messaging.EventCombatBroadcast,
		Text: res.AttemptRoom,
	}, game.Key(p.Name))
	if res.BroadcastResult != "" {
		c.Ex.broadcast(c.Room.Id, messaging.Envelope{
			Type: messaging.EventCombatBroadcast,
			Text: res.BroadcastResult,
		}, game.Key(p.Name))
	}

	rt := time.Duration(res.RoundtimeSeconds * float64(time.Second))
	p.SetRoundtime(c.Now, rt, "hard")

	c.World.SetCombatState(game.Key(p.Name), &game.CombatState{
		Type:       game.StateTypeCombat,
		TargetId:   m.Uid,
		NextAction: c.Now.Add(rt),
		RoomId:     c.Room.Id,
	})
	if c.World.CombatState(m.Uid) == nil {
		// The defender swings back on a shorter fuse.
		c.World.SetCombatState(m.Uid, &game.CombatState{
			Type:       game.StateTypeCombat,
			TargetId:   game.Key(p.Name),
			NextAction: c.Now.Add(rt / 2),
			RoomId:     c.Room.Id,
		})
		socialAggro(c, m)
	}

	if !res.Hit || res.Damage <= 0 {
		return nil
	}

	hp := c.World.DamageMob(m.Uid, m.MaxHP, res.Damage)
	if res.Fatal || hp <= 0 {
		p.Queue(fmt.Sprintf("You have defeated the %s!", m.Name))
		c.Ex.KillMob(c, m)
		return nil
	}
	p.Queue(fmt.Sprintf("The %s has %d HP remaining.", m.Name, hp))
	return nil
}

// KillMob runs the full mob death sequence: experience shares,
// faction standing, quest counters, corpse creation, and respawn
// scheduling. The caller holds no room lock.
func (e *Executor) KillMob(c *Context, m *game.Mob) {
	w := c.World
	p := c.Player
	lib := w.Library

	mobLevel := 0
	var family string
	if t := m.Template; t != nil {
		mobLevel = t.Level
		family = t.Family
	}

	// Experience shares for every group member present.
	recipients := []*game.Player{p}
	if p.GroupId != "" {
		if g := w.Group(p.GroupId); g != nil {
			recipients = recipients[:0]
			for _, name := range g.Members {
				member := w.Player(name)
				if member != nil && member.RoomId == c.Room.Id {
					recipients = append(recipients, member)
				}
			}
			if len(recipients) == 0 {
				recipients = []*game.Player{p}
			}
		}
	}
	for _, member := range recipients {
		award := game.KillExperience(member.Level, mobLevel, len(recipients))
		added, saturated := game.GrantExperience(w, member, award)
		if added > 0 {
			member.Queue(fmt.Sprintf("You gain %d experience.", added))
		}
		if saturated {
			member.Queue("Your mind cannot hold any more experience.")
		}
		member.MarkDirty()
	}

	// Faction fallout lands on the killer alone.
	if m.Faction != "" {
		if f := lib.Factions.Get(storage.Identifier(m.Faction)); f != nil {
			if p.FactionStanding == nil {
				p.FactionStanding = map[string]int{}
			}
			loss := f.StandingLossOnKill
			if loss == 0 {
				loss = 5
			}
			p.FactionStanding[m.Faction] -= loss
			gain := f.StandingGainForRivals
			if gain == 0 {
				gain = 2
			}
			for _, rival := range f.Rivals {
				p.FactionStanding[rival] += gain
			}
			p.MarkDirty()
		}
	}

	if family != "" {
		if p.QuestCounters == nil {
			p.QuestCounters = map[string]int{}
		}
		p.QuestCounters[family]++
		p.MarkDirty()
	}

	corpse := loot.NewCorpse(lib, m, c.Now, w.Settings.CorpseDecay, e.LootRoll)
	c.Room.Corpses = append(c.Room.Corpses, corpse)
	c.Room.RemoveMob(m.Uid)

	w.UnregisterMob(m.Uid)
	w.RemoveMobHP(m.Uid)
	w.StopCombatBetween(m.Uid, game.Key(p.Name))

	respawn := &game.DefeatedMob{
		RoomId:     c.Room.Id,
		TemplateId: m.TemplateId,
		EligibleAt: c.Now.Add(w.Settings.RespawnDefault),
		Chance:     w.Settings.RespawnChance,
		Faction:    m.Faction,
	}
	if t := m.Template; t != nil && t.Respawn != nil {
		if t.Respawn.Seconds > 0 {
			respawn.EligibleAt = c.Now.Add(time.Duration(t.Respawn.Seconds) * time.Second)
		}
		if t.Respawn.ChancePerTick > 0 {
			respawn.Chance = t.Respawn.ChancePerTick
		}
	}
	w.SetDefeated(m.Uid, respawn)

	if e.Treasure != nil {
		e.Treasure.RecordKill(m.TemplateId)
	}

	p.Queue(fmt.Sprintf("The corpse of a %s falls to the ground.", m.Name))
	e.broadcast(c.Room.Id, messaging.Envelope{
		Type: messaging.EventCombatDeath,
		Text: fmt.Sprintf("The %s falls to the ground, dead.", m.Name),
	}, game.Key(p.Name))
}

// KillPlayer moves a slain player to the death altar and applies the
// death penalties. Runs for both verb-driven and scheduler-driven
// deaths, so it takes the world and time explicitly.
func (e *Executor) KillPlayer(w *game.World, p *game.Player, now time.Time) {
	key := game.Key(p.Name)

	// Sever every engagement pointing at the dead player.
	w.RemoveCombatState(key)
	for id, cs := range w.CombatStates() {
		if cs.TargetId == key {
			w.RemoveCombatState(id)
		}
	}

	p.Queue("The world goes black as you suffer a fatal wound...")

	e.broadcast(p.RoomId, messaging.Envelope{
		Type: messaging.EventCombatDeath,
		Text: fmt.Sprintf("**%s has been DEFEATED!**", p.Name),
	}, key)

	old := p.RoomId
	p.RoomId = w.Settings.DeathRoom
	w.MoveIndex(p.Name, old, p.RoomId)
	p.VisitRoom(p.RoomId)

	conLoss := p.ApplyDeathPenalties()
	p.HP = 1
	p.ClampVitals()
	p.MarkDirty()

	p.Queue("You have been slain... You awaken on a cold stone altar, feeling weak.")
	if conLoss > 0 {
		e.send(key, messaging.Envelope{
			Type: messaging.EventSystemError,
			Text: fmt.Sprintf("You have lost %d Constitution.", conLoss),
		})
	}
	e.send(key, messaging.Envelope{
		Type: messaging.EventSystemError,
		Text: "You feel the sting of death... (XP gain is reduced)",
	})

	e.save(p)
}

// socialAggro makes same-faction mobs in the room pile onto the player
// who just engaged their kin.
func socialAggro(c *Context, target *game.Mob) {
	if target.Faction == "" {
		return
	}
	p := c.Player

	for _, m := range c.Room.Mobs {
		if m.Uid == target.Uid || m.Faction != target.Faction {
			continue
		}
		if cs := c.World.CombatState(m.Uid); cs != nil && cs.Type == game.StateTypeCombat {
			continue
		}

		p.Queue(fmt.Sprintf("The %s comes to the aid of its kin!", m.Name))
		c.Ex.broadcast(c.Room.Id, messaging.Envelope{
			Type: messaging.EventCombatBroadcast,
			Text: fmt.Sprintf("The %s joins the fight!", m.Name),
		}, game.Key(p.Name))

		rt := combat.Roundtime(m.Stat("agility"), 3)
		c.World.SetCombatState(m.Uid, &game.CombatState{
			Type:       game.StateTypeCombat,
			TargetId:   game.Key(p.Name),
			NextAction: c.Now.Add(time.Duration(rt / 2 * float64(time.Second))),
			RoomId:     c.Room.Id,
		})
		c.World.MobHP(m.Uid, m.MaxHP)
	}
}
