package sim

import (
	"fmt"
	"time"

	"github.com/emberfallmud/emberfall/internal/combat"
	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/messaging"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// combatPass runs one round of mob-initiated attacks. Player attacks
// resolve synchronously in the ATTACK handler; a player's combat state
// only marks them as engaged so mobs keep swinging back.
func (s *Scheduler) combatPass(now time.Time) {
	w := s.World

	for attackerId, cs := range w.CombatStates() {
		if cs.Type == game.StateTypeRoundtime {
			if !now.Before(cs.NextAction) {
				w.RemoveCombatState(attackerId)
			}
			continue
		}
		if cs.Type != game.StateTypeCombat || now.Before(cs.NextAction) {
			continue
		}
		if w.Player(attackerId) != nil {
			continue
		}

		roomId, alive := w.MobRoom(attackerId)
		if !alive {
			w.RemoveCombatState(attackerId)
			continue
		}

		var attacker *game.Mob
		w.WithRoom(roomId, func(r *game.Room) error {
			attacker = r.MobByUid(attackerId)
			return nil
		})
		if attacker == nil {
			w.RemoveCombatState(attackerId)
			continue
		}

		if target := w.Player(cs.TargetId); target != nil {
			if target.RoomId != roomId || w.Session(target.Name) == nil {
				w.StopCombatBetween(attackerId, cs.TargetId)
				continue
			}
			cs.RoomId = roomId
			s.mobSwingsPlayer(now, cs, attacker, target)
			continue
		}

		targetRoom, ok := w.MobRoom(cs.TargetId)
		if !ok || targetRoom != roomId {
			w.StopCombatBetween(attackerId, cs.TargetId)
			continue
		}
		s.mobSwingsMob(now, cs, attacker, roomId)
	}
}

func (s *Scheduler) mobSwingsPlayer(now time.Time, cs *game.CombatState, m *game.Mob, p *game.Player) {
	w := s.World
	lib := w.Library

	att := combat.MobProfile(lib, m)
	def := combat.PlayerProfile(lib, p, now)
	res := combat.Resolve(att, def, lib, s.Ex.Rules, s.Ex.Roll)

	p.Queue(res.AttemptDefender)
	p.Queue(res.RollString)
	p.Queue(res.ResultDefender)
	if res.Hit && res.CriticalMsg != "" {
		p.Queue(res.CriticalMsg)
	}

	broadcastText := res.AttemptRoom + "\n" + res.BroadcastResult
	if res.Hit {
		broadcastText = res.BroadcastResult
		if res.CriticalMsg != "" {
			broadcastText += "\n" + res.CriticalMsg
		}
	}
	s.broadcast(cs.RoomId, messaging.Envelope{
		Type: messaging.EventCombatBroadcast,
		Text: broadcastText,
	}, p.Name)

	if res.Hit && res.Damage > 0 {
		p.HP -= res.Damage
		if res.Fatal || p.HP <= 0 {
			s.Ex.KillPlayer(w, p, now)
			return
		}
		p.MarkDirty()
		p.Queue(fmt.Sprintf("(You have %d/%d HP remaining)", p.HP, p.MaxHP()))
		s.send(p.Name, messaging.Envelope{
			Type:    messaging.EventUpdateVitals,
			Payload: game.Snapshot(lib, p, now),
		})
	}

	cs.NextAction = now.Add(mobRoundtime(m))
}

func (s *Scheduler) mobSwingsMob(now time.Time, cs *game.CombatState, m *game.Mob, roomId storage.Identifier) {
	w := s.World
	lib := w.Library

	var target *game.Mob
	w.WithRoom(roomId, func(r *game.Room) error {
		target = r.MobByUid(cs.TargetId)
		return nil
	})
	if target == nil {
		w.StopCombatBetween(m.Uid, cs.TargetId)
		return
	}

	att := combat.MobProfile(lib, m)
	def := combat.MobProfile(lib, target)
	res := combat.Resolve(att, def, lib, s.Ex.Rules, s.Ex.Roll)

	broadcastText := res.AttemptRoom + "\n" + res.BroadcastResult
	if res.Hit {
		broadcastText = res.BroadcastResult
	}
	s.broadcast(roomId, messaging.Envelope{
		Type: messaging.EventCombatBroadcast,
		Text: broadcastText,
	})

	if res.Hit && res.Damage > 0 {
		hp := w.DamageMob(target.Uid, target.MaxHP, res.Damage)
		if res.Fatal || hp <= 0 {
			s.mobDefeated(now, roomId, target)
			return
		}
	}

	cs.NextAction = now.Add(mobRoundtime(m))
}

// mobDefeated handles a mob falling to another mob. Player kills go
// through the ATTACK handler, which also grants experience and loot.
func (s *Scheduler) mobDefeated(now time.Time, roomId storage.Identifier, m *game.Mob) {
	w := s.World

	s.broadcast(roomId, messaging.Envelope{
		Type: messaging.EventCombatDeath,
		Text: fmt.Sprintf("**The %s has been DEFEATED!**", m.Name),
	})

	respawn := &game.DefeatedMob{
		RoomId:     roomId,
		TemplateId: m.TemplateId,
		Type:       "monster",
		EligibleAt: now.Add(w.Settings.RespawnDefault),
		Chance:     w.Settings.RespawnChance,
		Faction:    m.Faction,
	}
	if t := m.Template; t != nil && t.Respawn != nil {
		if t.Respawn.Seconds > 0 {
			respawn.EligibleAt = now.Add(time.Duration(t.Respawn.Seconds) * time.Second)
		}
		if t.Respawn.ChancePerTick > 0 {
			respawn.Chance = t.Respawn.ChancePerTick
		}
	}
	w.SetDefeated(m.Uid, respawn)

	w.WithRoom(roomId, func(r *game.Room) error {
		r.RemoveMob(m.Uid)
		return nil
	})
	w.UnregisterMob(m.Uid)
	w.RemoveMobHP(m.Uid)
	w.StopCombatBetween(m.Uid, "")
}

func mobRoundtime(m *game.Mob) time.Duration {
	secs := combat.Roundtime(m.Stat("agility"), 3)
	return time.Duration(secs * float64(time.Second))
}

// expireOffers sweeps pending trades and group invitations past their
// window. ACCEPT and JOIN also check lazily; the sweep keeps the maps
// from accumulating offers nobody answers.
func (s *Scheduler) expireOffers(now time.Time) {
	w := s.World

	for receiver, tr := range w.Trades() {
		if !tr.Expired(now, w.Settings.TradeExpiry) {
			continue
		}
		w.RemoveTrade(receiver)
		receiverName := receiver
		if p := w.Player(receiver); p != nil {
			receiverName = p.Name
			p.Queue(fmt.Sprintf("The offer of %s from %s has expired.", tr.ItemName, tr.FromPlayer))
		}
		if p := w.Player(tr.FromPlayer); p != nil {
			p.Queue(fmt.Sprintf("Your offer of %s to %s has expired.", tr.ItemName, receiverName))
		}
	}

	for invitee, inv := range w.Invites() {
		if !inv.Expired(now, 30*time.Second) {
			continue
		}
		w.RemoveInvite(invitee)
		if p := w.Player(invitee); p != nil {
			p.Queue(fmt.Sprintf("The group invitation from %s has expired.", inv.FromPlayer))
		}
	}
}
