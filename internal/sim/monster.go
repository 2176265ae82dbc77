package sim

import (
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/messaging"
	"github.com/emberfallmud/emberfall/internal/storage"
)

const (
	defaultLeaveMessage  = "The {{.Name}} wanders {{.Exit}}."
	defaultArriveMessage = "A {{.Name}} wanders in."
)

type moveData struct {
	Name string
	Exit string
}

// renderMove expands a movement message template. Asset authors get
// the sprig function set on top of {{.Name}} and {{.Exit}}.
func renderMove(tmplText string, data moveData) string {
	t, err := template.New("move").Funcs(sprig.FuncMap()).Parse(tmplText)
	if err != nil {
		slog.Warn("bad movement template", "template", tmplText, "err", err)
		return fmt.Sprintf("The %s wanders off.", data.Name)
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		slog.Warn("movement template failed", "template", tmplText, "err", err)
		return fmt.Sprintf("The %s wanders off.", data.Name)
	}
	return b.String()
}

// monsterTick lets idle mobs wander between their allowed rooms.
func (s *Scheduler) monsterTick(now time.Time) {
	w := s.World

	for uid, roomId := range w.ActiveMobs() {
		if cs := w.CombatState(uid); cs != nil && cs.Type == game.StateTypeCombat {
			continue
		}

		var (
			mob   *game.Mob
			exits map[string]string
		)
		w.WithRoom(roomId, func(r *game.Room) error {
			if m := r.MobByUid(uid); m != nil && m.Template != nil {
				mob = m
				exits = r.Template.Exits
			}
			return nil
		})
		if mob == nil || len(exits) == 0 {
			continue
		}

		rules := mob.Template.Movement
		if rules.WanderChance <= 0 || len(rules.AllowedRooms) == 0 {
			continue
		}
		if s.Roll.Float64() >= rules.WanderChance {
			continue
		}

		dir, dest, ok := pickExit(exits, rules.AllowedRooms, s.Roll.IntN)
		if !ok {
			continue
		}
		s.moveMob(now, mob, roomId, dest, dir)
	}
}

// pickExit shuffles the room's exits and returns the first one leading
// somewhere the mob is allowed to go.
func pickExit(exits map[string]string, allowed []string, intN func(int) int) (string, storage.Identifier, bool) {
	dirs := make([]string, 0, len(exits))
	for dir := range exits {
		dirs = append(dirs, dir)
	}
	for i := len(dirs) - 1; i > 0; i-- {
		j := intN(i + 1)
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}

	for _, dir := range dirs {
		dest := exits[dir]
		for _, room := range allowed {
			if room == dest {
				return dir, storage.Identifier(dest), true
			}
		}
	}
	return "", "", false
}

func (s *Scheduler) moveMob(now time.Time, mob *game.Mob, from, to storage.Identifier, dir string) {
	w := s.World

	moved := false
	err := w.WithRooms(from, to, func(a, b *game.Room) error {
		m := a.RemoveMob(mob.Uid)
		if m == nil {
			return nil
		}
		b.Mobs = append(b.Mobs, m)
		moved = true
		return nil
	})
	if err != nil || !moved {
		return
	}
	w.RegisterMob(mob.Uid, to)

	leave := mob.Template.Movement.LeaveMessage
	if leave == "" {
		leave = defaultLeaveMessage
	}
	arrive := mob.Template.Movement.ArriveMessage
	if arrive == "" {
		arrive = defaultArriveMessage
	}

	s.broadcast(from, messaging.Envelope{
		Type: messaging.EventAmbientMove,
		Text: renderMove(leave, moveData{Name: mob.Name, Exit: dir}),
	})
	s.broadcast(to, messaging.Envelope{
		Type: messaging.EventAmbientMove,
		Text: renderMove(arrive, moveData{Name: mob.Name}),
	})

	s.mobArrivalAggro(now, mob, to)
	s.mobFactionAggro(now, mob, to)
}

// mobFactionAggro pits a newly arrived mob against any resident mob
// whose faction is kill-on-sight with its own. The resident gets the
// faster first swing.
func (s *Scheduler) mobFactionAggro(now time.Time, mob *game.Mob, roomId storage.Identifier) {
	w := s.World
	if w.CombatState(mob.Uid) != nil || mob.Faction == "" {
		return
	}
	arriver := w.Library.Factions.Get(storage.Identifier(mob.Faction))

	var foe *game.Mob
	w.WithRoom(roomId, func(r *game.Room) error {
		for _, m := range r.Mobs {
			if m.Uid == mob.Uid || m.Faction == "" || w.CombatState(m.Uid) != nil {
				continue
			}
			resident := w.Library.Factions.Get(storage.Identifier(m.Faction))
			kos := (arriver != nil && arriver.IsKOS(m.Faction)) ||
				(resident != nil && resident.IsKOS(mob.Faction))
			if kos {
				foe = m
				return nil
			}
		}
		return nil
	})
	if foe == nil {
		return
	}

	w.MobHP(mob.Uid, mob.MaxHP)
	w.MobHP(foe.Uid, foe.MaxHP)
	w.SetCombatState(foe.Uid, &game.CombatState{
		Type:       game.StateTypeCombat,
		TargetId:   mob.Uid,
		NextAction: now.Add(500 * time.Millisecond),
		RoomId:     roomId,
	})
	w.SetCombatState(mob.Uid, &game.CombatState{
		Type:       game.StateTypeCombat,
		TargetId:   foe.Uid,
		NextAction: now.Add(time.Second),
		RoomId:     roomId,
	})

	s.broadcast(roomId, messaging.Envelope{
		Type: messaging.EventCombatBroadcast,
		Text: fmt.Sprintf("The %s lunges at the %s!", foe.Name, mob.Name),
	})
}

// mobArrivalAggro opens combat when a hostile mob wanders into a room
// with players in it.
func (s *Scheduler) mobArrivalAggro(now time.Time, mob *game.Mob, roomId storage.Identifier) {
	w := s.World
	if w.CombatState(mob.Uid) != nil {
		return
	}

	hostile := mob.Template != nil && mob.Template.Aggressive
	if !hostile && mob.Faction != "" {
		f := w.Library.Factions.Get(storage.Identifier(mob.Faction))
		hostile = f != nil && f.KOSPlayers
	}
	if !hostile {
		return
	}

	for _, name := range w.PlayersIn(roomId) {
		p := w.Player(name)
		if p == nil {
			continue
		}
		if p.Admin && p.Flags.Bool("invisible", false) {
			continue
		}
		p.Queue(fmt.Sprintf("The **%s** notices you and attacks!", mob.Name))
		w.SetCombatState(mob.Uid, &game.CombatState{
			Type:       game.StateTypeCombat,
			TargetId:   game.Key(name),
			NextAction: now.Add(time.Second),
			RoomId:     roomId,
		})
		return
	}
}
