package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/messaging"
)

// globalTick runs the slow world heartbeat: stale sessions, the
// day/night and weather cycle, respawns, corpse decay, vitals regen,
// experience absorption, and room ambience.
func (s *Scheduler) globalTick(now time.Time) {
	s.pruneStale(now)
	s.advanceEnvironment(now)
	s.respawnSweep(now)
	s.decayCorpses(now)
	s.playerPulse(now)
	s.ambientEvents()
	s.Treasure.Decay(now)
	s.sendTick()
}

// pruneStale drops players who stopped talking to the server without
// quitting. Their character is saved before the session goes away.
func (s *Scheduler) pruneStale(now time.Time) {
	w := s.World
	for _, sess := range w.Sessions() {
		if now.Sub(sess.LastSeen) < w.Settings.PlayerTimeout {
			continue
		}
		p := sess.Player
		if err := s.Ex.Store.PutPlayer(p); err != nil {
			slog.Error("saving stale player failed", "player", p.Name, "err", err)
		}
		roomId := p.RoomId
		w.RemoveSession(p.Name)
		s.broadcast(roomId, messaging.Envelope{
			Type: messaging.EventAmbient,
			Text: fmt.Sprintf("%s disappears.", p.Name),
		})
		slog.Info("pruned stale session", "player", p.Name)
	}
}

// --- Environment ---

var timeChangeMessages = map[string]string{
	"dawn":  "The first faint light of dawn breaks on the eastern horizon.",
	"day":   "The sun rises fully, bathing the world in the light of a new day.",
	"dusk":  "The sun begins its descent, painting the sky with hues of orange and purple. Evening approaches.",
	"night": "Darkness blankets the land as night takes hold.",
}

func weatherChangeMessage(weather, timeOfDay string) string {
	switch weather {
	case "clear":
		if timeOfDay == "day" {
			return "The skies clear, revealing brilliant sunshine."
		}
		return "The skies clear, revealing a canopy of stars."
	case "light clouds":
		return "A few wispy clouds drift across the sky."
	case "overcast":
		return "The sky becomes overcast with a thick blanket of grey clouds."
	case "fog":
		return "A damp fog rolls in, obscuring the distance."
	case "light rain":
		return "A light rain begins to patter down."
	case "rain":
		return "Rain starts to fall more steadily."
	case "heavy rain":
		return "The heavens open and a heavy rain pours down."
	case "storm":
		return "Dark clouds roil as a fierce storm begins to brew!"
	}
	return ""
}

// advanceEnvironment steps the day/night cycle and walks the weather
// Markov chain, announcing changes to everyone standing outdoors.
func (s *Scheduler) advanceEnvironment(now time.Time) {
	w := s.World
	env := w.Env()
	changed := false

	if w.Settings.TimeStepTicks > 0 && s.tickCount%w.Settings.TimeStepTicks == 0 {
		env.TimeStep = (env.TimeStep + 1) % w.Settings.TimeCycleLength
		phase := game.TimeCycle[env.TimeStep%len(game.TimeCycle)]
		if phase != env.TimeOfDay {
			env.TimeOfDay = phase
			s.announceOutdoors(timeChangeMessages[phase])
		}
		changed = true
	}

	if w.Settings.WeatherTicks > 0 && s.tickCount%w.Settings.WeatherTicks == 0 {
		next, clearChecks := nextWeather(env.Weather, env.ClearChecks, s.Roll.Float64())
		env.ClearChecks = clearChecks
		if next != env.Weather {
			env.Weather = next
			s.announceOutdoors(weatherChangeMessage(next, env.TimeOfDay))
		}
		changed = true
	}

	if changed {
		w.SetEnv(env)
	}
}

// nextWeather walks one step of the severity ladder. Clear skies grow
// steadily more likely to break the longer they hold.
func nextWeather(current string, clearChecks int, roll float64) (string, int) {
	order := game.WeatherSeverityOrder
	idx := 0
	for i, wx := range order {
		if wx == current {
			idx = i
			break
		}
	}

	if idx == 0 {
		worsen := 0.20 + 0.05*float64(clearChecks)
		if worsen > 0.85 {
			worsen = 0.85
		}
		if roll < worsen {
			return order[1], 0
		}
		return current, clearChecks + 1
	}

	switch {
	case roll < 0.25:
		return order[idx-1], 0
	case roll < 0.75:
		return current, 0
	default:
		if idx+1 < len(order) {
			return order[idx+1], 0
		}
		return current, 0
	}
}

// announceOutdoors sends an ambient line to every player whose room is
// open to the sky.
func (s *Scheduler) announceOutdoors(text string) {
	if text == "" {
		return
	}
	w := s.World
	for _, sess := range w.Sessions() {
		p := sess.Player
		exposed := false
		w.WithRoom(p.RoomId, func(r *game.Room) error {
			exposed = r.Template.Outdoor && !r.Template.Underground
			return nil
		})
		if !exposed {
			continue
		}
		s.send(p.Name, messaging.Envelope{
			Type: messaging.EventAmbient,
			Text: text,
		})
	}
}

// --- Respawns ---

// respawnSweep rolls each defeated mob against its respawn chance and
// puts winners back in their room.
func (s *Scheduler) respawnSweep(now time.Time) {
	w := s.World
	lib := w.Library

	for uid, d := range w.DefeatedMobs() {
		if now.Before(d.EligibleAt) || s.Roll.Float64() >= d.Chance {
			continue
		}

		tmpl := lib.Monsters.Get(d.TemplateId)
		if tmpl == nil {
			w.RemoveDefeated(uid)
			continue
		}

		var mob *game.Mob
		w.WithRoom(d.RoomId, func(r *game.Room) error {
			if tmpl.Unique && r.HasTemplate(d.TemplateId) {
				return nil
			}
			mob = game.SpawnMob(d.TemplateId, tmpl)
			r.Mobs = append(r.Mobs, mob)
			return nil
		})
		if mob == nil {
			continue
		}

		w.RegisterMob(mob.Uid, d.RoomId)
		w.RemoveMobHP(mob.Uid)
		w.RemoveDefeated(uid)

		s.broadcast(d.RoomId, messaging.Envelope{
			Type: messaging.EventAmbientSpawn,
			Text: fmt.Sprintf("The %s appears.", mob.Name),
		})
		s.mobArrivalAggro(now, mob, d.RoomId)
	}
}

// --- Corpses ---

func (s *Scheduler) decayCorpses(now time.Time) {
	w := s.World
	for _, roomId := range w.ActiveRooms() {
		var decayed []string
		w.WithRoom(roomId, func(r *game.Room) error {
			kept := r.Corpses[:0]
			for _, c := range r.Corpses {
				if now.Before(c.DecayAt) {
					kept = append(kept, c)
					continue
				}
				decayed = append(decayed, c.Name)
			}
			r.Corpses = kept
			return nil
		})
		for _, name := range decayed {
			s.broadcast(roomId, messaging.Envelope{
				Type: messaging.EventAmbientDecay,
				Text: fmt.Sprintf("The %s decays and disappears.", name),
			})
		}
	}
}

// --- Players ---

// playerPulse regenerates vitals, expires buffs, and absorbs field
// experience for everyone online, then pushes fresh vitals.
func (s *Scheduler) playerPulse(now time.Time) {
	w := s.World
	for _, sess := range w.Sessions() {
		p := sess.Player
		key := game.Key(p.Name)

		if w.CombatState(key) == nil {
			p.HP += 2
			p.Mana += 2
			p.Stamina += 5
			p.Spirit++
			p.ClampVitals()
			p.MarkDirty()
		}

		p.ActiveBuffs(now)

		onNode, inTown := false, false
		w.WithRoom(p.RoomId, func(r *game.Room) error {
			onNode = r.Template.Node
			inTown = r.Template.Town
			return nil
		})
		if absorbed := p.AbsorbPulse(onNode, inTown); absorbed > 0 {
			p.MarkDirty()
		}

		s.send(p.Name, messaging.Envelope{
			Type:    messaging.EventUpdateVitals,
			Payload: game.Snapshot(w.Library, p, now),
		})
	}
}

// ambientEvents rolls each occupied room's flavor lines. At most one
// fires per room per tick.
func (s *Scheduler) ambientEvents() {
	w := s.World
	for _, roomId := range w.ActiveRooms() {
		if len(w.PlayersIn(roomId)) == 0 {
			continue
		}

		var events []struct {
			chance  float64
			message string
		}
		w.WithRoom(roomId, func(r *game.Room) error {
			for _, ev := range r.Template.AmbientEvents {
				events = append(events, struct {
					chance  float64
					message string
				}{ev.Chance, ev.Message})
			}
			return nil
		})

		for _, ev := range events {
			if s.Roll.Float64() >= ev.chance {
				continue
			}
			s.broadcast(roomId, messaging.Envelope{
				Type: messaging.EventAmbient,
				Text: ev.message,
			})
			break
		}
	}
}

// sendTick tells clients the heartbeat fired so they can refresh
// clocks and weather displays.
func (s *Scheduler) sendTick() {
	env := s.World.Env()
	payload := struct {
		TimeOfDay string `json:"time_of_day"`
		Weather   string `json:"weather"`
	}{env.TimeOfDay, env.Weather}

	for _, sess := range s.World.Sessions() {
		s.send(sess.Player.Name, messaging.Envelope{
			Type:    messaging.EventTick,
			Payload: payload,
		})
	}
}
