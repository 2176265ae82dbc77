package messaging

import (
	"encoding/json"
	"fmt"

	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/storage"
)

// Wire event types. The frontend switches rendering on these.
const (
	EventMessage         = "message"
	EventCombatBroadcast = "combat_broadcast"
	EventCombatDeath     = "combat_death"
	EventAmbient         = "ambient"
	EventAmbientMove     = "ambient_move"
	EventAmbientSpawn    = "ambient_spawn"
	EventAmbientDecay    = "ambient_decay"
	EventSystemInfo      = "system_info"
	EventSystemError     = "system_error"
	EventUpdateVitals    = "update_vitals"
	EventCommandResponse = "command_response"
	EventTick            = "tick"
)

// Envelope is one frame pushed to a player channel.
type Envelope struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Payload any    `json:"payload,omitempty"`
}

// Sender is the transport half the publisher needs. Satisfied by
// NatsServer; tests substitute a recorder.
type Sender interface {
	Publish(subject string, data []byte) error
}

// Publisher fans envelopes out to per-player subjects, honoring each
// recipient's delivery flags.
type Publisher struct {
	server Sender
}

func NewPublisher(server Sender) *Publisher {
	return &Publisher{server: server}
}

// Send pushes one envelope to a single player channel.
func (p *Publisher) Send(playerName string, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return p.server.Publish(fmt.Sprintf("player.%s", game.Key(playerName)), data)
}

// BroadcastRoom delivers an envelope to every player in a room except
// those named in skip. The recipient list is copied from the spatial
// index before any delivery starts.
func (p *Publisher) BroadcastRoom(w *game.World, roomId storage.Identifier, env Envelope, skip ...string) error {
	skipSet := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipSet[game.Key(name)] = true
	}

	var firstErr error
	for _, name := range w.PlayersIn(roomId) {
		if skipSet[game.Key(name)] {
			continue
		}
		pl := w.Player(name)
		if pl == nil || !ShouldDeliver(env.Type, pl) {
			continue
		}
		if err := p.Send(name, env); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ShouldDeliver applies the recipient's flags to an event type.
// Ambient traffic and death announcements can each be switched off;
// both default on.
func ShouldDeliver(eventType string, pl *game.Player) bool {
	switch eventType {
	case EventAmbient, EventAmbientMove, EventAmbientSpawn, EventAmbientDecay:
		return pl.Flags.Bool("ambient", true)
	case EventCombatDeath:
		return pl.Flags.Bool("showdeath", true)
	}
	return true
}
