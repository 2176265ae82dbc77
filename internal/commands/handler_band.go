package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/emberfallmud/emberfall/internal/game"
)

const maxBandMembers = 10

// sendToBand queues a line on every online band member.
func (e *Executor) sendToBand(w *game.World, bandId, text string, skip ...string) {
	b := w.Band(bandId)
	if b == nil {
		return
	}
	for _, name := range b.Members {
		skipped := false
		for _, s := range skip {
			if name == s {
				skipped = true
			}
		}
		if skipped {
			continue
		}
		if member := w.Player(name); member != nil {
			member.Queue(text)
		}
	}
}

// persistBand writes a band record through the store, logging rather
// than failing the command on error.
func (e *Executor) persistBand(b *game.Band) {
	if e.Store == nil {
		return
	}
	if err := e.Store.PutBand(b); err != nil {
		slog.Error("persist band", "band", b.Id, "error", err)
	}
}

func (e *Executor) deleteBand(id string) {
	if e.Store == nil {
		return
	}
	if err := e.Store.DeleteBand(id); err != nil {
		slog.Error("delete band", "band", id, "error", err)
	}
}

// bandInviteFor scans every band for a pending invite addressed to
// the player.
func bandInviteFor(w *game.World, playerKey string) *game.Band {
	for _, b := range w.Bands() {
		if _, ok := b.PendingInvites[playerKey]; ok {
			return b
		}
	}
	return nil
}

func handleBand(c *Context) error {
	if len(c.Args) == 0 {
		return NewUserError("Usage: BAND <create|invite|join|list|remove|kick|delete>")
	}
	p := c.Player
	key := game.Key(p.Name)
	w := c.World

	command := strings.ToLower(c.Args[0])
	targetName := strings.Join(c.Args[1:], " ")

	switch command {
	case "create":
		if p.BandId != "" {
			return NewUserError("You are already in an adventuring band. Use BAND REMOVE first.")
		}
		b := &game.Band{
			Id:             uuid.NewString(),
			Name:           fmt.Sprintf("%s's Band", p.Name),
			Leader:         key,
			Members:        []string{key},
			PendingInvites: map[string]string{},
		}
		w.SetBand(b)
		c.Ex.persistBand(b)
		p.BandId = b.Id
		p.MarkDirty()
		p.Queue(fmt.Sprintf("You have created a new adventuring band! (Name: %s's Band)", p.Name))
		p.Queue("Use BAND INVITE <player> to invite members.")
		return nil

	case "join":
		if targetName == "" {
			return NewUserError("Usage: BAND JOIN <leader_name>")
		}
		if p.BandId != "" {
			return NewUserError("You are already in an adventuring band. Use BAND REMOVE first.")
		}
		inviterKey := game.Key(targetName)
		b := bandInviteFor(w, key)
		if b == nil || b.PendingInvites[key] != inviterKey {
			return NewUserError(fmt.Sprintf("You have not been invited to a band by '%s'.", capitalize(targetName)))
		}
		if len(b.Members) >= maxBandMembers {
			delete(b.PendingInvites, key)
			c.Ex.persistBand(b)
			return NewUserError("That band is now full.")
		}
		delete(b.PendingInvites, key)
		b.Members = append(b.Members, key)
		c.Ex.persistBand(b)
		p.BandId = b.Id
		p.MarkDirty()
		c.Ex.sendToBand(w, b.Id, fmt.Sprintf("%s has joined the adventuring band!", capitalize(key)))
		return nil
	}

	band := w.Band(p.BandId)
	if band == nil {
		return NewUserError("You are not currently in an adventuring band.")
	}
	bandId := p.BandId
	isLeader := band.Leader == key

	switch command {
	case "list":
		p.Queue(fmt.Sprintf("--- Adventuring Band (Leader: %s) ---", capitalize(band.Leader)))
		for _, name := range band.Members {
			if name == band.Leader {
				p.Queue(fmt.Sprintf("- %s (Leader)", capitalize(name)))
			} else {
				p.Queue(fmt.Sprintf("- %s", capitalize(name)))
			}
		}
		p.Queue(fmt.Sprintf("(%d/%d members)", len(band.Members), maxBandMembers))
		return nil

	case "remove":
		for i, name := range band.Members {
			if name == key {
				band.Members = append(band.Members[:i], band.Members[i+1:]...)
				break
			}
		}
		p.BandId = ""
		p.MarkDirty()
		p.Queue("You have left the adventuring band.")

		if isLeader {
			if len(band.Members) > 0 {
				band.Leader = band.Members[0]
				c.Ex.persistBand(band)
				c.Ex.sendToBand(w, bandId, fmt.Sprintf("%s has left the band. %s is the new leader.", p.Name, capitalize(band.Leader)))
			} else {
				w.RemoveBand(bandId)
				c.Ex.deleteBand(bandId)
			}
		} else {
			c.Ex.persistBand(band)
			c.Ex.sendToBand(w, bandId, fmt.Sprintf("%s has left the adventuring band.", p.Name))
		}
		return nil
	}

	if !isLeader {
		return NewUserError("Only the band leader can do that.")
	}

	switch command {
	case "invite":
		if targetName == "" {
			return NewUserError("Usage: BAND INVITE <player>")
		}
		if len(band.Members) >= maxBandMembers {
			return NewUserError(fmt.Sprintf("Your band is full. You cannot invite more than %d members.", maxBandMembers))
		}
		targetKey := game.Key(targetName)
		if band.HasMember(targetKey) {
			return NewUserError(fmt.Sprintf("%s is already in your band.", capitalize(targetName)))
		}
		if _, ok := band.PendingInvites[targetKey]; ok {
			return NewUserError(fmt.Sprintf("You have already invited %s.", capitalize(targetName)))
		}

		// Band invites reach offline characters too.
		target := w.Player(targetKey)
		if target == nil && c.Ex.Store != nil {
			stored, err := c.Ex.Store.GetPlayer(targetKey)
			if err != nil || stored == nil {
				return NewUserError(fmt.Sprintf("There is no player named '%s'.", targetName))
			}
			if stored.BandId != "" {
				return NewUserError(fmt.Sprintf("%s is already in another adventuring band.", capitalize(targetName)))
			}
		} else if target == nil {
			return NewUserError(fmt.Sprintf("There is no player named '%s'.", targetName))
		} else if target.BandId != "" {
			return NewUserError(fmt.Sprintf("%s is already in another adventuring band.", capitalize(targetName)))
		}

		if band.PendingInvites == nil {
			band.PendingInvites = map[string]string{}
		}
		band.PendingInvites[targetKey] = key
		c.Ex.persistBand(band)

		p.Queue(fmt.Sprintf("You have invited %s to join your band.", capitalize(targetName)))
		if target != nil {
			target.Queue(fmt.Sprintf("%s has invited you to join their adventuring band. Type 'BAND JOIN %s' to accept.", p.Name, p.Name))
		}
		return nil

	case "kick":
		if targetName == "" {
			return NewUserError("Usage: BAND KICK <player>")
		}
		targetKey := game.Key(targetName)
		if targetKey == key {
			return NewUserError("You cannot kick yourself. Use BAND REMOVE.")
		}
		if !band.HasMember(targetKey) {
			return NewUserError(fmt.Sprintf("'%s' is not in your adventuring band.", targetName))
		}
		for i, name := range band.Members {
			if name == targetKey {
				band.Members = append(band.Members[:i], band.Members[i+1:]...)
				break
			}
		}
		c.Ex.persistBand(band)
		c.Ex.sendToBand(w, bandId, fmt.Sprintf("%s has been kicked from the adventuring band by the leader.", capitalize(targetKey)))
		if target := w.Player(targetKey); target != nil {
			target.BandId = ""
			target.MarkDirty()
			target.Queue("You have been kicked from your adventuring band by the leader.")
		}
		return nil

	case "delete":
		c.Ex.sendToBand(w, bandId, fmt.Sprintf("The adventuring band '%s's Band' has been deleted by the leader.", p.Name), key)
		p.Queue("You have deleted the adventuring band.")
		for _, name := range band.Members {
			if member := w.Player(name); member != nil {
				member.BandId = ""
				member.MarkDirty()
			}
		}
		w.RemoveBand(bandId)
		c.Ex.deleteBand(bandId)
		return nil
	}

	return NewUserError("Usage: BAND <create|invite|join|list|remove|kick|delete>")
}

func handleBandTalk(c *Context) error {
	p := c.Player
	if p.BandId == "" {
		return NewUserError("You are not in an adventuring band.")
	}
	if len(c.Args) == 0 {
		return NewUserError("What do you want to say to your band?")
	}
	msg := strings.Join(c.Args, " ")
	c.Ex.sendToBand(c.World, p.BandId, fmt.Sprintf("[%s] %s", p.Name, msg))
	return nil
}
