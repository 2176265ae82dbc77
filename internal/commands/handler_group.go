package commands

import (
	"fmt"
	"strings"

	"github.com/emberfallmud/emberfall/internal/game"
)

// sendToGroup queues a line on every online member.
func (e *Executor) sendToGroup(w *game.World, groupId, text string, skip ...string) {
	g := w.Group(groupId)
	if g == nil {
		return
	}
	for _, name := range g.Members {
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

func acceptsGroupInvites(p *game.Player) bool {
	return flagString(p, "groupinvites", "on") != "off"
}

func handleGroup(c *Context) error {
	p := c.Player
	key := game.Key(p.Name)
	w := c.World

	if len(c.Args) == 0 {
		showGroupStatus(c)
		return nil
	}

	command := strings.ToLower(c.Args[0])
	targetName := strings.Join(c.Args[1:], " ")

	switch command {
	case "open":
		setFlag(p, "groupinvites", "on")
		p.Queue("You are now open to group invitations.")
		return nil
	case "close":
		setFlag(p, "groupinvites", "off")
		p.Queue("You are no longer open to group invitations.")
		return nil
	}

	group := w.Group(p.GroupId)

	switch command {
	case "leader":
		if group == nil {
			return NewUserError("You are not in a group.")
		}
		if group.Leader != key {
			return NewUserError("Only the group leader can change leadership.")
		}
		if targetName == "" {
			return NewUserError("Usage: GROUP LEADER <player>")
		}
		target := w.Player(targetName)
		if target == nil || target.GroupId != p.GroupId {
			return NewUserError(fmt.Sprintf("'%s' is not in your group.", targetName))
		}
		group.Leader = game.Key(target.Name)
		c.Ex.sendToGroup(w, p.GroupId, fmt.Sprintf("%s has made %s the new group leader.", p.Name, target.Name))
		return nil

	case "remove":
		if group == nil {
			return NewUserError("You are not in a group.")
		}
		if group.Leader != key {
			return NewUserError("Only the group leader can remove members.")
		}
		if targetName == "" {
			return NewUserError("Usage: GROUP REMOVE <player>")
		}
		target := w.Player(targetName)
		if target == nil || target.GroupId != p.GroupId {
			return NewUserError(fmt.Sprintf("'%s' is not in your group.", targetName))
		}
		if game.Key(target.Name) == key {
			return NewUserError("You cannot remove yourself. Use LEAVE instead.")
		}
		target.GroupId = ""
		group.RemoveMember(game.Key(target.Name))
		c.Ex.sendToGroup(w, p.GroupId, fmt.Sprintf("%s has been removed from the group.", target.Name))
		target.Queue("You have been removed from the group.")
		return nil
	}

	// GROUP <player> invites.
	return c.Ex.inviteToGroup(c, strings.Join(c.Args, " "),
		"You form a new group and invite %s to join.",
		"You invite %s to join your group.",
		"%s has invited you to join their group. (Expires in 30 seconds)\nType 'JOIN %s' to accept.")
}

// handleHold is the flavored form of the group invite.
func handleHold(c *Context) error {
	if len(c.Args) == 0 {
		return NewUserError("Hold whose hand?")
	}
	return c.Ex.inviteToGroup(c, strings.Join(c.Args, " "),
		"You reach out to hold %s's hand...",
		"You reach out to %s, inviting them to join...",
		"%s reaches out to you, inviting you to join their group. (Expires in 30 seconds)\nType 'JOIN %s' to accept.")
}

// inviteToGroup runs the shared invite flow. formedMsg fires when the
// inviter had no group yet, invitedMsg when one existed.
func (e *Executor) inviteToGroup(c *Context, targetName, formedMsg, invitedMsg, targetMsg string) error {
	p := c.Player
	key := game.Key(p.Name)
	w := c.World

	target := findTargetPlayer(c, targetName)
	if target == nil {
		return NewUserError(fmt.Sprintf("You don't see anyone named '%s' here.", strings.ToLower(targetName)))
	}
	if target.GroupId != "" {
		return NewUserError(fmt.Sprintf("%s is already in a group.", target.Name))
	}
	if !acceptsGroupInvites(target) {
		return NewUserError(fmt.Sprintf("%s is not accepting group invitations right now.", target.Name))
	}
	if w.Invite(target.Name) != nil {
		return NewUserError(fmt.Sprintf("%s already has a pending group invitation.", target.Name))
	}

	group := w.Group(p.GroupId)
	if group == nil {
		group = w.NewGroup(p.Name)
		p.GroupId = group.Id
		p.Queue(fmt.Sprintf(formedMsg, target.Name))
	} else {
		if group.Leader != key {
			return NewUserError("Only the group leader can invite new members.")
		}
		p.Queue(fmt.Sprintf(invitedMsg, target.Name))
	}

	w.SetInvite(target.Name, &game.GroupInvite{
		FromPlayer: p.Name,
		GroupId:    p.GroupId,
		OfferTime:  c.Now,
	})
	target.Queue(fmt.Sprintf(targetMsg, p.Name, p.Name))
	return nil
}

func handleJoin(c *Context) error {
	if len(c.Args) == 0 {
		return NewUserError("Usage: JOIN <player>")
	}
	p := c.Player
	key := game.Key(p.Name)
	w := c.World

	if p.GroupId != "" {
		return NewUserError("You are already in a group. You must LEAVE first.")
	}

	leaderName := strings.Join(c.Args, " ")
	invite := w.Invite(key)
	if invite == nil || game.Key(invite.FromPlayer) != game.Key(leaderName) {
		target := findTargetPlayer(c, leaderName)
		if target == nil {
			return NewUserError(fmt.Sprintf("You don't see anyone named '%s' here.", strings.ToLower(leaderName)))
		}
		if !acceptsGroupInvites(target) {
			return NewUserError(fmt.Sprintf("%s is not accepting group members right now.", target.Name))
		}
		return NewUserError(fmt.Sprintf("You must be invited by %s to join their group.", target.Name))
	}

	w.RemoveInvite(key)

	group := w.Group(invite.GroupId)
	if group == nil {
		return NewUserError("That group no longer exists.")
	}
	leader := w.Player(group.Leader)
	if leader == nil || leader.RoomId != p.RoomId {
		return NewUserError(fmt.Sprintf("%s is no longer here.", capitalize(group.Leader)))
	}

	group.Members = append(group.Members, key)
	p.GroupId = invite.GroupId
	c.Ex.sendToGroup(w, invite.GroupId, fmt.Sprintf("%s has joined the group.", p.Name))
	return nil
}

func handleLeave(c *Context) error {
	p := c.Player
	key := game.Key(p.Name)
	w := c.World

	group := w.Group(p.GroupId)
	if group == nil {
		return NewUserError("You are not in a group.")
	}
	groupId := p.GroupId

	p.Queue("You leave the group.")
	p.GroupId = ""
	anyLeft := group.RemoveMember(key)
	c.Ex.sendToGroup(w, groupId, fmt.Sprintf("%s has left the group.", p.Name))

	if group.Leader == key {
		if anyLeft {
			group.Leader = group.Members[0]
			c.Ex.sendToGroup(w, groupId, fmt.Sprintf("%s is the new group leader.", capitalize(group.Leader)))
		} else {
			w.RemoveGroup(groupId)
		}
	}
	return nil
}

func handleDisband(c *Context) error {
	p := c.Player
	key := game.Key(p.Name)
	w := c.World

	group := w.Group(p.GroupId)
	if group == nil {
		return NewUserError("You are not in a group.")
	}
	if group.Leader != key {
		return NewUserError("Only the group leader can disband the group.")
	}

	p.Queue("You disband the group.")
	groupId := p.GroupId
	for _, name := range group.Members {
		member := w.Player(name)
		if member == nil {
			continue
		}
		member.GroupId = ""
		if name != key {
			member.Queue("The group has been disbanded by the leader.")
		}
	}
	w.RemoveGroup(groupId)
	return nil
}

func showGroupStatus(c *Context) {
	group := c.World.Group(c.Player.GroupId)
	if group == nil {
		c.Player.Queue("You are not currently in a group.")
		return
	}

	c.Player.Queue(fmt.Sprintf("--- Group Status (Leader: %s) ---", capitalize(group.Leader)))
	for _, name := range group.Members {
		if name == group.Leader {
			c.Player.Queue(fmt.Sprintf("- %s (Leader)", capitalize(name)))
		} else {
			c.Player.Queue(fmt.Sprintf("- %s", capitalize(name)))
		}
	}
}
