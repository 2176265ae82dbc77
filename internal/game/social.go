package game

import (
	"time"

	"github.com/emberfallmud/emberfall/internal/assets"
)

// PendingTrade is one outstanding offer, keyed in the world by the
// receiver's lowercase name. A receiver holds at most one at a time.
type PendingTrade struct {
	FromPlayer string
	Item       assets.ItemRef
	ItemName   string

	// Exchange trades also ask for silver from the receiver.
	TradeType string // give or exchange
	SilverAsk int

	OfferTime time.Time
}

// Expired reports whether the offer has outlived the trade window.
func (t *PendingTrade) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(t.OfferTime) > ttl
}

// GroupInvite is a pending invitation, keyed by the invitee's
// lowercase name.
type GroupInvite struct {
	FromPlayer string
	GroupId    string
	OfferTime  time.Time
}

func (i *GroupInvite) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(i.OfferTime) > ttl
}

// Group is a transient hunting party. Members share kill experience
// and quest credit while co-located.
type Group struct {
	Id      string
	Leader  string
	Members []string // lowercase names, leader included
}

// HasMember reports whether name is in the group.
func (g *Group) HasMember(name string) bool {
	for _, m := range g.Members {
		if m == name {
			return true
		}
	}
	return false
}

// RemoveMember drops name and reports whether the group still has
// anyone left.
func (g *Group) RemoveMember(name string) bool {
	for i, m := range g.Members {
		if m == name {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			break
		}
	}
	return len(g.Members) > 0
}

// Band is a persistent adventuring band. Kill experience routed to a
// band accumulates in the bank until the payout tick shares it out.
type Band struct {
	Id      string   `json:"id"`
	Name    string   `json:"name"`
	Leader  string   `json:"leader"`
	Members []string `json:"members"`
	XPBank  int      `json:"xp_bank"`

	// PendingInvites maps invitee to inviting member, awaiting BAND JOIN.
	PendingInvites map[string]string `json:"pending_invites,omitempty"`
}

// HasMember reports whether name belongs to the band.
func (b *Band) HasMember(name string) bool {
	for _, m := range b.Members {
		if m == name {
			return true
		}
	}
	return false
}
