package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emberfallmud/emberfall/internal/game"
)

// findTargetPlayer resolves another player in the same room.
func findTargetPlayer(c *Context, name string) *game.Player {
	target := c.World.Player(name)
	if target == nil || target.RoomId != c.Player.RoomId {
		return nil
	}
	return target
}

// findPackItem looks up an item in the pack only (hands excluded).
func findPackItem(c *Context, word string) (int, bool) {
	for i, ref := range c.Player.Inventory {
		tmpl := c.World.Library.Items.Get(ref.ItemId)
		if tmpl != nil && tmpl.MatchKeyword(word) {
			return i, true
		}
	}
	return -1, false
}

func handleGive(c *Context) error {
	if len(c.Args) < 2 {
		return NewUserError("Usage: GIVE <player> <item>")
	}
	p := c.Player

	target := findTargetPlayer(c, c.Args[0])
	if target == nil {
		return NewUserError(fmt.Sprintf("You don't see anyone named '%s' here.", c.Args[0]))
	}
	if game.Key(target.Name) == game.Key(p.Name) {
		return NewUserError("You can't give things to yourself.")
	}

	itemWord := strings.ToLower(strings.Join(c.Args[1:], " "))
	idx, ok := findPackItem(c, itemWord)
	if !ok {
		return NewUserError(fmt.Sprintf("You don't have a '%s' in your pack.", itemWord))
	}
	ref := p.Inventory[idx]
	name := itemName(c, ref)

	c.World.SetTrade(target.Name, &game.PendingTrade{
		FromPlayer: p.Name,
		Item:       ref,
		ItemName:   name,
		TradeType:  "give",
		OfferTime:  c.Now,
	})

	p.Queue(fmt.Sprintf("You offer %s to %s.", name, target.Name))
	target.Queue(fmt.Sprintf("%s offers you %s.", p.Name, name))
	target.Queue("Type 'ACCEPT' to take it or 'DECLINE' to refuse.")
	return nil
}

func handleExchange(c *Context) error {
	// EXCHANGE <player> <item> FOR <silver>
	forIdx := -1
	for i, a := range c.Args {
		if strings.EqualFold(a, "for") {
			forIdx = i
		}
	}
	if forIdx < 2 || forIdx == len(c.Args)-1 {
		return NewUserError("Usage: EXCHANGE <player> <item> FOR <silver>")
	}
	silver, err := strconv.Atoi(c.Args[forIdx+1])
	if err != nil || silver <= 0 {
		return NewUserError("Usage: EXCHANGE <player> <item> FOR <silver>")
	}
	p := c.Player

	target := findTargetPlayer(c, c.Args[0])
	if target == nil {
		return NewUserError(fmt.Sprintf("You don't see anyone named '%s' here.", c.Args[0]))
	}
	if game.Key(target.Name) == game.Key(p.Name) {
		return NewUserError("You can't give things to yourself.")
	}

	itemWord := strings.ToLower(strings.Join(c.Args[1:forIdx], " "))
	idx, ok := findPackItem(c, itemWord)
	if !ok {
		return NewUserError(fmt.Sprintf("You don't have a '%s' in your pack.", itemWord))
	}
	ref := p.Inventory[idx]
	name := itemName(c, ref)

	c.World.SetTrade(target.Name, &game.PendingTrade{
		FromPlayer: p.Name,
		Item:       ref,
		ItemName:   name,
		TradeType:  "exchange",
		SilverAsk:  silver,
		OfferTime:  c.Now,
	})

	p.Queue(fmt.Sprintf("You offer %s to %s for %d silver.", name, target.Name, silver))
	target.Queue(fmt.Sprintf("%s offers you %s for %d silver.", p.Name, name, silver))
	target.Queue("Type 'ACCEPT' to take it or 'DECLINE' to refuse.")
	return nil
}

func handleAccept(c *Context) error {
	p := c.Player
	key := game.Key(p.Name)

	offer := c.World.Trade(key)
	if offer == nil {
		return NewUserError("You have not been offered anything.")
	}
	if offer.Expired(c.Now, c.World.Settings.TradeExpiry) {
		c.World.RemoveTrade(key)
		return NewUserError("The offer has expired.")
	}

	giver := c.World.Player(offer.FromPlayer)
	if giver == nil || giver.RoomId != p.RoomId {
		c.World.RemoveTrade(key)
		return NewUserError(fmt.Sprintf("%s is no longer here.", offer.FromPlayer))
	}
	if !giver.HasItem(offer.Item) {
		c.World.RemoveTrade(key)
		return NewUserError(fmt.Sprintf("%s no longer has %s.", giver.Name, offer.ItemName))
	}
	if offer.TradeType == "exchange" && p.Wealth < offer.SilverAsk {
		return NewUserError(fmt.Sprintf("You need %d silver to accept this offer.", offer.SilverAsk))
	}

	giver.RemoveItem(offer.Item)
	p.ReceiveItem(offer.Item)
	if offer.TradeType == "exchange" {
		p.Wealth -= offer.SilverAsk
		giver.Wealth += offer.SilverAsk
		p.Queue(fmt.Sprintf("You accept %s from %s for %d silver.", offer.ItemName, giver.Name, offer.SilverAsk))
		giver.Queue(fmt.Sprintf("%s accepts your offer. You receive %d silver.", p.Name, offer.SilverAsk))
	} else {
		p.Queue(fmt.Sprintf("You accept %s from %s.", offer.ItemName, giver.Name))
		giver.Queue(fmt.Sprintf("%s accepts your offer.", p.Name))
	}
	p.MarkDirty()
	giver.MarkDirty()

	c.World.RemoveTrade(key)
	return nil
}

func handleDecline(c *Context) error {
	p := c.Player

	offer := c.World.RemoveTrade(game.Key(p.Name))
	if offer == nil {
		return NewUserError("You have no offers to decline.")
	}

	p.Queue(fmt.Sprintf("You decline the offer from %s.", offer.FromPlayer))
	if giver := c.World.Player(offer.FromPlayer); giver != nil {
		giver.Queue(fmt.Sprintf("%s declines your offer.", p.Name))
	}
	return nil
}

// handleCancel backs out of a pending training-point conversion first,
// then falls through to declining a trade offer.
func handleCancel(c *Context) error {
	if c.Ex.cancelConversion(c.Player) {
		return nil
	}
	return handleDecline(c)
}
