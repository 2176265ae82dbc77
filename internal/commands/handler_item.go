package commands

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/emberfallmud/emberfall/internal/assets"
	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/messaging"
)

// numPrinter renders large numbers with thousands separators.
var numPrinter = message.NewPrinter(language.English)

func itemName(c *Context, ref assets.ItemRef) string {
	if tmpl := c.World.Library.Items.Get(ref.ItemId); tmpl != nil {
		return tmpl.Name
	}
	return "the item"
}

// findCarried locates an item by keyword in the player's hands first,
// then the pack. Returns the ref, the hand slot it came from ("" for
// pack), and whether anything matched.
func findCarried(c *Context, word string) (assets.ItemRef, string, bool) {
	p := c.Player
	for _, slot := range []string{"mainhand", "offhand"} {
		ref := p.Wielded(slot)
		if ref.Empty() {
			continue
		}
		tmpl := c.World.Library.Items.Get(ref.ItemId)
		if tmpl != nil && tmpl.MatchKeyword(word) {
			return ref, slot, true
		}
	}
	for _, ref := range p.Inventory {
		tmpl := c.World.Library.Items.Get(ref.ItemId)
		if tmpl != nil && tmpl.MatchKeyword(word) {
			return ref, "", true
		}
	}
	return assets.ItemRef{}, "", false
}

func handleGet(c *Context) error {
	if len(c.Args) == 0 {
		return NewUserError("Get what?")
	}
	p := c.Player
	word := strings.Join(c.Args, " ")

	// Pack first: pulling something already carried into a hand.
	for i, ref := range p.Inventory {
		tmpl := c.World.Library.Items.Get(ref.ItemId)
		if tmpl == nil || !tmpl.MatchKeyword(word) {
			continue
		}
		if !p.Wielded("mainhand").Empty() && !p.Wielded("offhand").Empty() {
			return NewUserError("Your hands are full. You must free a hand to get that from your pack.")
		}
		p.Inventory = append(p.Inventory[:i], p.Inventory[i+1:]...)
		p.ReceiveItem(ref)
		p.MarkDirty()
		p.Queue(fmt.Sprintf("You get %s from your pack and hold it.", tmpl.Name))
		return nil
	}

	idx := c.Room.FindItem(c.World.Library, word)
	if idx < 0 {
		return NewUserError(fmt.Sprintf("You don't see a **%s** here or in your pack.", word))
	}
	ref := c.Room.Items[idx]
	name := itemName(c, ref)

	c.Room.Items = append(c.Room.Items[:idx], c.Room.Items[idx+1:]...)
	where := p.ReceiveItem(ref)
	p.MarkDirty()

	if where == "inventory" {
		p.Queue(fmt.Sprintf("Both hands are full. You get %s and put it in your pack.", name))
	} else {
		p.Queue(fmt.Sprintf("You get %s and hold it.", name))
	}

	c.Ex.broadcast(c.Room.Id, messaging.Envelope{
		Type: messaging.EventMessage,
		Text: fmt.Sprintf("%s picks up %s.", p.Name, name),
	}, game.Key(p.Name))
	return nil
}

func handleDrop(c *Context) error {
	if len(c.Args) == 0 {
		return NewUserError("Drop what?")
	}
	p := c.Player

	args := c.Args
	confirmed := false
	if strings.EqualFold(args[len(args)-1], "confirm") {
		confirmed = true
		args = args[:len(args)-1]
	}
	if len(args) == 0 {
		return NewUserError("Drop what?")
	}
	word := strings.Join(args, " ")

	ref, slot, ok := findCarried(c, word)
	if !ok {
		return NewUserError(fmt.Sprintf("You don't have a '%s'.", word))
	}
	name := itemName(c, ref)

	if flagString(p, "safedrop", "on") == "on" && !confirmed && c.Verb == "drop" {
		p.Queue(fmt.Sprintf("SAFEDROP is on. To drop %s, type 'DROP %s CONFIRM'.", name, strings.ToUpper(word)))
		return nil
	}

	if slot != "" {
		p.Unequip(slot)
	} else {
		p.RemoveItem(ref)
	}
	c.Room.Items = append(c.Room.Items, ref)
	p.MarkDirty()

	p.Queue(fmt.Sprintf("You drop %s on the ground.", name))
	c.Ex.broadcast(c.Room.Id, messaging.Envelope{
		Type: messaging.EventMessage,
		Text: fmt.Sprintf("%s drops %s.", p.Name, name),
	}, game.Key(p.Name))

	p.SetRoundtime(c.Now, time.Second, "hard")
	return nil
}

func handleInventory(c *Context) error {
	p := c.Player
	lib := c.World.Library
	total := 0

	var held []string
	if ref := p.Wielded("mainhand"); !ref.Empty() {
		if tmpl := lib.Items.Get(ref.ItemId); tmpl != nil {
			held = append(held, fmt.Sprintf("holding %s in your right hand", tmpl.Name))
		}
	}
	if ref := p.Wielded("offhand"); !ref.Empty() {
		if tmpl := lib.Items.Get(ref.ItemId); tmpl != nil {
			held = append(held, fmt.Sprintf("holding %s in your left hand", tmpl.Name))
		}
	}
	if len(held) > 0 {
		p.Queue(fmt.Sprintf("You are %s.", strings.Join(held, ", and ")))
		total += len(held)
	}

	slots := make([]string, 0, len(p.WornItems))
	for slot, ref := range p.WornItems {
		if slot == "mainhand" || slot == "offhand" || ref.Empty() {
			continue
		}
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	var worn []string
	for _, slot := range slots {
		if tmpl := lib.Items.Get(p.WornItems[slot].ItemId); tmpl != nil {
			worn = append(worn, fmt.Sprintf("%s (worn on %s)", tmpl.Name, assets.EquipmentSlots[slot]))
			total++
		}
	}
	if len(worn) > 0 {
		p.Queue(fmt.Sprintf("You are wearing: %s.", strings.Join(worn, ", ")))
	}

	var pack []string
	for _, ref := range p.Inventory {
		if tmpl := lib.Items.Get(ref.ItemId); tmpl != nil {
			pack = append(pack, tmpl.Name)
			total++
		}
	}
	if len(pack) > 0 {
		p.Queue(fmt.Sprintf("\nIn your pack: %s.", strings.Join(pack, ", ")))
	}

	if total == 0 {
		p.Queue("You are not carrying or wearing anything.")
	}
	p.Queue(fmt.Sprintf("\n(Items: %d)", total))
	return nil
}

func handleWealth(c *Context) error {
	p := c.Player
	switch {
	case p.Wealth == 0:
		p.Queue("You have no silver with you.")
	case p.Wealth == 1:
		p.Queue("You have but one coin with you.")
	default:
		p.Queue(numPrinter.Sprintf("You have %d coins with you.", p.Wealth))
	}
	return nil
}
