package commands

import (
	"fmt"
	"strings"

	"github.com/emberfallmud/emberfall/internal/game"
	"github.com/emberfallmud/emberfall/internal/loot"
	"github.com/emberfallmud/emberfall/internal/messaging"
)

// findCorpse prefers an unsearched match so repeated SEARCH commands
// work through a pile of corpses in order.
func findCorpse(r *game.Room, word string) *game.Corpse {
	var searched *game.Corpse
	for _, c := range r.Corpses {
		if !c.MatchKeyword(word) {
			continue
		}
		if !c.SearchedAndEmptied {
			return c
		}
		if searched == nil {
			searched = c
		}
	}
	return searched
}

func handleSearch(c *Context) error {
	if len(c.Args) == 0 {
		return NewUserError("Search what?")
	}
	p := c.Player
	word := strings.ToLower(strings.Join(c.Args, " "))

	corpse := findCorpse(c.Room, word)
	if corpse == nil {
		return NewUserError(fmt.Sprintf("You don't see a **%s** here to search.", word))
	}

	p.SetRoundtime(c.Now, c.World.Settings.SkinningBaseRT, "hard")

	if corpse.SearchedAndEmptied {
		p.Queue(fmt.Sprintf("You search the %s but find nothing left.", corpse.Name))
		c.Room.RemoveCorpse(corpse.Uid)
		return nil
	}
	corpse.SearchedAndEmptied = true

	// Dynamic treasure rolls once per corpse, on the first search.
	if !corpse.DynamicLootDone && c.Ex.Treasure != nil {
		corpse.DynamicLootDone = true
		drop := c.Ex.Treasure.Generate(corpse.Level, corpse.TemplateId)
		corpse.Coins += drop.Coins
		corpse.Items = append(corpse.Items, drop.Items...)
	}

	if len(corpse.Items) == 0 && corpse.Coins == 0 {
		p.Queue(fmt.Sprintf("You search the %s but find nothing.", corpse.Name))
		c.Room.RemoveCorpse(corpse.Uid)
		return nil
	}

	p.Queue(fmt.Sprintf("You search the %s and find:", corpse.Name))
	if corpse.Coins > 0 {
		p.Wealth += corpse.Coins
		p.Queue(fmt.Sprintf("- %d silver coins", corpse.Coins))
		corpse.Coins = 0
	}
	for _, ref := range corpse.Items {
		c.Room.Items = append(c.Room.Items, ref)
		p.Queue(fmt.Sprintf("- %s", itemName(c, ref)))
	}
	corpse.Items = nil
	c.Room.RemoveCorpse(corpse.Uid)
	p.MarkDirty()

	c.Ex.broadcast(c.Room.Id, messaging.Envelope{
		Type: messaging.EventMessage,
		Text: fmt.Sprintf("%s searches the %s.", p.Name, corpse.Name),
	}, game.Key(p.Name))
	return nil
}

func handleSkin(c *Context) error {
	if len(c.Args) == 0 {
		return NewUserError("Skin what?")
	}
	p := c.Player
	word := strings.ToLower(strings.Join(c.Args, " "))

	corpse := findCorpse(c.Room, word)
	if corpse == nil {
		return NewUserError(fmt.Sprintf("You don't see a **%s** here to skin.", word))
	}
	if corpse.Skinnable == nil {
		return NewUserError(fmt.Sprintf("You cannot skin the %s.", corpse.Name))
	}
	if corpse.Skinned {
		return NewUserError(fmt.Sprintf("The %s has already been skinned.", corpse.Name))
	}

	p.SetRoundtime(c.Now, c.World.Settings.SkinningBaseRT, "hard")

	creature := strings.TrimPrefix(corpse.Name, "corpse of a ")
	res := loot.Skin(c.World.Library, corpse, p.SkillBonus("first_aid"), creature)
	p.Queue(res.Message)
	if !res.Success {
		return nil
	}

	where := p.ReceiveItem(res.Item)
	if where == "inventory" {
		p.Queue(fmt.Sprintf("You tuck %s into your pack.", itemName(c, res.Item)))
	}
	p.MarkDirty()

	c.Ex.broadcast(c.Room.Id, messaging.Envelope{
		Type: messaging.EventMessage,
		Text: fmt.Sprintf("%s skins the %s.", p.Name, corpse.Name),
	}, game.Key(p.Name))
	return nil
}
