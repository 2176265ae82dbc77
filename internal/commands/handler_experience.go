package commands

import (
	"fmt"

	"github.com/emberfallmud/emberfall/internal/assets"
)

// handleExperience shows the two-column experience sheet.
func handleExperience(c *Context) error {
	p := c.Player
	leveling := c.World.Library.Leveling.Get("default")
	if leveling == nil {
		leveling = &assets.Leveling{}
	}

	sting := "None"
	if p.DeathStingPoints > 0 {
		sting = fmt.Sprintf("%d points", p.DeathStingPoints)
	}

	levelLabel := "Exp until lvl:"
	if p.Level >= 100 {
		levelLabel = "Exp to next TP:"
	}

	col := func(left, right string) {
		p.Queue(fmt.Sprintf(" %-35s %s", left, right))
	}

	col(fmt.Sprintf(" Level: %d", p.Level),
		fmt.Sprintf("Recent Deaths: %d", p.DeathsRecent))
	col(numPrinter.Sprintf(" Experience: %d", p.Experience),
		numPrinter.Sprintf("Field Exp: %d/%d", p.UnabsorbedExp, p.FieldExpCap()))
	col(numPrinter.Sprintf(" Total Exp: %d", p.Experience),
		fmt.Sprintf("Death's Sting: %s", sting))
	col(numPrinter.Sprintf(" %s %d", levelLabel, p.ExpToNext(leveling)), "")
	col(fmt.Sprintf(" PTPs/MTPs/STPs: %d/%d/%d", p.PTPs, p.MTPs, p.STPs), "")

	p.Queue(fmt.Sprintf("\nYour mind is %s.", capitalize(p.MindStatus())))
	return nil
}
