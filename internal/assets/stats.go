package assets

// StatNames is the closed set of attribute keys carried by every
// player and monster stat block. Unknown keys fail validation.
var StatNames = []string{
	"STR", "CON", "DEX", "AGI",
	"LOG", "INT", "WIS", "INF",
	"ZEA", "ESS", "DIS", "AUR",
}

// ValidStat reports whether name is one of the twelve attributes.
func ValidStat(name string) bool {
	for _, s := range StatNames {
		if s == name {
			return true
		}
	}
	return false
}

// StatBonus converts a raw attribute value into its bonus. The
// baseline is 50; every two points above or below shifts the bonus
// by one, plus any racial modifier.
func StatBonus(value, racialMod int) int {
	return (value-50)/2 + racialMod
}
