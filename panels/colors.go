package panels

import "strings"

const (
	ColorGood    = "green"
	ColorAverage = "yellow"
	ColorBad     = "red"
	ColorDefault = "white"
)

var gasColors = map[string]string{
	"oxygen":           "blue",
	"nitrogen":         "crimson",
	"phoron":           "#FF8C00",
	"hydrogen":         "indigo",
	"carbon_dioxide":   "gray",
	"sleeping_agent":   "yellow",
	"helium":           "#6B8E23",
	"deuterium":        "",
	"tritium":          "#B22222",
	"boron":            "silver",
	"sulfur_dioxide":   "#9ACD32",
	"nitrogen_dioxide": "salmon",
	"chlorine":         "#00FF7F",
	"water":            "mediumblue",
}

// GasColor maps a gas datapoint name to its bar color. Unknown gases are
// white. Deuterium has no color of its own and returns "", leaving the bar
// at the renderer's default.
func GasColor(gas string) string {
	if c, ok := gasColors[gas]; ok {
		return c
	}
	return ColorDefault
}

// FlowColor grades a live flow against its target: more is better.
func FlowColor(current, target float64) string {
	switch {
	case current >= target/3*2:
		return ColorGood
	case current >= target/3:
		return ColorAverage
	default:
		return ColorBad
	}
}

// LoadColor grades a power draw against its maximum: more is worse.
func LoadColor(draw, limit float64) string {
	switch {
	case draw >= limit/3*2:
		return ColorBad
	case draw >= limit/3:
		return ColorAverage
	default:
		return ColorGood
	}
}

var namedColors = map[string]string{
	"blue":       "#0000FF",
	"crimson":    "#DC143C",
	"indigo":     "#4B0082",
	"gray":       "#808080",
	"grey":       "#808080",
	"yellow":     "#FFFF00",
	"silver":     "#C0C0C0",
	"salmon":     "#FA8072",
	"mediumblue": "#0000CD",
	"white":      "#FFFFFF",
	"green":      "#20B142",
	"red":        "#DB2828",
	"black":      "#000000",
}

// Hex resolves a color name or #RRGGBB value to #RRGGBB. Unknown or empty
// names resolve to "".
func Hex(color string) string {
	color = strings.TrimSpace(color)
	if strings.HasPrefix(color, "#") && len(color) == 7 {
		return strings.ToUpper(color)
	}
	return namedColors[strings.ToLower(color)]
}
