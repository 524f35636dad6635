// Package panels turns device snapshots into panel view models. Every
// function here is pure: the same snapshot and UI state always render the
// same panel, and nothing is retained between renders.
package panels

import (
	"math"
	"strconv"
)

// Local UI toggles carried by buttons that change panel state instead of
// sending a command.
const (
	LocalShowAllGases = "show_all_gases"
)

// Action is a command sent to the device when a widget is used.
type Action struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params,omitempty"`
}

func act(name string, kv ...any) *Action {
	a := &Action{Name: name}
	if len(kv) > 0 {
		a.Params = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			a.Params[kv[i].(string)] = kv[i+1]
		}
	}
	return a
}

type Button struct {
	Action   *Action `json:"action,omitempty"`
	Key      string  `json:"key,omitempty"`
	Label    string  `json:"label,omitempty"`
	Icon     string  `json:"icon,omitempty"`
	Local    string  `json:"local,omitempty"`
	Selected bool    `json:"selected"`
	Disabled bool    `json:"disabled"`
}

// Active reports whether pressing the button does anything.
func (b Button) Active() bool {
	return !b.Disabled && (b.Action != nil || b.Local != "")
}

type ProgressBar struct {
	Color string  `json:"color,omitempty"`
	Text  string  `json:"text"`
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Fraction is how full the bar is, in [0, 1].
func (p ProgressBar) Fraction() float64 {
	span := p.Max - p.Min
	if span <= 0 {
		if p.Value > p.Min {
			return 1
		}
		return 0
	}
	f := (p.Value - p.Min) / span
	if math.IsNaN(f) {
		return 0
	}
	return math.Max(0, math.Min(1, f))
}

// NumberInput edits a single command parameter. Fixed holds the other
// parameters sent with it.
type NumberInput struct {
	Fixed  map[string]any `json:"fixed,omitempty"`
	Unit   string         `json:"unit,omitempty"`
	Action string         `json:"action"`
	Param  string         `json:"param"`
	Value  float64        `json:"value"`
	Min    float64        `json:"min"`
	Max    float64        `json:"max"`
}

// Clamp limits v to the input's range.
func (n NumberInput) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return n.Min
	}
	if v < n.Min {
		return n.Min
	}
	if n.Max >= n.Min && v > n.Max {
		return n.Max
	}
	return v
}

// Change builds the command sent when the value is set to v.
func (n NumberInput) Change(v float64) Action {
	params := make(map[string]any, len(n.Fixed)+1)
	for k, val := range n.Fixed {
		params[k] = val
	}
	params[n.Param] = n.Clamp(v)
	return Action{Name: n.Action, Params: params}
}

type SearchBox struct {
	Placeholder string `json:"placeholder"`
	Value       string `json:"value"`
}

// Item is one labeled row of a section.
type Item struct {
	Bar     *ProgressBar `json:"bar,omitempty"`
	Input   *NumberInput `json:"input,omitempty"`
	Label   string       `json:"label,omitempty"`
	Text    string       `json:"text,omitempty"`
	Buttons []Button     `json:"buttons,omitempty"`
}

type Cell struct {
	Button *Button      `json:"button,omitempty"`
	Input  *NumberInput `json:"input,omitempty"`
	Text   string       `json:"text,omitempty"`
}

type Row struct {
	Key   string `json:"key"`
	Cells []Cell `json:"cells"`
}

type Table struct {
	Header []string `json:"header"`
	Rows   []Row    `json:"rows"`
}

type Section struct {
	Search  *SearchBox `json:"search,omitempty"`
	Table   *Table     `json:"table,omitempty"`
	Title   string     `json:"title"`
	Notice  string     `json:"notice,omitempty"`
	Buttons []Button   `json:"buttons,omitempty"`
	Items   []Item     `json:"items,omitempty"`
}

// Panel is the rendered view of one device.
type Panel struct {
	Kind     string    `json:"kind"`
	Title    string    `json:"title"`
	Notice   string    `json:"notice,omitempty"`
	Sections []Section `json:"sections,omitempty"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
}

// FindBar looks up a progress bar by item label, optionally restricted to a
// section title.
func (p Panel) FindBar(section, label string) (ProgressBar, bool) {
	for _, s := range p.Sections {
		if section != "" && s.Title != section {
			continue
		}
		for _, it := range s.Items {
			if it.Bar != nil && it.Label == label {
				return *it.Bar, true
			}
		}
	}
	return ProgressBar{}, false
}

// FormatNumber prints a number the way the game UI does: no trailing zeros.
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// finite replaces NaN and infinities with zero so bars stay drawable.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
