package panels

import (
	"fmt"

	"github.com/elijahnyp/device_panels/state"
)

// UIState is the transient state one panel instance keeps between renders.
type UIState struct {
	Search       string `json:"search,omitempty"`
	ShowAllGases bool   `json:"show_all_gases,omitempty"`
}

// Toggle applies a local button to the UI state.
func (u UIState) Toggle(local string) UIState {
	if local == LocalShowAllGases {
		u.ShowAllGases = !u.ShowAllGases
	}
	return u
}

// Render draws the panel for any snapshot kind.
func Render(snap state.Snapshot, ui UIState) (Panel, error) {
	switch d := snap.(type) {
	case state.AtmosData:
		return RenderSensors(d, ui.ShowAllGases), nil
	case state.MixerData:
		return RenderMixer(d), nil
	case state.MaterialData:
		return RenderMaterial(d, ui.Search), nil
	case nil:
		return Panel{}, fmt.Errorf("%w: nil snapshot", state.ErrUnknownKind)
	default:
		return Panel{}, fmt.Errorf("%w: %T", state.ErrUnknownKind, snap)
	}
}
