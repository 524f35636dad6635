package panels

import (
	"strings"

	"github.com/elijahnyp/device_panels/state"
)

// RenderMixer draws the gas mixer console and its port settings table.
func RenderMixer(data state.MixerData) Panel {
	configuring := bool(data.Configuring)
	power := bool(data.Power)

	control := Section{
		Title: "Gas Mixer",
		Buttons: []Button{
			{
				Key:      "button1",
				Icon:     pick(power, "power-off", "times"),
				Label:    pick(power, "On", "Off"),
				Selected: power,
				Disabled: configuring,
				Action:   act("power"),
			},
			{
				Key:      "button2",
				Icon:     "wrench",
				Selected: configuring,
				Action:   act("configure"),
			},
		},
	}

	flow := Item{Label: "Flow Rate"}
	switch {
	case data.FlowRate == 0:
		flow.Text = "No Output port!"
	case configuring:
		flow.Input = &NumberInput{
			Value:  data.FlowRate,
			Min:    0,
			Max:    data.MaxFlowRate,
			Unit:   "L/s",
			Action: "set_flow_rate",
			Param:  "rate",
		}
		flow.Buttons = []Button{{
			Key:      "max",
			Icon:     "plus",
			Label:    "Max",
			Disabled: data.FlowRate == data.MaxFlowRate,
			Action:   act("set_flow_rate", "rate", data.MaxFlowRate),
		}}
	default:
		flow.Text = FormatNumber(data.FlowRate) + " L/s"
	}

	control.Items = []Item{
		flow,
		{
			Label: "Current Flow Rate",
			Bar: &ProgressBar{
				Value: data.CurrentFlowRate,
				Min:   0,
				Max:   data.FlowRate,
				Color: FlowColor(data.CurrentFlowRate, data.FlowRate),
				Text:  FormatNumber(data.CurrentFlowRate) + " L/s",
			},
		},
		{
			Label: "Load",
			Bar: &ProgressBar{
				Value: data.PowerDraw,
				Min:   0,
				Max:   data.MaxPowerDraw,
				Color: LoadColor(data.PowerDraw, data.MaxPowerDraw),
				Text:  FormatNumber(data.PowerDraw) + " W",
			},
		},
	}

	p := Panel{
		Kind:     string(state.KindMixer),
		Title:    "Gas Mixer",
		Width:    470,
		Height:   330,
		Sections: []Section{control},
	}
	if len(data.Ports) > 0 {
		p.Sections = append(p.Sections, Section{
			Title: "Settings",
			Table: portTable(data.Ports, configuring),
		})
	}
	return p
}

func portTable(ports []state.Port, configuring bool) *Table {
	t := &Table{Header: []string{"Port"}}
	if configuring {
		t.Header = append(t.Header, "Input", "Output")
	} else {
		t.Header = append(t.Header, "Mode")
	}
	t.Header = append(t.Header, "Concentration")
	if configuring {
		t.Header = append(t.Header, "Lock")
	}

	for _, port := range ports {
		input, output, lock := bool(port.Input), bool(port.Output), bool(port.Lock)
		row := Row{Key: port.Dir, Cells: []Cell{{Text: port.Dir + " Port"}}}

		if configuring {
			row.Cells = append(row.Cells,
				Cell{Button: &Button{
					Icon:     pick(input, "power-off", "times"),
					Label:    pick(input, "On", "Off"),
					Selected: input,
					Disabled: output,
					Action:   act("switch_mode", "mode", pick(input, "none", "in"), "dir", port.Dir),
				}},
				Cell{Button: outputButton(port.Dir, output)},
			)
		} else {
			var modes []string
			if input {
				modes = append(modes, "Input")
			}
			if output {
				modes = append(modes, "Output")
			}
			row.Cells = append(row.Cells, Cell{Text: strings.Join(modes, " ")})
		}

		concentration := FormatNumber(port.Concentration) + " %"
		switch {
		case !input:
			row.Cells = append(row.Cells, Cell{Button: &Button{Label: "None", Disabled: true}})
		case configuring && !lock:
			row.Cells = append(row.Cells, Cell{Input: &NumberInput{
				Value:  port.Concentration,
				Min:    0,
				Max:    100,
				Unit:   "%",
				Action: "set_concentration",
				Param:  "concentration",
				Fixed:  map[string]any{"dir": port.Dir},
			}})
		default:
			row.Cells = append(row.Cells, Cell{Text: concentration})
		}

		if configuring {
			row.Cells = append(row.Cells, Cell{Button: &Button{
				Icon:     pick(lock, "lock", "unlock"),
				Label:    pick(lock, "Locked", "Unlocked"),
				Selected: lock,
				Disabled: !input,
				Action:   act("switch_lock", "dir", port.Dir),
			}})
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// an output port can't be switched off from here, only another port made
// the output
func outputButton(dir string, output bool) *Button {
	b := &Button{
		Icon:     pick(output, "power-off", "times"),
		Label:    pick(output, "On", "Off"),
		Selected: output,
	}
	if !output {
		b.Action = act("switch_mode", "mode", "out", "dir", dir)
	}
	return b
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
