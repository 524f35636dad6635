package panels

import (
	"github.com/elijahnyp/device_panels/state"
)

// RenderSensors draws the atmospheric control console. Each sensor gets a
// readings section and a gases section; zero-valued gases are hidden unless
// showAllGases is set.
func RenderSensors(data state.AtmosData, showAllGases bool) Panel {
	p := Panel{
		Kind:   string(state.KindSensor),
		Title:  "Atmospherics Control",
		Width:  450,
		Height: 600,
	}
	if len(data.Sensors) == 0 {
		p.Notice = "No sensors connected."
		return p
	}
	for _, sensor := range data.Sensors {
		readings := Section{Title: sensor.Name}
		gases := Section{
			Title: sensor.Name + " Gases",
			Buttons: []Button{{
				Key:      "showAllGasesButton",
				Label:    "Show All Gases",
				Icon:     "book",
				Local:    LocalShowAllGases,
				Selected: showAllGases,
			}},
		}
		for _, dp := range sensor.Datapoints {
			if !dp.Data.Valid {
				continue
			}
			text := dp.Data.Text + " " + dp.Unit
			if !dp.IsGas() {
				readings.Items = append(readings.Items, Item{
					Label: Capitalize(dp.Name),
					Text:  text,
				})
				continue
			}
			value := dp.Data.Float()
			if !showAllGases && value == 0 {
				continue
			}
			gases.Items = append(gases.Items, Item{
				Label: DatapointLabel(dp.Name),
				Bar: &ProgressBar{
					Value: finite(value),
					Min:   0,
					Max:   100,
					Color: GasColor(dp.Name),
					Text:  text,
				},
			})
		}
		p.Sections = append(p.Sections, readings, gases)
	}
	return p
}
