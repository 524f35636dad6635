package panels

import (
	"testing"

	"github.com/elijahnyp/device_panels/state"
)

func testAtmos() state.AtmosData {
	return state.AtmosData{
		Sensors: []state.Sensor{{
			IDTag: "mix_sensor",
			Name:  "Mixing Chamber",
			Datapoints: []state.Datapoint{
				{Name: "pressure", Data: state.Text("101.3"), Unit: "kPa"},
				{Name: "temperature", Data: state.Text("293.15"), Unit: "K"},
				{Name: "oxygen", Data: state.Text("21"), Unit: "%"},
				{Name: "carbon_dioxide", Data: state.Text("0"), Unit: "%"},
				{Name: "deuterium", Data: state.Text("3.5"), Unit: "%"},
				{Name: "phoron", Data: state.Reading{}, Unit: "%"},
				{Name: "power", Data: state.Reading{}, Unit: "W"},
			},
		}},
	}
}

func TestRenderSensors_NoSensors(t *testing.T) {
	p := RenderSensors(state.AtmosData{}, false)
	if p.Notice != "No sensors connected." {
		t.Errorf("Notice = %q, expected no sensors notice", p.Notice)
	}
	if len(p.Sections) != 0 {
		t.Errorf("expected no sections, got %d", len(p.Sections))
	}
}

func TestRenderSensors_SplitsReadings(t *testing.T) {
	p := RenderSensors(testAtmos(), false)
	if len(p.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(p.Sections))
	}

	readings := p.Sections[0]
	if readings.Title != "Mixing Chamber" {
		t.Errorf("readings title = %q", readings.Title)
	}
	if len(readings.Items) != 2 {
		t.Fatalf("expected 2 readings, got %d", len(readings.Items))
	}
	if readings.Items[0].Label != "Pressure" || readings.Items[0].Text != "101.3 kPa" {
		t.Errorf("pressure item = %+v", readings.Items[0])
	}

	gases := p.Sections[1]
	if gases.Title != "Mixing Chamber Gases" {
		t.Errorf("gases title = %q", gases.Title)
	}
	if len(gases.Buttons) != 1 || gases.Buttons[0].Local != LocalShowAllGases || gases.Buttons[0].Selected {
		t.Errorf("unexpected toggle button: %+v", gases.Buttons)
	}
	// zero carbon dioxide and null phoron are hidden
	if len(gases.Items) != 2 {
		t.Fatalf("expected 2 gas rows, got %d: %+v", len(gases.Items), gases.Items)
	}
	oxygen := gases.Items[0]
	if oxygen.Label != "Oxygen" || oxygen.Bar == nil {
		t.Fatalf("oxygen item = %+v", oxygen)
	}
	if oxygen.Bar.Value != 21 || oxygen.Bar.Max != 100 || oxygen.Bar.Color != "blue" || oxygen.Bar.Text != "21 %" {
		t.Errorf("oxygen bar = %+v", *oxygen.Bar)
	}
	if gases.Items[1].Bar.Color != "" {
		t.Errorf("deuterium bar color = %q, expected none", gases.Items[1].Bar.Color)
	}
}

func TestRenderSensors_ShowAllGases(t *testing.T) {
	p := RenderSensors(testAtmos(), true)
	gases := p.Sections[1]
	if !gases.Buttons[0].Selected {
		t.Error("toggle should be selected")
	}
	if len(gases.Items) != 3 {
		t.Fatalf("expected 3 gas rows with zero values shown, got %d", len(gases.Items))
	}
	if gases.Items[1].Label != "Carbon Dioxide" || gases.Items[1].Bar.Color != "gray" {
		t.Errorf("carbon dioxide item = %+v", gases.Items[1])
	}
}

func TestRenderSensors_UnparsableGas(t *testing.T) {
	data := state.AtmosData{Sensors: []state.Sensor{{
		Name:       "Broken",
		Datapoints: []state.Datapoint{{Name: "oxygen", Data: state.Text("error"), Unit: "%"}},
	}}}
	p := RenderSensors(data, false)
	items := p.Sections[1].Items
	if len(items) != 1 {
		t.Fatalf("unparsable gas should still be listed, got %d items", len(items))
	}
	if items[0].Bar.Value != 0 || items[0].Bar.Text != "error %" {
		t.Errorf("bar = %+v", *items[0].Bar)
	}
}

func TestRenderSensors_MultipleSensors(t *testing.T) {
	data := testAtmos()
	data.Sensors = append(data.Sensors, state.Sensor{IDTag: "out", Name: "Outlet"})
	p := RenderSensors(data, false)
	if len(p.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(p.Sections))
	}
	if p.Sections[3].Title != "Outlet Gases" {
		t.Errorf("last section = %q", p.Sections[3].Title)
	}
}
