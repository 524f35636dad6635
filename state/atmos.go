package state

// AtmosData is the snapshot of an atmospheric control console.
type AtmosData struct {
	Sensors     []Sensor `json:"sensors"`
	MaxRate     float64  `json:"maxrate"`
	MaxPressure float64  `json:"maxpressure"`
}

func (AtmosData) Kind() Kind { return KindSensor }

type Sensor struct {
	IDTag      string      `json:"id_tag"`
	Name       string      `json:"name"`
	Datapoints []Datapoint `json:"datapoints"`
}

// Datapoint is one named, unit-tagged reading. Gas concentrations use the
// unit "%".
type Datapoint struct {
	Name string  `json:"datapoint"`
	Data Reading `json:"data"`
	Unit string  `json:"unit"`
}

func (d Datapoint) IsGas() bool {
	return d.Unit == "%"
}
