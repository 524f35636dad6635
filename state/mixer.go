package state

// MixerData is the snapshot of a gas mixer.
type MixerData struct {
	Ports           []Port  `json:"ports"`
	PowerDraw       float64 `json:"power_draw"`
	MaxPowerDraw    float64 `json:"max_power_draw"`
	FlowRate        float64 `json:"flow_rate"`
	MaxFlowRate     float64 `json:"max_flow_rate"`
	CurrentFlowRate float64 `json:"current_flow_rate"`
	Power           Flag    `json:"power"`
	Configuring     Flag    `json:"configuring"`
}

func (MixerData) Kind() Kind { return KindMixer }

// Port is one mixer connection point.
type Port struct {
	Dir           string  `json:"dir"`
	Concentration float64 `json:"concentration"`
	Input         Flag    `json:"input"`
	Output        Flag    `json:"output"`
	Lock          Flag    `json:"lock"`
}
