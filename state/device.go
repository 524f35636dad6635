package state

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind names the panel a device is rendered with.
type Kind string

const (
	KindSensor   Kind = "atmos_control"
	KindMixer    Kind = "atmos_mixer"
	KindMaterial Kind = "material"
)

var ErrUnknownKind = errors.New("unknown device kind")

// Snapshot is one immutable state object pushed by the backend for a device.
type Snapshot interface {
	Kind() Kind
}

// commands each kind accepts, with the payload keys they carry
var catalogue = map[Kind]map[string][]string{
	KindSensor: {},
	KindMixer: {
		"power":             nil,
		"configure":         nil,
		"set_flow_rate":     {"rate"},
		"switch_mode":       {"mode", "dir"},
		"set_concentration": {"dir", "concentration"},
		"switch_lock":       {"dir"},
	},
	KindMaterial: {
		"make": {"ref", "sublist"},
	},
}

func (k Kind) Valid() bool {
	_, ok := catalogue[k]
	return ok
}

// Supports reports whether a device of this kind accepts the named command.
func (k Kind) Supports(action string) bool {
	_, ok := catalogue[k][action]
	return ok
}

// Actions lists the commands of a kind in a stable order.
func (k Kind) Actions() []string {
	var out []string
	for _, name := range actionOrder {
		if k.Supports(name) {
			out = append(out, name)
		}
	}
	return out
}

// Params returns the payload keys a command carries.
func (k Kind) Params(action string) []string {
	return catalogue[k][action]
}

var actionOrder = []string{
	"power",
	"configure",
	"set_flow_rate",
	"switch_mode",
	"set_concentration",
	"switch_lock",
	"make",
}

// Decode parses a raw backend payload into the snapshot type for kind.
func Decode(kind Kind, payload []byte) (Snapshot, error) {
	var (
		snap Snapshot
		err  error
	)
	switch kind {
	case KindSensor:
		var d AtmosData
		err = json.Unmarshal(payload, &d)
		snap = d
	case KindMixer:
		var d MixerData
		err = json.Unmarshal(payload, &d)
		snap = d
	case KindMaterial:
		var d MaterialData
		err = json.Unmarshal(payload, &d)
		snap = d
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s snapshot: %w", kind, err)
	}
	return snap, nil
}
