package util

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/elijahnyp/device_panels/state"
)

var (
	ErrUnknownDevice = errors.New("unknown device")
	ErrNoSnapshot    = errors.New("no snapshot received yet")
)

// Model is the configured device list. Devices is replaced on config reload
// while handlers and MQTT callbacks read it, so access goes through mu.
type Model struct {
	Devices []Device `mapstructure:"devices"`
	status  *ModelStatus
	mu      sync.RWMutex
}

// Device is one in-game object with a panel. Act_topic defaults to
// <state_topic>/act.
type Device struct {
	Name        string     `mapstructure:"name" json:"name"`
	Kind        state.Kind `mapstructure:"kind" json:"kind"`
	Title       string     `mapstructure:"title" json:"title,omitempty"`
	State_topic string     `mapstructure:"state_topic" json:"state_topic"`
	Act_topic   string     `mapstructure:"act_topic" json:"act_topic"`
}

func (d Device) CommandTopic() string {
	if d.Act_topic != "" {
		return d.Act_topic
	}
	return d.State_topic + "/act"
}

func (d Device) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

// DeviceStatus is the latest snapshot seen for a device.
type DeviceStatus struct {
	Snapshot state.Snapshot
	Raw      []byte
	Updated  int64
}

type ModelStatus struct {
	mu            sync.RWMutex
	Device_status map[string]DeviceStatus
}

func newModelStatus() *ModelStatus {
	return &ModelStatus{Device_status: make(map[string]DeviceStatus)}
}

func (s *ModelStatus) Update(device string, snap state.Snapshot, raw []byte) DeviceStatus {
	st := DeviceStatus{Snapshot: snap, Raw: raw, Updated: time.Now().Unix()}
	s.mu.Lock()
	s.Device_status[device] = st
	s.mu.Unlock()
	return st
}

func (s *ModelStatus) Get(device string) (DeviceStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.Device_status[device]
	return st, ok
}

func (s *ModelStatus) Forget(device string) {
	s.mu.Lock()
	delete(s.Device_status, device)
	s.mu.Unlock()
}

func (m *Model) ModelStatus() *ModelStatus {
	m.mu.RLock()
	status := m.status
	m.mu.RUnlock()
	if status != nil {
		return status
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == nil {
		m.status = newModelStatus()
	}
	return m.status
}

func (m *Model) FindDeviceByTopic(topic string) (Device, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, entry := range m.Devices {
		if entry.State_topic == topic {
			return entry, true
		}
	}
	return Device{}, false
}

func (m *Model) FindDevice(name string) (Device, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, entry := range m.Devices {
		if entry.Name == name {
			return entry, true
		}
	}
	return Device{}, false
}

// Snapshot returns the device and its latest snapshot.
func (m *Model) Snapshot(name string) (Device, DeviceStatus, error) {
	dev, ok := m.FindDevice(name)
	if !ok {
		return Device{}, DeviceStatus{}, fmt.Errorf("%w: %q", ErrUnknownDevice, name)
	}
	st, ok := m.ModelStatus().Get(name)
	if !ok {
		return dev, DeviceStatus{}, fmt.Errorf("%s: %w", name, ErrNoSnapshot)
	}
	return dev, st, nil
}

// BuildModel reloads the device list from config. Devices with an unknown
// kind or no state topic are dropped; snapshots of removed devices are
// forgotten.
func (m *Model) BuildModel() error {
	var loaded Model
	err := Config.UnmarshalKey("model", &loaded)
	if err != nil {
		Logger.Error().Msgf("error unmarshaling model: %v", err)
		return fmt.Errorf("unmarshaling model: %w", err)
	}
	devices := make([]Device, 0, len(loaded.Devices))
	seen := make(map[string]bool)
	for _, d := range loaded.Devices {
		switch {
		case d.Name == "" || d.State_topic == "":
			Logger.Warn().Msgf("device %q missing name or state_topic, skipping", d.Name)
		case !d.Kind.Valid():
			Logger.Warn().Msgf("device %q has unknown kind %q, skipping", d.Name, d.Kind)
		case seen[d.Name]:
			Logger.Warn().Msgf("device %q defined twice, keeping the first", d.Name)
		default:
			seen[d.Name] = true
			devices = append(devices, d)
		}
	}
	status := m.ModelStatus()
	m.mu.Lock()
	removed := m.Devices
	m.Devices = devices
	m.mu.Unlock()
	for _, old := range removed {
		if !seen[old.Name] {
			status.Forget(old.Name)
		}
	}
	return nil
}

// DeviceList returns a copy of the current device list.
func (m *Model) DeviceList() []Device {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Device(nil), m.Devices...)
}

func (m *Model) SubscribeTopics() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var topics []string
	for _, d := range m.Devices {
		topics = append(topics, d.State_topic)
	}
	return topics
}
