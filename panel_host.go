package main

import (
	"errors"
	"fmt"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/elijahnyp/device_panels/panels"
	"github.com/elijahnyp/device_panels/state"
	. "github.com/elijahnyp/device_panels/util"
	"github.com/google/uuid"
)

var ErrUnsupportedAction = errors.New("unsupported action")

var model Model

var subscribedTopics []string

// Command is the envelope published to a device's command topic.
type Command struct {
	Params map[string]any `json:"params"`
	ID     string         `json:"id"`
	Device string         `json:"device"`
	Action string         `json:"action"`
	Issued int64          `json:"issued"`
}

// SnapshotEvent is pushed to websocket clients when a device updates.
type SnapshotEvent struct {
	Device  string     `json:"device"`
	Kind    state.Kind `json:"kind"`
	Updated int64      `json:"updated"`
}

// subscribeDeviceTopics follows the device list, dropping topics of devices
// that left the config.
func subscribeDeviceTopics() {
	current := model.SubscribeTopics()
	keep := make(map[string]bool, len(current))
	for _, topic := range current {
		keep[topic] = true
	}
	for _, topic := range subscribedTopics {
		if !keep[topic] {
			RegisterMQTTSubscription(topic, nil)
		}
	}
	for _, topic := range current {
		RegisterMQTTSubscription(topic, receiver)
	}
	subscribedTopics = current
}

func receiver(client MQTT.Client, message MQTT.Message) {
	Logger.Debug().Msgf("Message Received on topic %s", message.Topic())
	dev, ok := model.FindDeviceByTopic(message.Topic())
	if !ok {
		Logger.Debug().Msgf("topic %s not found in model.  Fix subscription or add to model", message.Topic())
		return
	}
	snap, err := state.Decode(dev.Kind, message.Payload())
	if err != nil {
		Logger.Warn().Msgf("dropping snapshot for %s: %v", dev.Name, err)
		return
	}
	st := model.ModelStatus().Update(dev.Name, snap, message.Payload())
	if wsHub != nil {
		wsHub.BroadcastUpdate("snapshot", SnapshotEvent{
			Device:  dev.Name,
			Kind:    dev.Kind,
			Updated: st.Updated,
		})
	}
}

// Act validates a command against the device's catalogue and publishes it.
func Act(device, action string, params map[string]any) error {
	dev, ok := model.FindDevice(device)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDevice, device)
	}
	if !dev.Kind.Supports(action) {
		return fmt.Errorf("%w: %s does not accept %q", ErrUnsupportedAction, dev.Kind, action)
	}
	if params == nil {
		params = map[string]any{}
	}
	for _, key := range dev.Kind.Params(action) {
		if _, ok := params[key]; !ok {
			return fmt.Errorf("%w: %s needs %q", ErrUnsupportedAction, action, key)
		}
	}
	cmd := Command{
		ID:     uuid.NewString(),
		Device: dev.Name,
		Action: action,
		Params: params,
		Issued: time.Now().Unix(),
	}
	Logger.Info().Msgf("%s: %s %v", dev.Name, action, params)
	if err := PublishJSON(dev.CommandTopic(), false, cmd); err != nil {
		return fmt.Errorf("sending %s to %s: %w", action, dev.Name, err)
	}
	return nil
}

// renderDevice draws the current panel of a device. The title from config
// replaces the panel's default when set.
func renderDevice(name string, ui panels.UIState) (panels.Panel, error) {
	dev, st, err := model.Snapshot(name)
	if err != nil {
		return panels.Panel{}, err
	}
	panel, err := panels.Render(st.Snapshot, ui)
	if err != nil {
		return panels.Panel{}, err
	}
	if dev.Title != "" {
		panel.Title = dev.Title
	}
	return panel, nil
}
