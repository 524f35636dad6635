package util

import (
	"encoding/json"

	MQTT "github.com/eclipse/paho.mqtt.golang"
)

type PanelAvailability struct {
	Topic               string `json:"topic"`
	PayloadAvailable    string `json:"payload_available"`
	PayloadNotAvailable string `json:"payload_not_available"`
}

type PanelHostInfo struct {
	Name        string   `json:"name"`
	Identifiers []string `json:"ids"`
}

// PanelAdvertisement tells the game backend which devices this host renders
// and where it expects their snapshots and commands.
type PanelAdvertisement struct {
	Availability []PanelAvailability `json:"availability"`
	Host         PanelHostInfo       `json:"host"`
	Actions      []string            `json:"actions"`
	UniqueID     string              `json:"uniq_id"`
	Name         string              `json:"name"`
	Title        string              `json:"title"`
	Kind         string              `json:"kind"`
	StateTopic   string              `json:"state_topic"`
	CommandTopic string              `json:"command_topic"`
	Qos          int                 `json:"qos"`
}

func (ad PanelAdvertisement) ToJson() string {
	data, err := json.Marshal(ad)
	if err != nil {
		Logger.Error().Msgf("Error marshalling PanelAdvertisement: %v", err)
		return ""
	}
	return string(data)
}

func ConstructPanelAdvertisement(d Device) PanelAdvertisement {
	actions := d.Kind.Actions()
	if actions == nil {
		actions = []string{}
	}
	hostID := Config.GetString("id_base")
	return PanelAdvertisement{
		Name:         d.Name,
		Title:        d.DisplayTitle(),
		Kind:         string(d.Kind),
		StateTopic:   d.State_topic,
		CommandTopic: d.CommandTopic(),
		Actions:      actions,
		Availability: []PanelAvailability{
			{
				Topic:               OnlineTopic(),
				PayloadAvailable:    "online",
				PayloadNotAvailable: "offline",
			},
		},
		Qos:      0,
		UniqueID: "panel-" + d.Name,
		Host: PanelHostInfo{
			Name:        hostID,
			Identifiers: []string{hostID},
		},
	}
}

func DiscoveryTopic(device string) string {
	return Topic("discovery", device, "config")
}

// AdvertisePanels publishes one retained advert per device.
func AdvertisePanels(devices []Device, client MQTT.Client) {
	for _, d := range devices {
		ad := ConstructPanelAdvertisement(d)
		if token := client.Publish(DiscoveryTopic(d.Name), 0, true, ad.ToJson()); token.Wait() && token.Error() != nil {
			Logger.Error().Msgf("Error publishing advert for %s: %v", d.Name, token.Error())
		}
	}
}
