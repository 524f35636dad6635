package util

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
)

var Client MQTT.Client

var publishTimeout = 5 * time.Second

var (
	registryMu      sync.Mutex
	subscriptions   map[string]MQTT.MessageHandler
	connectHandlers map[string]func(MQTT.Client)
)

func OnlineTopic() string {
	return Topic("online")
}

var connectHandler MQTT.OnConnectHandler = func(client MQTT.Client) {
	Logger.Info().Msg("Connected")
	subscribe(client)
	client.Publish(OnlineTopic(), 0, true, "online").Wait()
	registryMu.Lock()
	handlers := make([]func(MQTT.Client), 0, len(connectHandlers))
	for _, handler := range connectHandlers {
		handlers = append(handlers, handler)
	}
	registryMu.Unlock()
	for _, handler := range handlers {
		handler(client)
	}
}

func RegisterMQTTConnectHook(name string, handler func(MQTT.Client)) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if connectHandlers == nil {
		connectHandlers = make(map[string]func(client MQTT.Client))
	}
	if handler == nil {
		delete(connectHandlers, name)
	} else {
		connectHandlers[name] = handler
	}
}

func subscribe(client MQTT.Client) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for topic, handler := range subscriptions {
		if token := client.Subscribe(topic, 0, handler); token.Wait() && token.Error() != nil {
			Logger.Error().Msgf("Error Subscribing to %s: %v", topic, token.Error())
		}
	}
}

// RegisterMQTTSubscription remembers a handler for topic so it survives
// reconnects. A nil handler removes it. When already connected the
// subscription is made immediately.
func RegisterMQTTSubscription(topic string, handler MQTT.MessageHandler) {
	registryMu.Lock()
	if subscriptions == nil {
		subscriptions = make(map[string]MQTT.MessageHandler)
	}
	if handler == nil {
		delete(subscriptions, topic)
	} else {
		subscriptions[topic] = handler
	}
	registryMu.Unlock()

	if Client == nil || !Client.IsConnected() {
		return
	}
	if handler == nil {
		Client.Unsubscribe(topic).Wait()
		return
	}
	if token := Client.Subscribe(topic, 0, handler); token.Wait() && token.Error() != nil {
		Logger.Error().Msgf("Error Subscribing to %s: %v", topic, token.Error())
	}
}

// PublishJSON marshals v and publishes it fire-and-forget.
func PublishJSON(topic string, retained bool, v any) error {
	if Client == nil {
		return fmt.Errorf("mqtt client not initialised")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling payload for %s: %w", topic, err)
	}
	token := Client.Publish(topic, 0, retained, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publishing to %s: timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

func receiver(client MQTT.Client, message MQTT.Message) {
	Logger.Warn().Msgf("Received message on %v but no handler", message.Topic())
}

var connectLostHandler MQTT.ConnectionLostHandler = func(client MQTT.Client, err error) {
	Logger.Info().Msgf("Connect lost: %v", err)
}

func MqttInit() {
	opts := MQTT.NewClientOptions()
	opts.AddBroker(Config.GetString("broker_uri"))
	opts.SetClientID(Config.GetString("id_base") + "_" + GetRandString(6))
	opts.SetUsername(Config.GetString("username"))
	opts.SetPassword(Config.GetString("password"))
	opts.SetCleanSession(Config.GetBool("cleansess"))
	opts.SetAutoReconnect(true)
	opts.SetWill(OnlineTopic(), "offline", 0, true)
	opts.OnConnectionLost = connectLostHandler
	opts.OnConnect = connectHandler
	opts.SetDefaultPublishHandler(receiver)

	if Client != nil {
		Logger.Debug().Msg("Client exists - destroying")
		if Client.IsConnected() {
			Client.Disconnect(1000)
		}
		Client = nil
	}

	Client = MQTT.NewClient(opts)

	if token := Client.Connect(); token.Wait() && token.Error() != nil {
		panic(token.Error())
	}
}
