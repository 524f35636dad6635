package util

import (
	"crypto/rand"
	"fmt"
	"reflect"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const ENV_PREFIX = "PANELS"

var Config = viper.New()

var config_listeners []func()

func RegisterNewConfigListener(new_listener func()) {
	for _, listener := range config_listeners {
		if reflect.ValueOf(new_listener).Pointer() == reflect.ValueOf(listener).Pointer() {
			Logger.Warn().Msg("config listener already registered")
			return
		}
	}
	config_listeners = append(config_listeners, new_listener)
}

func OnNewConfig() {
	for _, listener := range config_listeners {
		listener()
	}
}

func GetRandString(n int) string {
	const letterBytes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	b := make([]byte, n)
	for i := range b {
		randBytes := make([]byte, 1)
		if _, err := rand.Read(randBytes); err != nil {
			b[i] = letterBytes[i%len(letterBytes)]
		} else {
			b[i] = letterBytes[int(randBytes[0])%len(letterBytes)]
		}
	}
	return string(b)
}

func setDefaults() {
	Config.SetDefault("broker_uri", "tcp://mqtt")
	Config.SetDefault("cleansess", false)
	Config.SetDefault("id_base", "device_panels")
	Config.SetDefault("username", "")
	Config.SetDefault("password", "")
	Config.SetDefault("topic_prefix", "panels")
	Config.SetDefault("panel_port", 8090)
	Config.SetDefault("log_level", "info")
	Config.SetDefault("snapshot_poller.enabled", false)
	Config.SetDefault("snapshot_poller.frequency", 5)
	Config.SetDefault("snapshot_poller.workers", 2)
}

// SetupConfig loads defaults, the config file and the environment. A
// non-empty configFile overrides the search path.
func SetupConfig(configFile string) {
	Config.SetEnvPrefix(ENV_PREFIX)
	setDefaults()

	if configFile != "" {
		Config.SetConfigFile(configFile)
	} else {
		Config.SetConfigName("device_panels")
		Config.AddConfigPath("/")
		Config.AddConfigPath("./")
		Config.AddConfigPath("./config")
		Config.AddConfigPath("/etc")
		Config.AddConfigPath("/device_panels")
		Config.AddConfigPath("/device_panels/config")
	}

	err := Config.ReadInConfig()
	if err != nil {
		Logger.Error().Msgf("unable to read config file: %v", fmt.Errorf("%v", err))
	}

	Config.AutomaticEnv()

	Config.WatchConfig()
	Config.OnConfigChange(func(e fsnotify.Event) {
		Logger.Info().Msgf("Config file changed: %v", e.Name)
		Logger.Debug().Msgf("Config Additional Info: %v", e.String())
		OnNewConfig()
	})
}

// Topic joins parts under the configured topic prefix.
func Topic(parts ...string) string {
	t := Config.GetString("topic_prefix")
	for _, p := range parts {
		if t == "" {
			t = p
			continue
		}
		t += "/" + p
	}
	return t
}
