package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/elijahnyp/device_panels/state"
	"github.com/elijahnyp/device_panels/tui"
	. "github.com/elijahnyp/device_panels/util"
	"github.com/spf13/cobra"
)

var (
	configFile string
	logFile    string
	deviceName string
)

var snapshot_poller SnapshotPoller

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "device_panels",
		Short:         "Control panels for in-game devices",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: device_panels.yaml on the search path)")
	root.PersistentFlags().String("log-level", "", "trace, debug, info or warn")
	if err := Config.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level")); err != nil {
		panic(err)
	}

	root.AddCommand(serveCmd(), tuiCmd())
	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host the web panels and relay commands over MQTT",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	cmd.Flags().Int("port", 0, "panel HTTP port")
	if err := Config.BindPFlag("panel_port", cmd.Flags().Lookup("port")); err != nil {
		panic(err)
	}
	return cmd
}

func tuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Show one device panel in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(deviceName)
		},
	}
	cmd.Flags().StringVar(&deviceName, "device", "", "device name from the model")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs here instead of discarding them")
	_ = cmd.MarkFlagRequired("device")
	return cmd
}

// connect wraps MqttInit, turning its connect panic into an error.
func connect() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("connecting to %s: %v", Config.GetString("broker_uri"), r)
		}
	}()
	MqttInit()
	return nil
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	LogInit("trace")
	SetupConfig(configFile)
	RegisterNewConfigListener(func() { LogInit(Config.GetString("log_level")) })
	RegisterNewConfigListener(func() {
		if err := model.BuildModel(); err != nil {
			Logger.Error().Msgf("Error building model: %v", err)
		}
	})
	RegisterNewConfigListener(subscribeDeviceTopics)
	RegisterMQTTConnectHook("advertise", func(client MQTT.Client) {
		AdvertisePanels(model.DeviceList(), client)
	})
	RegisterNewConfigListener(MqttInit)
	OnNewConfig()

	server := NewPanelServer()
	registerHandlers(server)
	if err := server.Start(); err != nil {
		Logger.Error().Msgf("Error starting panel server: %v", err)
	}
	RegisterNewConfigListener(func() { server.Restart() })

	snapshot_poller.MakeSnapshotPoller()
	snapshot_poller.Start()
	RegisterNewConfigListener(func() {
		snapshot_poller.Stop()
		snapshot_poller.MakeSnapshotPoller()
		snapshot_poller.Start()
	})
	Logger.Info().Msg("ready")

	<-ctx.Done()
	Logger.Info().Msg("shutting down")
	snapshot_poller.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		Logger.Warn().Msgf("panel server shutdown: %v", err)
	}
	if Client != nil && Client.IsConnected() {
		Client.Publish(OnlineTopic(), 0, true, "offline").WaitTimeout(time.Second)
		Client.Disconnect(1000)
	}
	return nil
}

func runTUI(name string) error {
	var out io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		out = f
	}
	LogInitTo(out, "info")
	SetupConfig(configFile)
	LogInitTo(out, Config.GetString("log_level"))
	if err := model.BuildModel(); err != nil {
		return err
	}
	dev, ok := model.FindDevice(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownDevice, name)
	}

	m := tui.New(dev.Name, dev.Title, func(action string, params map[string]any) error {
		return Act(dev.Name, action, params)
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	RegisterMQTTSubscription(dev.State_topic, func(client MQTT.Client, msg MQTT.Message) {
		snap, err := state.Decode(dev.Kind, msg.Payload())
		if err != nil {
			Logger.Warn().Msgf("dropping snapshot for %s: %v", dev.Name, err)
			return
		}
		model.ModelStatus().Update(dev.Name, snap, msg.Payload())
		p.Send(tui.SnapshotMsg{Snapshot: snap})
	})
	if err := connect(); err != nil {
		return err
	}
	defer Client.Disconnect(250)

	_, err := p.Run()
	return err
}
