package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/uc-client/pkg/config"
	"github.com/uc-client/pkg/logging"
	"github.com/uc-client/pkg/metrics"
	"github.com/uc-client/pkg/server"
	"github.com/uc-client/pkg/ucclient"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	configFile    = kingpin.Flag("config.file", "Path to configuration file.").Default("config.yaml").String()
	listenAddress = kingpin.Flag("web.listen-address", "Address to listen on for status and telemetry.").String()
	telemetryPath = kingpin.Flag("web.telemetry-path", "Path under which to expose metrics.").String()
	remoteAddr    = kingpin.Flag("remote-addr", "IPv4 address of the Universal Controller.").String()
	remotePort    = kingpin.Flag("remote-port", "Port of the Universal Controller.").Int()
	localPort     = kingpin.Flag("local-port", "Local port of this client.").Int()
	once          = kingpin.Flag("once", "Install the handle, print it and exit.").Bool()
)

func main() {
	kingpin.Parse()

	appConfig, loadErr := config.LoadConfig(*configFile)
	if loadErr != nil {
		appConfig = config.Default()
	}
	applyFlags(appConfig)

	// client id, level and format must be set before the first log line
	setupLogging(appConfig)
	defer logging.Flush()

	if loadErr != nil {
		// If config file doesn't exist, continue with defaults
		logging.Logf("Warning: Failed to load config file: %v, using defaults", loadErr)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		logging.Log("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := run(ctx, appConfig); err != nil {
		logging.Fatalf("Client error: %v", err)
	}
}

func setupLogging(cfg *config.Config) {
	logging.SetClientID(cfg.Controller.ClientID)
	logging.SetLevel(cfg.Log.Level)
	logging.SetFormat(cfg.Log.Format)
}

func applyFlags(cfg *config.Config) {
	if *listenAddress != "" {
		cfg.Web.ListenAddress = *listenAddress
	}
	if *telemetryPath != "" {
		cfg.Web.TelemetryPath = *telemetryPath
	}
	if *remoteAddr != "" {
		cfg.Controller.RemoteAddr = *remoteAddr
	}
	if *remotePort != 0 {
		cfg.Controller.RemotePort = *remotePort
	}
	if *localPort != 0 {
		cfg.Controller.LocalPort = *localPort
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	holder := ucclient.Default()
	collector := metrics.Default()

	client, err := install(holder, cfg)
	if err != nil {
		return err
	}

	if *once {
		fmt.Println(client.Endpoint())
		return nil
	}

	status, err := server.NewStatusServer(holder, cfg.Web.TelemetryPath, !cfg.Controller.SkipValidation, collector)
	if err != nil {
		return fmt.Errorf("failed to create status server: %w", err)
	}
	return status.ListenAndServe(ctx, cfg.Web.ListenAddress)
}

// install creates the handle, configuring it when the config carries an endpoint.
func install(holder *ucclient.Holder, cfg *config.Config) (*ucclient.Client, error) {
	if !cfg.HasEndpoint() {
		c := holder.Init()
		logging.Logf("Controller handle created without endpoint")
		return c, nil
	}

	ep := cfg.Endpoint()
	if !cfg.Controller.SkipValidation {
		if err := ep.Validate(); err != nil {
			return nil, fmt.Errorf("invalid controller endpoint: %w", err)
		}
	}

	c := holder.Configure(ep)
	logging.Logf("Controller handle configured: %s", ep)
	return c, nil
}
