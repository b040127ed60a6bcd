// Package main is the ventbridge CLI: a thin cobra wrapper over
// pkg/bridge exposing the verbs an installer or automation script needs
// against a single ventilation bridge (spec.md §6).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/airnode/ventbridge"
	"github.com/airnode/ventbridge/pkg/bridge"
	"github.com/airnode/ventbridge/pkg/config"
	"github.com/airnode/ventbridge/pkg/sensors"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Exit codes, spec.md §6.
const (
	exitOK               = 0
	exitGeneric          = 1
	exitNotRegistered    = 2
	exitConnectTimeout   = 3
	exitRMIError         = 4
)

var (
	logLevel        string
	logJSON         bool
	hostFlag        string
	timeoutMS       int
	catalogOverride string
)

var log = logrus.New()

// runID correlates every log line emitted during one CLI invocation,
// the way a request id threads through a single server call.
var runID = xid.New().String()

// logEntry is log with run_id already attached; command bodies log
// through this rather than the bare logger.
var logEntry = log.WithField("run_id", runID)

var rootCmd = &cobra.Command{
	Use:           "ventbridge",
	Short:         "Client for a residential ventilation bridge's TCP/UDP protocol",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			level = logrus.InfoLevel
		}
		log.SetLevel(level)
		if logJSON {
			log.SetFormatter(&logrus.JSONFormatter{})
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON")
	rootCmd.PersistentFlags().IntVar(&timeoutMS, "timeout", 5000, "per-request timeout in milliseconds")
	rootCmd.PersistentFlags().StringVar(&catalogOverride, "catalog-override", "", "path to an ini file of pdid sensor overrides, merged on top of the built-in catalog")

	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(deregisterCmd)
	rootCmd.AddCommand(listRegisteredCmd)
	rootCmd.AddCommand(setSpeedCmd)
	rootCmd.AddCommand(setModeCmd)
	rootCmd.AddCommand(setBypassCmd)
	rootCmd.AddCommand(setBoostCmd)
	rootCmd.AddCommand(setAwayCmd)
	rootCmd.AddCommand(setComfoCoolCmd)
	rootCmd.AddCommand(setTemperatureProfileCmd)
	rootCmd.AddCommand(showSensorsCmd)
	rootCmd.AddCommand(showSensorCmd)
	rootCmd.AddCommand(getPropertyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps an error to the spec's exit code taxonomy (spec.md §6).
func exitCodeFor(err error) int {
	var rmiErr *ventbridge.RMIError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, ventbridge.ErrNotRegistered):
		return exitNotRegistered
	case errors.Is(err, context.DeadlineExceeded):
		return exitConnectTimeout
	case errors.As(err, &rmiErr):
		return exitRMIError
	default:
		return exitGeneric
	}
}

// connectedBridge dials host, connects with the CLI's configured
// timeout, and returns a ready-to-use Bridge alongside a cleanup func.
func connectedBridge(host string) (*bridge.Bridge, func(), error) {
	store, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load local config: %w", err)
	}
	localUUID, err := store.LocalUUID()
	if err != nil {
		return nil, nil, fmt.Errorf("read local uuid: %w", err)
	}

	catalog := sensors.Default
	if catalogOverride != "" {
		overrides, err := sensors.LoadOverrides(catalogOverride)
		if err != nil {
			return nil, nil, fmt.Errorf("load catalog overrides: %w", err)
		}
		catalog = sensors.MergeOverrides(catalog, overrides)
	}

	b := bridge.New(bridge.Config{
		Addr:      host,
		LocalUUID: localUUID,
		Catalog:   catalog,
		Logger:    nil,
	}, nil)

	logEntry.WithField("host", host).Debug("connecting to bridge")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutMS)*time.Millisecond)
	defer cancel()
	if err := b.Connect(ctx); err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer disconnectCancel()
		_ = b.Disconnect(disconnectCtx)
	}
	return b, cleanup, nil
}

func requireHostFlag(cmd *cobra.Command) error {
	if hostFlag == "" {
		return fmt.Errorf("%w: --host is required", ventbridge.ErrIllegalArgument)
	}
	return nil
}
