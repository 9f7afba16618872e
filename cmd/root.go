package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calmora/calmora-cli/internal/api"
	"github.com/calmora/calmora-cli/internal/calmora"
	"github.com/calmora/calmora-cli/internal/config"
	"github.com/calmora/calmora-cli/internal/logging"
	"github.com/calmora/calmora-cli/internal/metrics"
	"github.com/calmora/calmora-cli/pkg/output"
)

// Version is set at build time.
var Version = "0.1.0"

var (
	cfgFile     string
	outputFmt   string
	baseURL     string
	metricsFile string

	cfg    *config.Config
	cfgErr error
	app    *runtime
)

// runtime holds what a command invocation needs. It is built once per
// Execute, after flags are parsed.
type runtime struct {
	logger     *logging.Logger
	metrics    *metrics.Metrics
	closeStore func() error
	svc        *calmora.Service
}

var rootCmd = &cobra.Command{
	Use:   "calmora",
	Short: "Calmora mental wellness tracker CLI",
	Long: `calmora is the command-line client for the Calmora backend.

Log in, manage your profile, submit daily tracker entries and review
your mood and stress predictions from the terminal.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the CLI and prints a single failure line on error.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	teardown()
	if err != nil {
		reportError(err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.calmora/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", output.FormatTable, "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "backend base URL (default from config/env)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write client metrics in Prometheus text format to this file on exit")
}

func initConfig() {
	cfg, cfgErr = config.Load(cfgFile)
	if cfgErr != nil {
		if cfgFile == "" {
			fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", cfgErr)
		}
		cfg = config.Default()
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	if cfg == nil {
		initConfig()
	}
	if cfgErr != nil && cfgFile != "" {
		return cfgErr
	}
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = baseURL
	}
	if !output.ValidFormat(outputFmt) {
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", outputFmt)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format).
		With(logging.Command(cmd.CommandPath()))
	logging.SetDefault(logger)

	store, closeStore, err := cfg.OpenSessionStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	logger.DebugContext(cmd.Context(), "session store ready", logging.Backend(cfg.Session.Backend))

	m := metrics.New()
	client := api.New(cfg.BaseURL, store,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(logger),
		api.WithMetrics(m),
		api.WithUserAgent("calmora-cli/"+Version),
	)

	app = &runtime{
		logger:     logger,
		metrics:    m,
		closeStore: closeStore,
		svc:        calmora.New(client, logger),
	}
	return nil
}

func teardown() {
	if app == nil {
		return
	}
	if metricsFile != "" {
		if err := app.metrics.WriteTextfile(metricsFile); err != nil {
			output.Warn("Could not write metrics to %s: %v", metricsFile, err)
		}
	}
	if err := app.closeStore(); err != nil {
		app.logger.Warn("failed to close session store", logging.Error(err))
	}
	app = nil
}

func reportError(err error) {
	var (
		reqErr *api.RequestError
		netErr *api.NetworkError
	)
	switch {
	case errors.As(err, &reqErr) && reqErr.IsUnauthorized():
		output.Error("Not authorized: %s", detailOr(reqErr, "session missing or expired"))
		output.Info("Run 'calmora login' to sign in.")
	case errors.As(err, &reqErr):
		output.Error("%s", detailOr(reqErr, err.Error()))
	case errors.As(err, &netErr):
		output.Error("Could not reach the Calmora backend: %v", netErr.Err)
	default:
		output.Error("%v", err)
	}
}

func detailOr(e *api.RequestError, fallback string) string {
	if d := e.Detail(); d != "" {
		return d
	}
	return fallback
}

func service() *calmora.Service {
	return app.svc
}
