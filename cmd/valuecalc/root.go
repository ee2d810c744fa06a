package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"

	"github.com/iwvelando/valuecalc/internal/calcclient"
	"github.com/iwvelando/valuecalc/internal/config"
	"github.com/iwvelando/valuecalc/internal/engine"
	"github.com/iwvelando/valuecalc/pkg/constants"
	"github.com/iwvelando/valuecalc/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app carries what every subcommand needs once the persistent flags have
// been processed.
type app struct {
	configPath   string
	logLevel     string
	outputFormat string

	conf   *config.Configuration
	logger *zap.Logger
}

func newRootCmd(ver string) *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "valuecalc",
		Short:         "Assemble, calculate and compare value calculator solutions",
		Version:       ver,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Flags().Changed("config"))
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&a.outputFormat, "output-format", "", "type of output override: pretty, csv, json")

	cmd.AddCommand(
		newAssembleCmd(a),
		newCalculateCmd(a),
		newCompareCmd(a),
		newValidateCmd(a),
		newServeCmd(a, ver),
	)
	return cmd
}

// setup loads the configuration and builds the logger. The default config
// file is optional; an explicitly named one must exist.
func (a *app) setup(explicitConfig bool) error {
	path := a.configPath
	if !explicitConfig {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", a.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, a.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Determine output format (CLI override takes precedence over config)
	if a.outputFormat == "" {
		a.outputFormat = conf.Output.Format
	}
	if a.outputFormat == "" {
		a.outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(a.outputFormat); err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	a.conf = conf
	a.logger = logger
	return nil
}

// newClient returns a calculation client for the configured service, or
// for an in-process engine when local is set. stop releases the engine.
func (a *app) newClient(local bool) (client *calcclient.Client, stop func(), err error) {
	baseURL := a.conf.Service.BaseURL
	stop = func() {}
	if local {
		baseURL, stop, err = startLocalEngine(a.logger)
		if err != nil {
			return nil, nil, err
		}
	}
	client = calcclient.New(a.logger, calcclient.Options{
		BaseURL: baseURL,
		Timeout: a.conf.Service.Timeout,
	})
	return client, stop, nil
}

// startLocalEngine serves the built-in engine on a loopback port.
func startLocalEngine(logger *zap.Logger) (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to start local engine: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(constants.CalculatePath, engine.New(logger).Handler())
	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("local engine stopped",
				zap.String("op", "main.startLocalEngine"),
				zap.Error(err),
			)
		}
	}()

	stop := func() {
		_ = srv.Shutdown(context.Background())
	}
	return "http://" + ln.Addr().String(), stop, nil
}
