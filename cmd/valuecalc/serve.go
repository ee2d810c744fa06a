package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/valuecalc/internal/calcclient"
	"github.com/iwvelando/valuecalc/internal/config"
	"github.com/iwvelando/valuecalc/internal/engine"
	"github.com/iwvelando/valuecalc/internal/server"
	"github.com/iwvelando/valuecalc/internal/store"
	"github.com/iwvelando/valuecalc/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app, ver string) *cobra.Command {
	var (
		serverConfigPath string
		address          string
		local            bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := server.LoadConfig(serverConfigPath)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}
			if cmd.Flags().Changed("local-engine") {
				cfg.LocalEngine = local
			}

			// The server config may carry its own logging section.
			logger := a.logger
			if cfg.Logging != (config.LoggingConfig{}) {
				logger, err = initializeLogger(cfg.Logging, a.logLevel)
				if err != nil {
					return fmt.Errorf("failed to initialize server logger: %w", err)
				}
				defer func() { _ = logger.Sync() }()
			}

			st, err := store.Open(logger, a.conf.Store.Path)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			opts := server.Options{
				MaxUploadSize: cfg.UploadSizeBytes(),
				Version:       ver,
				Store:         st,
			}
			baseURL := a.conf.Service.BaseURL
			if cfg.LocalEngine {
				opts.Engine = engine.New(logger)
				baseURL = selfURL(cfg.Address)
			}
			opts.Client = calcclient.New(logger, calcclient.Options{
				BaseURL: baseURL,
				Timeout: a.conf.Service.Timeout,
			})

			srv := &http.Server{
				Addr:         cfg.Address,
				Handler:      server.NewHandler(logger, opts),
				ReadTimeout:  cfg.ReadTimeout,
				WriteTimeout: cfg.WriteTimeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("serving calculator API",
					zap.String("op", "main.serve"),
					zap.String("address", cfg.Address),
					zap.String("service", opts.Client.Endpoint()),
					zap.Bool("localEngine", cfg.LocalEngine),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				logger.Info("shutting down",
					zap.String("op", "main.serve"),
				)
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	cmd.Flags().BoolVar(&local, "local-engine", false, "serve the built-in calculation engine and calculate against it")
	return cmd
}

// selfURL turns a listen address into a base URL the server can reach
// itself on.
func selfURL(address string) string {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return "http://" + address
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}
