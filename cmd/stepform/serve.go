package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/stepform"
	"github.com/aretw0/stepform/pkg/loader"
	"github.com/aretw0/stepform/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve [wizard-file...]",
	Short: "Start the HTTP server",
	Long: `Serves every wizard file at /<key>, together with /health and /metrics.
Wizard files may be given as arguments or with the "wizard" config key.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		files := append(cfg.Wizard, args...)
		if len(files) == 0 {
			return errors.New("no wizard files to serve")
		}

		reg := prometheus.NewRegistry()
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		b, err := openStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer b.Close()

		opts := []stepform.Option{
			stepform.WithStore(b.store),
			stepform.WithLogger(logger),
			stepform.WithGatherer(reg),
			stepform.WithLifecycleHooks(observability.Combine(
				metrics.Hooks(),
				observability.LogHooks(logger),
			)),
			stepform.WithSecureCookie(cfg.CookieSecure),
		}
		if b.locker != nil {
			opts = append(opts, stepform.WithLocker(b.locker))
		}
		ws := stepform.NewWizardServer(opts...)

		for _, path := range files {
			def, err := loader.LoadFile(path)
			if err != nil {
				return err
			}
			if err := ws.Mount("", def, nil); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           ws,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting stepform server", "addr", srv.Addr, "store", cfg.Store.Kind, "wizards", len(files))
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("killing server: %w", err)
				}
			}
			logger.Info("stepform server stopped gracefully")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", defaultAddr, "Address to listen on")
	serveCmd.Flags().StringSlice("wizard", nil, "Wizard definition file (repeatable)")
	serveCmd.Flags().Bool("cookie-secure", false, "Mark the session cookie Secure")
}
