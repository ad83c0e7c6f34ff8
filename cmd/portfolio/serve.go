package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP server",
		GroupID: "server",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, global, openOptions{withEvents: true})
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			handler, err := a.module.Handler()
			if err != nil {
				return err
			}

			bridge, err := a.module.EventsBridge()
			if err != nil {
				return err
			}
			bridgeCtx, stopBridge := context.WithCancel(ctx)
			defer stopBridge()
			bridgeDone, err := bridge.Start(bridgeCtx)
			if err != nil {
				return err
			}

			server := &http.Server{
				Addr:         addr,
				Handler:      handler,
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
			}

			serveErr := make(chan error, 1)
			go func() {
				a.logger.Info("http.server.listening", "addr", addr, "events", a.cfg.Events.Enabled)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
				close(serveErr)
			}()

			select {
			case err := <-serveErr:
				if err != nil {
					return err
				}
			case <-ctx.Done():
				a.logger.Info("http.server.shutting_down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("http.server.shutdown_failed", "error", err)
			}
			stopBridge()
			<-bridgeDone
			a.logger.Info("http.server.stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
