package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"DipWatch/internal/server"
	"DipWatch/internal/session"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and auto-refresh WebSocket stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()
			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			sessions := session.NewStore(time.Hour)
			srv := server.New(a.analyzer, a.recorder, sessions, a.cfg.Server.RefreshInterval, debug)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(addr) }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return err
			case <-sigCh:
			}

			log.Println("[INFO] shutdown signal received, stopping...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				log.Printf("[WARN] server shutdown: %v", err)
			}
			log.Println("[INFO] DipWatch stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to server.addr)")
	return cmd
}
