package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"DipWatch/internal/notifier"
	"DipWatch/internal/scheduler"
	"DipWatch/internal/session"
	"DipWatch/internal/watch"
)

func botCmd() *cobra.Command {
	var refreshNow bool
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot with watch alerts and daily digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.cfg.ValidateBot(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}

			wm, err := watch.NewManager(a.cfg.Watch.StateFile)
			if err != nil {
				return fmt.Errorf("init watch manager: %w", err)
			}
			tn := notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sched := scheduler.NewScheduler(ctx, a.analyzer, wm, session.NewStore(24*time.Hour), tn, a.recorder)
			sched.OnlyWhenOpen = a.cfg.Schedule.OnlyWhenOpen
			sched.TableRows = a.cfg.Display.TableRows
			if err := sched.RegisterAll(a.cfg.Schedule.RefreshCron, a.cfg.Schedule.DigestCron); err != nil {
				return fmt.Errorf("register cron tasks: %w", err)
			}
			sched.Start()
			defer sched.Stop()

			go tn.StartPolling(ctx, sched.HandleCommand)
			log.Println("[INFO] Telegram polling started")

			if refreshNow || os.Getenv("RUN_ON_START") == "true" {
				log.Println("[INFO] refreshing watches now")
				go sched.RefreshNow()
			}

			log.Println("[INFO] DipWatch bot is running. Press Ctrl+C to stop.")
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			log.Println("[INFO] shutdown signal received, stopping...")
			cancel()
			return nil
		},
	}
	cmd.Flags().BoolVar(&refreshNow, "refresh-now", false, "Refresh all watches once at startup")
	return cmd
}
