// dipwatch - stock RSI, moving average and trend dashboard
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	configPath string
	provider   string
	debug      bool
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	_ = godotenv.Load()

	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}

	rootCmd := &cobra.Command{
		Use:   "dipwatch",
		Short: "Stock RSI, moving average and trend dashboard",
		Long: `dipwatch resolves a company name or ticker, downloads recent prices and
shows RSI, simple moving averages and a linear price forecast over HTTP,
WebSocket, Telegram or the terminal.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfig, "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "Data provider override: yahoo, rest or mock")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable request logging")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(botCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dipwatch version %s\n", version)
		},
	}
}
