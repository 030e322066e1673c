package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"DipWatch/internal/analysis"
)

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <name or ticker>",
		Short: "Resolve a company name to a ticker symbol",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			sym, err := a.analyzer.Resolve(context.Background(), strings.Join(args, " "))
			if err != nil {
				return errors.New(analysis.UserMessage(err))
			}
			fmt.Println(sym)
			return nil
		},
	}
}
