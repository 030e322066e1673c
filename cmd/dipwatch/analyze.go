package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"DipWatch/internal/analysis"
	"DipWatch/internal/model"
)

func analyzeCmd() *cobra.Command {
	var asJSON bool
	var rows int
	cmd := &cobra.Command{
		Use:   "analyze <name or ticker>",
		Short: "Run one analysis pass and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()
			if rows <= 0 {
				rows = a.cfg.Display.TableRows
			}

			input := strings.Join(args, " ")
			res, err := a.analyzer.Run(context.Background(), "cli", input)
			if err != nil {
				return errors.New(analysis.UserMessage(err))
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printAnalysis(res, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full analysis as JSON")
	cmd.Flags().IntVarP(&rows, "rows", "n", 0, "Table rows to print (defaults to display.table_rows)")
	return cmd
}

func printAnalysis(res *model.Analysis, rows int) {
	s := res.Summary
	fmt.Printf("%s  (%s)\n", res.Symbol, s.LatestTime.Format("2006-01-02"))
	if s.LatestClose.Valid {
		fmt.Printf("Latest close: %.2f %s\n", s.LatestClose.Float64, s.Currency)
	}
	if s.LatestRSI.Valid {
		fmt.Printf("RSI(%d):       %.2f (%s)\n", res.RSIPeriod, s.LatestRSI.Float64, s.Zone)
	}
	fmt.Printf("Trend:        %s\n", s.Trend)
	if s.RangePosition.Valid {
		fmt.Printf("Range:        %.2f - %.2f (at %.0f%%)\n", s.PeriodLow, s.PeriodHigh, s.RangePosition.Float64*100)
	}
	if res.Forecast != nil && len(res.Forecast.Points) > 0 {
		last := res.Forecast.Points[len(res.Forecast.Points)-1]
		fmt.Printf("Forecast:     %.2f on %s (%+.2f/day)\n", last.Price, last.Time.Format("2006-01-02"), res.Forecast.Slope)
	} else if res.ForecastNote != "" {
		fmt.Printf("Forecast:     %s\n", res.ForecastNote)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := "Date\tOpen\tClose\tRSI\t"
	for _, win := range res.SMAWindows {
		header += fmt.Sprintf("SMA%d\t", win)
	}
	fmt.Fprintln(w, header)
	complete := res.CompleteRows()
	if len(complete) > rows {
		complete = complete[:rows]
	}
	for _, r := range complete {
		line := fmt.Sprintf("%s\t%s\t%s\t%.2f\t", r.Time.Format("2006-01-02"), r.Open.StringFixed(2), r.Close.StringFixed(2), r.RSI.Float64)
		for _, win := range res.SMAWindows {
			line += fmt.Sprintf("%.2f\t", r.SMA[win].Float64)
		}
		fmt.Fprintln(w, line)
	}
	w.Flush()
}
