package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/epv-cli/internal/model"
	"github.com/sells-group/epv-cli/internal/pipeline"
	"github.com/sells-group/epv-cli/internal/report"
)

// analyzer runs one analysis. *pipeline.Pipeline implements it.
type analyzer interface {
	Run(ctx context.Context, req pipeline.Request) (*model.Analysis, error)
}

var (
	analyzeRate     float64
	analyzeMaintSGA float64
	analyzeMaintRND float64
	analyzeFormat   string
	analyzeOut      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze TICKER",
	Short: "Run an EPV analysis for one ticker and print the report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(analyzeFormat)
		if err != nil {
			return err
		}
		req, err := buildRequest(cmd, args[0])
		if err != nil {
			return err
		}

		env, err := initPipeline(cmd.Context(), "analyze")
		if err != nil {
			return err
		}
		defer env.Close()

		w := cmd.OutOrStdout()
		if analyzeOut != "" {
			f, err := os.Create(analyzeOut)
			if err != nil {
				return eris.Wrap(err, "create output file")
			}
			defer f.Close() //nolint:errcheck
			w = f
		}
		return runAnalyze(cmd.Context(), env.Pipeline, w, req, format)
	},
}

// buildRequest maps flags onto a request. Unset flags fall back to config;
// unset overrides keep the model's estimate.
func buildRequest(cmd *cobra.Command, ticker string) (pipeline.Request, error) {
	req := pipeline.Request{Ticker: ticker, DiscountRate: cfg.Valuation.DiscountRate}
	if cmd.Flags().Changed("rate") {
		req.DiscountRate = analyzeRate
	}
	if cmd.Flags().Changed("maint-sga") {
		v := analyzeMaintSGA
		req.Overrides.MaintenanceSGA = &v
	}
	if cmd.Flags().Changed("maint-rnd") {
		v := analyzeMaintRND
		req.Overrides.MaintenanceRND = &v
	}
	if _, err := pipeline.ValidateTicker(req.Ticker); err != nil {
		return req, err
	}
	return req, req.Validate()
}

// runAnalyze runs the analysis and renders it to w.
func runAnalyze(ctx context.Context, a analyzer, w io.Writer, req pipeline.Request, format report.Format) error {
	result, err := a.Run(ctx, req)
	if err != nil {
		return err
	}
	return report.Render(w, format, result)
}

func init() {
	analyzeCmd.Flags().Float64Var(&analyzeRate, "rate", 0.10, "cost of capital (default from config)")
	analyzeCmd.Flags().Float64Var(&analyzeMaintSGA, "maint-sga", 0, "override maintenance share of S&M, 0-1")
	analyzeCmd.Flags().Float64Var(&analyzeMaintRND, "maint-rnd", 0, "override maintenance share of R&D, 0-1")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "markdown", "output format: markdown, html, json or yaml")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", "", "write the report to a file instead of stdout")
	rootCmd.AddCommand(analyzeCmd)
}
