package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/gold-assay/ga-api/common"
	"github.com/gold-assay/ga-api/config"
	"github.com/gold-assay/ga-api/data"
	"github.com/gold-assay/ga-api/pipeline"
	"github.com/gold-assay/ga-api/report"
	"github.com/gold-assay/ga-api/risk"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var analyzeFormat string

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "markdown", "Output format: markdown or json")
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [ticker]...",
	Short: "Run one analysis pass and print the result",
	Long:  `Run a single valuation and risk pass over the configured companies (or only the tickers given as arguments) and print the result to stdout.`,
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
		common.SetupCache()

		settings, err := config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("could not load assumptions")
		}
		risk.InitializeCategoryMap()

		if len(args) > 0 {
			common.ArrToUpper(args)
			requested := make(map[string]bool, len(args))
			for _, ticker := range args {
				requested[ticker] = true
			}
			kept := settings.Companies[:0]
			for _, company := range settings.Companies {
				if requested[company.Ticker] {
					kept = append(kept, company)
				}
			}
			settings.Companies = kept
			if len(settings.Companies) == 0 {
				log.Fatal().Strs("Tickers", args).Msg("no configured company matches the requested tickers")
			}
		}

		runner := pipeline.New(settings, data.GetManagerInstance())
		result, err := runner.Run(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("analysis pass failed")
		}

		switch analyzeFormat {
		case "json":
			raw, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				log.Fatal().Err(err).Msg("could not encode result")
			}
			fmt.Println(string(raw))
		case "markdown":
			fmt.Print(report.Render(result))
		default:
			fmt.Fprintf(os.Stderr, "unknown format: %s\n", analyzeFormat)
			os.Exit(1)
		}
	},
}
