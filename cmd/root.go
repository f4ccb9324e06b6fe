// Copyright 2021 JD Fergason
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"

	"github.com/gold-assay/ga-api/common"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Profile bool
var Trace bool

func init() {
	// Logging configuration
	viper.BindEnv("log.level", "GA_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "GA_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "GA_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stdout", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	rootCmd.PersistentFlags().Bool("log-pretty", false, "Write logs in human readable console format")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Cache
	viper.BindEnv("cache.redis_url", "REDIS_URL")
	rootCmd.PersistentFlags().String("redis-url", "", "Redis connection string for the shared cache tier")
	viper.BindPFlag("cache.redis_url", rootCmd.PersistentFlags().Lookup("redis-url"))

	rootCmd.PersistentFlags().Int("cache-local-size", 1000, "Number of entries in the local cache tier")
	viper.BindPFlag("cache.local_size", rootCmd.PersistentFlags().Lookup("cache-local-size"))

	// Market data
	viper.BindEnv("data.ttl", "GA_DATA_TTL")
	rootCmd.PersistentFlags().Duration("data-ttl", 0, "Market snapshot freshness window (0 uses the built-in default)")
	viper.BindPFlag("data.ttl", rootCmd.PersistentFlags().Lookup("data-ttl"))

	viper.BindEnv("data.gold_ticker", "GA_GOLD_TICKER")
	rootCmd.PersistentFlags().String("gold-ticker", "", "Ticker used for the gold price (default GC=F)")
	viper.BindPFlag("data.gold_ticker", rootCmd.PersistentFlags().Lookup("gold-ticker"))

	rootCmd.PersistentFlags().BoolVar(&Profile, "cpu-profile", false, "Run pprof and save in profile.out")
	rootCmd.PersistentFlags().BoolVar(&Trace, "trace", false, "Trace program execution and save in trace.out")
}

var rootCmd = &cobra.Command{
	Use:     "gaapi",
	Version: common.CurrentVersion.String(),
	Short:   "Gold Assay scores junior gold miners",
	Long:    `A valuation and risk service for junior gold mining equities: DCF sensitivity grids, cash runway, composite risk scores and benchmark-adjusted returns.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
