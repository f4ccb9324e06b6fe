package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"runtime/trace"

	"github.com/gold-assay/ga-api/common"
	"github.com/gold-assay/ga-api/config"
	"github.com/gold-assay/ga-api/data"
	"github.com/gold-assay/ga-api/middleware"
	"github.com/gold-assay/ga-api/pipeline"
	"github.com/gold-assay/ga-api/risk"
	"github.com/gold-assay/ga-api/router"

	"github.com/go-co-op/gocron"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	viper.BindEnv("server.port", "PORT")
	serveCmd.Flags().IntP("port", "p", 3000, "Port to run application server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	viper.BindEnv("schedule.refresh_minutes", "GA_REFRESH_MINUTES")
	serveCmd.Flags().Int("refresh-minutes", 15, "Minutes between scheduled analysis passes (0 disables the scheduler)")
	viper.BindPFlag("schedule.refresh_minutes", serveCmd.Flags().Lookup("refresh-minutes"))

	viper.SetDefault("server.cors_origins", "*")

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the ga-api server",
	Long:  `Run HTTP server that implements the Gold Assay API`,
	Run: func(cmd *cobra.Command, args []string) {
		if Profile {
			f, err := os.Create("profile.out")
			if err != nil {
				log.Fatal().Err(err).Msg("could not create profile output")
			}
			pprof.StartCPUProfile(f)
			defer pprof.StopCPUProfile()
		}

		if Trace {
			f, err := os.Create("trace.out")
			if err != nil {
				log.Fatal().Err(err).Msg("failed to create trace output file")
			}
			defer func() {
				if err := f.Close(); err != nil {
					log.Fatal().Err(err).Msg("failed to close trace file")
				}
			}()

			if err := trace.Start(f); err != nil {
				log.Fatal().Err(err).Msg("failed to start trace")
			}
			defer trace.Stop()
		}

		common.SetupLogging()
		common.SetupCache()
		log.Info().Msg("Initialized logging")

		// load the assumption store
		settings, err := config.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("could not load assumptions")
		}

		// initialize risk categories
		risk.InitializeCategoryMap()

		// Initialize data framework
		manager := data.GetManagerInstance()
		service := pipeline.NewService(pipeline.New(settings, manager))
		log.Info().Msg("Initialized data framework")

		// Create new Fiber instance
		app := fiber.New()

		// shutdown cleanly on interrupt
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		go func() {
			sig := <-c // block until signal is read
			fmt.Printf("Received signal: '%s'; shutting down...\n", sig.String())
			if err := app.Shutdown(); err != nil {
				log.Fatal().Err(err).Msg("shutdown failed")
			}
		}()

		// Configure CORS
		corsConfig := cors.Config{
			AllowOrigins: viper.GetString("server.cors_origins"),
			AllowHeaders: "*",
			AllowMethods: "GET,POST,HEAD",
		}
		app.Use(cors.New(corsConfig))

		// Setup logging middleware
		app.Use(middleware.NewLogger())

		// Setup routes
		router.SetupRoutes(app, service, manager)

		// Run scheduled analysis passes so signals diff against a recent
		// prior state even when nobody polls the API.
		refreshMinutes := viper.GetInt("schedule.refresh_minutes")
		if refreshMinutes > 0 {
			scheduler := gocron.NewScheduler(common.GetTimezone())
			scheduler.Every(refreshMinutes).Minutes().Do(func() {
				if _, err := service.Run(context.Background()); err != nil {
					log.Error().Err(err).Msg("scheduled analysis pass failed")
				}
			})
			scheduler.StartAsync()
		}

		// Start server on http://${host}:${port}
		if err := app.Listen(":" + viper.GetString("server.port")); err != nil {
			log.Fatal().Err(err).Msg("server exited")
		}
	},
}
