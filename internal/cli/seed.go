package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/claritytracking/claritytracking/internal/cache"
	"github.com/claritytracking/claritytracking/internal/config"
	"github.com/claritytracking/claritytracking/internal/logging"
	"github.com/claritytracking/claritytracking/internal/repository"
	"github.com/claritytracking/claritytracking/internal/seeder"
	"github.com/claritytracking/claritytracking/internal/service"
	"github.com/claritytracking/claritytracking/pkg/tokens"
)

var seedScenarioPath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data into the database",
	Long: `seed creates a demo account with websites and generated tracking
events, routed through the normal ingestion path. Useful for local
development and product demos.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)

		if err := migrateUp(cfg, logger); err != nil {
			return err
		}

		repo, err := repository.NewPostgresRepository(cmd.Context(), cfg.Database.Postgres.ConnString())
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer repo.Close()

		scenario := seeder.DefaultScenario()
		if seedScenarioPath != "" {
			scenario, err = seeder.LoadScenario(seedScenarioPath)
			if err != nil {
				return err
			}
		}

		// No cache during seeding; nothing is reading yet.
		noCache := cache.NewHealthCache(nil, 0, false)
		tokenGen := tokens.NewTokenGenerator(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL)

		s := seeder.New(
			service.NewAuthService(repo, tokenGen),
			service.NewWebsiteService(repo),
			service.NewIngestService(repo, noCache, logger),
			logger,
		)

		return s.Run(cmd.Context(), scenario)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedScenarioPath, "scenario", "", "path to a YAML scenario file")
	rootCmd.AddCommand(seedCmd)
}
