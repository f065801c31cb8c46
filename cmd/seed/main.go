package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oggyb/vibeu-engine/internal/config"
	"github.com/oggyb/vibeu-engine/internal/db"
	"github.com/oggyb/vibeu-engine/internal/logger"
)

var (
	users int
	seed  int64
	reset bool
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the engine database with demo users",
	Long: `Creates demo users across both age brackets and several countries,
with interests, photos, boosts and same-bracket likes.

Connection settings come from the usual DB_* environment variables.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.New()
		logger.InitFromConfig(cfg)

		database, err := db.NewDB(cfg)
		if err != nil {
			return err
		}

		start := time.Now()
		if err := db.SeedTestData(database, db.SeedOptions{Users: users, Seed: seed, Reset: reset}); err != nil {
			return err
		}
		logger.Info("seeding completed", logger.Since(start))
		return nil
	},
}

func main() {
	rootCmd.Flags().IntVar(&users, "users", 40, "number of users to create")
	rootCmd.Flags().Int64Var(&seed, "seed", 1, "random seed for reproducible data")
	rootCmd.Flags().BoolVar(&reset, "reset", false, "delete existing engine data first")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
