package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mr1hm/go-quake-impact/internal/config"
	"github.com/mr1hm/go-quake-impact/internal/impact"
	"github.com/mr1hm/go-quake-impact/internal/logging"
	"github.com/mr1hm/go-quake-impact/internal/repository"
)

var (
	cfg    *config.Config
	params impact.Params

	noStore bool
)

var rootCmd = &cobra.Command{
	Use:   "impact-batch",
	Short: "Earthquake fatality and displacement assessments from the command line",
	Long:  "Runs the ITB earthquake fatality model over scenario directories or single hazard/exposure grid pairs and writes grids, impact tables and batch reports.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

		p, err := cfg.Model.Params()
		if err != nil {
			return fmt.Errorf("model params: %w", err)
		}
		params = p
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noStore, "no-store", false, "do not persist assessments to the database")
}

// openRepo opens the configured database unless --no-store is set. The
// returned close func is always safe to call.
func openRepo() (repository.AssessmentRepository, func(), error) {
	if noStore {
		return nil, func() {}, nil
	}
	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return db, func() { db.Close() }, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
