package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mr1hm/go-quake-impact/internal/batch"
)

var (
	runReportDir string
	runDataDir   string
)

var runCmd = &cobra.Command{
	Use:   "run [scenario-dir]",
	Short: "Run every scenario of a directory once",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dir := cfg.Scenarios.Dir
		if len(args) == 1 {
			dir = args[0]
		}
		if runReportDir != "" {
			cfg.Scenarios.ReportDir = runReportDir
		}
		if runDataDir != "" {
			cfg.Scenarios.DataDir = runDataDir
		}

		repo, closeRepo, err := openRepo()
		if err != nil {
			return err
		}
		defer closeRepo()

		runner := batch.NewRunner(params, repo, cfg.Scenarios.ReportDir)
		mgr := batch.NewManager(cfg, repo, runner)

		report, err := mgr.RunOnce(ctx, dir)
		if report != nil {
			if _, werr := report.WriteTo(cmd.OutOrStdout()); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
		if report.Failed() > 0 {
			return fmt.Errorf("%d of %d scenarios failed", report.Failed(), report.Tasks())
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runReportDir, "report-dir", "", "directory for grids, tables and the batch report (default $SCENARIO_REPORT_DIR)")
	runCmd.Flags().StringVar(&runDataDir, "data-dir", "", "directory layer paths are resolved against (default $SCENARIO_DATA_DIR)")
	rootCmd.AddCommand(runCmd)
}
