package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/awake/awake/internal/database"
	"github.com/awake/awake/internal/reporter"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates a new stats command
func NewStatsCmd(globalFlags *GlobalFlags) *cobra.Command {
	var (
		jsonOutput bool
		prune      int
	)

	statsCmd := &cobra.Command{
		Use:       "stats [day|week|month]",
		Short:     "Summarizes the tick journal",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"day", "today", "week", "month"},
		RunE: func(cobraCmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(globalFlags, cobraCmd.Flags())
			if err != nil {
				return err
			}

			periodType := "day"
			if len(args) > 0 {
				periodType = args[0]
			}

			out := cobraCmd.OutOrStdout()

			db, err := database.OpenExisting(cfg.Journal.Path)
			if errors.Is(err, database.ErrNoJournal) {
				fmt.Fprintf(out, "No tick journal at %s. Run %s with --journal to record ticks.\n", cfg.Journal.Path, appName)
				return nil
			}
			if err != nil {
				return err
			}
			defer db.Close()

			repo := database.NewRepository(db)

			if prune > 0 {
				deleted, err := repo.DeleteOldEvents(time.Now().AddDate(0, 0, -prune))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Pruned %d ticks older than %d days\n", deleted, prune)
			}

			rep := reporter.New(repo)
			report, err := rep.GenerateReport(periodType)
			if err != nil {
				return err
			}

			if jsonOutput {
				jsonStr, err := rep.FormatReportJSON(report)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, jsonStr)
				return nil
			}

			fmt.Fprint(out, rep.FormatReportText(report))
			return nil
		},
	}

	statsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	statsCmd.Flags().IntVar(&prune, "prune", 0, "Delete ticks older than this many days first")
	return statsCmd
}
