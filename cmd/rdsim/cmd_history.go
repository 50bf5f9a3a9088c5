package main

import (
	"database/sql"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/rdiff/export"
	"github.com/katalvlaran/rdiff/reaction"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <runs.db>",
		Short: "List recorded runs, or dump a stored field",
		Long: `History reads a run-history database written by "rdsim run --db".

Examples:
  rdsim history runs.db
  rdsim history runs.db --run 3 --step 120 --species P`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			db, err := sql.Open("sqlite", path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()
			db.SetMaxOpenConns(1)

			jsonOut, _ := cmd.Flags().GetBool("json")
			runID, _ := cmd.Flags().GetInt64("run")
			if runID != 0 {
				step, _ := cmd.Flags().GetInt("step")
				species, _ := cmd.Flags().GetString("species")
				field, err := export.LoadField(cmd.Context(), db, runID, step, reaction.Species(species))
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd.OutOrStdout(), field)
				}
				for i, v := range field {
					fmt.Fprintf(cmd.OutOrStdout(), "%d\t%g\n", i, v)
				}
				return nil
			}

			runs, err := export.ListRuns(cmd.Context(), db)
			if err != nil {
				return err
			}
			if jsonOut {
				out := make([]map[string]any, 0, len(runs))
				for _, r := range runs {
					out = append(out, map[string]any{
						"id":         r.ID,
						"started_at": r.StartedAt,
						"nodes":      r.Nodes,
						"state":      r.State,
						"steps":      r.Steps,
						"sim_time":   r.SimTime,
						"elapsed_ms": r.ElapsedMS,
						"delta":      jsonFloat(r.Delta),
						"params":     r.Params,
					})
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTARTED\tNODES\tSTATE\tSTEPS\tSIM TIME\tDELTA")
			for _, r := range runs {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\t%g\t%g\n",
					r.ID, r.StartedAt.Local().Format(time.DateTime), r.Nodes, r.State, r.Steps, r.SimTime, r.Delta)
			}

			return tw.Flush()
		},
	}

	cmd.Flags().Int64("run", 0, "Run id whose stored field to print")
	cmd.Flags().Int("step", 1, "Step of the stored field")
	cmd.Flags().String("species", string(reaction.SpeciesN), "Species of the stored field: N or P")

	return cmd
}
