package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ncc-airhealth/korea-geovariable/internal/jobs"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect calculation job history",
	Long:  "Commands for listing and viewing calculation jobs.",
}

// -- jobs list --

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List calculation jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()
		if err := env.store.Migrate(ctx); err != nil {
			return err
		}

		status, _ := cmd.Flags().GetString("status")
		variable, _ := cmd.Flags().GetString("variable")
		limit, _ := cmd.Flags().GetInt("limit")

		list, err := env.store.List(ctx, jobs.Filter{
			Status:   jobs.Status(status),
			Variable: variable,
			Limit:    limit,
		})
		if err != nil {
			return eris.Wrap(err, "jobs list")
		}

		if len(list) == 0 {
			fmt.Fprintln(os.Stderr, "No jobs found.")
			return nil
		}

		formatJobsList(os.Stdout, list)
		return nil
	},
}

// -- jobs show --

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show full details of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()
		if err := env.store.Migrate(ctx); err != nil {
			return err
		}

		job, err := env.store.Get(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "jobs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(job)
	},
}

func init() {
	jobsListCmd.Flags().String("status", "", "filter by job status (queued, running, complete, failed)")
	jobsListCmd.Flags().String("variable", "", "filter by variable name")
	jobsListCmd.Flags().Int("limit", 50, "max number of jobs to display")

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	rootCmd.AddCommand(jobsCmd)
}

// formatJobsList writes a tabular list of jobs to w.
func formatJobsList(out io.Writer, list []jobs.Job) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tVARIABLE\tSTATUS\tCREATED\tDURATION")
	_, _ = fmt.Fprintln(w, "--\t----\t--------\t------\t-------\t--------")

	for _, j := range list {
		dur := j.UpdatedAt.Sub(j.CreatedAt).Round(time.Second).String()
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncateID(j.ID),
			j.Kind,
			j.Variable,
			j.Status,
			j.CreatedAt.Format("2006-01-02 15:04"),
			dur,
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
