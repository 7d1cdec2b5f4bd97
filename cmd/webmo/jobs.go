package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/chemtools/webmo-go/webmo"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the WebMO instance status document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			status, err := client.StatusInfo(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, status)
		},
	}
}

func newEnginesCmd(opts *rootOptions) *cobra.Command {
	var targetUser string

	cmd := &cobra.Command{
		Use:   "engines",
		Short: "List the available computational engines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			engines, err := client.Engines(ctx, targetUser)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd, engines)
			}
			for _, engine := range engines {
				if name, ok := engine["name"].(string); ok {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%v\n", engine)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&targetUser, "user", "", "list engines of another user (administrators only)")
	return cmd
}

func newJobsCmd(opts *rootOptions) *cobra.Command {
	var filter webmo.JobFilter

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			jobs, err := client.Jobs(ctx, filter)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd, jobs)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "NUMBER\tNAME\tENGINE\tSTATUS\tFOLDER")
			for _, job := range jobs {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", job.Number, job.Name, job.Engine, job.Status, job.FolderID)
			}
			return w.Flush()
		},
	}

	f := cmd.Flags()
	f.StringVar(&filter.Engine, "engine", "", "filter by engine")
	f.StringVar(&filter.Status, "status", "", "filter by status (queued, running, complete, failed)")
	f.StringVar(&filter.FolderID, "folder", "", "filter by folder ID")
	f.StringVar(&filter.JobName, "name", "", "filter by job name")
	f.StringVar(&filter.TargetUser, "user", "", "list jobs of another user (administrators only)")
	return cmd
}

func newWaitCmd(opts *rootOptions) *cobra.Command {
	var pollInterval time.Duration

	cmd := &cobra.Command{
		Use:   "wait JOB...",
		Short: "Block until the given jobs reach a terminal status",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers, err := parseJobNumbers(args)
			if err != nil {
				return err
			}

			client, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			if err := client.WaitForJobs(ctx, numbers, pollInterval); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all jobs terminal")
			return nil
		},
	}

	cmd.Flags().DurationVar(&pollInterval, "interval", webmo.DefaultPollInterval, "status poll interval")
	return cmd
}

func newResultsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "results JOB...",
		Short: "Fetch the parsed calculation results of jobs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers, err := parseJobNumbers(args)
			if err != nil {
				return err
			}

			client, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			if len(numbers) == 1 {
				doc, err := client.JobResults(ctx, numbers[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, doc)
			}

			docs, err := client.BatchJobResults(ctx, numbers...)
			if err != nil {
				return err
			}
			return printJSON(cmd, docs)
		},
	}
}

func newGeometryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "geometry JOB",
		Short: "Print the final optimized geometry of a job in XYZ format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers, err := parseJobNumbers(args)
			if err != nil {
				return err
			}

			client, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			xyz, err := client.JobGeometry(ctx, numbers[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), xyz)
			return nil
		},
	}
}

func newOutputCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "output JOB",
		Short: "Print the raw output file of a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers, err := parseJobNumbers(args)
			if err != nil {
				return err
			}

			client, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			output, err := client.JobOutput(ctx, numbers[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), output)
			return nil
		},
	}
}

func newArchiveCmd(opts *rootOptions) *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "archive JOB...",
		Short: "Download a WebMO archive of the given jobs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers, err := parseJobNumbers(args)
			if err != nil {
				return err
			}

			client, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			data, err := client.JobArchive(ctx, numbers...)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outFile, data, 0o644); err != nil {
				return fmt.Errorf("writing archive: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", outFile, len(data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "webmo-archive.tar.gz", "output file")
	return cmd
}

func newSpreadsheetCmd(opts *rootOptions) *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "spreadsheet JOB...",
		Short: "Download a CSV spreadsheet summary of the given jobs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers, err := parseJobNumbers(args)
			if err != nil {
				return err
			}

			client, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			csv, err := client.JobSpreadsheet(ctx, numbers...)
			if err != nil {
				return err
			}
			if outFile == "" {
				fmt.Fprint(cmd.OutOrStdout(), csv)
				return nil
			}
			if err := os.WriteFile(outFile, []byte(csv), 0o644); err != nil {
				return fmt.Errorf("writing spreadsheet: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: stdout)")
	return cmd
}

func newImportCmd(opts *rootOptions) *cobra.Command {
	var jobName, engine string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import an existing computational output file as a new job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			jobNumber, err := client.ImportJob(ctx, jobName, args[0], engine)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported as job %d\n", jobNumber)
			return nil
		},
	}

	cmd.Flags().StringVar(&jobName, "name", "", "name of the new job (required)")
	cmd.Flags().StringVar(&engine, "engine", "", "engine that produced the output (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("engine")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete JOB...",
		Short: "Permanently delete jobs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			numbers, err := parseJobNumbers(args)
			if err != nil {
				return err
			}

			client, ctx, cancel, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			for _, n := range numbers {
				if err := client.DeleteJob(ctx, n); err != nil {
					return fmt.Errorf("deleting job %d: %w", n, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted job %d\n", n)
			}
			return nil
		},
	}
}
