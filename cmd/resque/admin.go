package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xraph/resque/id"
	"github.com/xraph/resque/status"
)

func newStatusCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show a tracked job's status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID, err := id.ParseJobID(args[0])
			if err != nil {
				return err
			}
			rec, ok, err := a.eng.JobStatus(cmd.Context(), jobID)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("job %s is not tracked", jobID)
			}
			return a.print(cmd.OutOrStdout(), rec, func(w io.Writer) {
				fmt.Fprintf(w, "%s  %s  updated %s\n", rec.JobID, rec.State, rec.UpdatedAt.Format("2006-01-02 15:04:05"))
			})
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <job-id> <state>",
		Short: "Move a tracked job to a new state",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobID, err := id.ParseJobID(args[0])
			if err != nil {
				return err
			}
			state, err := status.ParseState(args[1])
			if err != nil {
				return err
			}
			return a.eng.UpdateStatus(cmd.Context(), jobID, state)
		},
	})
	return cmd
}

func newFailedCommand(a *app) *cobra.Command {
	var offset, limit int64
	cmd := &cobra.Command{
		Use:   "failed",
		Short: "List recorded failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs, err := a.eng.ListFailures(cmd.Context(), offset, limit)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), fs, func(w io.Writer) {
				for i, f := range fs {
					fmt.Fprintf(w, "%d  %s  %-12s %-20s %s: %s\n",
						offset+int64(i), f.FailedAt.Format("2006-01-02 15:04:05"),
						f.Queue, f.Payload.HandlerName, f.Exception, f.Error)
				}
			})
		},
	}
	cmd.Flags().Int64Var(&offset, "offset", 0, "Index of the first failure")
	cmd.Flags().Int64Var(&limit, "limit", 50, "Max failures")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "count",
			Short: "Print the number of recorded failures",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				n, err := a.eng.FailureCount(cmd.Context())
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), n, func(w io.Writer) { fmt.Fprintln(w, n) })
			},
		},
		&cobra.Command{
			Use:   "requeue <index>",
			Short: "Push a failed job back onto its queue",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				index, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("index: %w", err)
				}
				j, err := a.eng.RequeueFailure(cmd.Context(), index)
				if err != nil {
					return err
				}
				return a.print(cmd.OutOrStdout(), j, func(w io.Writer) {
					fmt.Fprintf(w, "requeued %s onto %s\n", j.JobID, j.Queue)
				})
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every recorded failure",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.eng.ClearFailures(cmd.Context())
			},
		},
	)
	return cmd
}

func newWorkersCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "workers",
		Short: "List registered workers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.eng.Workers(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), ws, func(w io.Writer) {
				for _, wid := range ws {
					fmt.Fprintln(w, wid)
				}
			})
		},
	}
}

func newPIDsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pids",
		Short: "List live worker process ids on this host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pids := a.eng.LivePIDs(cmd.Context())
			return a.print(cmd.OutOrStdout(), pids, func(w io.Writer) {
				for _, p := range pids {
					fmt.Fprintln(w, p)
				}
			})
		},
	}
}

func newReconcileCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "List registered workers on this host whose process is gone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stale, err := a.eng.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), stale, func(w io.Writer) {
				for _, wid := range stale {
					fmt.Fprintln(w, wid)
				}
			})
		},
	}
}
