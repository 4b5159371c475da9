package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/xraph/resque/engine"
	"github.com/xraph/resque/job"
)

func newEnqueueCommand(a *app) *cobra.Command {
	var track bool
	cmd := &cobra.Command{
		Use:   "enqueue <queue> <handler> [args-json]",
		Short: "Enqueue a job",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var jobArgs any
			if len(args) == 3 {
				var raw json.RawMessage
				if err := json.Unmarshal([]byte(args[2]), &raw); err != nil {
					return fmt.Errorf("args: %w", err)
				}
				jobArgs = raw
			}
			var opts []engine.EnqueueOption
			if track {
				opts = append(opts, engine.WithTrackStatus())
			}
			jobID, err := a.eng.Enqueue(cmd.Context(), args[0], args[1], jobArgs, opts...)
			if jobID.IsNil() {
				return err
			}
			// The job is queued even when status tracking failed.
			if perr := a.print(cmd.OutOrStdout(), map[string]string{"jobId": jobID.String()}, func(w io.Writer) {
				fmt.Fprintln(w, jobID)
			}); perr != nil {
				return perr
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&track, "track", false, "Track the job's status")
	return cmd
}

func newPopCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pop <queue>",
		Short: "Remove and print the head of a queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, ok, err := a.eng.Pop(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return a.print(cmd.OutOrStdout(), nil, func(w io.Writer) {
					fmt.Fprintln(w, "(empty)")
				})
			}
			return a.print(cmd.OutOrStdout(), &j.Payload, func(w io.Writer) {
				printPayload(w, &j.Payload)
			})
		},
	}
}

func newPeekCommand(a *app) *cobra.Command {
	var start, count int64
	cmd := &cobra.Command{
		Use:   "peek <queue>",
		Short: "List pending payloads without removing them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := a.eng.Peek(cmd.Context(), args[0], start, count)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), ps, func(w io.Writer) {
				for _, p := range ps {
					printPayload(w, p)
				}
			})
		},
	}
	cmd.Flags().Int64Var(&start, "start", 0, "Index of the first payload")
	cmd.Flags().Int64Var(&count, "count", 10, "Max payloads")
	return cmd
}

func newQueuesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "queues",
		Short: "List registered queues with their sizes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			names, err := a.eng.Queues(ctx)
			if err != nil {
				return err
			}
			sizes := make(map[string]int64, len(names))
			for _, q := range names {
				n, err := a.eng.Size(ctx, q)
				if err != nil {
					return err
				}
				sizes[q] = n
			}
			return a.print(cmd.OutOrStdout(), sizes, func(w io.Writer) {
				for _, q := range names {
					fmt.Fprintf(w, "%-20s %d\n", q, sizes[q])
				}
			})
		},
	}
}

func newSizeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "size <queue>",
		Short: "Print the number of pending payloads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.eng.Size(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), n, func(w io.Writer) {
				fmt.Fprintln(w, n)
			})
		},
	}
}

func newClearCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <queue>",
		Short: "Delete every pending payload of a queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.eng.Clear(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), map[string]int64{"removed": n}, func(w io.Writer) {
				fmt.Fprintf(w, "removed %d\n", n)
			})
		},
	}
}

func newRemoveQueueCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-queue <queue>",
		Short: "Unregister a queue and delete its payloads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.eng.RemoveQueue(cmd.Context(), args[0])
		},
	}
}

func printPayload(w io.Writer, p *job.Payload) {
	fmt.Fprintf(w, "%s  %-20s  %s\n", p.JobID, p.HandlerName, p.Args)
}

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Summarize pending, processed and failed jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := a.eng.Info(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), info, func(w io.Writer) {
				fmt.Fprintf(w, "pending    %d\n", info.Pending)
				fmt.Fprintf(w, "processed  %d\n", info.Processed)
				fmt.Fprintf(w, "failed     %d\n", info.Failed)
				fmt.Fprintf(w, "queues     %d\n", info.Queues)
				fmt.Fprintf(w, "workers    %d\n", info.Workers)
			})
		},
	}
}

func newStatsCommand(a *app) *cobra.Command {
	var incr int64
	cmd := &cobra.Command{
		Use:   "stats [name...]",
		Short: "Print counters (default: processed and failed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"processed", "failed"}
			}
			values := make(map[string]int64, len(args))
			for _, name := range args {
				s := a.eng.Stats().Get(name)
				var v int64
				var err error
				if incr != 0 {
					v, err = s.IncrBy(cmd.Context(), incr)
				} else {
					v, err = s.Value(cmd.Context())
				}
				if err != nil {
					return err
				}
				values[name] = v
			}
			return a.print(cmd.OutOrStdout(), values, func(w io.Writer) {
				for _, name := range args {
					fmt.Fprintf(w, "%-12s %s\n", name, strconv.FormatInt(values[name], 10))
				}
			})
		},
	}
	cmd.Flags().Int64Var(&incr, "incr", 0, "Add this amount to every named counter first")
	return cmd
}
