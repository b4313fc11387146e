package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/marmos91/avrcpbrowse/pkg/avrcp"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	"github.com/marmos91/avrcpbrowse/pkg/capture/prune"
	"github.com/marmos91/avrcpbrowse/pkg/inspector"
	"github.com/spf13/cobra"
)

func newCapturesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "captures",
		Short: "List, show and delete recorded payloads",
	}

	cmd.AddCommand(
		newCapturesListCommand(a),
		newCapturesShowCommand(a),
		newCapturesDeleteCommand(a),
		newCapturesPruneCommand(a),
	)
	return cmd
}

// parseListOptions validates the shared --kind and --limit flags.
func parseListOptions(kind string, limit int) (capture.ListOptions, error) {
	opts := capture.ListOptions{Limit: limit}
	if kind != "" {
		k, err := capture.ParseKind(kind)
		if err != nil {
			return opts, err
		}
		opts.Kind = k
	}
	if limit < 0 {
		return opts, fmt.Errorf("--limit must be >= 0")
	}
	return opts, nil
}

func newCapturesListCommand(a *app) *cobra.Command {
	var (
		kind  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List captures, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := parseListOptions(kind, limit)
			if err != nil {
				return err
			}

			rt, err := a.runtime(cmd.Context())
			if err != nil {
				return err
			}

			captures, err := rt.Store.List(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("failed to list captures: %w", err)
			}
			return printCaptureTable(cmd.OutOrStdout(), captures)
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Only list captures of this kind")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of captures (0 = all)")
	return cmd
}

func printCaptureTable(w io.Writer, captures []*capture.Capture) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tDIRECTION\tCAPTURED\tOUTCOME\tBYTES\tNOTE")
	for _, c := range captures {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			c.ID, c.Kind, c.Direction, humanize.Time(c.CapturedAt), c.Outcome, len(c.Payload), c.Note)
	}
	return tw.Flush()
}

func newCapturesShowCommand(a *app) *cobra.Command {
	var (
		decode bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a capture with a hex dump of its payload",
		Long: `Show a capture's metadata and a hex dump of its payload.

With --decode (the default) the payload is decoded again with the current
codec configuration, which makes it easy to check whether a past failure
still reproduces.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid capture id %q: %w", args[0], err)
			}

			rt, err := a.runtime(cmd.Context())
			if err != nil {
				return err
			}

			c, err := rt.Store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printCapture(out, c)

			if !decode {
				return nil
			}

			value, _, err := inspector.Decode(rt.Codec, inspector.Payload{
				Kind:        c.Kind,
				Data:        c.Payload,
				ItemLengths: c.ItemLengths,
			})
			if err != nil {
				fmt.Fprintf(out, "\ndecode: %s: %v\n", avrcp.KindOf(err), err)
				return nil
			}
			fmt.Fprintln(out, "\ndecoded:")
			return writeValue(out, value, output)
		},
	}

	cmd.Flags().BoolVar(&decode, "decode", true, "Decode the payload with the current codec configuration")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Decoded output format: yaml or json")
	return cmd
}

func printCapture(w io.Writer, c *capture.Capture) {
	fmt.Fprintf(w, "id:           %s\n", c.ID)
	fmt.Fprintf(w, "kind:         %s\n", c.Kind)
	fmt.Fprintf(w, "direction:    %s\n", c.Direction)
	fmt.Fprintf(w, "captured at:  %s\n", c.CapturedAt.Format(time.RFC3339Nano))
	fmt.Fprintf(w, "outcome:      %s\n", c.Outcome)
	if len(c.ItemLengths) > 0 {
		fmt.Fprintf(w, "item lengths: %s\n", formatLengths(c.ItemLengths))
	}
	if c.Note != "" {
		fmt.Fprintf(w, "note:         %s\n", c.Note)
	}
	fmt.Fprintf(w, "payload:      %s\n", humanize.Bytes(uint64(len(c.Payload))))
	fmt.Fprint(w, hex.Dump(c.Payload))
}

func newCapturesDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete captures",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime(cmd.Context())
			if err != nil {
				return err
			}

			for _, arg := range args {
				id, err := uuid.Parse(arg)
				if err != nil {
					return fmt.Errorf("invalid capture id %q: %w", arg, err)
				}
				if err := rt.Store.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			}
			return nil
		},
	}
}

func newCapturesPruneCommand(a *app) *cobra.Command {
	var (
		maxAge       time.Duration
		keepFailures bool
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete captures older than a maximum age",
		Long: `Run a single pruning pass over the capture store. Defaults come from the
capture.prune section; flags override them for this run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.runtime(cmd.Context())
			if err != nil {
				return err
			}

			pruneCfg := rt.Config.Capture.Prune
			if cmd.Flags().Changed("max-age") {
				pruneCfg.MaxAge = maxAge
			}
			if cmd.Flags().Changed("keep-failures") {
				pruneCfg.KeepFailures = keepFailures
			}
			if cmd.Flags().Changed("dry-run") {
				pruneCfg.DryRun = dryRun
			}

			pruner, err := prune.New(rt.Store, pruneCfg)
			if err != nil {
				return err
			}

			stats, err := pruner.RunNow(cmd.Context())
			if err != nil {
				return err
			}

			verb := "deleted"
			if pruneCfg.DryRun {
				verb = "would delete"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d of %d captures older than %s\n",
				verb, stats.ExpiredCount-stats.FailedCount, stats.ScannedCount, pruneCfg.MaxAge)
			if stats.FailedCount > 0 {
				return fmt.Errorf("failed to delete %d captures", stats.FailedCount)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.DurationVar(&maxAge, "max-age", 0, "Delete captures older than this (default capture.prune.max_age)")
	flags.BoolVar(&keepFailures, "keep-failures", false, "Keep captures of payloads that failed to decode")
	flags.BoolVar(&dryRun, "dry-run", false, "Report what would be deleted without deleting")
	return cmd
}
