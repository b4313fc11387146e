package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/avrcpbrowse/internal/logger"
	"github.com/marmos91/avrcpbrowse/pkg/avrcp"
	"github.com/marmos91/avrcpbrowse/pkg/capture"
	"github.com/marmos91/avrcpbrowse/pkg/inspector"
	"github.com/spf13/cobra"
)

// maxIngestLine bounds one input line: a hex encoded payload well above
// inspector.max_payload_bytes plus kind and lengths.
const maxIngestLine = 1 << 20

// ingestStats summarizes an ingest run.
type ingestStats struct {
	OK      int
	Failed  int
	Dropped int
}

// parseIngestLine splits "<kind> <hex> [lengths]" into a payload.
func parseIngestLine(line string) (inspector.Payload, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || len(fields) > 3 {
		return inspector.Payload{}, fmt.Errorf("expected \"<kind> <hex> [lengths]\", got %d fields", len(fields))
	}

	kind, err := capture.ParseKind(fields[0])
	if err != nil {
		return inspector.Payload{}, err
	}
	data, err := parseHex(fields[1])
	if err != nil {
		return inspector.Payload{}, err
	}

	p := inspector.Payload{Kind: kind, Data: data}
	if len(fields) == 3 {
		if p.ItemLengths, err = parseLengths(fields[2]); err != nil {
			return inspector.Payload{}, err
		}
	}
	return p, nil
}

// ingest feeds every payload line of r through insp and reports each
// outcome to out. Blank lines and lines starting with # are skipped.
func ingest(ctx context.Context, insp *inspector.Inspector, r io.Reader, source string, out io.Writer) (ingestStats, error) {
	var stats ingestStats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxIngestLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p, err := parseIngestLine(line)
		if err != nil {
			stats.Failed++
			fmt.Fprintf(out, "%s:%d: invalid line: %v\n", source, lineNo, err)
			continue
		}
		p.Note = fmt.Sprintf("%s:%d", source, lineNo)

		result, err := insp.Handle(ctx, p)
		switch {
		case err == nil:
			stats.OK++
			fmt.Fprintf(out, "%s:%d: %s ok, %d items%s\n", source, lineNo, p.Kind, result.Items, captureSuffix(result.CaptureID))
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return stats, err
		case errors.Is(err, inspector.ErrRateLimited), errors.Is(err, inspector.ErrPayloadTooLarge):
			stats.Dropped++
			fmt.Fprintf(out, "%s:%d: %s dropped: %v\n", source, lineNo, p.Kind, err)
		default:
			stats.Failed++
			fmt.Fprintf(out, "%s:%d: %s %s: %v\n", source, lineNo, p.Kind, avrcp.KindOf(err), err)
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return stats, nil
}

func captureSuffix(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return ", capture " + id.String()
}

func newIngestCommand(a *app) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "ingest [file...]",
		Short: "Feed payloads through the inspector",
		Long: `Feed payloads through the inspector as if they had been received from the
native stack: each payload is rate limited, decoded, measured and captured
according to the inspector section of the configuration.

Input files (or stdin) hold one payload per line:

  <kind> <hex> [declared item lengths]

e.g. "folder_items 0001000000010000000...  21,37". Blank lines and lines
starting with # are ignored.

Background pruning (capture.prune.enabled) runs for the duration of the
command. When metrics are enabled the Prometheus endpoint is served while ingesting;
--wait keeps it up after the input is exhausted until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			rt, err := a.runtime(ctx)
			if err != nil {
				return err
			}

			rt.Pruner.Start()
			defer func() {
				stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer stopCancel()
				if err := rt.Pruner.Stop(stopCtx); err != nil {
					logger.Warn("Capture pruner did not stop: %v", err)
				}
			}()

			metricsDone := make(chan error, 1)
			if rt.Metrics.Server != nil {
				go func() { metricsDone <- rt.Metrics.Server.Start(ctx) }()
			} else {
				close(metricsDone)
			}

			out := cmd.OutOrStdout()
			var total ingestStats

			sources := args
			if len(sources) == 0 {
				sources = []string{"-"}
			}
			for _, source := range sources {
				stats, err := ingestSource(ctx, rt.Inspector, cmd, source, out)
				total.OK += stats.OK
				total.Failed += stats.Failed
				total.Dropped += stats.Dropped
				if err != nil {
					return err
				}
			}

			fmt.Fprintf(out, "ingested %d payloads: %d ok, %d failed, %d dropped\n",
				total.OK+total.Failed+total.Dropped, total.OK, total.Failed, total.Dropped)

			if wait && rt.Metrics.Server != nil {
				logger.Info("Input exhausted, serving metrics on %s until interrupted", rt.Metrics.Server.Addr())
				<-ctx.Done()
			}

			cancel()
			if err := <-metricsDone; err != nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "Keep serving metrics after the input is exhausted")

	return cmd
}

func ingestSource(ctx context.Context, insp *inspector.Inspector, cmd *cobra.Command, source string, out io.Writer) (ingestStats, error) {
	if source == "-" {
		return ingest(ctx, insp, cmd.InOrStdin(), "stdin", out)
	}

	f, err := os.Open(source)
	if err != nil {
		return ingestStats{}, fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer func() { _ = f.Close() }()

	return ingest(ctx, insp, f, source, out)
}
