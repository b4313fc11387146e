// Command avrcpbrowse inspects, converts and archives AVRCP browsing
// payloads exchanged with the native Bluetooth stack.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/marmos91/avrcpbrowse/internal/logger"
	"github.com/marmos91/avrcpbrowse/pkg/avrcp"
	"github.com/marmos91/avrcpbrowse/pkg/config"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCommand(a).ExecuteContext(ctx)
	if closeErr := a.close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string

	cfg      *config.Config
	rt       *config.Runtime
	closeLog func() error
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "avrcpbrowse",
		Short: "Inspect and convert AVRCP browsing payloads",
		Long: `avrcpbrowse decodes and encodes the binary folder item lists, element
attribute lists and player application setting lists exchanged between a
Bluetooth stack and its media service, records payloads that fail to decode,
and archives them to S3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/avrcpbrowse/config.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "Override logging.level (DEBUG, INFO, WARN, ERROR)")

	root.AddCommand(
		newDecodeCommand(a),
		newEncodeCommand(a),
		newIngestCommand(a),
		newCapturesCommand(a),
		newExportCommand(a),
		newInitCommand(),
	)

	return root
}

// loadConfig loads the configuration once and applies the logging section.
func (a *app) loadConfig() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = strings.ToUpper(a.logLevel)
	}

	closeLog, err := config.ConfigureLogging(&cfg.Logging)
	if err != nil {
		return nil, err
	}
	a.closeLog = closeLog
	a.cfg = cfg

	logger.Debug("Configuration loaded: capture=%s, capture_mode=%s", cfg.Capture.Type, cfg.Inspector.CaptureMode)
	return cfg, nil
}

// codec builds a codec from the codec section without opening any store.
func (a *app) codec() (*avrcp.Codec, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	return config.CreateCodec(cfg)
}

// runtime opens the capture store and everything built on it.
func (a *app) runtime(ctx context.Context) (*config.Runtime, error) {
	if a.rt != nil {
		return a.rt, nil
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	rt, err := config.InitializeRuntime(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.rt = rt
	return rt, nil
}

// close releases the runtime and the log file. It is safe to call more
// than once.
func (a *app) close() error {
	var err error
	if a.rt != nil {
		err = a.rt.Close()
		a.rt = nil
	}
	if a.closeLog != nil {
		if closeErr := a.closeLog(); closeErr != nil && err == nil {
			err = closeErr
		}
		a.closeLog = nil
	}
	return err
}
