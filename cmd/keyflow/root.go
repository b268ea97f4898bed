package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dshills/keyflow/internal/config"
	"github.com/dshills/keyflow/internal/logging"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFile    string
}

func newRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "keyflow",
		Short: "Trace keystrokes through remaps, counts and commands",
		Long: `keyflow runs keystrokes through a modal editor's input core: per-mode
key remapping, numeric count prefixes and multi-key command matching.

Mappings and commands come from a TOML or YAML file given with --config.
Without one, a small built-in Vim-like set is used.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"config file (.toml, .yaml or .yml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"log level: debug, info, warn, error (overrides the config file)")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "",
		"log file path (overrides the config file; default stderr)")

	root.AddCommand(
		newTraceCmd(opts),
		newMapsCmd(opts),
		newLiveCmd(opts),
	)
	return root
}

// open loads the configuration and builds a session. Entries that fail to
// apply are reported on stderr and skipped. logOut receives logs when no
// log file is configured.
func (o *rootOptions) open(cmd *cobra.Command, logOut io.Writer) (*session, io.Closer, error) {
	f, err := loadFile(o.configPath)
	if err != nil {
		return nil, nil, err
	}

	logCfg := logging.Config{
		Level:  f.Log.Level,
		File:   f.Log.File,
		Output: logOut,
	}
	if o.logLevel != "" {
		logCfg.Level = o.logLevel
	}
	if o.logFile != "" {
		logCfg.File = o.logFile
	}
	logger, closer, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log: %w", err)
	}

	s, err := newSession(o.configPath, f, logger)
	if err != nil {
		if !errors.Is(err, config.ErrInvalidEntry) {
			_ = closer.Close()
			return nil, nil, err
		}
		reportEntryErrors(cmd.ErrOrStderr(), err, logger)
	}
	return s, closer, nil
}

func reportEntryErrors(w io.Writer, err error, logger *slog.Logger) {
	logger.Warn("config entries skipped", "error", err)
	fmt.Fprintf(w, "warning: some config entries were skipped:\n%v\n", err)
}
