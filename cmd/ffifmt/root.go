package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/ffifmt/boundary"
	"github.com/wippyai/ffifmt/cabi"
	"github.com/wippyai/ffifmt/config"
	"github.com/wippyai/ffifmt/errors"
	"github.com/wippyai/ffifmt/ryu"
	"github.com/wippyai/ffifmt/wasmhost"
)

// Bindings selectable with --binding.
const (
	bindingGo   = "go"
	bindingCABI = "cabi"
	bindingWasm = "wasm"
)

// app holds the global flags and everything derived from them.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	configPath string
	style      string
	binding    string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "ffifmt",
		Short:         "Shortest round-trip double formatting across FFI bindings",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML or JSONC configuration file")
	flags.StringVarP(&a.style, "style", "s", "", "text layout: standard, compact or plain")
	flags.StringVarP(&a.binding, "binding", "b", bindingGo, "binding to call through: go, cabi or wasm")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newFormatCommand(a),
		newArrayCommand(a),
		newVerifyCommand(a),
		newWitCommand(),
		newInteractiveCommand(a),
	)
	return root
}

// setup loads the configuration, applies flag overrides and installs the
// logger in every package that logs.
func (a *app) setup() error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.style != "" {
		cfg.Style = a.style
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	switch a.binding {
	case bindingGo, bindingCABI, bindingWasm:
	default:
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path("binding").
			Value(a.binding).
			Detail("unknown binding %q", a.binding).
			Build()
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	boundary.SetLogger(logger)
	wasmhost.SetLogger(logger)
	cabi.SetLogger(logger)

	a.cfg = cfg
	a.logger = logger
	logger.Debug("configured",
		zap.String("style", cfg.Style),
		zap.String("binding", a.binding),
		zap.String("config", a.configPath))
	return nil
}

func (a *app) formatStyle() ryu.Style {
	return a.cfg.FormatStyle()
}
