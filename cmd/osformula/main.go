package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/caarlos0/env/v11"
	"github.com/mateothegreat/osformula"
	"github.com/mateothegreat/osformula/scenario"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// environment holds the defaults read from the process environment. Flags
// take precedence.
type environment struct {
	Config    string   `env:"OSFORMULA_CONFIG"`
	LogLevel  string   `env:"OSFORMULA_LOG_LEVEL" envDefault:"info"`
	Platforms []string `env:"OSFORMULA_PLATFORMS" envSeparator:","`
}

type options struct {
	env       environment
	config    string
	verbose   bool
	platforms []string
	logger    *zap.Logger
}

func newRootCommand() (*cobra.Command, error) {
	opts := &options{logger: zap.NewNop()}
	if err := env.Parse(&opts.env); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	root := &cobra.Command{
		Use:           "osformula",
		Short:         "Run the OpenSearch formula scenarios through the shared check groups.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(opts.env.LogLevel, opts.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = opts.logger.Sync()
		},
	}
	root.PersistentFlags().StringVarP(&opts.config, "config", "c", opts.env.Config, "the path to a scenario table file (default: the built-in scenarios)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	root.PersistentFlags().StringSliceVarP(&opts.platforms, "platform", "p", opts.env.Platforms, "platforms to run for, by name or family (default: all supported)")

	root.AddCommand(
		newListCommand(opts),
		newShowCommand(opts),
		newRenderCommand(opts),
		newRunCommand(opts),
		newGraphCommand(opts),
	)
	return root, nil
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	config.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	return config.Build()
}

func (o *options) table() (*scenario.Table, error) {
	if o.config == "" {
		return scenario.Tests(), nil
	}
	o.logger.Debug("loading scenario table", zap.String("path", o.config))
	return scenario.LoadFile(o.config)
}

func (o *options) resolvePlatforms() ([]osformula.Platform, error) {
	return osformula.ParsePlatforms(o.platforms)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root, err := newRootCommand()
	if err == nil {
		err = root.ExecuteContext(ctx)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
