// Package logging configures the zap logger shared by the stash commands.
package logging

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	defaultOutputPath      = "stdout"
	defaultErrorOutputPath = "stderr"
	defaultLevel           = "info"
)

var levels = []string{"debug", "info", "warn", "error", "none"}

// Options defines the set of options supported by the logging package.
type Options struct {
	// OutputPaths is a list of file system paths to write the log data to.
	// The special values stdout and stderr can be used to output to the
	// standard I/O streams.
	OutputPaths []string

	// ErrorOutputPaths is a list of file system paths to write logger errors to.
	ErrorOutputPaths []string

	// Level is one of debug, info, warn, error or none.
	Level string

	// JSONEncoding controls whether the log is formatted as JSON.
	JSONEncoding bool

	IncludeCallerSourceLocation bool
}

func DefaultOptions() *Options {
	return &Options{
		OutputPaths:      []string{defaultOutputPath},
		ErrorOutputPaths: []string{defaultErrorOutputPath},
		Level:            defaultLevel,
	}
}

// AttachCobraFlags attaches a set of Cobra flags to the given Cobra command.
func (o *Options) AttachCobraFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringSliceVar(&o.OutputPaths, "log_target", o.OutputPaths,
		"The set of paths where to output the log. This can be any path as well as the special values stdout and stderr")
	cmd.PersistentFlags().StringVar(&o.Level, "log_output_level", o.Level,
		fmt.Sprintf("The minimum logging level of messages to output, can be one of %s", strings.Join(levels, ", ")))
	cmd.PersistentFlags().BoolVar(&o.JSONEncoding, "log_as_json", o.JSONEncoding,
		"Whether to format output as JSON or in plain console-friendly format")
	cmd.PersistentFlags().BoolVar(&o.IncludeCallerSourceLocation, "log_caller", o.IncludeCallerSourceLocation,
		"Include caller information")
}

// Build returns a logger honouring the options, the none level yields a
// no-op logger.
func (o *Options) Build() (*zap.Logger, error) {
	if o.Level == "none" {
		return zap.NewNop(), nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(o.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q, expected one of %s", o.Level, strings.Join(levels, ", "))
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoding := "console"
	if o.JSONEncoding {
		encoding = "json"
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		Encoding:          encoding,
		EncoderConfig:     encCfg,
		OutputPaths:       o.OutputPaths,
		ErrorOutputPaths:  o.ErrorOutputPaths,
		DisableCaller:     !o.IncludeCallerSourceLocation,
		DisableStacktrace: true,
	}
	return cfg.Build()
}

func (o *Options) String() string {
	return fmt.Sprintf("level: %s, targets: %s, json: %v", o.Level, strings.Join(o.OutputPaths, ","), o.JSONEncoding)
}
