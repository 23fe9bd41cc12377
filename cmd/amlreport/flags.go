package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/amlscreen/amlreport/pkg/defaults"
	"github.com/amlscreen/amlreport/pkg/model"
	"github.com/amlscreen/amlreport/pkg/theme"
	"github.com/amlscreen/amlreport/pkg/ui"
)

// Environment variables.
const (
	envTheme        = "AMLREPORT_THEME"
	envOTLPEndpoint = "AMLREPORT_OTLP_ENDPOINT"
)

// commonFlags holds flags shared by every command.
type commonFlags struct {
	Theme     string
	LogFormat string
	Verbose   bool
	NoColor   bool
}

// register binds common flags to fs.
func (cf *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&cf.Theme, "theme", "", "Theme YAML file (default: $"+envTheme+" or built-in)")
	fs.StringVar(&cf.LogFormat, "log-format", "text", "Log format: text or json")
	fs.BoolVar(&cf.Verbose, "v", false, "Debug logging")
	fs.BoolVar(&cf.NoColor, "no-color", false, "Disable colored output")
}

// setup applies -no-color and returns the configured logger.
func (cf *commonFlags) setup(w io.Writer) (*slog.Logger, error) {
	if cf.NoColor {
		ui.SetNoColor(true)
	}
	level := slog.LevelInfo
	if cf.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	switch cf.LogFormat {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, usageErrorf("invalid -log-format %q (want text or json)", cf.LogFormat)
}

// theme resolves -theme, then $AMLREPORT_THEME, then the built-in theme.
func (cf *commonFlags) theme() (*theme.Theme, error) {
	path := cf.Theme
	if path == "" {
		path = os.Getenv(envTheme)
	}
	if path == "" {
		return theme.Default(), nil
	}
	th, err := theme.Load(path)
	if err != nil {
		return nil, usageErrorf("load theme: %v", err)
	}
	return th, nil
}

func (e env) flagSet(name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage: %s %s %s\n\nFlags:\n", defaults.ToolName, name, args)
		fs.PrintDefaults()
	}
	return fs
}

// parse wraps flag errors as usage errors.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return err
		}
		return &usageError{msg: err.Error()}
	}
	return nil
}

// readInput reads one payload from path, or stdin for "-".
func (e env) readInput(path string) ([]byte, error) {
	var r io.Reader
	if path == "-" {
		r = e.stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, usageErrorf("open input: %v", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, defaults.MaxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > defaults.MaxPayloadBytes {
		return nil, fmt.Errorf("%s: %w: exceeds %d bytes", path, model.ErrInputShape, defaults.MaxPayloadBytes)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s: %w: empty input", path, model.ErrInputShape)
	}
	return data, nil
}
