package logging

import (
	"io"
	"os"
	"strings"
)

// Config selects the service logger's level and destination. Output is
// always one JSON entry per line.
type Config struct {
	// Level is the minimum level emitted (debug, info, warn, error, fatal).
	Level string
	// Output is "stdout", "stderr" or a file path opened in append mode.
	Output string
}

// NewLogger builds a Logger from cfg. A nil cfg yields an info-level
// logger on stderr.
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	sink, err := openSink(cfg.Output)
	if err != nil {
		return nil, err
	}
	return New(ParseLevel(cfg.Level), sink), nil
}

// ParseLevel maps a level name to a LogLevel, case-insensitively.
// Unrecognized names fall back to Info.
func ParseLevel(name string) LogLevel {
	level := LogLevel(strings.ToUpper(name))
	switch level {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel, FatalLevel:
		return level
	}
	return InfoLevel
}

func openSink(output string) (io.Writer, error) {
	switch output {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}
	return os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}
