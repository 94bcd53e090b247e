// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the name of the rotating log file inside the log directory.
const FileName = "prodcal.log"

// Options controls where and how much is logged.
type Options struct {
	// Level is a zerolog level name. Empty means info.
	Level string

	// Verbose forces debug level.
	Verbose bool

	// Dir holds the rotating log file. Empty means DefaultDir().
	Dir string

	// Console also writes to stderr. The TUI turns this off since stderr
	// output would corrupt the alternate screen.
	Console bool
}

// DefaultDir returns ~/.local/state/prodcal/logs.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "logs"
	}
	return filepath.Join(home, ".local", "state", "prodcal", "logs")
}

// Init initializes the global logger with a rotating file sink and,
// optionally, stderr. The returned closer flushes the file sink.
func Init(opts Options) (io.Closer, error) {
	// 1. Determine log level
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		level = parsed
	}
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	// 2. Setup File Writer (Rotating)
	logDir := opts.Dir
	if logDir == "" {
		logDir = DefaultDir()
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory %q: %w", logDir, err)
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, FileName),
		MaxSize:    16, // megabytes
		MaxBackups: 8,
		MaxAge:     90, // days
		Compress:   true,
	}

	writers := []io.Writer{fileWriter}

	// 3. Setup Stderr Writer (Console)
	if opts.Console {
		isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
			NoColor:    !isTerminal,
		})
	}

	// 4. Set Global Logger
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger()

	return fileWriter, nil
}
