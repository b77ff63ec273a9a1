package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const kLogFileName = "cljblock.log"

// Config controls where log lines go.
type Config struct {
	// Level is one of WARN, INFO, DEBUG, TRACE (case-insensitive).
	Level string

	// Console mirrors log lines to Stderr in human-readable form.
	Console bool
	Stderr  *os.File

	// Dir holds the rolling JSON log file. Empty disables file logging.
	Dir        string
	MaxSizeMB  int
	MaxBackups int
}

// New builds the developer-facing logger. With neither console nor file
// output configured, the logger discards everything.
func New(cfg Config) zerolog.Logger {
	var writers []io.Writer
	if cfg.Console {
		stderr := cfg.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        stderr,
			TimeFormat: "15:04:05",
			NoColor:    !term.IsTerminal(int(stderr.Fd())),
		})
	}
	if fw := rollingFile(cfg); fw != nil {
		writers = append(writers, fw)
	}
	if len(writers) == 0 {
		return zerolog.Nop()
	}

	return zerolog.New(io.MultiWriter(writers...)).
		Level(ParseLevel(cfg.Level)).
		With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to INFO.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "WARN":
		return zerolog.WarnLevel
	case "DEBUG":
		return zerolog.DebugLevel
	case "TRACE":
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

func rollingFile(cfg Config) io.Writer {
	if cfg.Dir == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil
	}

	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 5
	}
	backups := cfg.MaxBackups
	if backups <= 0 {
		backups = 3
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, kLogFileName),
		MaxSize:    maxSize,
		MaxBackups: backups,
	}
}
