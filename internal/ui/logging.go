package ui

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the printf-style logger handed to every component. Console
// lines are human readable; the optional file sink gets JSON.
type Logger struct {
	z    zerolog.Logger
	file io.Closer
}

type LogOptions struct {
	Debug bool
	// File enables a rotated JSON log at this path.
	File string
	// Console defaults to stdout.
	Console io.Writer
}

func NewLogger(opts LogOptions) (*Logger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly}}

	l := &Logger{}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}

		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		writers = append(writers, lj)
		l.file = lj
	}

	level := zerolog.InfoLevel
	if opts.Debug {
		level = zerolog.DebugLevel
	}

	l.z = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().Timestamp().Logger()

	return l, nil
}

// NopLogger discards everything.
func NopLogger() *Logger {
	return &Logger{z: zerolog.Nop()}
}

func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}

	return l.file.Close()
}

func (l *Logger) Debugf(format string, args ...any) {
	l.z.Debug().Msg(line(format, args))
}

func (l *Logger) Infof(format string, args ...any) {
	l.z.Info().Msg(line(format, args))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.z.Warn().Msg(line(format, args))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.z.Error().Msg(line(format, args))
}

// line drops the trailing newline callers used to add for fmt.Printf.
func line(format string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
