// Package logging builds the process-wide zerolog logger.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options mirrors the logging keys of the service configuration.
type Options struct {
	Level string
	Dev   bool
	File  string
}

// New writes to stdout (console format in development) and, when File is
// set, to a size-rotated JSON file as well.
func New(opts Options) zerolog.Logger {
	var out io.Writer = os.Stdout
	if opts.Dev {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	return newWithWriter(opts, out)
}

func newWithWriter(opts Options, out io.Writer) zerolog.Logger {
	if opts.File != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	}
	return zerolog.New(out).Level(parseLevel(opts.Level)).With().Timestamp().Logger()
}

func parseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return level
}
