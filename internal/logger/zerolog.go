// Package logger adapts github.com/duynhne/pkg/logger/zerolog to this
// service: console output outside production and a global-logger fallback
// for contexts that carry none.
package logger

import (
	"context"
	"os"
	"time"

	pkgzerolog "github.com/duynhne/pkg/logger/zerolog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global logger through pkg's Setup. Outside
// production the output switches to the console writer.
func Setup(level string, production bool) {
	pkgzerolog.Setup(level)
	if production {
		return
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()
}

// FromContext returns the logger stored in ctx by the logging middleware,
// falling back to the global logger when ctx has none.
func FromContext(ctx context.Context) *zerolog.Logger {
	l := pkgzerolog.FromContext(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	scoped := l.With().Logger()
	return &scoped
}
