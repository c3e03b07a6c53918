package log

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// GooseLogger routes goose migration output through zerolog.
type GooseLogger struct {
	logger *zerolog.Logger
}

func (g *GooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Fatal().Str("component", "goose").Msgf(strings.TrimSpace(format), v...)
}

// Printf logs at debug level; goose reports every applied migration.
func (g *GooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Debug().Str("component", "goose").Msgf(strings.TrimSpace(format), v...)
}

func NewGooseLoggerFromCtx(ctx context.Context) *GooseLogger {
	return &GooseLogger{
		logger: FromCtx(ctx),
	}
}
