package migration

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// GooseAdapter routes goose's log output through zerolog.
type GooseAdapter struct {
	logger zerolog.Logger
}

func NewGooseAdapter(logger zerolog.Logger) *GooseAdapter {
	return &GooseAdapter{logger: logger.With().Str("component", "goose").Logger()}
}

func (g *GooseAdapter) Fatalf(format string, v ...interface{}) {
	g.logger.Fatal().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (g *GooseAdapter) Printf(format string, v ...interface{}) {
	g.logger.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
