package logger

import (
	"os"
	"strings"
	"time"

	"github.com/LexiconIndonesia/property-scraper-service/common/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitializeLogging configures the global zerolog logger.
func InitializeLogging(cfg config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Log.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	log.Info().Str("level", level.String()).Bool("pretty", cfg.Log.Pretty).Msg("Logging initialized")
}
