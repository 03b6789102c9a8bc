// Package logging initializes the process-wide zerolog logger.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the global logger. Development mode uses the human
// console writer; anything else emits JSON lines.
func Init(mode string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if mode == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}).With().
			Str("service", "lithograph").
			Logger()
		return
	}

	log.Logger = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", "lithograph").
		Logger()
}
