package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. Production writes JSON lines, everything
// else gets the console writer. An empty or unknown level falls back to
// debug outside production and info in it.
func New(environment, level string) zerolog.Logger {
	production := environment == "production"

	var output io.Writer = os.Stdout
	if !production {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(output, environment, level)
}

func NewWithWriter(w io.Writer, environment, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.DebugLevel
		if environment == "production" {
			lvl = zerolog.InfoLevel
		}
	}

	return zerolog.New(w).Level(lvl).With().
		Timestamp().
		Str("env", environment).
		Logger()
}
