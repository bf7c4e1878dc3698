package compositor

import (
	"log/slog"

	"github.com/BeatGlow/compositor/internal/logging"
)

// SetLogger configures the logger for the compositor and all its
// sub-packages. By default nothing is logged. Pass nil to restore the silent
// default.
//
// Log levels used:
//   - [slog.LevelDebug]: skipped frames, SPI transfer chunking
//   - [slog.LevelInfo]: session lifecycle transitions
//   - [slog.LevelWarn]: errors while rolling back or tearing down
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the active logger.
func Logger() *slog.Logger {
	return logging.Logger()
}
