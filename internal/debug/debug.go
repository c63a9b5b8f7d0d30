package debug

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// DefaultFile is where logs go unless Configure is called first.
const DefaultFile = "/tmp/specchat-debug.log"

var (
	once   sync.Once
	logger *slog.Logger
	level  = new(slog.LevelVar)
	path   = DefaultFile
)

// Configure sets the level and file of the singleton logger. The file only
// takes effect if called before the first GetLogger call; the level can be
// changed at any time.
func Configure(levelName, file string) {
	level.Set(ParseLevel(levelName))
	if file != "" {
		path = file
	}
}

// ParseLevel maps a level name to a slog level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetLogger returns a singleton slog logger instance
func GetLogger() *slog.Logger {
	once.Do(func() {
		var w io.Writer = os.Stderr
		if path != "-" {
			f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
			if err != nil {
				panic(err)
			}
			w = f
		}
		logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		}))
	})
	return logger
}
