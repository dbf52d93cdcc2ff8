package logger

import (
	"eino_chat_bridge/src/model"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is disabled until InitLogger runs
var Logger = zerolog.Nop()

var openFiles []*os.File

// InitLogger initializes the global logger with the provided configuration
func InitLogger(config model.LogConfig) error {
	// Set global log level
	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", config.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	// Configure time format
	zerolog.TimeFieldFormat = timeFieldFormat(config.TimeFormat)

	output, err := buildOutput(config, time.Now())
	if err != nil {
		return err
	}

	// Create the global logger
	Logger = zerolog.New(output).With().
		Timestamp().
		Caller().
		Logger()

	// Also set the global zerolog logger for compatibility
	log.Logger = Logger

	Logger.Info().
		Str("level", config.Level).
		Str("format", config.Format).
		Str("output", config.Output).
		Msg("Logger initialized successfully")

	return nil
}

// Close flushes and closes any log files opened by InitLogger
func Close() {
	for _, f := range openFiles {
		_ = f.Sync()
		_ = f.Close()
	}
	openFiles = nil
}

func timeFieldFormat(format string) string {
	switch strings.ToLower(format) {
	case "unix":
		return zerolog.TimeFormatUnix
	case "iso8601":
		return "2006-01-02T15:04:05.000Z07:00"
	default:
		return time.RFC3339
	}
}

// buildOutput assembles the writers for config.Output. File output writes a
// daily <date>.log and copies error-level events to <date>.error.log.
func buildOutput(config model.LogConfig, now time.Time) (io.Writer, error) {
	console := strings.ToLower(config.Format) == "console"
	wrap := func(w io.Writer) io.Writer {
		if console {
			return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
		}
		return w
	}

	var writers []io.Writer
	switch strings.ToLower(config.Output) {
	case "stderr":
		writers = append(writers, wrap(os.Stderr))
	case "file", "both":
		if strings.EqualFold(config.Output, "both") {
			writers = append(writers, wrap(os.Stdout))
		}
		files, err := openDailyFiles(config.Dir, now)
		if err != nil {
			return nil, err
		}
		writers = append(writers,
			files[0],
			&zerolog.FilteredLevelWriter{
				Writer: zerolog.LevelWriterAdapter{Writer: files[1]},
				Level:  zerolog.ErrorLevel,
			},
		)
	default:
		writers = append(writers, wrap(os.Stdout))
	}

	if len(writers) == 1 {
		return writers[0], nil
	}
	return zerolog.MultiLevelWriter(writers...), nil
}

func openDailyFiles(dir string, now time.Time) ([]*os.File, error) {
	// Create logs directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	date := now.Format("2006-01-02")
	names := []string{date + ".log", date + ".error.log"}

	files := make([]*os.File, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			for _, f := range files {
				_ = f.Close()
			}
			return nil, fmt.Errorf("failed to open log file '%s': %w", path, err)
		}
		files = append(files, file)
	}
	openFiles = append(openFiles, files...)
	return files, nil
}

// GetLogger returns the configured logger instance
func GetLogger() *zerolog.Logger {
	return &Logger
}

// Convenience methods for common logging patterns
func Info() *zerolog.Event {
	return Logger.Info()
}

func Debug() *zerolog.Event {
	return Logger.Debug()
}

func Warn() *zerolog.Event {
	return Logger.Warn()
}

func Error() *zerolog.Event {
	return Logger.Error()
}

func Fatal() *zerolog.Event {
	return Logger.Fatal()
}
