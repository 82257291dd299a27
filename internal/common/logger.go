package common

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

const (
	logFileName     = "stockanalyzer.log"
	logMaxSize      = 100 * 1024 * 1024
	logMaxBackups   = 3
	defaultLogClock = "15:04:05"
)

var (
	globalLogger arbor.ILogger
	loggerMutex  sync.RWMutex
)

// GetLogger returns the global logger, creating a console logger if
// InitLogger has not run yet
func GetLogger() arbor.ILogger {
	loggerMutex.RLock()
	if globalLogger != nil {
		loggerMutex.RUnlock()
		return globalLogger
	}
	loggerMutex.RUnlock()

	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if globalLogger == nil {
		globalLogger = arbor.NewLogger().WithConsoleWriter(consoleWriter(defaultLogClock, true))
	}
	return globalLogger
}

// InitLogger builds the logger described by config.Logging and installs it
// as the global logger. A console writer is always present when no file
// writer could be opened.
func InitLogger(config *Config) arbor.ILogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	logging := config.Logging
	timeFormat := logging.TimeFormat
	if timeFormat == "" {
		timeFormat = defaultLogClock
	}
	textOutput := logging.Format != "json"

	var toFile, toConsole bool
	for _, output := range logging.Output {
		switch output {
		case "file":
			toFile = true
		case "stdout", "console":
			toConsole = true
		}
	}

	logger := arbor.NewLogger()

	if toFile {
		if path, err := LogFilePath(logging); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
			toConsole = true
		} else {
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   path,
				TimeFormat: timeFormat,
				MaxSize:    logMaxSize,
				MaxBackups: logMaxBackups,
				TextOutput: textOutput,
			})
		}
	}

	if toConsole || !toFile {
		logger = logger.WithConsoleWriter(consoleWriter(timeFormat, textOutput))
	}

	logger = logger.WithLevelFromString(logging.Level)
	globalLogger = logger
	return logger
}

// LogFilePath resolves the log file location and makes sure its directory
// exists
func LogFilePath(logging LoggingConfig) (string, error) {
	dir := logging.Dir
	if dir == "" {
		execPath, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("failed to locate executable: %w", err)
		}
		dir = filepath.Join(filepath.Dir(execPath), "logs")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	return filepath.Join(dir, logFileName), nil
}

func consoleWriter(timeFormat string, textOutput bool) models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:       models.LogWriterTypeConsole,
		TimeFormat: timeFormat,
		TextOutput: textOutput,
	}
}
