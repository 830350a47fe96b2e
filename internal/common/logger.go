package common

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

var (
	globalLogger arbor.ILogger
	loggerMutex  sync.Mutex
)

// GetLogger returns the global logger, creating a console-only one when
// InitLogger has not run yet (early startup, tests).
func GetLogger() arbor.ILogger {
	loggerMutex.Lock()
	defer loggerMutex.Unlock()

	if globalLogger == nil {
		globalLogger = arbor.NewLogger().WithConsoleWriter(consoleConfig())
	}
	return globalLogger
}

// InitLogger builds the application logger from the logging section of the
// config: console and/or file output, level from config. The file writer
// lands next to the executable under logs/volare.log.
func InitLogger(config *Config) arbor.ILogger {
	logger := arbor.NewLogger()

	for _, output := range config.Logging.Output {
		switch output {
		case "stdout", "console":
			logger = logger.WithConsoleWriter(consoleConfig())
		case "file":
			if path := logFilePath(); path != "" {
				logger = logger.WithFileWriter(fileConfig(path))
			} else {
				logger = logger.WithConsoleWriter(consoleConfig())
			}
		}
	}

	logger = logger.WithLevelFromString(config.Logging.Level)

	loggerMutex.Lock()
	globalLogger = logger
	loggerMutex.Unlock()

	return logger
}

// logFilePath places logs in a logs/ directory next to the binary. Returns
// empty when the directory cannot be created.
func logFilePath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}
	logsDir := filepath.Join(filepath.Dir(execPath), "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return ""
	}
	return filepath.Join(logsDir, "volare.log")
}

func consoleConfig() models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:       models.LogWriterTypeConsole,
		TimeFormat: "15:04:05",
		TextOutput: true,
	}
}

func fileConfig(path string) models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:       models.LogWriterTypeFile,
		FileName:   path,
		TimeFormat: "15:04:05",
		MaxSize:    100 * 1024 * 1024,
		MaxBackups: 3,
		TextOutput: true,
	}
}
