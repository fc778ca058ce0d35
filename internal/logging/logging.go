package logging

import (
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RotatingFile returns a size-rotated log file named after the component in logsDir.
func RotatingFile(logsDir, component string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   LogFilePath(logsDir, component),
		MaxSize:    32, // MB
		MaxBackups: 3,
		MaxAge:     14,
		Compress:   true,
	}
}

// LogFilePath builds a log file path using OS-appropriate path separators.
func LogFilePath(logsDir, component string) string {
	return filepath.Join(logsDir, component+".log")
}
