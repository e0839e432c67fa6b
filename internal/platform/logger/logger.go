// Package logger provides structured logging for the simulation server.
// All decisions made by the policy, skill and event engines should be
// traceable through this.
package logger

import (
	"log"
	"os"
)

// Logger provides leveled logging with a dedicated game-event channel.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// New creates a new logger instance.
func New() *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, "[SIM-INFO] ", log.Ldate|log.Ltime|log.Lshortfile),
		warnLogger:  log.New(os.Stdout, "[SIM-WARN] ", log.Ldate|log.Ltime|log.Lshortfile),
		errorLogger: log.New(os.Stderr, "[SIM-ERROR] ", log.Ldate|log.Ltime|log.Lshortfile),
	}
}

// Info logs informational messages.
func (l *Logger) Info(format string, args ...any) {
	l.infoLogger.Printf(format, args...)
}

// Warn logs warning messages.
func (l *Logger) Warn(format string, args ...any) {
	l.warnLogger.Printf(format, args...)
}

// Error logs error messages.
func (l *Logger) Error(format string, args ...any) {
	l.errorLogger.Printf(format, args...)
}

// Event logs a specific game event for audit purposes.
func (l *Logger) Event(eventType string, actor string, details string) {
	l.infoLogger.Printf("[EVENT:%s] Actor:%s | %s", eventType, actor, details)
}
