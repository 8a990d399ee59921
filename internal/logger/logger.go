// Package logger is the process-wide leveled logger.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level.
// Anything else is info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	mu        sync.Mutex
	std       = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	logFile   *os.File
	threshold = LevelInfo
)

// Init points the logger at path, or stderr if path is empty, and sets the minimum level.
// It creates parent directories if needed and opens the file in append mode.
func Init(path string, level Level) error {
	var w io.Writer = os.Stderr
	var f *os.File
	if path != "" {
		if err := ensureParentDir(path); err != nil {
			return err
		}
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		w = f
	}

	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	std = log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	threshold = level
	return nil
}

// SetOutput redirects the logger, mostly for tests.
func SetOutput(w io.Writer, level Level) {
	mu.Lock()
	defer mu.Unlock()
	std = log.New(w, "", 0)
	threshold = level
}

// Close closes the underlying log file, if open.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		std = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)
		return err
	}
	return nil
}

// Debugf logs debugging details.
func Debugf(format string, args ...any) { write(LevelDebug, format, args...) }

// Infof logs informational messages.
func Infof(format string, args ...any) { write(LevelInfo, format, args...) }

// Warnf logs warnings.
func Warnf(format string, args ...any) { write(LevelWarn, format, args...) }

// Errorf logs errors.
func Errorf(format string, args ...any) { write(LevelError, format, args...) }

func write(level Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if level < threshold {
		return
	}
	std.Printf("[%s] %s", levelNames[level], fmt.Sprintf(format, args...))
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
