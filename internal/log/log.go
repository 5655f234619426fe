package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"time"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

// Options controls logger initialization. The orchestrator calls Init
// exactly once before any other package logs; there is no lazy setup.
type Options struct {
	// MinLevel is the lowest level that will be emitted. Empty means INFO.
	MinLevel Level
	// FilePath, if non-empty, tees every line into this file in addition
	// to stderr. The file is opened in append mode.
	FilePath string
}

var (
	logger   = stdlog.New(os.Stderr, "", 0)
	minLevel = LevelInfo
	logFile  *os.File
)

// Init configures the package logger. It returns an error if the log file
// cannot be opened; callers may treat that as fatal or fall back to the
// stderr-only default that is active before Init.
func Init(opts Options) error {
	if opts.MinLevel != "" {
		minLevel = opts.MinLevel
	}

	w := io.Writer(os.Stderr)
	if opts.FilePath != "" {
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		logFile = f
		w = io.MultiWriter(os.Stderr, f)
	}
	logger = stdlog.New(w, "", 0)
	return nil
}

// Close releases the log file, if one was opened by Init.
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func Debug(msg string, kv ...any) {
	logWithLevel(LevelDebug, msg, kv...)
}

func Info(msg string, kv ...any) {
	logWithLevel(LevelInfo, msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	logWithLevel(LevelError, msg, extended...)
}

func logWithLevel(level Level, msg string, kv ...any) {
	if !enabled(level) {
		return
	}

	ts := time.Now().Format(time.RFC3339Nano)

	// Line format:
	// 2025-01-01T00:00:00Z [LEVEL] msg key=value ...
	line := ts + " [" + string(level) + "] " + msg
	if len(kv) > 0 {
		line += formatKVs(kv...)
	}

	logger.Println(line)
}

func enabled(level Level) bool {
	switch minLevel {
	case LevelDebug:
		return true
	case LevelInfo:
		return level == LevelInfo || level == LevelError
	case LevelError:
		return level == LevelError
	default:
		return true
	}
}

func formatKVs(kv ...any) string {
	out := ""
	// Expect kv as pairs: key, value, key, value, ...
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		out += " " + key + "=" + fmt.Sprint(kv[i+1])
	}
	// If odd number of args, last one is ignored.
	return out
}
