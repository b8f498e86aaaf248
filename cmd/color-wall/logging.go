package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"pkt.systems/pslog"
)

const (
	logDir      = "logs"
	logFileName = "color-wall.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging returns the application logger. The terminal is in raw mode
// while the wall runs, so logs only ever go to a file: logs/color-wall.log
// with debug, path when set, nowhere otherwise. The returned file is nil when
// logging is disabled. The standard log package is redirected to the same sink.
func setupLogging(debug bool, path, level string) (pslog.Logger, *os.File) {
	if !debug && path == "" {
		log.SetOutput(io.Discard)
		return newLogger(io.Discard, level), nil
	}

	if path == "" {
		path = filepath.Join(logDir, logFileName)
	}
	if debug && level == "info" {
		level = "debug"
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.SetOutput(io.Discard)
		return newLogger(io.Discard, level), nil
	}
	rotateLog(path)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.SetOutput(io.Discard)
		return newLogger(io.Discard, level), nil
	}

	logger := newLogger(f, level)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)
	return logger, f
}

// rotateLog moves an oversized log aside with a timestamp suffix
func rotateLog(path string) {
	info, err := os.Stat(path)
	if err != nil || info.Size() <= maxLogSize {
		return
	}
	ext := filepath.Ext(path)
	base := path[:len(path)-len(ext)]
	rotated := fmt.Sprintf("%s-%s%s", base, time.Now().Format("20060102-150405"), ext)
	os.Rename(path, rotated)
}

func newLogger(w io.Writer, level string) pslog.Logger {
	opts := pslog.Options{Mode: pslog.ModeStructured, NoColor: true}
	switch level {
	case "trace":
		opts.MinLevel = pslog.TraceLevel
	case "debug":
		opts.MinLevel = pslog.DebugLevel
	case "warn":
		opts.MinLevel = pslog.WarnLevel
	case "error":
		opts.MinLevel = pslog.ErrorLevel
	default:
		opts.MinLevel = pslog.InfoLevel
	}
	return pslog.NewWithOptions(w, opts)
}
