// logger.go is the process-wide diagnostic log. It writes to a rotating
// file, never to stdout: in serve mode stdout carries MCP frames.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes diagnostic messages. A nil *Logger discards everything.
type Logger struct {
	logger   *log.Logger
	closer   io.Closer
	jsonMode bool
}

// NewLogger opens a rotating log at path.
func NewLogger(path string, jsonMode bool) *Logger {
	logFile := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}
	l := newWriterLogger(logFile, jsonMode)
	l.closer = logFile
	return l
}

func newWriterLogger(w io.Writer, jsonMode bool) *Logger {
	return &Logger{
		logger:   log.New(w, "", log.LstdFlags),
		jsonMode: jsonMode,
	}
}

// Close flushes and closes the underlying file, if any.
func (l *Logger) Close() error {
	if l == nil || l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *Logger) Log(message string) {
	if l == nil {
		return
	}
	if l.jsonMode {
		_ = json.NewEncoder(l.logger.Writer()).Encode(map[string]any{"level": "info", "msg": message})
		return
	}
	l.logger.Print(message)
}

func (l *Logger) Logf(format string, v ...any) {
	if l == nil {
		return
	}
	l.Log(fmt.Sprintf(format, v...))
}

func (l *Logger) LogError(err error) {
	if l == nil || err == nil {
		return
	}
	if l.jsonMode {
		_ = json.NewEncoder(l.logger.Writer()).Encode(map[string]any{"level": "error", "error": err.Error()})
		return
	}
	l.logger.Printf("Error: %s", err)
}

// LogProcessStep logs a step of a task's lifecycle.
func (l *Logger) LogProcessStep(taskID, step string) {
	l.Logf("Task %s: %s", taskID, step)
}
