// Package obslog provides config-driven categorized file-based logging for
// oryn. Logs are written to .oryn/logs/, one file per category; logging is
// a silent no-op until Initialize is called with debug mode enabled.
package obslog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category names a logging subsystem; each pipeline stage gets its own file.
type Category string

const (
	CategoryNormalizer Category = "normalizer"
	CategoryParser     Category = "parser"
	CategoryResolver   Category = "resolver"
	CategoryTranslator Category = "translator"
	CategoryExecutor   Category = "executor"
	CategoryBackend    Category = "backend"
	CategorySession    Category = "session"
	CategoryIntent     Category = "intent"
)

const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Config controls whether and how logging runs; it is the obslog slice of
// orynconfig.Config so the two packages can evolve independently.
type Config struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
}

// StructuredEntry is the JSON shape written when JSONFormat is set.
type StructuredEntry struct {
	Timestamp int64                  `json:"ts"`
	Category  string                 `json:"cat"`
	Level     string                 `json:"lvl"`
	Message   string                 `json:"msg"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	mu       sync.RWMutex
	loggers  = make(map[Category]*Logger)
	logsDir  string
	cfg      Config
	logLevel = LevelInfo
)

// Initialize points the package at a workspace root and loads cfg; when
// cfg.DebugMode is false, Get returns no-op loggers and nothing touches disk.
func Initialize(workspaceDir string, c Config) error {
	mu.Lock()
	defer mu.Unlock()
	cfg = c
	logLevel = levelFromString(c.Level)
	if !cfg.DebugMode {
		return nil
	}
	logsDir = filepath.Join(workspaceDir, ".oryn", "logs")
	return os.MkdirAll(logsDir, 0755)
}

func levelFromString(s string) int {
	switch s {
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

func categoryEnabled(c Category) bool {
	if !cfg.DebugMode {
		return false
	}
	if cfg.Categories == nil {
		return true
	}
	enabled, exists := cfg.Categories[string(c)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (creating on first use) the logger for category c. Safe to
// call before Initialize; it then silently no-ops.
func Get(c Category) *Logger {
	mu.RLock()
	enabled := categoryEnabled(c)
	dir := logsDir
	if l, ok := loggers[c]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	if !enabled || dir == "" {
		return &Logger{category: c}
	}

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[c]; ok {
		return l
	}
	date := time.Now().Format("2006-01-02")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.log", date, c))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[obslog] could not open %s: %v\n", path, err)
		return &Logger{category: c}
	}
	l := &Logger{category: c, file: f, logger: log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds)}
	loggers[c] = l
	return l
}

func (l *Logger) write(level int, label, format string, args ...interface{}) {
	if l.logger == nil || logLevel > level {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if cfg.JSONFormat {
		data, err := json.Marshal(StructuredEntry{Timestamp: time.Now().UnixMilli(), Category: string(l.category), Level: label, Message: msg})
		if err == nil {
			l.logger.Printf("%s", data)
			return
		}
	}
	l.logger.Printf("[%s] %s", label, msg)
}

func (l *Logger) Debug(format string, args ...interface{}) { l.write(LevelDebug, "DEBUG", format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.write(LevelInfo, "INFO", format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.write(LevelWarn, "WARN", format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.write(LevelError, "ERROR", format, args...) }

// Close flushes and closes every open category log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}
