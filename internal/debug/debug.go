// Package debug provides a centralized, categorized logging system backed by zap.
// Verbose category output is selected with the CRYPTUM_DEBUG environment variable
// or the -debug command line flag.
package debug

import (
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a debug logging category
type Category string

const (
	// Core categories
	APP    Category = "APP"    // Intent dispatch, workspace transitions
	FS     Category = "FS"     // Directory snapshots, file reads and writes
	TREE   Category = "TREE"   // Lazy tree materialization
	STORE  Category = "STORE"  // Recent documents database
	CONFIG Category = "CONFIG" // Settings load/save
	UI     Category = "UI"     // Terminal front end

	// Detailed subcategories (use sparingly - can be verbose)
	FS_ENTRY Category = "FS_ENTRY" // Individual entry processing
	WATCH    Category = "WATCH"    // Filesystem notifications
)

var (
	enabledCategories = defaultCategories()
	categoryMu        sync.RWMutex

	loggerMu sync.RWMutex
	logger   = zap.NewNop()
	level    = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

func defaultCategories() map[Category]bool {
	return map[Category]bool{
		APP:    true,
		FS:     true,
		TREE:   true,
		STORE:  true,
		CONFIG: true,
		UI:     true,
		// Verbose categories disabled by default
		FS_ENTRY: false,
		WATCH:    false,
	}
}

func init() {
	if env := os.Getenv("CRYPTUM_DEBUG"); env != "" {
		ApplyEnv(env)
	}
}

// Init builds the process logger. With verbose set, debug-level category
// output is written to stderr in console format.
func Init(verbose bool) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}
	cfg.Level = level

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

// SetLogger replaces the process logger. Tests use it with an observer core.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

// L returns the process logger.
func L() *zap.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// Sync flushes any buffered log entries.
func Sync() error {
	return L().Sync()
}

// Log writes a debug-level entry for the given category when it is enabled.
func Log(cat Category, msg string, fields ...zap.Field) {
	if !IsEnabled(cat) {
		return
	}
	L().Debug(msg, append(fields, zap.String("cat", string(cat)))...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	L().Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	L().Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	L().Error(msg, fields...)
}

// ApplyEnv interprets a category selector.
// Format: APP,FS,TREE or all or none.
func ApplyEnv(env string) {
	categoryMu.Lock()
	defer categoryMu.Unlock()

	env = strings.ToUpper(strings.TrimSpace(env))
	switch env {
	case "ALL":
		for cat := range enabledCategories {
			enabledCategories[cat] = true
		}
	case "NONE":
		for cat := range enabledCategories {
			enabledCategories[cat] = false
		}
	default:
		for cat := range enabledCategories {
			enabledCategories[cat] = false
		}
		for _, cat := range strings.Split(env, ",") {
			cat = strings.TrimSpace(cat)
			if cat != "" {
				enabledCategories[Category(cat)] = true
			}
		}
	}
}

// Enable enables a debug category
func Enable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = true
	categoryMu.Unlock()
}

// Disable disables a debug category
func Disable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = false
	categoryMu.Unlock()
}

// IsEnabled returns whether a category is enabled
func IsEnabled(cat Category) bool {
	categoryMu.RLock()
	defer categoryMu.RUnlock()
	return enabledCategories[cat]
}

// Reset restores the default category selection.
func Reset() {
	categoryMu.Lock()
	enabledCategories = defaultCategories()
	categoryMu.Unlock()
}

// ListEnabled returns the enabled categories in name order.
func ListEnabled() []Category {
	categoryMu.RLock()
	defer categoryMu.RUnlock()

	var enabled []Category
	for cat, on := range enabledCategories {
		if on {
			enabled = append(enabled, cat)
		}
	}
	sort.Slice(enabled, func(i, j int) bool { return enabled[i] < enabled[j] })
	return enabled
}
