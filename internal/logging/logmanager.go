//
//  Copyright © Manetu Inc. All rights reserved.
//

package logging

import (
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// logManager tracks every instantiated logger so that levels can be
// adjusted globally at runtime.
type logManager struct {
	loggers  map[string]*Logger
	defLevel zapcore.Level
}

var (
	manager *logManager
	mu      sync.RWMutex
	once    sync.Once
)

func initManager() {
	manager = &logManager{
		loggers:  make(map[string]*Logger),
		defLevel: zapcore.InfoLevel,
	}
}

// resetForTesting resets the manager state - only for testing.
func resetForTesting() {
	mu.Lock()
	defer mu.Unlock()
	manager = nil
	once = sync.Once{}
}

// GetLogger returns the tracked logger for the specified module, creating
// it at the current default level if needed.
func GetLogger(module string) *Logger {
	once.Do(initManager)

	mu.RLock()
	if l := manager.loggers[module]; l != nil {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring the write lock.
	if l := manager.loggers[module]; l != nil {
		return l
	}

	l := newLogger(module)
	l.SetLevel(manager.defLevel)
	manager.loggers[module] = l

	return l
}

// parseLevel converts a string level to zapcore.Level. Unknown levels fall
// back to info; "trace" maps to debug since zap has no trace level.
func parseLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(levelStr) {
	case "panic":
		return zapcore.PanicLevel
	case "fatal":
		return zapcore.FatalLevel
	case "error":
		return zapcore.ErrorLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "debug", "trace":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// UpdateLogLevels updates log levels from a specification of the form
// "mod1:debug;mod2:error;.:info", where "." sets the default for every
// module without an explicit entry. Whitespace is tolerated.
func UpdateLogLevels(logstr string) error {
	once.Do(initManager)

	for _, ws := range []string{" ", "\t", "\n"} {
		logstr = strings.ReplaceAll(logstr, ws, "")
	}

	mu.Lock()
	defer mu.Unlock()

	explicit := make(map[string]bool)
	var defaultLevel zapcore.Level
	hasDefault := false

	for _, entry := range strings.Split(logstr, ";") {
		parts := strings.Split(entry, ":")
		if len(parts) != 2 {
			continue
		}

		module, level := parts[0], parseLevel(parts[1])

		if module == "." {
			defaultLevel = level
			hasDefault = true
			continue
		}

		explicit[module] = true
		l := manager.loggers[module]
		if l == nil {
			l = newLogger(module)
			manager.loggers[module] = l
		}
		l.SetLevel(level)
	}

	if hasDefault {
		manager.defLevel = defaultLevel
		for module, l := range manager.loggers {
			if !explicit[module] {
				l.SetLevel(defaultLevel)
			}
		}
	}

	return nil
}
