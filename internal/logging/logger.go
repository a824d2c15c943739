//
//  Copyright © Manetu Inc. All rights reserved.
//

// Package logging provides per-module structured loggers built on zap.
//
// Every log line carries the originating module plus actor/action fields
// identifying who triggered the evaluation and what they were doing, so
// engine diagnostics can be correlated with audit records. Use
// [GetLogger] to obtain a logger and [UpdateLogLevels] to adjust levels
// at runtime from a "module:level;.:level" specification.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	actorField  = "actor"
	actionField = "action"
	moduleField = "module"

	defActor  = "sys"
	defAction = "unk"
)

// Logger is a leveled, module-scoped wrapper around zap.
type Logger struct {
	module string
	level  zapcore.Level
	writer io.Writer // nil means stdout
	sugar  *zap.SugaredLogger
}

// newLogger creates an unregistered logger for the module at info level.
// Application code should use GetLogger, which tracks the instance for
// later level updates.
func newLogger(module string) *Logger {
	l := &Logger{module: module, level: zapcore.InfoLevel}
	l.rebuild()
	return l
}

// rebuild reconstructs the underlying zap logger after a level or output
// change. The encoder honors LOG_FORMATTER=text for console output (JSON
// otherwise) and LOG_REPORT_CALLER to include caller locations.
func (l *Logger) rebuild() {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder

	var encoder zapcore.Encoder
	if os.Getenv("LOG_FORMATTER") == "text" {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	output := l.writer
	if output == nil {
		output = os.Stdout
	}

	options := []zap.Option{
		zap.AddCallerSkip(1), // skip this wrapper
	}
	if os.Getenv("LOG_REPORT_CALLER") != "" {
		options = append(options, zap.AddCaller())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(output), l.level)
	l.sugar = zap.New(core, options...).Sugar()
}

// SetLevel sets the logging level.
func (l *Logger) SetLevel(level zapcore.Level) {
	l.level = level
	l.rebuild()
}

// SetOut redirects log output to the given writer (for tests).
func (l *Logger) SetOut(w io.Writer) {
	l.writer = w
	l.rebuild()
}

// Out returns the current output writer.
func (l *Logger) Out() io.Writer {
	if l.writer != nil {
		return l.writer
	}
	return os.Stdout
}

// IsLevelEnabled checks if a level is enabled.
func (l *Logger) IsLevelEnabled(level zapcore.Level) bool {
	return l.level <= level
}

// IsDebugEnabled returns true if the current logging level is debug or
// finer. Use it to guard debug statements whose arguments are expensive to
// compute.
func (l *Logger) IsDebugEnabled() bool {
	return l.level <= zapcore.DebugLevel
}

// IsTraceEnabled reports whether trace output is enabled. zap has no trace
// level; debug stands in for it.
func (l *Logger) IsTraceEnabled() bool {
	return l.level <= zapcore.DebugLevel
}

func (l *Logger) with(actorID, actionID string) *zap.SugaredLogger {
	return l.sugar.With(
		zap.String(actorField, actorID),
		zap.String(actionField, actionID),
		zap.String(moduleField, l.module),
	)
}

// Trace logs a trace message (mapped to debug).
func (l *Logger) Trace(actorID, actionID string, args ...interface{}) {
	l.with(actorID, actionID).Debug(args...)
}

// Tracef logs a formatted trace message (mapped to debug).
func (l *Logger) Tracef(actorID, actionID string, format string, args ...interface{}) {
	l.with(actorID, actionID).Debugf(format, args...)
}

// Debug logs a debug message.
func (l *Logger) Debug(actorID, actionID string, args ...interface{}) {
	l.with(actorID, actionID).Debug(args...)
}

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(actorID, actionID string, format string, args ...interface{}) {
	l.with(actorID, actionID).Debugf(format, args...)
}

// Info logs an info message.
func (l *Logger) Info(actorID, actionID string, args ...interface{}) {
	l.with(actorID, actionID).Info(args...)
}

// Infof logs a formatted info message.
func (l *Logger) Infof(actorID, actionID string, format string, args ...interface{}) {
	l.with(actorID, actionID).Infof(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(actorID, actionID string, args ...interface{}) {
	l.with(actorID, actionID).Warn(args...)
}

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(actorID, actionID string, format string, args ...interface{}) {
	l.with(actorID, actionID).Warnf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(actorID, actionID string, args ...interface{}) {
	l.with(actorID, actionID).Error(args...)
}

// Errorf logs a formatted error message.
func (l *Logger) Errorf(actorID, actionID string, format string, args ...interface{}) {
	l.with(actorID, actionID).Errorf(format, args...)
}

// Panic logs a message and panics.
func (l *Logger) Panic(actorID, actionID string, args ...interface{}) {
	l.with(actorID, actionID).Panic(args...)
}

// Panicf logs a formatted message and panics.
func (l *Logger) Panicf(actorID, actionID string, format string, args ...interface{}) {
	l.with(actorID, actionID).Panicf(format, args...)
}

// Fatal logs a message and exits.
func (l *Logger) Fatal(actorID, actionID string, args ...interface{}) {
	l.with(actorID, actionID).Fatal(args...)
}

// Fatalf logs a formatted message and exits.
func (l *Logger) Fatalf(actorID, actionID string, format string, args ...interface{}) {
	l.with(actorID, actionID).Fatalf(format, args...)
}

// Sys variants log with the default actor/action, for messages not tied to
// any particular evaluation.

// SysDebug logs a debug message with the default actor and action.
func (l *Logger) SysDebug(args ...interface{}) { l.Debug(defActor, defAction, args...) }

// SysDebugf logs a formatted debug message with the default actor and action.
func (l *Logger) SysDebugf(format string, args ...interface{}) {
	l.Debugf(defActor, defAction, format, args...)
}

// SysInfo logs an info message with the default actor and action.
func (l *Logger) SysInfo(args ...interface{}) { l.Info(defActor, defAction, args...) }

// SysInfof logs a formatted info message with the default actor and action.
func (l *Logger) SysInfof(format string, args ...interface{}) {
	l.Infof(defActor, defAction, format, args...)
}

// SysWarn logs a warning message with the default actor and action.
func (l *Logger) SysWarn(args ...interface{}) { l.Warn(defActor, defAction, args...) }

// SysWarnf logs a formatted warning message with the default actor and action.
func (l *Logger) SysWarnf(format string, args ...interface{}) {
	l.Warnf(defActor, defAction, format, args...)
}

// SysError logs an error message with the default actor and action.
func (l *Logger) SysError(args ...interface{}) { l.Error(defActor, defAction, args...) }

// SysErrorf logs a formatted error message with the default actor and action.
func (l *Logger) SysErrorf(format string, args ...interface{}) {
	l.Errorf(defActor, defAction, format, args...)
}

// SysPanic logs a message with the default actor and action, then panics.
func (l *Logger) SysPanic(args ...interface{}) { l.Panic(defActor, defAction, args...) }

// SysFatal logs a message with the default actor and action, then exits.
func (l *Logger) SysFatal(args ...interface{}) { l.Fatal(defActor, defAction, args...) }
