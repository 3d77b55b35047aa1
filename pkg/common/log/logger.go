/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"sync"

	"github.com/identra/framework-go/pkg/internal/common/logging/metadata"
	"github.com/identra/framework-go/pkg/internal/common/logging/modlog"
)

// Level is a log level for a logging message.
type Level int

// Log levels.
const (
	CRITICAL Level = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

// Logger represents a general-purpose logger.
type Logger interface {
	Panicf(msg string, args ...interface{})
	Fatalf(msg string, args ...interface{})
	Errorf(msg string, args ...interface{})
	Warnf(msg string, args ...interface{})
	Infof(msg string, args ...interface{})
	Debugf(msg string, args ...interface{})
}

// LoggerProvider is a factory for module scoped loggers.
type LoggerProvider interface {
	GetLogger(module string) Logger
}

// Log is an implementation of Logger interface.
// It encapsulates default or custom logger to provide module and level based logging.
type Log struct {
	instance Logger
	module   string
	once     sync.Once
}

// New creates and returns a Logger implementation based on given module name.
// note: the underlying logger instance is lazy initialized on first use.
// To use your own logger implementation provide logger provider in 'Initialize()' before logging any line.
// If 'Initialize()' is not called before logging any line then default logging implementation will be used.
func New(module string) *Log {
	return &Log{module: module}
}

// Fatalf calls Fatalf function of underlying logger
// should possibly cause system shutdown based on implementation.
func (l *Log) Fatalf(msg string, args ...interface{}) {
	l.logger().Fatalf(msg, args...)
}

// Panicf calls Panicf function of underlying logger
// should possibly cause panic based on implementation.
func (l *Log) Panicf(msg string, args ...interface{}) {
	l.logger().Panicf(msg, args...)
}

// Debugf calls Debugf function of underlying logger.
func (l *Log) Debugf(msg string, args ...interface{}) {
	l.logger().Debugf(msg, args...)
}

// Infof calls Infof function of underlying logger.
func (l *Log) Infof(msg string, args ...interface{}) {
	l.logger().Infof(msg, args...)
}

// Warnf calls Warnf function of underlying logger.
func (l *Log) Warnf(msg string, args ...interface{}) {
	l.logger().Warnf(msg, args...)
}

// Errorf calls Errorf function of underlying logger.
func (l *Log) Errorf(msg string, args ...interface{}) {
	l.logger().Errorf(msg, args...)
}

func (l *Log) logger() Logger {
	l.once.Do(func() {
		l.instance = loggerProvider().GetLogger(l.module)
	})

	return l.instance
}

// SetLevel sets the log level for given module and level.
func SetLevel(module string, level Level) {
	metadata.SetLevel(module, metadata.Level(level))
}

// GetLevel returns the log level for given module.
func GetLevel(module string) Level {
	return Level(metadata.GetLevel(module))
}

// IsEnabledFor returns true if given log level is enabled for given module.
func IsEnabledFor(module string, level Level) bool {
	return metadata.IsEnabledFor(module, metadata.Level(level))
}

// ParseLevel returns the log level from given string.
func ParseLevel(level string) (Level, error) {
	l, err := metadata.ParseLevel(level)

	return Level(l), err
}

//nolint:gochecknoglobals
var (
	loggerProviderInstance LoggerProvider
	loggerProviderOnce     sync.Once
)

// Initialize sets new custom logging provider which takes over logging operations.
// It is required to call this function before making any loggings for using custom loggers.
func Initialize(l LoggerProvider) {
	loggerProviderOnce.Do(func() {
		loggerProviderInstance = &provider{custom: l}
	})
}

func loggerProvider() LoggerProvider {
	loggerProviderOnce.Do(func() {
		loggerProviderInstance = &provider{}
	})

	return loggerProviderInstance
}

// provider is a module based logger provider wrapped on given custom logger provider.
// If custom logger provider is not given, then default logger will be used.
type provider struct {
	custom LoggerProvider
}

// GetLogger returns moduled logger implementation.
func (p *provider) GetLogger(module string) Logger {
	if p.custom != nil {
		return p.custom.GetLogger(module)
	}

	return modlog.NewDefLog(module)
}
