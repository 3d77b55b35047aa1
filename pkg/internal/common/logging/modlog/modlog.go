/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package modlog

import (
	"fmt"
	"log"
	"os"

	"github.com/identra/framework-go/pkg/internal/common/logging/metadata"
)

// NewDefLog returns new DefLog instance based on given module.
func NewDefLog(module string) *DefLog {
	logger := log.New(os.Stdout, fmt.Sprintf(logPrefixFormatter, module), log.Ldate|log.Ltime|log.LUTC)

	return &DefLog{logger: logger, module: module}
}

const logPrefixFormatter = " [%s] "

// DefLog is a moduled wrapper on top of golang 'log' library.
// Implements leveled logging with the levels managed through the metadata package.
type DefLog struct {
	logger *log.Logger
	module string
}

// Fatalf is CRITICAL log followed by a call to os.Exit(1).
func (l *DefLog) Fatalf(format string, args ...interface{}) {
	l.logf(metadata.CRITICAL, format, args...)
	os.Exit(1)
}

// Panicf is CRITICAL log followed by a call to panic().
func (l *DefLog) Panicf(format string, args ...interface{}) {
	l.logf(metadata.CRITICAL, format, args...)
	panic(fmt.Sprintf(format, args...))
}

// Debugf calls go 'log.Output' and can be used for logging verbose messages.
func (l *DefLog) Debugf(format string, args ...interface{}) {
	l.logf(metadata.DEBUG, format, args...)
}

// Infof calls go 'log.Output' and can be used for logging general information messages.
func (l *DefLog) Infof(format string, args ...interface{}) {
	l.logf(metadata.INFO, format, args...)
}

// Warnf calls go 'log.Output' and can be used for logging possible errors.
func (l *DefLog) Warnf(format string, args ...interface{}) {
	l.logf(metadata.WARNING, format, args...)
}

// Errorf calls go 'log.Output' and can be used for logging errors.
func (l *DefLog) Errorf(format string, args ...interface{}) {
	l.logf(metadata.ERROR, format, args...)
}

func (l *DefLog) logf(level metadata.Level, format string, args ...interface{}) {
	if !metadata.IsEnabledFor(l.module, level) {
		return
	}

	msg := fmt.Sprintf("%s %s", metadata.ParseString(level), fmt.Sprintf(format, args...))

	if err := l.logger.Output(2, msg); err != nil { //nolint:gomnd
		fmt.Printf("error from logger.Output %v\n", err)
	}
}
