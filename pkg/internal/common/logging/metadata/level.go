/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metadata

import (
	"errors"
	"strings"
	"sync"
)

// Level defines all available log levels for logging messages.
type Level int

// Log levels.
const (
	CRITICAL Level = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

const defaultLogLevel = INFO

//nolint:gochecknoglobals
var levelNames = []string{
	"CRITICAL",
	"ERROR",
	"WARNING",
	"INFO",
	"DEBUG",
}

//nolint:gochecknoglobals
var rwmutex = &sync.RWMutex{}

//nolint:gochecknoglobals
var levels = newModuledLevels()

// SetLevel - setting log level for given module.
func SetLevel(module string, level Level) {
	rwmutex.Lock()
	defer rwmutex.Unlock()

	levels.levels[module] = level
}

// GetLevel - getting log level for given module.
func GetLevel(module string) Level {
	rwmutex.RLock()
	defer rwmutex.RUnlock()

	level, exists := levels.levels[module]
	if !exists {
		return defaultLogLevel
	}

	return level
}

// IsEnabledFor - Check if given log level is enabled for given module.
func IsEnabledFor(module string, level Level) bool {
	return level <= GetLevel(module)
}

// ParseLevel returns the log level from a string representation.
func ParseLevel(level string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(name, level) {
			return Level(i), nil
		}
	}

	return ERROR, errors.New("logger: invalid log level")
}

// ParseString returns string representation of given log level.
func ParseString(level Level) string {
	return levelNames[level]
}

type moduledLevels struct {
	levels map[string]Level
}

func newModuledLevels() *moduledLevels {
	return &moduledLevels{levels: make(map[string]Level)}
}
