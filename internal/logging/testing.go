package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// NewTestLogger creates a logger for tests plus the observer used to
// inspect what was logged.
func NewTestLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, observed := observer.New(zap.DebugLevel)
	return zap.New(core), observed
}
