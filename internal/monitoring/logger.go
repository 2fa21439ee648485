// Package monitoring carries the package-level diagnostic logger shared by the
// processing pipelines. Batch runs over large surveys log phase transitions and
// external-tool invocations through Logf so a CLI or test harness can redirect
// or silence them in one place.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf and
// may be replaced with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
