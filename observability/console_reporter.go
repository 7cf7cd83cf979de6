// Package observability provides pluggable implementations of
// engine.Reporter: a console reporter for local development and a
// Sentry-backed reporter for production error tracking.
package observability

import (
	"log"
	"sync"

	"github.com/lanewayhq/laneway/engine"
)

// ConsoleReporter logs CycleError and UserFunctionError to the console.
// It's meant for local development, where an external error tracker is
// unavailable or unnecessary.
//
// Thread-safe: all methods are safe for concurrent use.
type ConsoleReporter struct {
	verbose bool
	mu      sync.Mutex
}

var _ engine.Reporter = (*ConsoleReporter)(nil)

// NewConsoleReporter creates a console reporter. In verbose mode, the
// full live-call stack is logged alongside each failure; otherwise only
// the error message is.
func NewConsoleReporter(verbose bool) *ConsoleReporter {
	return &ConsoleReporter{verbose: verbose}
}

func (r *ConsoleReporter) ReportCycle(err *engine.CycleError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.verbose {
		log.Printf("[ERROR] (%s) cycle detected: %v", err.ID, err)
		return
	}
	log.Printf("[ERROR] (%s) %s", err.ID, err.Error())
}

func (r *ConsoleReporter) ReportUserFunctionFailure(err *engine.UserFunctionError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.verbose {
		log.Printf("[ERROR] (%s) derived function failed: %v", err.ID, err)
		return
	}
	log.Printf("[ERROR] (%s) %s: %v", err.ID, err.Key, err.Err)
}
