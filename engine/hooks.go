package engine

// Metrics is the optional sink for cache-level counters. A Database with
// no metrics sink wired uses a no-op implementation whose methods do
// nothing. The metrics package in this repository provides a
// Prometheus-backed implementation.
type Metrics interface {
	RevisionAdvanced(rev Revision)
	DerivedHit(id DerivedId)
	DerivedRevalidated(id DerivedId)
	DerivedRecomputed(id DerivedId)
	DerivedEarlyExit(id DerivedId)
	ActiveComputations(n int)
}

// Reporter is the optional sink for engine failures worth surfacing to
// an external error tracker. It is consulted, never required, on
// CycleError and UserFunctionError — mirroring
// pkg/bubbly/observability.Reporter, adapted from UI-component panics to
// engine computation failures. The observability package provides
// console and Sentry-backed implementations.
type Reporter interface {
	ReportCycle(err *CycleError)
	ReportUserFunctionFailure(err *UserFunctionError)
}

type noopMetrics struct{}

func (noopMetrics) RevisionAdvanced(Revision)    {}
func (noopMetrics) DerivedHit(DerivedId)         {}
func (noopMetrics) DerivedRevalidated(DerivedId) {}
func (noopMetrics) DerivedRecomputed(DerivedId)  {}
func (noopMetrics) DerivedEarlyExit(DerivedId)   {}
func (noopMetrics) ActiveComputations(int)       {}

type noopReporter struct{}

func (noopReporter) ReportCycle(*CycleError)                     {}
func (noopReporter) ReportUserFunctionFailure(*UserFunctionError) {}
