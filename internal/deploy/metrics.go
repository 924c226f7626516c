package deploy

import (
	"time"

	"github.com/slotshift/slotshift/internal/constants"
)

// Metrics receives deployment lifecycle events. The CLI wires a noop
// implementation; alternative sinks can be attached without touching the
// workflow code.
type Metrics interface {
	// UnitStarted fires when a deployment unit begins running.
	UnitStarted(target string)

	// PhaseChanged fires on every phase transition.
	PhaseChanged(target string, from, to constants.UnitPhase)

	// ValidationAttempts records how many health-check requests a target
	// needed.
	ValidationAttempts(target string, attempts int)

	// UnitCompleted fires when a unit reaches its terminal outcome.
	UnitCompleted(target string, success bool, duration time.Duration)
}

// NoopMetrics is a Metrics implementation that discards all events.
type NoopMetrics struct{}

// UnitStarted implements Metrics.
func (NoopMetrics) UnitStarted(string) {}

// PhaseChanged implements Metrics.
func (NoopMetrics) PhaseChanged(string, constants.UnitPhase, constants.UnitPhase) {}

// ValidationAttempts implements Metrics.
func (NoopMetrics) ValidationAttempts(string, int) {}

// UnitCompleted implements Metrics.
func (NoopMetrics) UnitCompleted(string, bool, time.Duration) {}

// compile-time check
var _ Metrics = NoopMetrics{}
