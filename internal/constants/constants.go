// Package constants defines shared constants for SlotShift.
//
// This package MUST NOT import any other internal packages.
package constants

import "time"

// AppName is the canonical application name, used for directories,
// environment variable prefixes, and log output.
const AppName = "slotshift"

// EnvPrefix is the prefix for environment variable configuration
// (e.g., SLOTSHIFT_SUBSCRIPTION_ID, SLOTSHIFT_MAX_PARALLEL).
const EnvPrefix = "SLOTSHIFT"

// Orchestrator scheduling limits.
const (
	// DefaultMaxParallel is the default number of deployment units
	// allowed to run concurrently.
	DefaultMaxParallel = 5

	// MaxParallelLimit is the hard upper bound on concurrent deployment
	// units. Values above this are rejected, not clamped.
	MaxParallelLimit = 10

	// DefaultJobTimeout is the default wall-clock budget for an entire
	// deployment run. Units still running at the deadline are stopped and
	// report a timed-out outcome.
	DefaultJobTimeout = 60 * time.Minute
)

// Health validation parameters. The retry interval is deliberately
// constant: slot warm-up is dominated by app start time, and exponential
// backoff only delays the promotion decision.
const (
	// ValidationMaxAttempts caps the number of health-check attempts per
	// target, regardless of remaining time budget.
	ValidationMaxAttempts = 10

	// ValidationBackoff is the fixed delay between failed health-check
	// attempts.
	ValidationBackoff = 30 * time.Second

	// ValidationRequestTimeout bounds each individual health-check HTTP
	// request.
	ValidationRequestTimeout = 30 * time.Second

	// DefaultValidationTimeout is the default total time budget for
	// validating one target.
	DefaultValidationTimeout = 5 * time.Minute
)

// ProductionSlot is the destination slot of every swap. SlotShift only
// promotes a non-production slot into production, never the reverse.
const ProductionSlot = "production"

// TargetPlaceholder is the token in a validation URL template that is
// replaced with the target's app name (e.g.,
// "https://{target}-staging.azurewebsites.net/healthz").
const TargetPlaceholder = "{target}"

// SourceSlots lists the slot names a deployment may start from.
// Production is intentionally absent: it is always the destination.
func SourceSlots() []string {
	return []string{"staging", "testing", "qa", "preprod"}
}

// IsSourceSlot reports whether name is an allowed source slot.
func IsSourceSlot(name string) bool {
	for _, s := range SourceSlots() {
		if s == name {
			return true
		}
	}
	return false
}

// Log file settings for the rotating CLI log.
const (
	// LogsDir is the log directory name under the slotshift home directory.
	LogsDir = "logs"

	// CLILogFileName is the rotating log file name.
	CLILogFileName = "slotshift.log"

	// LogMaxSizeMB is the maximum size of a log file before rotation.
	LogMaxSizeMB = 10

	// LogMaxBackups is the number of rotated log files to keep.
	LogMaxBackups = 3

	// LogMaxAgeDays is the maximum age of a rotated log file.
	LogMaxAgeDays = 30

	// LogCompress enables gzip compression of rotated log files.
	LogCompress = true
)
