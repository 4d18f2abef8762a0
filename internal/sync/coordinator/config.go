package coordinator

import (
	"math/rand/v2"
	"time"
)

const (
	// DefaultPollingInterval is the base interval at which the coordinator checks targets
	DefaultPollingInterval = 10 * time.Second

	// pollingJitterFraction bounds the random offset applied to the polling interval
	pollingJitterFraction = 10
)

// calculatePollingInterval returns base with a random jitter of up to ±10%
// applied, so servers sharing a database do not poll in lockstep.
func calculatePollingInterval(base time.Duration) time.Duration {
	jitter := base / pollingJitterFraction
	if jitter <= 0 {
		return base
	}
	//nolint:gosec // G404: Non-cryptographic randomness is sufficient for polling jitter
	offset := time.Duration(rand.Int64N(int64(2*jitter))) - jitter
	return base + offset
}
