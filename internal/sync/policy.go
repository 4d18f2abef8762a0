package sync

import (
	"time"

	"github.com/stacklok/mbean-bridge/internal/attribute"
)

// ShouldRead decides whether an attribute needs a fresh backend read. A nil or
// zero cache time always reads. A negative one never reads unless forced. A
// positive one reads when more than cacheTimeMs milliseconds have passed
// since lastUpdate.
func ShouldRead(cacheTimeMs *int64, lastUpdate, now time.Time, force bool) bool {
	if force {
		return true
	}
	if cacheTimeMs == nil || *cacheTimeMs == 0 {
		return true
	}
	if *cacheTimeMs < 0 {
		return false
	}
	return now.Sub(lastUpdate) > time.Duration(*cacheTimeMs)*time.Millisecond
}

// SelectDue filters definitions through ShouldRead, keeping input order.
// lastUpdates maps property names to their last update; missing names count
// as never updated.
func SelectDue(
	defs []attribute.Definition, lastUpdates map[string]time.Time, now time.Time, ignoreCache bool,
) []attribute.Definition {
	due := make([]attribute.Definition, 0, len(defs))
	for _, def := range defs {
		if ShouldRead(def.CacheTime, lastUpdates[def.Name], now, ignoreCache) {
			due = append(due, def)
		}
	}
	return due
}
