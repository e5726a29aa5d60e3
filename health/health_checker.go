// Package health provides health checking functionality for the drug mentions service.
package health

import (
	"math"
	"net/http"
	"slices"
	"time"

	"github.com/giygas/drug-mentions/interfaces"
	"github.com/giygas/drug-mentions/logging"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore interfaces.DataStore
	refreshAt []time.Duration // offsets from midnight, sorted
	now       func() time.Time
}

// NewHealthChecker creates a new health checker with injected dependencies.
// refreshAt holds the daily rebuild times as "HH:MM".
func NewHealthChecker(dataStore interfaces.DataStore, refreshAt []string) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		dataStore: dataStore,
		refreshAt: parseRefreshTimes(refreshAt),
		now:       time.Now,
	}
}

func parseRefreshTimes(times []string) []time.Duration {
	offsets := make([]time.Duration, 0, len(times))
	for _, raw := range times {
		t, err := time.Parse("15:04", raw)
		if err != nil {
			logging.Warn("Ignoring invalid refresh time", "value", raw, "error", err)
			continue
		}
		offsets = append(offsets, time.Duration(t.Hour())*time.Hour+time.Duration(t.Minute())*time.Minute)
	}
	slices.Sort(offsets)
	return offsets
}

// HealthCheck returns HTTP-specific health data.
// Used by /health HTTP endpoint
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	snap := h.dataStore.GetSnapshot()
	idx := snap.Index
	lastUpdate := snap.UpdatedAt
	isUpdating := h.dataStore.IsUpdating()

	dataAge := h.now().Sub(lastUpdate)

	switch {
	case idx.Len() == 0:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 48*time.Hour:
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case dataAge > 24*time.Hour:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	case isUpdating && dataAge > 6*time.Hour:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"last_update":    lastUpdate.Format(time.RFC3339),
		"data_age_hours": math.Round(dataAge.Hours()*10) / 10,
		"drugs":          idx.Len(),
		"mentions":       idx.TotalMentions(),
		"snapshot_id":    snap.ID,
		"is_updating":    isUpdating,
	}

	if next := h.CalculateNextUpdate(); !next.IsZero() {
		data["next_update"] = next.Format(time.RFC3339)
	}

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next scheduled rebuild time, or the zero time
// when no refresh time is configured
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	return nextUpdateAfter(h.now(), h.refreshAt)
}

func nextUpdateAfter(now time.Time, refreshAt []time.Duration) time.Time {
	if len(refreshAt) == 0 {
		return time.Time{}
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for _, offset := range refreshAt {
		candidate := midnight.Add(offset)
		if now.Before(candidate) {
			return candidate
		}
	}

	// Past the last run of the day: first run tomorrow
	return midnight.AddDate(0, 0, 1).Add(refreshAt[0])
}
