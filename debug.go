package silhouette

import "time"

// UpdateStats describes the most recent UpdateHitboxes pass.
type UpdateStats struct {
	Hitboxes  int           // hitboxes visited
	Projected int           // hitboxes whose screen points were refreshed
	Skipped   int           // hitboxes left unchanged (no usable contour)
	Points    int           // screen points produced
	Duration  time.Duration // only measured in debug mode
}

// SetDebugMode enables or disables debug mode. When enabled, each
// UpdateHitboxes pass is timed and its stats are logged at debug level.
func (e *Engine) SetDebugMode(enabled bool) {
	e.debug = enabled
}

// LastStats returns the stats of the most recent UpdateHitboxes pass.
func (e *Engine) LastStats() UpdateStats {
	return e.stats
}

// debugLog reports update stats through the package logger.
func (e *Engine) debugLog(stats UpdateStats) {
	if !e.debug {
		return
	}
	Logger().Debug("hitboxes updated",
		"hitboxes", stats.Hitboxes,
		"projected", stats.Projected,
		"skipped", stats.Skipped,
		"points", stats.Points,
		"duration", stats.Duration)
}
