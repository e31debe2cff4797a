package viewport

import "sync/atomic"

// RayTracingCounters accumulates cheap ray statistics, totalled over every
// pass since the Viewport was created (nothing resets them), with atomics so
// concurrent tile workers never contend on a mutex for bookkeeping, per
// spec.md §4.1. Grounded on the teacher's pkg/renderer/stats.go
// RenderStats, generalized to atomic fields so increments are safe from
// every worker goroutine without a lock.
type RayTracingCounters struct {
	CameraRays  atomic.Int64
	ShadowRays  atomic.Int64
	BounceRays  atomic.Int64
	LightPaths  atomic.Int64
}

// Snapshot copies the current counter values into a plain struct suitable
// for returning from Render without exposing the atomics themselves.
func (c *RayTracingCounters) Snapshot() RayTracingCountersSnapshot {
	return RayTracingCountersSnapshot{
		CameraRays: c.CameraRays.Load(),
		ShadowRays: c.ShadowRays.Load(),
		BounceRays: c.BounceRays.Load(),
		LightPaths: c.LightPaths.Load(),
	}
}

// RayTracingCountersSnapshot is the read-only value returned to callers.
type RayTracingCountersSnapshot struct {
	CameraRays, ShadowRays, BounceRays, LightPaths int64
}

// RenderingProgress is returned from each Render call, per spec.md §3's
// RenderingProgress entity: "passesFinished, activeBlocks, activePixels,
// converged ∈ [0,1], averageError >= 0." ConvergedFraction and Converged
// are both derived from ActivePixels against the image's total pixel
// count, per spec.md §4.2/§8 ("converged + activePixels/(W*H) = 1"), not
// from a block-count ratio: blocks have unequal area once they start
// splitting, so a count-based ratio would misreport convergence whenever
// the remaining active blocks aren't all the same size.
type RenderingProgress struct {
	PassIndex         int
	ActiveBlocks      int
	TotalBlocks       int
	ActivePixels      int
	AverageError      float64
	ConvergedFraction float64
	Converged         bool
	Counters          RayTracingCountersSnapshot
}
