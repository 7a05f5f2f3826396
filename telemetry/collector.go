package telemetry

// HostSample is one host's state when a window is flushed.
// Lifecycle counters are cumulative since the host was created.
type HostSample struct {
	ID         uint32 `json:"id"`
	Live       int    `json:"live"`
	Cap        int    `json:"cap"`
	Spawned    int    `json:"spawned"`
	Recycled   int    `json:"recycled"`
	Expired    int    `json:"expired"`
	Culled     int    `json:"culled"`
	Shed       int    `json:"shed"`
	Throttled  bool   `json:"throttled"`
	Simplified bool   `json:"simplified"`
}

type hostCounters struct {
	spawned, recycled, expired, culled, shed int
}

// Collector accumulates events within time windows and produces EffectStats.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartTick int32
	windowStartSec  float64

	// Event counters for current window
	broadcasts     int
	hostsCreated   int
	hostsDestroyed int

	// Lifecycle counters of hosts destroyed during the window, plus the
	// last flushed cumulative counters of every live host
	retired hostCounters
	last    map[uint32]hostCounters
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
func NewCollector(windowDurationSec float64) *Collector {
	if windowDurationSec <= 0 {
		windowDurationSec = 10
	}
	return &Collector{
		windowDurationSec: windowDurationSec,
		last:              make(map[uint32]hostCounters),
	}
}

// RecordBroadcast records a settings broadcast.
func (c *Collector) RecordBroadcast() {
	c.broadcasts++
}

// RecordHostCreated records a new host control.
func (c *Collector) RecordHostCreated() {
	c.hostsCreated++
}

// RecordHostDestroyed records a destroyed host. final carries the host's
// counters at destruction so its last partial window is not lost.
func (c *Collector) RecordHostDestroyed(final HostSample) {
	c.hostsDestroyed++
	prev := c.last[final.ID]
	c.retired.spawned += final.Spawned - prev.spawned
	c.retired.recycled += final.Recycled - prev.recycled
	c.retired.expired += final.Expired - prev.expired
	c.retired.culled += final.Culled - prev.culled
	c.retired.shed += final.Shed - prev.shed
	delete(c.last, final.ID)
}

// ShouldFlush returns true if enough simulation time has passed to flush the window.
func (c *Collector) ShouldFlush(simTimeSec float64) bool {
	return simTimeSec-c.windowStartSec >= c.windowDurationSec
}

// Flush produces an EffectStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, simTimeSec float64, hosts []HostSample) EffectStats {
	stats := EffectStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      simTimeSec,

		Hosts: len(hosts),

		Spawned:  c.retired.spawned,
		Recycled: c.retired.recycled,
		Expired:  c.retired.expired,
		Culled:   c.retired.culled,
		Shed:     c.retired.shed,

		Broadcasts:     c.broadcasts,
		HostsCreated:   c.hostsCreated,
		HostsDestroyed: c.hostsDestroyed,
	}

	fills := make([]float64, 0, len(hosts))
	for _, h := range hosts {
		prev := c.last[h.ID]
		stats.Spawned += h.Spawned - prev.spawned
		stats.Recycled += h.Recycled - prev.recycled
		stats.Expired += h.Expired - prev.expired
		stats.Culled += h.Culled - prev.culled
		stats.Shed += h.Shed - prev.shed
		c.last[h.ID] = hostCounters{h.Spawned, h.Recycled, h.Expired, h.Culled, h.Shed}

		stats.Live += h.Live
		stats.Capacity += h.Cap
		if h.Throttled {
			stats.Throttled++
		}
		if h.Simplified {
			stats.Simplified++
		}
		if h.Cap > 0 {
			fills = append(fills, float64(h.Live)/float64(h.Cap))
		}
	}
	if stats.Capacity > 0 {
		stats.Fill = float64(stats.Live) / float64(stats.Capacity)
	}
	stats.FillMean, stats.FillStd, stats.FillP10, stats.FillP50, stats.FillP90 = ComputeFillStats(fills)

	// Reset for next window
	c.windowStartTick = currentTick
	c.windowStartSec = simTimeSec
	c.broadcasts = 0
	c.hostsCreated = 0
	c.hostsDestroyed = 0
	c.retired = hostCounters{}

	return stats
}

// WindowDurationSec returns the window length in simulation seconds.
func (c *Collector) WindowDurationSec() float64 {
	return c.windowDurationSec
}
