package game

import (
	"cmp"
	"slices"
	"time"
)

// tickTimeWindow is how many per-control tick samples are averaged.
const tickTimeWindow = 120

// controlTime is one row of the per-control timing table.
type controlTime struct {
	Label string
	Avg   time.Duration
}

// controlTimes returns every attached control's average tick time, slowest
// first, and their sum.
func (g *Game) controlTimes() ([]controlTime, time.Duration) {
	rows := make([]controlTime, 0, len(g.hosts))
	var total time.Duration
	for _, h := range g.hosts {
		if h.TickTimes().Len() == 0 {
			continue
		}
		avg := h.TickTime()
		rows = append(rows, controlTime{Label: h.Label(), Avg: avg})
		total += avg
	}
	slices.SortFunc(rows, func(a, b controlTime) int {
		if c := cmp.Compare(b.Avg, a.Avg); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return rows, total
}
