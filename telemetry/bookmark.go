package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkShedSpike        BookmarkType = "shed_spike"
	BookmarkThrottleRecovery BookmarkType = "throttle_recovery"
	BookmarkDensityCollapse  BookmarkType = "density_collapse"
	BookmarkSteadyState      BookmarkType = "steady_state"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in effect telemetry.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []EffectStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentLivePeak     int // peak live particles in recent history
	wasThrottled       int // throttled hosts in the previous window
	steadyWindowsCount int // consecutive windows with stable fill
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady state detection
	}
	return &BookmarkDetector{
		history:     make([]EffectStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats EffectStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Shed spike: shed count > 2x rolling average
		if b := bd.checkShedSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Throttle recovery: throttled hosts went back to zero
		if b := bd.checkThrottleRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Density collapse: live dropped >50% from recent peak with no hosts destroyed
		if b := bd.checkDensityCollapse(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Steady state: fill varies little over 5+ windows
		if b := bd.checkSteadyState(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	bd.wasThrottled = stats.Throttled
	if stats.Live > bd.recentLivePeak {
		bd.recentLivePeak = stats.Live
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats EffectStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []EffectStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkShedSpike(stats EffectStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Shed < 5 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Shed
	}
	avg := float64(total) / float64(len(history))

	if float64(stats.Shed) > avg*2.0 {
		return &Bookmark{
			Type:        BookmarkShedSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Shed %d particles, %.1f average", stats.Shed, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkThrottleRecovery(stats EffectStats) *Bookmark {
	if bd.wasThrottled == 0 || stats.Throttled > 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkThrottleRecovery,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d throttled hosts recovered", bd.wasThrottled),
	}
}

func (bd *BookmarkDetector) checkDensityCollapse(stats EffectStats) *Bookmark {
	if bd.recentLivePeak == 0 || stats.HostsDestroyed > 0 {
		return nil
	}

	drop := 1.0 - float64(stats.Live)/float64(bd.recentLivePeak)
	if drop > 0.50 && stats.Live < bd.recentLivePeak-10 {
		// Reset peak after collapse
		oldPeak := bd.recentLivePeak
		bd.recentLivePeak = stats.Live

		return &Bookmark{
			Type:        BookmarkDensityCollapse,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Live particles fell %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Live),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSteadyState(stats EffectStats) *Bookmark {
	if stats.Hosts == 0 || stats.Live == 0 {
		bd.steadyWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	if bd.historyFull {
		// Ring order: the last four written entries
		recent = make([]EffectStats, 0, 4)
		for i := 4; i >= 1; i-- {
			recent = append(recent, history[(bd.historyIdx-i+bd.historySize)%bd.historySize])
		}
	}

	var sum float64
	for _, h := range recent {
		sum += h.Fill
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := h.Fill - mean
		variance += d * d
	}
	variance /= 4

	cv2 := 0.0
	if mean > 0 {
		cv2 = variance / (mean * mean)
	}

	if mean > 0 && cv2 < 0.01 { // CV^2 < 0.01 means CV < 0.1
		bd.steadyWindowsCount++
	} else {
		bd.steadyWindowsCount = 0
	}

	if bd.steadyWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkSteadyState,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Steady fill %.2f across %d hosts over 5+ windows", mean, stats.Hosts),
		}
	}
	return nil
}
