package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType names a notable pond event.
type BookmarkType string

const (
	BookmarkEscapeStorm      BookmarkType = "escape_storm"
	BookmarkScatter          BookmarkType = "scatter"
	BookmarkIndependenceWave BookmarkType = "independence_wave"
	BookmarkCalmPond         BookmarkType = "calm_pond"
)

const (
	stormMinEscapes  = 3
	stormMinHistory  = 3
	stormFactor      = 2.0
	scatterFrac      = 0.5
	independenceFrac = 0.5
	independenceMinN = 4
	calmWindows      = 5
)

// Bookmark is a detected event, written to bookmarks.csv.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs b at info level.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark", "type", string(b.Type), "tick", b.Tick, "description", b.Description)
}

// bookmarkRule inspects the newest window and returns a description when
// its event fires.
type bookmarkRule struct {
	typ  BookmarkType
	fire func(bd *BookmarkDetector, s WindowStats) (string, bool)
}

var bookmarkRules = []bookmarkRule{
	{BookmarkEscapeStorm, (*BookmarkDetector).escapeStorm},
	{BookmarkScatter, (*BookmarkDetector).scatter},
	{BookmarkIndependenceWave, (*BookmarkDetector).independenceWave},
	{BookmarkCalmPond, (*BookmarkDetector).calmPond},
}

// BookmarkDetector watches successive windows. Sustained conditions fire
// once, on the window where they start.
type BookmarkDetector struct {
	escapes []float64 // escape counts of recent windows, oldest first
	size    int

	scattered   bool
	independent bool
	calmRun     int
}

// NewBookmarkDetector keeps at least historySize windows of escape counts.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	return &BookmarkDetector{size: max(historySize, calmWindows)}
}

// Check evaluates every rule against stats, then adds stats to the history.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var out []Bookmark
	for _, r := range bookmarkRules {
		if desc, ok := r.fire(bd, stats); ok {
			out = append(out, Bookmark{Type: r.typ, Tick: stats.WindowEndTick, Description: desc})
		}
	}

	if len(bd.escapes) == bd.size {
		bd.escapes = append(bd.escapes[:0], bd.escapes[1:]...)
	}
	bd.escapes = append(bd.escapes, float64(stats.Escapes()))
	return out
}

// rising records cond in *state and reports a false→true edge.
func rising(state *bool, cond bool) bool {
	edge := cond && !*state
	*state = cond
	return edge
}

// escapeStorm fires when a window has more than twice the recent average.
func (bd *BookmarkDetector) escapeStorm(s WindowStats) (string, bool) {
	if len(bd.escapes) < stormMinHistory {
		return "", false
	}
	avg := stat.Mean(bd.escapes, nil)
	n := s.Escapes()
	if n < stormMinEscapes || float64(n) <= avg*stormFactor {
		return "", false
	}
	return fmt.Sprintf("%d escapes (%d overcrowding, %d oscillation) vs average %.1f",
		n, s.OvercrowdEscapes, s.OscillationEscapes, avg), true
}

func (bd *BookmarkDetector) scatter(s WindowStats) (string, bool) {
	if !rising(&bd.scattered, s.Population > 0 && s.EscapingFrac >= scatterFrac) {
		return "", false
	}
	return fmt.Sprintf("%.0f%% of %d koi escaping", s.EscapingFrac*100, s.Population), true
}

func (bd *BookmarkDetector) independenceWave(s WindowStats) (string, bool) {
	if !rising(&bd.independent, s.Population >= independenceMinN && s.IndependentFrac >= independenceFrac) {
		return "", false
	}
	return fmt.Sprintf("%.0f%% of %d koi swimming alone", s.IndependentFrac*100, s.Population), true
}

// calmPond fires on the calmWindows-th consecutive window without escapes.
func (bd *BookmarkDetector) calmPond(s WindowStats) (string, bool) {
	if s.Population == 0 || s.Escapes() > 0 {
		bd.calmRun = 0
		return "", false
	}
	bd.calmRun++
	if bd.calmRun != calmWindows {
		return "", false
	}
	return fmt.Sprintf("No escapes among %d koi for %d windows", s.Population, calmWindows), true
}
