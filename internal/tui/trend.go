package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"

	"github.com/jask/webastocard/internal/card"
)

const (
	defaultTrendPoints = 60
	trendHeight        = 3
)

// trend keeps the last exhaust temperature readings. A reading is taken
// only when the sensor itself was updated, not on every catalog push.
type trend struct {
	limit  int
	points []float64
	last   time.Time
}

func newTrend(limit int) *trend {
	if limit <= 0 {
		limit = defaultTrendPoints
	}
	return &trend{limit: limit}
}

func (t *trend) observe(r card.Resolved) {
	if !r.Present() {
		return
	}
	stamp := r.Entity.LastUpdated
	if !stamp.IsZero() && stamp.Equal(t.last) {
		return
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(r.Entity.State), 64)
	if err != nil {
		return
	}
	t.last = stamp
	t.points = append(t.points, v)
	if over := len(t.points) - t.limit; over > 0 {
		t.points = append(t.points[:0], t.points[over:]...)
	}
}

func (t *trend) values() []float64 {
	return append([]float64(nil), t.points...)
}

func (t *trend) view(width int) string {
	if len(t.points) < 2 || width <= 0 {
		return ""
	}
	sl := sparkline.New(width, trendHeight, sparkline.WithStyle(trendStyle))
	sl.PushAll(t.points)
	sl.Draw()
	return sl.View()
}
