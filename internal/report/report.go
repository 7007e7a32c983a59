// Package report renders a participant's results as an HTML chart page.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/rcliao/object-cueing/internal/model"
	"github.com/rcliao/object-cueing/internal/session"
)

// BlockPoint is one block's headline metric.
type BlockPoint struct {
	Block int
	Value float64
}

// metric returns the headline metric label for a response mode.
func metric(mode model.ResponseMode) string {
	if mode == model.ModeKeypress {
		return "Mean RT (ms)"
	}
	return "Target acquisition rate"
}

// ByBlock computes the headline metric per block: mean keypress RT in
// keypress sessions, target acquisition rate in saccade sessions.
func ByBlock(mode model.ResponseMode, trials []model.TrialResult) []BlockPoint {
	blocks := map[int][]model.TrialResult{}
	for _, t := range trials {
		blocks[t.BlockNum] = append(blocks[t.BlockNum], t)
	}
	nums := make([]int, 0, len(blocks))
	for b := range blocks {
		nums = append(nums, b)
	}
	sort.Ints(nums)

	out := make([]BlockPoint, 0, len(nums))
	for _, b := range nums {
		s := session.Summarize("", mode, blocks[b], nil)
		v := s.AcquisitionRate
		if mode == model.ModeKeypress {
			v = s.MeanRT
		}
		out = append(out, BlockPoint{Block: b, Value: round(v)})
	}
	return out
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// TargetChart is a bar chart of the headline metric per target location.
func TargetChart(s session.Summary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "By Target Location",
			Subtitle: fmt.Sprintf("%s, %s session", s.ParticipantID, s.SessionType),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: metric(s.SessionType),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	labels := make([]string, 0, len(s.ByTarget))
	items := make([]opts.BarData, 0, len(s.ByTarget))
	for _, t := range s.ByTarget {
		labels = append(labels, string(t.Target))
		v := t.AcquisitionRate
		if s.SessionType == model.ModeKeypress {
			v = t.MeanRT
		}
		items = append(items, opts.BarData{Value: round(v)})
	}
	bar.SetXAxis(labels).AddSeries(metric(s.SessionType), items)
	return bar
}

// BlockChart is a line chart of the headline metric across blocks.
func BlockChart(mode model.ResponseMode, points []BlockPoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "By Block",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Name:  metric(mode),
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	labels := make([]string, 0, len(points))
	items := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		labels = append(labels, fmt.Sprintf("block %d", p.Block))
		items = append(items, opts.LineData{Value: p.Value})
	}
	line.SetXAxis(labels).AddSeries(metric(mode), items).
		SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}

// Render writes an HTML page with both charts for one participant.
func Render(w io.Writer, s session.Summary, trials []model.TrialResult) error {
	page := components.NewPage()
	page.PageTitle = "object-cueing " + s.ParticipantID
	page.AddCharts(
		TargetChart(s),
		BlockChart(s.SessionType, ByBlock(s.SessionType, trials)),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
