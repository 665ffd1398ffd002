// Package stats aggregates drill history into accuracy reports.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/pfdrill/internal/model"
)

const sparkChars = " .:-=+*#%@"

const dayLayout = "2006-01-02"

// Aggregate counts answers sharing a key.
type Aggregate struct {
	Key     string
	Total   int
	Correct int
}

// Accuracy returns the correct share in percent.
func (a Aggregate) Accuracy() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Correct) * 100 / float64(a.Total)
}

// DayPoint is the accuracy of one calendar day.
type DayPoint struct {
	Day string
	Aggregate
}

// Mistake counts wrong answers by expected and chosen action.
type Mistake struct {
	Expected model.Action
	Chosen   model.Action
	Count    int
}

// Summary totals all records.
func Summary(records []model.HistoryRecord) Aggregate {
	agg := Aggregate{Key: "all"}
	for _, r := range records {
		agg.Total++
		if r.Correct {
			agg.Correct++
		}
	}
	return agg
}

// BySpot aggregates per spot, weakest first.
func BySpot(records []model.HistoryRecord) []Aggregate {
	return groupBy(records, func(r model.HistoryRecord) string { return r.Spot.String() })
}

// ByHand aggregates per hand, weakest first.
func ByHand(records []model.HistoryRecord) []Aggregate {
	return groupBy(records, func(r model.HistoryRecord) string { return string(r.Hand) })
}

// ByAction aggregates per expected action, weakest first.
func ByAction(records []model.HistoryRecord) []Aggregate {
	return groupBy(records, func(r model.HistoryRecord) string { return string(r.Expected) })
}

func groupBy(records []model.HistoryRecord, key func(model.HistoryRecord) string) []Aggregate {
	index := map[string]int{}
	var out []Aggregate
	for _, r := range records {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Aggregate{Key: k})
		}
		out[i].Total++
		if r.Correct {
			out[i].Correct++
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].Accuracy(), out[j].Accuracy()
		if ai != aj {
			return ai < aj
		}
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// DailyAccuracy returns one point per local calendar day, oldest first.
func DailyAccuracy(records []model.HistoryRecord) []DayPoint {
	byDay := map[string]*DayPoint{}
	for _, r := range records {
		day := r.Date.Local().Format(dayLayout)
		p, ok := byDay[day]
		if !ok {
			p = &DayPoint{Day: day, Aggregate: Aggregate{Key: day}}
			byDay[day] = p
		}
		p.Total++
		if r.Correct {
			p.Correct++
		}
	}
	out := make([]DayPoint, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out
}

// Mistakes counts wrong answers that recorded the chosen action, most frequent first.
func Mistakes(records []model.HistoryRecord) []Mistake {
	counts := map[[2]model.Action]int{}
	for _, r := range records {
		if r.Correct || r.Chosen == "" {
			continue
		}
		counts[[2]model.Action{r.Expected, r.Chosen}]++
	}
	out := make([]Mistake, 0, len(counts))
	for k, n := range counts {
		out = append(out, Mistake{Expected: k[0], Chosen: k[1], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Expected != out[j].Expected {
			return out[i].Expected < out[j].Expected
		}
		return out[i].Chosen < out[j].Chosen
	})
	return out
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// AccuracySeries extracts daily accuracy values.
func AccuracySeries(days []DayPoint) []float64 {
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = d.Accuracy()
	}
	return out
}

// RenderSummary prints overall totals.
func RenderSummary(w io.Writer, rep Report) error {
	if rep.Totals.Total == 0 {
		_, err := fmt.Fprintln(w, "No answers recorded.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Answered: %d", rep.Totals.Total),
		fmt.Sprintf("Correct: %d", rep.Totals.Correct),
		fmt.Sprintf("Accuracy: %.1f%%", rep.Totals.Accuracy()),
		fmt.Sprintf("Spots drilled: %d", len(rep.Spots)),
	}
	if len(rep.Days) > 1 {
		lines = append(lines, "Daily trend: "+Sparkline(AccuracySeries(rep.Days)))
	}
	for _, line := range append(lines, "") {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTable prints aggregates under title, at most limit rows when limit > 0.
func RenderTable(w io.Writer, title, label string, aggs []Aggregate, limit int) error {
	if len(aggs) == 0 {
		return nil
	}
	if limit > 0 && len(aggs) > limit {
		aggs = aggs[:limit]
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	lines := formatTable([]string{label, "Accuracy", "Correct", "Total"}, TableRows(aggs), map[int]bool{1: true, 2: true, 3: true})
	for _, line := range append(lines, "") {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// TableRows formats aggregates as table cells.
func TableRows(aggs []Aggregate) [][]string {
	rows := make([][]string, 0, len(aggs))
	for _, a := range aggs {
		rows = append(rows, []string{
			a.Key,
			fmt.Sprintf("%.1f%%", a.Accuracy()),
			fmt.Sprintf("%d", a.Correct),
			fmt.Sprintf("%d", a.Total),
		})
	}
	return rows
}

// RenderMistakes prints the most common wrong choices.
func RenderMistakes(w io.Writer, mistakes []Mistake) error {
	if len(mistakes) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Mistakes"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(mistakes))
	for _, m := range mistakes {
		rows = append(rows, []string{string(m.Expected), string(m.Chosen), fmt.Sprintf("%d", m.Count)})
	}
	for _, line := range append(formatTable([]string{"Correct", "Chosen", "Count"}, rows, map[int]bool{2: true}), "") {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves plots the smoothed daily accuracy.
func RenderCurves(w io.Writer, days []DayPoint, window, totalWidth, height int, useColor bool) error {
	if len(days) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotPercent(w, "Accuracy by day", []Series{
		{Name: "Daily", Values: AccuracySeries(days)},
		{Name: fmt.Sprintf("Avg %d", window), Values: MovingAverage(AccuracySeries(days), window)},
	}, width, height, useColor)
}
