package stats

import (
	"bytes"
	"strings"
	"testing"
)

func TestPlotPercent(t *testing.T) {
	var buf bytes.Buffer
	err := PlotPercent(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{10, 50, 90, 50, 10}},
		{Name: "B", Values: []float64{100}},
	}, 12, 4, false)
	if err != nil {
		t.Fatalf("PlotPercent failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1+4+1 {
		t.Fatalf("expected title, 4 rows and legend, got %d lines", len(lines))
	}
	if lines[0] != "Test Plot" || !strings.HasPrefix(lines[len(lines)-1], "Legend:") {
		t.Fatalf("unexpected framing: %q", buf.String())
	}
	if !strings.HasPrefix(lines[1], "100% │ ") || !strings.HasPrefix(lines[4], "  0% │ ") {
		t.Fatalf("unexpected axis labels: %q / %q", lines[1], lines[4])
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := PlotWidthFor(80); got != 80-axisLabelWidth-3 {
		t.Fatalf("unexpected width %d", got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}
