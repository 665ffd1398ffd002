package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 8
	minPlotWidth        = 10
	axisLabelWidth      = 4
	axisSeparator       = " │ "
	terminalWidthBackup = 80
)

var seriesColors = []lipgloss.Color{"#C89A3A", "#28A745", "#D63384", "#5BC0DE"}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - axisLabelWidth - runewidth.StringWidth(axisSeparator)
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

// PlotPercent draws series on a shared 0-100 scale using braille dots, two
// points per column and four per row.
func PlotPercent(w io.Writer, title string, series []Series, width, height int, useColor bool) error {
	var kept []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(terminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	// owner records the first series that set a dot in each cell.
	masks := make([][]uint8, height)
	owner := make([][]int, height)
	for y := range masks {
		masks[y] = make([]uint8, width)
		owner[y] = make([]int, width)
		for x := range owner[y] {
			owner[y][x] = -1
		}
	}
	dotsX, dotsY := width*2, height*4
	for si, s := range kept {
		values := resampleSeries(s.Values, dotsX)
		prevX, prevY := -1, -1
		for x, v := range values {
			y := percentToRow(v, dotsY)
			plot := func(px, py int) {
				cx, cy := px/2, py/4
				if cx < 0 || cx >= width || cy < 0 || cy >= height {
					return
				}
				masks[cy][cx] |= brailleDotMask(px%2, py%4)
				if owner[cy][cx] < 0 {
					owner[cy][cx] = si
				}
			}
			if prevX >= 0 {
				drawLine(prevX, prevY, x, y, plot)
			} else {
				plot(x, y)
			}
			prevX, prevY = x, y
		}
	}

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(runewidth.FillLeft(axisLabel(y, height), axisLabelWidth))
		row.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			ch := string(rune(0x2800 + int(masks[y][x])))
			if useColor && owner[y][x] >= 0 {
				ch = lipgloss.NewStyle().Foreground(seriesColors[owner[y][x]%len(seriesColors)]).Render(ch)
			}
			row.WriteString(ch)
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	parts := make([]string, len(kept))
	for i, s := range kept {
		label := "⣿ " + s.Name
		if useColor {
			label = lipgloss.NewStyle().Foreground(seriesColors[i%len(seriesColors)]).Render(label)
		}
		parts[i] = label
	}
	_, err := fmt.Fprintln(w, "Legend: "+strings.Join(parts, "  "))
	return err
}

func axisLabel(row, height int) string {
	switch {
	case row == 0:
		return "100%"
	case row == height-1:
		return "0%"
	case height > 2 && row == height/2:
		return "50%"
	}
	return ""
}

func percentToRow(v float64, rows int) int {
	v = math.Max(0, math.Min(100, v))
	return int(math.Round((1 - v/100) * float64(rows-1)))
}

// resampleSeries stretches or averages values to exactly width points.
func resampleSeries(values []float64, width int) []float64 {
	out := make([]float64, width)
	switch {
	case len(values) == 1:
		for i := range out {
			out[i] = values[0]
		}
	case len(values) >= width:
		for i := range out {
			start := i * len(values) / width
			end := (i + 1) * len(values) / width
			if end <= start {
				end = start + 1
			}
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	default:
		for i := range out {
			pos := float64(i) * float64(len(values)-1) / float64(width-1)
			idx := int(pos)
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func brailleDotMask(x, y int) uint8 {
	left := [4]uint8{0x01, 0x02, 0x04, 0x40}
	right := [4]uint8{0x08, 0x10, 0x20, 0x80}
	if x == 0 {
		return left[y]
	}
	return right[y]
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// UseColor reports whether w is a terminal that accepts color.
func UseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
