// Package matrix renders a spot's strategy as the 13x13 starting-hand grid.
package matrix

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/pfdrill/internal/decision"
	"github.com/verte-zerg/pfdrill/internal/hand"
	"github.com/verte-zerg/pfdrill/internal/model"
)

// Fill classifies how a cell is colored.
type Fill int

const (
	Empty Fill = iota
	Raise
	Call
	RaisePartial
	CallPartial
	Mixed
)

func (f Fill) String() string {
	switch f {
	case Raise:
		return "raise"
	case Call:
		return "call"
	case RaisePartial:
		return "raise-partial"
	case CallPartial:
		return "call-partial"
	case Mixed:
		return "mixed"
	default:
		return "empty"
	}
}

const (
	raiseColor     = "#D63384"
	callColor      = "#28A745"
	foldColor      = "#2C3034"
	highlightColor = "#FFC107"
	mutedColor     = "#495057"
	labelColor     = "#F0F0F0"
)

// CellWidth is the number of terminal columns per hand.
const CellWidth = 5

// Cell is one hand of the grid.
type Cell struct {
	Hand      hand.Hand
	Row       int
	Col       int
	Raise     float64
	Call      float64
	Fill      Fill
	Highlight bool
}

// Build returns the 169 cells of spot in grid order. highlight may be empty.
func Build(spot model.Spot, highlight hand.Hand) []Cell {
	grid := hand.Grid()
	cells := make([]Cell, len(grid))
	for i, h := range grid {
		raise, call := decision.Frequencies(spot, h)
		cells[i] = Cell{
			Hand:      h,
			Row:       i / len(hand.Ranks),
			Col:       i % len(hand.Ranks),
			Raise:     raise,
			Call:      call,
			Fill:      classify(raise, call),
			Highlight: h == highlight,
		}
	}
	return cells
}

func classify(raise, call float64) Fill {
	switch {
	case raise > 0 && call > 0:
		return Mixed
	case raise >= 100:
		return Raise
	case raise > 0:
		return RaisePartial
	case call >= 100:
		return Call
	case call > 0:
		return CallPartial
	default:
		return Empty
	}
}

// segments splits width columns into raise, call and fold parts.
func segments(c Cell, width int) (raise, call, fold int) {
	raise = int(math.Round(c.Raise / 100 * float64(width)))
	call = int(math.Round(c.Call / 100 * float64(width)))
	if c.Raise > 0 && raise == 0 {
		raise = 1
	}
	if c.Call > 0 && call == 0 {
		call = 1
	}
	if raise+call > width {
		call = width - raise
		if call < 0 {
			raise, call = width, 0
		}
	}
	return raise, call, width - raise - call
}

// Render draws cells as a terminal grid, filling each cell left to right in
// proportion to its raise and call weights.
func Render(cells []Cell) string {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 && c.Col == 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderCell(c))
	}
	return b.String()
}

func renderCell(c Cell) string {
	label := []rune(runewidth.FillRight(" "+string(c.Hand), CellWidth))
	raise, call, _ := segments(c, CellWidth)

	fg := labelColor
	if c.Fill == Empty {
		fg = mutedColor
	}
	var b strings.Builder
	for i, r := range label {
		bg := foldColor
		switch {
		case i < raise:
			bg = raiseColor
		case i < raise+call:
			bg = callColor
		}
		style := lipgloss.NewStyle().
			Background(lipgloss.Color(bg)).
			Foreground(lipgloss.Color(fg))
		if c.Highlight {
			style = style.Foreground(lipgloss.Color(highlightColor)).Bold(true).Underline(true)
		}
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}

// Legend explains the grid colors.
func Legend() string {
	swatch := func(color, text string) string {
		return lipgloss.NewStyle().Background(lipgloss.Color(color)).Render("  ") + " " + text
	}
	return strings.Join([]string{
		swatch(raiseColor, "raise"),
		swatch(callColor, "call"),
		swatch(foldColor, "fold"),
		lipgloss.NewStyle().Foreground(lipgloss.Color(highlightColor)).Underline(true).Render("AKs") + " dealt hand",
	}, "   ")
}
