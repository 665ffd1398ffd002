package matrix

import (
	"fmt"
	"html/template"
	"io"
)

var gridTemplate = template.Must(template.New("grid").Parse(
	`<div class="range-grid" style="display:grid;grid-template-columns:repeat(13,1fr);gap:1px;background:#111;padding:1px;border:1px solid #444;">` +
		`{{range .}}<div class="cell {{.Class}}" title="{{.Title}}" style="{{.Style}}">{{.Hand}}</div>{{end}}` +
		`</div>`,
))

type htmlCell struct {
	Hand  string
	Class string
	Title string
	Style template.CSS
}

// RenderHTML writes cells as a CSS grid. Each cell background is a gradient
// with raise and call bands proportional to their weights.
func RenderHTML(w io.Writer, cells []Cell) error {
	out := make([]htmlCell, len(cells))
	for i, c := range cells {
		out[i] = htmlCell{
			Hand:  string(c.Hand),
			Class: c.Fill.String(),
			Title: fmt.Sprintf("%s raise %.0f%% call %.0f%%", c.Hand, c.Raise, c.Call),
			Style: cellStyle(c),
		}
	}
	return gridTemplate.Execute(w, out)
}

func cellStyle(c Cell) template.CSS {
	style := "aspect-ratio:1;display:flex;justify-content:center;align-items:center;font-size:7px;cursor:default;"
	if c.Fill == Empty {
		style += "color:" + mutedColor + ";"
	} else {
		style += "color:#fff;"
	}
	raise := clampPercent(c.Raise)
	call := clampPercent(c.Call)
	if raise+call > 100 {
		call = 100 - raise
	}
	style += fmt.Sprintf("background:linear-gradient(to right,%s 0%% %.0f%%,%s %.0f%% %.0f%%,%s %.0f%% 100%%);",
		raiseColor, raise,
		callColor, raise, raise+call,
		foldColor, raise+call,
	)
	if c.Highlight {
		style += "border:1.5px solid " + highlightColor + ";z-index:10;box-shadow:0 0 4px " + highlightColor + ";"
	}
	return template.CSS(style)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
