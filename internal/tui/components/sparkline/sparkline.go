package sparkline

import (
	"image/color"
	"strings"

	drawille "github.com/exrook/drawille-go"

	"charm.land/lipgloss/v2"
)

// each braille char is 2 dots wide, 4 dots tall
const (
	dotsPerCol = 2
	dotsPerRow = 4
)

// Sparkline plots a series as braille bars, newest on the right. Each value
// takes one dot column, so a cell holds two samples.
type Sparkline struct {
	Values []float64
	Width  int // in cells
	Height int // in cells
	Color  color.Color
}

func New(values []float64, width, height int, c color.Color) Sparkline {
	return Sparkline{
		Values: values,
		Width:  max(width, 1),
		Height: max(height, 1),
		Color:  c,
	}
}

func (s Sparkline) Render() string {
	var (
		dotsWide = s.Width * dotsPerCol
		dotsHigh = s.Height * dotsPerRow
		values   = s.Values
	)
	if len(values) > dotsWide {
		values = values[len(values)-dotsWide:]
	}

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}

	canvas := drawille.NewCanvas()
	// right-align so the newest sample sits at the edge
	offset := dotsWide - len(values)
	for i, v := range values {
		h := 1
		if peak > 0 {
			h = max(int(v/peak*float64(dotsHigh)+0.5), 1)
		}
		x := offset + i
		for y := dotsHigh - h; y < dotsHigh; y++ {
			canvas.Set(x, y)
		}
	}

	return lipgloss.NewStyle().Foreground(s.Color).Render(canvasString(&canvas, dotsWide, dotsHigh))
}

// canvasString extracts exactly width x height dots as text, padding rows
// that drawille trims.
func canvasString(canvas *drawille.Canvas, width, height int) string {
	var (
		charWidth  = width / dotsPerCol
		charHeight = height / dotsPerRow
		rows       = canvas.Rows(0, 0, width, height)
		lines      = make([]string, 0, charHeight)
	)

	for i := range charHeight {
		var line string
		if i < len(rows) {
			line = rows[i]
		}
		runes := []rune(line)
		switch {
		case len(runes) < charWidth:
			line += strings.Repeat(" ", charWidth-len(runes))
		case len(runes) > charWidth:
			line = string(runes[:charWidth])
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}
