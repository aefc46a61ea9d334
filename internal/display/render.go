package display

import (
	"fmt"
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const halfBlock = "▀"

// renderFrame downsamples img to cols x rows cells. Each cell shows two
// vertically stacked pixels: the upper half in the foreground color and
// the lower half in the background color.
func renderFrame(img *image.RGBA, cols, rows int) string {
	b := img.Bounds()
	if cols <= 0 || rows <= 0 || b.Empty() {
		return ""
	}

	sample := func(cx, py int) lipgloss.Color {
		x := b.Min.X + cx*b.Dx()/cols
		y := b.Min.Y + py*b.Dy()/(rows*2)
		c := img.RGBAAt(x, y)
		return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
	}

	var sb strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < cols; col++ {
			cell := lipgloss.NewStyle().
				Foreground(sample(col, row*2)).
				Background(sample(col, row*2+1))
			sb.WriteString(cell.Render(halfBlock))
		}
	}
	return sb.String()
}
