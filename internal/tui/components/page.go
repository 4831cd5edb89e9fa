package components

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nfnt/resize"
)

// halfBlock paints its upper half with the foreground color and its lower
// half with the background, giving two square pixels per terminal cell.
const halfBlock = "▀"

// RenderPage draws img scaled to fit width x height terminal cells
func RenderPage(img image.Image, width, height int) string {
	if img == nil || width <= 0 || height <= 0 {
		return ""
	}

	scaled := resize.Thumbnail(uint(width), uint(height*2), img, resize.Bilinear)
	b := scaled.Bounds()

	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(hex(scaled.At(x, y))))
			if y+1 < b.Max.Y {
				style = style.Background(lipgloss.Color(hex(scaled.At(x, y+1))))
			}
			sb.WriteString(style.Render(halfBlock))
		}
	}
	return sb.String()
}

func hex(c color.Color) string {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}
