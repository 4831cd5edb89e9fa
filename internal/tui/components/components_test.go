package components

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"fiapo/internal/tui/styles"
	"fiapo/pkg/testutils"

	"github.com/stretchr/testify/assert"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestRenderPage(t *testing.T) {
	t.Run("two pixels per cell", func(t *testing.T) {
		out := testutils.StripANSI(RenderPage(solid(4, 4, color.White), 4, 2))
		assert.Equal(t, "▀▀▀▀\n▀▀▀▀", out)
	})

	t.Run("fits the area keeping aspect", func(t *testing.T) {
		out := testutils.StripANSI(RenderPage(solid(100, 200, color.Black), 40, 10))
		lines := strings.Split(out, "\n")
		assert.Len(t, lines, 10)
		// 20 pixel rows for a 1:2 page leaves 10 columns
		assert.Equal(t, 10, strings.Count(lines[0], halfBlock))
	})

	t.Run("odd height leaves a bare last row", func(t *testing.T) {
		out := testutils.StripANSI(RenderPage(solid(2, 3, color.White), 10, 10))
		assert.Equal(t, "▀▀\n▀▀", out)
	})

	t.Run("nothing to draw", func(t *testing.T) {
		assert.Empty(t, RenderPage(nil, 10, 10))
		assert.Empty(t, RenderPage(solid(2, 2, color.White), 0, 10))
	})
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#ff0000", hex(color.RGBA{R: 255, A: 255}))
	assert.Equal(t, "#000000", hex(color.Black))
	assert.Equal(t, "#808080", hex(color.Gray{Y: 128}))
}

func TestStatusBar(t *testing.T) {
	sb := NewStatusBar(styles.Default)
	assert.Empty(t, sb.View())

	sb.SetText("page 1 / 3")
	assert.Contains(t, testutils.StripANSI(sb.View()), "page 1 / 3")

	sb.SetError(errors.New("boom"))
	assert.Equal(t, "boom", sb.Text())

	assert.NotNil(t, sb.SetLoading(true))
	assert.True(t, sb.Loading())
	assert.Nil(t, sb.SetLoading(false))
}
