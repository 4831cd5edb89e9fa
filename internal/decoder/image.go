package decoder

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"fiapo/internal/errors"
	"fiapo/internal/log"
)

func init() {
	exif.RegisterParsers(mknote.All...)
}

// Image decodes a single image file as a one page document
type Image struct{}

// NewImage creates an image decoder
func NewImage() *Image {
	return &Image{}
}

// Open checks that the file holds a decodable image. Pixels are decoded
// on Render.
func (d *Image) Open(path string) (Handle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.NewDecodeError("cannot open image", path, -1, errors.Unreadable, err)
	}
	defer file.Close()

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return nil, errors.NewDecodeError("unrecognized image", path, -1, errors.Unreadable, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, errors.NewDecodeError("empty image", path, -1, errors.Unreadable, nil)
	}

	log.LogWithFields(log.F("path", path), log.F("format", format)).Debug("Image opened")
	return &imageHandle{path: path}, nil
}

type imageHandle struct {
	path string
}

func (h *imageHandle) PageCount() int {
	return 1
}

func (h *imageHandle) Render(index int) (image.Image, error) {
	if index != 0 {
		return nil, errors.NewDecodeError("page out of range", h.path, index, errors.RenderFailed, nil)
	}

	file, err := os.Open(h.path)
	if err != nil {
		return nil, errors.NewDecodeError("cannot open image", h.path, index, errors.RenderFailed, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.NewDecodeError("cannot decode image", h.path, index, errors.RenderFailed, err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return img, nil
	}
	return orient(img, orientation(file)), nil
}

func (h *imageHandle) Close() error {
	return nil
}

// orientation reads the EXIF orientation tag, 1 when absent
func orientation(r io.Reader) int {
	x, err := exif.Decode(r)
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	o, err := tag.Int(0)
	if err != nil || o < 1 || o > 8 {
		return 1
	}
	return o
}

// orient returns img transformed so that it displays upright for the
// EXIF orientation o.
func orient(img image.Image, o int) image.Image {
	if o <= 1 || o > 8 {
		return img
	}

	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	// Source to destination maps with the source origin at (0, 0)
	var m f64.Aff3
	swap := false
	switch o {
	case 2: // mirrored horizontally
		m = f64.Aff3{-1, 0, w, 0, 1, 0}
	case 3: // rotated 180
		m = f64.Aff3{-1, 0, w, 0, -1, h}
	case 4: // mirrored vertically
		m = f64.Aff3{1, 0, 0, 0, -1, h}
	case 5: // transposed
		m = f64.Aff3{0, 1, 0, 1, 0, 0}
		swap = true
	case 6: // needs 90 clockwise
		m = f64.Aff3{0, -1, h, 1, 0, 0}
		swap = true
	case 7: // transversed
		m = f64.Aff3{0, -1, h, -1, 0, w}
		swap = true
	case 8: // needs 90 counter-clockwise
		m = f64.Aff3{0, 1, 0, -1, 0, w}
		swap = true
	}

	// Shift for images whose bounds do not start at the origin
	minX, minY := float64(b.Min.X), float64(b.Min.Y)
	m[2] -= m[0]*minX + m[1]*minY
	m[5] -= m[3]*minX + m[4]*minY

	dw, dh := b.Dx(), b.Dy()
	if swap {
		dw, dh = dh, dw
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.NearestNeighbor.Transform(dst, m, img, b, draw.Src, nil)
	return dst
}
