// Package filter implements the color-threshold mask used to cut area sprites
// and the shared background out of highlighted map images.
package filter

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidInput is returned when the image or the filter parameters are unusable.
var ErrInvalidInput = errors.New("invalid filter input")

// Color is an exact 8-bit RGB triple.
type Color [3]uint8

// NewColor builds a Color from exactly three channel values in [0, 255].
func NewColor(channels ...int) (Color, error) {
	var c Color
	if len(channels) != 3 {
		return c, fmt.Errorf("%w: target color needs 3 channels, got %d", ErrInvalidInput, len(channels))
	}
	for i, v := range channels {
		if v < 0 || v > 255 {
			return c, fmt.Errorf("%w: channel %d out of range: %d", ErrInvalidInput, i, v)
		}
		c[i] = uint8(v)
	}
	return c, nil
}

// ParseColor accepts "r,g,b" or a hex string such as "#c12737".
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hc, err := colorful.Hex(s)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		r, g, b := hc.RGB255()
		return Color{r, g, b}, nil
	}

	parts := strings.Split(s, ",")
	channels := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Color{}, fmt.Errorf("%w: bad channel %q in color %q", ErrInvalidInput, p, s)
		}
		channels = append(channels, v)
	}
	return NewColor(channels...)
}

func (c Color) String() string {
	return fmt.Sprintf("%d,%d,%d", c[0], c[1], c[2])
}

// Distance is the Euclidean distance between two colors in RGB space.
func Distance(a, b Color) float64 {
	dr := float64(a[0]) - float64(b[0])
	dg := float64(a[1]) - float64(b[1])
	db := float64(a[2]) - float64(b[2])
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Params configures a single filter pass.
type Params struct {
	Target    Color
	Threshold float64
	// SetWhite paints selected pixels opaque white instead of keeping their color.
	SetWhite bool
	// Invert selects the pixels that do NOT match Target.
	Invert bool
}

func (p Params) validate() error {
	if math.IsNaN(p.Threshold) || p.Threshold < 0 {
		return fmt.Errorf("%w: threshold must be >= 0, got %v", ErrInvalidInput, p.Threshold)
	}
	return nil
}

// Selected reports whether a pixel of color px survives the pass.
func (p Params) Selected(px Color) bool {
	match := Distance(px, p.Target) < p.Threshold
	return match != p.Invert
}

// Apply runs the filter over img and returns a new image of the same size.
// Selected pixels become opaque (white or their own color), everything else is
// fully transparent (0,0,0,0). Any alpha in the input is ignored, so cleared
// pixels read as black when an output is fed back into Apply by hand;
// ExtractBackground accounts for that.
func Apply(img image.Image, p Params) (*image.NRGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidInput)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: image has zero area (%dx%d)", ErrInvalidInput, b.Dx(), b.Dy())
	}
	if err := p.validate(); err != nil {
		return nil, err
	}

	w, h := b.Dx(), b.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	read := pixelReader(img)

	parallelRows(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := out.Pix[y*out.Stride : y*out.Stride+w*4]
			for x := 0; x < w; x++ {
				px := read(b.Min.X+x, b.Min.Y+y)
				if !p.Selected(px) {
					continue // NewNRGBA is already zeroed
				}
				i := x * 4
				if p.SetWhite {
					row[i], row[i+1], row[i+2] = 255, 255, 255
				} else {
					row[i], row[i+1], row[i+2] = px[0], px[1], px[2]
				}
				row[i+3] = 255
			}
		}
	})
	return out, nil
}

// AreaMask paints pixels matching the marker color white and clears the rest.
func AreaMask(img image.Image, marker Color, threshold float64) (*image.NRGBA, error) {
	return Apply(img, Params{Target: marker, Threshold: threshold, SetWhite: true})
}

// ExtractBackground produces the shared background sprite: the background fill
// color is cut out first, then the marker color is cut out of that result.
// Pixels cleared by the first pass stay cleared after the second.
func ExtractBackground(img image.Image, background, marker Color, threshold float64) (*image.NRGBA, error) {
	first, err := Apply(img, Params{Target: background, Threshold: threshold, Invert: true})
	if err != nil {
		return nil, fmt.Errorf("background pass: %w", err)
	}
	second, err := Apply(first, Params{Target: marker, Threshold: threshold, Invert: true})
	if err != nil {
		return nil, fmt.Errorf("marker pass: %w", err)
	}

	for i := 3; i < len(second.Pix); i += 4 {
		if first.Pix[i] == 0 {
			second.Pix[i-3], second.Pix[i-2], second.Pix[i-1], second.Pix[i] = 0, 0, 0, 0
		}
	}
	return second, nil
}

// pixelReader returns an accessor for the non-premultiplied RGB channels of img,
// reading Pix directly for the common in-memory layouts.
func pixelReader(img image.Image) func(x, y int) Color {
	switch m := img.(type) {
	case *image.NRGBA:
		return func(x, y int) Color {
			i := m.PixOffset(x, y)
			return Color{m.Pix[i], m.Pix[i+1], m.Pix[i+2]}
		}
	case *image.RGBA:
		return func(x, y int) Color {
			i := m.PixOffset(x, y)
			if m.Pix[i+3] == 0xff {
				return Color{m.Pix[i], m.Pix[i+1], m.Pix[i+2]}
			}
			// premultiplied
			c := color.NRGBAModel.Convert(color.RGBA{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2], A: m.Pix[i+3]}).(color.NRGBA)
			return Color{c.R, c.G, c.B}
		}
	default:
		return func(x, y int) Color {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			return Color{c.R, c.G, c.B}
		}
	}
}

// parallelRows splits [0, rows) into bands processed on separate goroutines.
// Small images are processed on the calling goroutine.
func parallelRows(rows int, fn func(start, end int)) {
	n := runtime.NumCPU()
	if rows < n*2 {
		fn(0, rows)
		return
	}

	band := rows / n
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		start := i * band
		end := start + band
		if i == n-1 {
			end = rows
		}
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
