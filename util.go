package cgbi

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// bytesPerPixel is fixed: CgBI images are 8-bit RGBA.
const bytesPerPixel = 4

// MaxPixelBytes bounds the inflate buffer of one image. Larger headers are rejected before
// anything is allocated.
const MaxPixelBytes = 1 << 30

// interlaceScan defines the placement and size of a pass for Adam7 interlacing.
type interlaceScan struct {
	xFactor, yFactor, xOffset, yOffset int
}

// interlacing defines Adam7 interlacing, with 7 passes of reduced images.
// See https://www.w3.org/TR/PNG/#8Interlace
var interlacing = []interlaceScan{
	{8, 8, 0, 0},
	{8, 8, 4, 0},
	{4, 8, 0, 4},
	{4, 4, 2, 0},
	{2, 4, 0, 2},
	{2, 2, 1, 0},
	{1, 2, 0, 1},
}

// pass is one reduced image of the filtered pixel stream.
type pass struct {
	width, height int
}

// passes returns the reduced images h's pixel stream is made of, in stream order. Passes with
// no pixels are left out, as they have no scanlines (not even filter bytes).
func (h Header) passes() []pass {
	w, ht := int(h.Width), int(h.Height)
	if h.Interlace == itNone {
		return []pass{{width: w, height: ht}}
	}
	var ps []pass
	for _, p := range interlacing {
		wp := (w - p.xOffset + p.xFactor - 1) / p.xFactor
		hp := (ht - p.yOffset + p.yFactor - 1) / p.yFactor
		if wp <= 0 || hp <= 0 {
			continue
		}
		ps = append(ps, pass{width: wp, height: hp})
	}
	return ps
}

// scanlineBytes is the exact size of h's filtered pixel stream.
func (h Header) scanlineBytes() int {
	var n int
	for _, p := range h.passes() {
		n += p.height * (1 + bytesPerPixel*p.width)
	}
	return n
}

// inflateCapacity is the most inflated data h may produce: 4 × (width+1) × height. It covers one
// filter byte and four bytes per pixel on every row, with room to spare for Adam7 passes.
func (h Header) inflateCapacity() (int, error) {
	c := uint64(bytesPerPixel) * (uint64(h.Width) + 1) * uint64(h.Height)
	if c > MaxPixelBytes || c > math.MaxInt32 {
		return 0, FormatError(fmt.Sprintf("image too large: %dx%d", h.Width, h.Height))
	}
	return int(c), nil
}

// SwapRedBlue swaps bytes 0 and 2 of every pixel of a w×h filtered 4-byte-per-pixel scanline
// buffer, skipping the filter byte leading each row. Applying it twice restores the input.
// It returns the number of bytes it covered, or an error when raw is shorter than h rows.
func SwapRedBlue(w, h int, raw []byte) (int, error) {
	need := h * (1 + bytesPerPixel*w)
	if w < 0 || h < 0 || need > len(raw) {
		return 0, errors.Errorf("pixel data holds %d bytes, %dx%d needs %d", len(raw), w, h, need)
	}
	unsafeImageFix(w, h, raw)
	return need, nil
}

// unsafeImageFix Swapping red & blue bytes for each pixel
func unsafeImageFix(w, h int, raw []byte) {
	i := 0
	for y := 0; y < h; y++ {
		i++
		for x := 0; x < w; x++ {
			raw[i+2], raw[i+0] = raw[i+0], raw[i+2]
			i += bytesPerPixel
		}
	}
}

// rawImageFix swaps red and blue across every pass of h's pixel stream.
func rawImageFix(h Header, raw []byte) error {
	total := 0
	for _, p := range h.passes() {
		n, err := SwapRedBlue(p.width, p.height, raw[total:])
		if err != nil {
			return err
		}
		total += n
	}
	return nil
}
