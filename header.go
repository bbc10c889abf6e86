package cgbi

import (
	"encoding/binary"
	"fmt"
)

// Color type, as per the PNG spec. CgBI files are always truecolor with alpha.
const ctTrueColorAlpha = 6

// Interlace type.
const (
	itNone  = 0
	itAdam7 = 1
)

// Header is the part of IHDR the converter needs.
type Header struct {
	Width, Height uint32
	// BitDepth, ColorType and Interlace are zero when the IHDR payload is shorter than 13 bytes.
	BitDepth  uint8
	ColorType uint8
	Interlace uint8
}

// DecodeHeader reads width and height (and, when present, the remaining IHDR fields) from c.
func DecodeHeader(c Chunk) (Header, error) {
	if !c.Is(TypeIHDR) {
		return Header{}, FormatError(fmt.Sprintf("expected IHDR, got %q", c.Type))
	}
	if len(c.Data) < 8 {
		return Header{}, FormatError("bad IHDR length")
	}
	h := Header{
		Width:  binary.BigEndian.Uint32(c.Data[0:4]),
		Height: binary.BigEndian.Uint32(c.Data[4:8]),
	}
	if h.Width == 0 || h.Height == 0 {
		return Header{}, FormatError(fmt.Sprintf("bad dimensions %dx%d", h.Width, h.Height))
	}
	if len(c.Data) >= 13 {
		h.BitDepth = c.Data[8]
		h.ColorType = c.Data[9]
		h.Interlace = c.Data[12]
		if h.Interlace != itNone && h.Interlace != itAdam7 {
			return Header{}, FormatError("invalid interlace method")
		}
	}
	return h, nil
}

// rgba8 reports whether the header describes 8-bit truecolor with alpha.
func (h Header) rgba8() bool {
	return h.BitDepth == 8 && h.ColorType == ctTrueColorAlpha
}

// encode returns the 13-byte IHDR payload for h.
func (h Header) encode() []byte {
	b := make([]byte, 13)
	binary.BigEndian.PutUint32(b[0:4], h.Width)
	binary.BigEndian.PutUint32(b[4:8], h.Height)
	b[8] = h.BitDepth
	b[9] = h.ColorType
	b[12] = h.Interlace
	return b
}
