package cgbi

import (
	"bytes"
	"context"
	"image"
	"image/draw"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// collapse returns the chunks of s as they are written out: CgBI chunks are dropped and, when idat
// is not nil, the first IDAT is replaced by idat and later IDATs are dropped.
func collapse(s Stream, idat *Chunk) Stream {
	out := make(Stream, 0, len(s))
	dataWritten := false
	for _, c := range s {
		if c.Is(TypeCgBI) {
			continue
		}
		if idat != nil && c.Is(TypeIDAT) {
			if dataWritten {
				continue
			}
			dataWritten = true
			c = *idat
		}
		out = append(out, c)
	}
	return out
}

// WriteStream writes the PNG signature and the chunks of s to w, leaving out any CgBI chunk.
// With a non-nil idat every IDAT chunk of s is collapsed into idat; with a nil idat the IDAT
// chunks are written as they are, so a stream without CgBI is reproduced byte for byte.
func WriteStream(w io.Writer, s Stream, idat *Chunk) error {
	if _, err := collapse(s, idat).WriteTo(w); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

// Encode writes the Image m to w as a CgBI PNG. Any Image may be encoded; it is converted to
// non-premultiplied 8-bit RGBA first.
func Encode(w io.Writer, m image.Image) error {
	return EncodeLevel(context.Background(), w, m, 0)
}

// EncodeLevel is Encode with a compression level, see Codec.
func EncodeLevel(ctx context.Context, w io.Writer, m image.Image, level int) error {
	s, err := rgbaStream(m)
	if err != nil {
		return err
	}
	packed, err := Codec{Level: level}.Pack(ctx, s)
	if err != nil {
		return err
	}
	if _, err := packed.WriteTo(w); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

// rgbaStream builds a standard, non-interlaced 8-bit RGBA stream of m with unfiltered scanlines.
func rgbaStream(m image.Image) (Stream, error) {
	b := m.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, FormatError("empty image")
	}
	nrgba, ok := m.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(b)
		draw.Draw(nrgba, b, m, b.Min, draw.Src)
	}
	h := Header{Width: uint32(b.Dx()), Height: uint32(b.Dy()), BitDepth: 8, ColorType: ctTrueColorAlpha}

	zbuff := new(bytes.Buffer)
	zw := zlib.NewWriter(zbuff)
	filter := []byte{0}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := nrgba.PixOffset(b.Min.X, y)
		if _, err := zw.Write(filter); err != nil {
			return nil, errors.Wrap(err, "write filter byte")
		}
		if _, err := zw.Write(nrgba.Pix[i : i+bytesPerPixel*b.Dx()]); err != nil {
			return nil, errors.Wrap(err, "write scanline")
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "close zlib")
	}
	return Stream{
		NewChunk(TypeIHDR, h.encode()),
		NewChunk(TypeIDAT, zbuff.Bytes()),
		NewChunk(TypeIEND, nil),
	}, nil
}
