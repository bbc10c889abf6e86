package cgbi

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"

	"github.com/928799934/cgbi-png-fix/internal/log"
)

// deflateHeadroom is added to the inflated length when sizing the deflate output buffer.
const deflateHeadroom = 1024

// inflateRatio bounds the initial inflate buffer relative to the compressed input. The buffer
// grows past it up to the header's capacity, so a small file cannot reserve a large one.
const inflateRatio = 4

// Codec rebuilds the pixel data of a stream. The zero value is ready to use.
type Codec struct {
	// Level is the compression level of the deflate streams Codec writes, between
	// zlib.BestSpeed and zlib.BestCompression. Zero selects zlib.BestCompression.
	Level int
}

func (c Codec) level() int {
	if c.Level == 0 {
		return zlib.BestCompression
	}
	return c.Level
}

// Rebuild turns the raw-deflated, red/blue-swapped pixel data of a CgBI stream into a single
// standard IDAT chunk. s is not modified; the caller writes the result with WriteStream.
func (c Codec) Rebuild(ctx context.Context, s Stream) (Chunk, error) {
	if !s.IsCgBI() {
		return Chunk{}, ErrNotCgBI
	}
	h, pix, err := inflateStream(ctx, s, func(r io.Reader) (io.ReadCloser, error) {
		return flate.NewReader(r), nil
	})
	if err != nil {
		return Chunk{}, err
	}
	if err := rawImageFix(h, pix); err != nil {
		return Chunk{}, &DecompressionError{Reason: "short pixel stream", Err: err}
	}
	headroom := len(pix) + deflateHeadroom
	out := bytes.NewBuffer(make([]byte, 0, headroom))
	zw, err := zlib.NewWriterLevel(out, c.level())
	if err != nil {
		return Chunk{}, &CompressionError{Err: errors.Wrapf(err, "level %d", c.level())}
	}
	if err := deflate(zw, pix); err != nil {
		return Chunk{}, err
	}
	if out.Len() > headroom {
		log.Warn(ctx, "deflated pixel data outgrew its headroom",
			log.Bytes("deflated", out.Len()), log.Bytes("headroom", headroom))
	}
	log.Debug(ctx, "rebuilt IDAT", log.Bytes("inflated", len(pix)), log.Bytes("deflated", out.Len()))
	return NewChunk(TypeIDAT, out.Bytes()), nil
}

// Pack is the reverse of Rebuild: it turns a standard 8-bit RGBA stream into a CgBI stream with a
// leading CgBI chunk and a single raw-deflated IDAT holding red/blue-swapped pixels.
func (c Codec) Pack(ctx context.Context, s Stream) (Stream, error) {
	if s.IsCgBI() {
		return nil, FormatError("stream already has a CgBI chunk")
	}
	h, err := s.Header()
	if err != nil {
		return nil, err
	}
	if !h.rgba8() {
		return nil, UnsupportedError("only 8-bit RGBA images can be packed")
	}
	_, pix, err := inflateStream(ctx, s, func(r io.Reader) (io.ReadCloser, error) {
		return zlib.NewReader(r)
	})
	if err != nil {
		return nil, err
	}
	if err := rawImageFix(h, pix); err != nil {
		return nil, &DecompressionError{Reason: "short pixel stream", Err: err}
	}
	out := new(bytes.Buffer)
	fw, err := flate.NewWriter(out, c.level())
	if err != nil {
		return nil, &CompressionError{Err: errors.Wrapf(err, "level %d", c.level())}
	}
	if err := deflate(fw, pix); err != nil {
		return nil, err
	}
	idat := NewChunk(TypeIDAT, out.Bytes())
	packed := Stream{NewChunk(TypeCgBI, cgbiPayload())}
	packed = append(packed, collapse(s, &idat)...)
	return packed, nil
}

// inflateStream decodes the header of s and inflates its concatenated IDAT payloads through the
// reader open returns. At most the header's inflate capacity is accepted; the buffer starts
// near the compressed size and grows as data arrives.
func inflateStream(ctx context.Context, s Stream, open func(io.Reader) (io.ReadCloser, error)) (Header, []byte, error) {
	h, err := s.Header()
	if err != nil {
		return Header{}, nil, err
	}
	log.Debug(ctx, "decoded IHDR", log.Dimensions(h.Width, h.Height))
	if s.Count(TypeIDAT) == 0 {
		return Header{}, nil, FormatError("missing IDAT")
	}
	capacity, err := h.inflateCapacity()
	if err != nil {
		return Header{}, nil, err
	}
	compressed := s.pixelData()
	zr, err := open(bytes.NewReader(compressed))
	if err != nil {
		return Header{}, nil, &DecompressionError{Reason: "open stream", Err: err}
	}
	defer zr.Close()
	buf := bytes.NewBuffer(make([]byte, 0, min(capacity, inflateRatio*len(compressed)+4096)))
	// One byte past the capacity is enough to tell an overflow from an exact fit.
	n, err := buf.ReadFrom(io.LimitReader(zr, int64(capacity)+1))
	if err != nil {
		return Header{}, nil, &DecompressionError{Reason: "inflate", Err: err}
	}
	if n > int64(capacity) {
		return Header{}, nil, &DecompressionError{Reason: fmt.Sprintf("inflated data exceeds %d bytes", capacity)}
	}
	log.Debug(ctx, "inflated pixel data", log.Bytes("inflated", int(n)), log.Bytes("expected", h.scanlineBytes()))
	return h, buf.Bytes(), nil
}

func deflate(w io.WriteCloser, pix []byte) error {
	if _, err := w.Write(pix); err != nil {
		w.Close()
		return &CompressionError{Err: err}
	}
	if err := w.Close(); err != nil {
		return &CompressionError{Err: err}
	}
	return nil
}
