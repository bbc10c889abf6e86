package cgbi

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
)

// ReadStream reads the PNG signature and every chunk up to and including IEND.
//
// A signature mismatch is not an error: ReadStream returns an empty stream and reads nothing
// further. A chunk that declares more bytes than r holds yields a *TruncatedStreamError and is
// not part of any returned stream.
func ReadStream(r io.Reader) (Stream, error) {
	var tmp [len(pngHeader)]byte
	if n, err := io.ReadFull(r, tmp[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, &TruncatedStreamError{Declared: int64(len(pngHeader)), Read: int64(n)}
		}
		return nil, err
	}
	if string(tmp[:]) != pngHeader {
		return nil, nil
	}
	var s Stream
	for {
		c, err := ReadChunk(r)
		if err == io.EOF {
			// The stream ended cleanly between chunks, but before IEND.
			return nil, &TruncatedStreamError{Declared: 8}
		}
		if err != nil {
			return nil, err
		}
		s = append(s, c)
		if c.Is(TypeIEND) {
			return s, nil
		}
	}
}

// Decode reads a PNG image from r and returns it as an image.Image. CgBI images are converted
// first; standard PNGs are decoded as they are.
// The type of Image returned depends on the PNG contents.
func Decode(r io.Reader) (image.Image, error) {
	buff, err := decode(r)
	if err != nil {
		return nil, err
	}
	return png.Decode(buff)
}

// DecodeConfig returns the color model and dimensions of a PNG image without
// decoding the entire image.
func DecodeConfig(r io.Reader) (image.Config, error) {
	buff, err := decode(r)
	if err != nil {
		return image.Config{}, err
	}
	return png.DecodeConfig(buff)
}

func decode(r io.Reader) (*bytes.Buffer, error) {
	buff := new(bytes.Buffer)
	res, err := Convert(context.Background(), r, buff, WithPassthrough())
	if err != nil {
		return nil, err
	}
	if res == NotPNG {
		return nil, ErrNotPNG
	}
	return buff, nil
}
