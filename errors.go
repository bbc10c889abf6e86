package cgbi

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// A FormatError reports that the input is not a valid PNG.
type FormatError string

func (e FormatError) Error() string { return "png: invalid format: " + string(e) }

// An UnsupportedError reports that the input uses a valid but unimplemented PNG feature.
type UnsupportedError string

func (e UnsupportedError) Error() string { return "png: unsupported feature: " + string(e) }

var (
	// ErrNotCgBI is returned when a conversion is asked of a stream without a CgBI chunk.
	ErrNotCgBI = errors.New("cgbi: stream has no CgBI chunk")
	// ErrNotPNG reports a signature mismatch where the caller asked for it to be an error.
	ErrNotPNG = FormatError("not a PNG file")
)

// TruncatedStreamError reports a chunk that declares more bytes than the input holds.
type TruncatedStreamError struct {
	// Type is the chunk type, empty when the cut happened inside a chunk header or the signature.
	Type     string
	Declared int64
	Read     int64
}

func (e *TruncatedStreamError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("png: truncated stream: read %d of %d header bytes", e.Read, e.Declared)
	}
	return fmt.Sprintf("png: truncated stream: %s chunk declares %d bytes, %d available", e.Type, e.Declared, e.Read)
}

func (e *TruncatedStreamError) Unwrap() error { return io.ErrUnexpectedEOF }

// DecompressionError reports pixel data that could not be inflated, or that inflated to more or
// fewer bytes than the image header allows.
type DecompressionError struct {
	Reason string
	Err    error
}

func (e *DecompressionError) Error() string {
	if e.Err == nil {
		return "cgbi: decompress pixel data: " + e.Reason
	}
	return "cgbi: decompress pixel data: " + e.Reason + ": " + e.Err.Error()
}

func (e *DecompressionError) Unwrap() error { return e.Err }

// CompressionError reports a failure to deflate the rebuilt pixel data.
type CompressionError struct {
	Err error
}

func (e *CompressionError) Error() string { return "cgbi: compress pixel data: " + e.Err.Error() }

func (e *CompressionError) Unwrap() error { return e.Err }

// WriteError reports that the output could not be written.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return "cgbi: write: " + e.Err.Error() }

func (e *WriteError) Unwrap() error { return e.Err }
