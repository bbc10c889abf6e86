package cgbi

import (
	"context"
	"io"

	"github.com/928799934/cgbi-png-fix/internal/log"
)

// Result says what Convert did with its input.
type Result int

const (
	// Failed is returned alongside an error.
	Failed Result = iota
	// Converted means a CgBI stream was rewritten as a standard PNG.
	Converted
	// NotCgBI means the input is a PNG without a CgBI chunk.
	NotCgBI
	// NotPNG means the input does not start with the PNG signature.
	NotPNG
)

func (r Result) String() string {
	switch r {
	case Converted:
		return "converted"
	case NotCgBI:
		return "not CgBI"
	case NotPNG:
		return "not PNG"
	default:
		return "failed"
	}
}

type options struct {
	codec       Codec
	passthrough bool
}

// An Option customizes Convert.
type Option func(*options)

// WithLevel sets the compression level of the rebuilt IDAT chunk, see Codec.
func WithLevel(level int) Option {
	return func(o *options) { o.codec.Level = level }
}

// WithPassthrough makes Convert copy PNG streams without a CgBI chunk to w unchanged instead of
// writing nothing.
func WithPassthrough() Option {
	return func(o *options) { o.passthrough = true }
}

// Convert reads a PNG stream from r and, when it is a CgBI stream, writes the standard PNG
// equivalent to w. Nothing is written for inputs that are not CgBI unless WithPassthrough is
// given, and nothing is ever written for inputs that are not PNG.
func Convert(ctx context.Context, r io.Reader, w io.Writer, opts ...Option) (Result, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	s, err := ReadStream(r)
	if err != nil {
		return Failed, err
	}
	if s == nil {
		log.Debug(ctx, "PNG signature mismatch")
		return NotPNG, nil
	}
	if !s.IsCgBI() {
		if !o.passthrough {
			return NotCgBI, nil
		}
		if err := WriteStream(w, s, nil); err != nil {
			return Failed, err
		}
		return NotCgBI, nil
	}
	idat, err := o.codec.Rebuild(ctx, s)
	if err != nil {
		return Failed, err
	}
	if err := WriteStream(w, s, &idat); err != nil {
		return Failed, err
	}
	return Converted, nil
}
