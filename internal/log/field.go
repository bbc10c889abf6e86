package log

import (
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Bytes is a Field holding a byte count, rendered for humans ("1.2 MB").
func Bytes(name string, n int) Field {
	if n < 0 {
		return zap.Int(name, n)
	}
	return zap.String(name, humanize.Bytes(uint64(n)))
}

type dimensions struct{ w, h uint32 }

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (d dimensions) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddUint32("width", d.w)
	enc.AddUint32("height", d.h)
	return nil
}

// Dimensions is a Field that inlines an image's width and height.
func Dimensions(w, h uint32) Field {
	return zap.Inline(dimensions{w: w, h: h})
}

// ParseLevel parses a level name such as "debug" or "warn".
func ParseLevel(s string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, errors.Wrapf(err, "parse log level %q", s)
	}
	return l, nil
}
