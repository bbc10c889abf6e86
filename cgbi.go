// Package cgbi converts PNG files written by Apple's iOS toolchain ("CgBI" PNGs) back into
// standard PNG, and can produce such files from ordinary images.
//
// A CgBI file is a PNG whose first chunk is a private CgBI chunk, whose pixel data is a raw
// deflate stream without the zlib wrapper, and whose pixels are stored with red and blue
// swapped. Converting one means dropping the CgBI chunk, inflating the IDAT payload, swapping
// the channels back, deflating it with the zlib wrapper and writing a single IDAT.
//
// Only 4 bytes per pixel (8-bit RGBA) images are handled, which is what the toolchain emits.
package cgbi

import (
	"encoding/binary"
)

const pngHeader = "\x89PNG\r\n\x1a\n"

// maxChunkLen is the largest chunk length allowed by the PNG specification.
const maxChunkLen = 0x7fffffff

// Chunk types the converter looks at. Every other type passes through untouched.
const (
	TypeCgBI = "CgBI"
	TypeIHDR = "IHDR"
	TypeIDAT = "IDAT"
	TypeIEND = "IEND"
)

// chunkDataCgBIValue why ?
// BigEndian 1342185478 => 2012-07-13 21:17:58
// LittleEndian 102760528 => 1973-04-04 16:35:28
// It is the payload Xcode writes, so Encode writes it too.
const chunkDataCgBIValue = uint32(1342185478)

func cgbiPayload() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, chunkDataCgBIValue)
	return b
}
