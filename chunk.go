package cgbi

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"strings"
)

// Chunk is one length-prefixed, checksummed record of a PNG stream.
type Chunk struct {
	Type string
	Data []byte
	// CRC is the checksum as stored in the input. It is written back verbatim, so a chunk that
	// is passed through keeps whatever checksum it arrived with.
	CRC uint32
}

// NewChunk returns a chunk with its checksum computed over typ and data.
func NewChunk(typ string, data []byte) Chunk {
	return Chunk{Type: typ, Data: data, CRC: Checksum(typ, data)}
}

// Checksum computes the PNG chunk CRC: CRC-32 (IEEE) over the type bytes followed by the data.
func Checksum(typ string, data []byte) uint32 {
	crc := crc32.NewIEEE()
	io.WriteString(crc, typ)
	crc.Write(data)
	return crc.Sum32()
}

// Is reports whether the chunk has type typ. Type names are compared case-insensitively, as
// some producers in the wild do not keep the case bits straight.
func (c Chunk) Is(typ string) bool {
	return strings.EqualFold(c.Type, typ)
}

// Valid reports whether the stored CRC matches the chunk contents.
func (c Chunk) Valid() bool {
	return c.CRC == Checksum(c.Type, c.Data)
}

func (c Chunk) String() string {
	return fmt.Sprintf("%s(%d bytes, crc %08x)", c.Type, len(c.Data), c.CRC)
}

// WriteTo writes length, type, data and CRC to w.
func (c Chunk) WriteTo(w io.Writer) (int64, error) {
	if len(c.Type) != 4 {
		return 0, FormatError(fmt.Sprintf("bad chunk type %q", c.Type))
	}
	if len(c.Data) > maxChunkLen {
		return 0, FormatError(fmt.Sprintf("Bad chunk length: %d", len(c.Data)))
	}
	var tmp [8]byte
	binary.BigEndian.PutUint32(tmp[:4], uint32(len(c.Data)))
	copy(tmp[4:8], c.Type)
	var total int64
	n, err := w.Write(tmp[:8])
	total += int64(n)
	if err != nil {
		return total, err
	}
	n, err = w.Write(c.Data)
	total += int64(n)
	if err != nil {
		return total, err
	}
	binary.BigEndian.PutUint32(tmp[:4], c.CRC)
	n, err = w.Write(tmp[:4])
	total += int64(n)
	return total, err
}

// ReadChunk reads one chunk from r. It returns io.EOF only when r is exhausted before the first
// byte of the chunk; any later shortfall is a *TruncatedStreamError.
func ReadChunk(r io.Reader) (Chunk, error) {
	var tmp [8]byte
	n, err := io.ReadFull(r, tmp[:8])
	switch {
	case err == io.EOF:
		return Chunk{}, io.EOF
	case err == io.ErrUnexpectedEOF:
		return Chunk{}, &TruncatedStreamError{Declared: 8, Read: int64(n)}
	case err != nil:
		return Chunk{}, err
	}
	length := binary.BigEndian.Uint32(tmp[:4])
	typ := string(tmp[4:8])
	if length > maxChunkLen {
		return Chunk{}, FormatError(fmt.Sprintf("Bad chunk length: %d", length))
	}
	// Read in bounded steps: a corrupt length must not allocate more than the input holds.
	var (
		data    = make([]byte, 0, min(int(length), 4096))
		ignored [4096]byte
		left    = int(length)
	)
	for left > 0 {
		n, err := io.ReadFull(r, ignored[:min(len(ignored), left)])
		data = append(data, ignored[:n]...)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return Chunk{}, &TruncatedStreamError{Type: typ, Declared: int64(length), Read: int64(len(data))}
		}
		if err != nil {
			return Chunk{}, err
		}
		left -= n
	}
	if n, err := io.ReadFull(r, tmp[:4]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			// The checksum counts towards what the chunk declares.
			return Chunk{}, &TruncatedStreamError{Type: typ, Declared: int64(length) + 4, Read: int64(length) + int64(n)}
		}
		return Chunk{}, err
	}
	return Chunk{Type: typ, Data: data, CRC: binary.BigEndian.Uint32(tmp[:4])}, nil
}

// Stream is the ordered list of chunks of one PNG file, not counting the signature.
type Stream []Chunk

// Find returns the first chunk of type typ.
func (s Stream) Find(typ string) (Chunk, bool) {
	for _, c := range s {
		if c.Is(typ) {
			return c, true
		}
	}
	return Chunk{}, false
}

// Count returns how many chunks have type typ.
func (s Stream) Count(typ string) int {
	var n int
	for _, c := range s {
		if c.Is(typ) {
			n++
		}
	}
	return n
}

// IsCgBI reports whether the stream carries the CgBI marker chunk.
func (s Stream) IsCgBI() bool {
	_, ok := s.Find(TypeCgBI)
	return ok
}

// Header decodes the stream's IHDR chunk.
func (s Stream) Header() (Header, error) {
	c, ok := s.Find(TypeIHDR)
	if !ok {
		return Header{}, FormatError("missing IHDR")
	}
	return DecodeHeader(c)
}

// pixelData concatenates the payloads of every IDAT chunk in stream order.
func (s Stream) pixelData() []byte {
	var size int
	for _, c := range s {
		if c.Is(TypeIDAT) {
			size += len(c.Data)
		}
	}
	data := make([]byte, 0, size)
	for _, c := range s {
		if c.Is(TypeIDAT) {
			data = append(data, c.Data...)
		}
	}
	return data
}

// WriteTo writes the PNG signature followed by every chunk, unchanged.
func (s Stream) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, pngHeader)
	total := int64(n)
	if err != nil {
		return total, err
	}
	for _, c := range s {
		n, err := c.WriteTo(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
