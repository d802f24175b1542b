package bytecode

import (
	"encoding/binary"
	"fmt"

	"github.com/curlee-lang/curlee/source"
)

// magic is the fixed header every encoded chunk begins with, per
// spec.md §4.J.
var magic = []byte("CURLEE_CHUNK")

const (
	formatVersion1 = 1
	formatVersion2 = 2
)

// DecodeError reports a malformed or unsupported encoded chunk,
// mirroring curlee::vm::ChunkDecodeError.
type DecodeError struct {
	Message string
}

func (e *DecodeError) Error() string { return e.Message }

// Encode renders c into the stable little-endian wire format.
// Encoders always produce the current format, version 2.
func Encode(c *Chunk) []byte {
	buf := append([]byte(nil), magic...)
	buf = appendU32(buf, formatVersion2)

	buf = appendU64(buf, uint64(c.MaxLocals))

	buf = appendU64(buf, uint64(len(c.Code)))
	buf = append(buf, c.Code...)

	buf = appendU64(buf, uint64(len(c.Spans)))
	for _, s := range c.Spans {
		buf = appendU64(buf, uint64(s.Start))
		buf = appendU64(buf, uint64(s.End))
	}

	buf = appendU64(buf, uint64(len(c.Constants)))
	for _, k := range c.Constants {
		buf = append(buf, byte(k.Kind))
		switch k.Kind {
		case ConstInt:
			buf = appendU64(buf, uint64(k.Int))
		case ConstBool:
			if k.Bool {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		case ConstString:
			str := []byte(k.Str)
			buf = appendU64(buf, uint64(len(str)))
			buf = append(buf, str...)
		case ConstUnit:
			// no payload
		}
	}
	return buf
}

// Decode parses bytes previously produced by Encode (or by a version 1
// encoder). It accepts both format versions 1 and 2, and returns a
// *DecodeError on bad magic, truncation, or an unknown version/kind.
func Decode(data []byte) (*Chunk, error) {
	r := &reader{data: data}

	gotMagic, ok := r.take(len(magic))
	if !ok || string(gotMagic) != string(magic) {
		return nil, &DecodeError{Message: "bad magic"}
	}

	version, ok := r.u32()
	if !ok {
		return nil, &DecodeError{Message: "truncated chunk header"}
	}

	switch version {
	case formatVersion1:
		return decodeBody(r, func() (uint64, bool) {
			v, ok := r.u32()
			return uint64(v), ok
		})
	case formatVersion2:
		return decodeBody(r, r.u64)
	default:
		return nil, &DecodeError{Message: fmt.Sprintf("unsupported chunk format version %d", version)}
	}
}

func decodeBody(r *reader, readCount func() (uint64, bool)) (*Chunk, error) {
	c := &Chunk{}

	maxLocals, ok := readCount()
	if !ok {
		return nil, &DecodeError{Message: "truncated chunk: max_locals"}
	}
	c.MaxLocals = int(maxLocals)

	codeLen, ok := readCount()
	if !ok {
		return nil, &DecodeError{Message: "truncated chunk: code_len"}
	}
	code, ok := r.take(int(codeLen))
	if !ok {
		return nil, &DecodeError{Message: "truncated chunk: code"}
	}
	c.Code = append([]byte(nil), code...)

	spansLen, ok := readCount()
	if !ok {
		return nil, &DecodeError{Message: "truncated chunk: spans_len"}
	}
	for i := uint64(0); i < spansLen; i++ {
		start, ok1 := readCount()
		end, ok2 := readCount()
		if !ok1 || !ok2 {
			return nil, &DecodeError{Message: "truncated chunk: span entry"}
		}
		c.Spans = append(c.Spans, source.Span{Start: int(start), End: int(end)})
	}

	constantsLen, ok := readCount()
	if !ok {
		return nil, &DecodeError{Message: "truncated chunk: constants_len"}
	}
	for i := uint64(0); i < constantsLen; i++ {
		kindByte, ok := r.u8()
		if !ok {
			return nil, &DecodeError{Message: "truncated chunk: constant kind"}
		}
		switch ConstKind(kindByte) {
		case ConstInt:
			v, ok := readCount()
			if !ok {
				return nil, &DecodeError{Message: "truncated chunk: int constant"}
			}
			c.Constants = append(c.Constants, IntConstant(int64(v)))
		case ConstBool:
			v, ok := r.u8()
			if !ok {
				return nil, &DecodeError{Message: "truncated chunk: bool constant"}
			}
			c.Constants = append(c.Constants, BoolConstant(v != 0))
		case ConstString:
			strLen, ok := readCount()
			if !ok {
				return nil, &DecodeError{Message: "truncated chunk: string length"}
			}
			data, ok := r.take(int(strLen))
			if !ok {
				return nil, &DecodeError{Message: "truncated chunk: string payload"}
			}
			c.Constants = append(c.Constants, StringConstant(string(data)))
		case ConstUnit:
			c.Constants = append(c.Constants, UnitConstant())
		default:
			return nil, &DecodeError{Message: fmt.Sprintf("unknown constant kind %d", kindByte)}
		}
	}

	return c, nil
}

// reader is a cursor over a byte slice used only by Decode.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) take(n int) ([]byte, bool) {
	if n < 0 || r.pos+n > len(r.data) {
		return nil, false
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, true
}

func (r *reader) u8() (byte, bool) {
	b, ok := r.take(1)
	if !ok {
		return 0, false
	}
	return b[0], true
}

func (r *reader) u32() (uint32, bool) {
	b, ok := r.take(4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (r *reader) u64() (uint64, bool) {
	b, ok := r.take(8)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

func appendU32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}
