package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version byte = 1
	hdrLen       = 4 + 1 + 8 + 4
)

var (
	ErrCorrupt = errors.New("autocache: corrupt entry")
	magic4     = [...]byte{'A', 'L', 'C', 'W'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames a payload with its load time.
//
//	magic(4) | ver(1) | lastLoad(i64 be, unix nanos) | vlen(u32 be) | payload(vlen)
//
// A zero lastLoad is stored as 0 and decodes back to the zero time.
func Encode(lastLoad time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)

	var u8 [8]byte
	var u4 [4]byte

	var ns int64
	if !lastLoad.IsZero() {
		ns = lastLoad.UnixNano()
	}
	binary.BigEndian.PutUint64(u8[:], uint64(ns))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode is the inverse of Encode. The returned payload aliases b.
func Decode(b []byte) (lastLoad time.Time, payload []byte, err error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version {
		return time.Time{}, nil, ErrCorrupt
	}

	off := 5
	ns := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // exact: no trailing bytes
		return time.Time{}, nil, ErrCorrupt
	}

	if ns != 0 {
		lastLoad = time.Unix(0, ns)
	}
	return lastLoad, b[off : off+vlen], nil
}
