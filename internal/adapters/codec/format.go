// Package codec encodes and decodes the binary files of a marker bundle.
//
// Every file starts with a four byte magic, a u16 format version and a u16
// reserved field. All integers and floats are little-endian.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"go.trai.ch/nftgen/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	// MagicIndex starts every .iset file.
	MagicIndex = "ARIS"
	// Magic2D starts every .fset file.
	Magic2D = "ARJS"
	// Magic3D starts every .fset3 file.
	Magic3D = "AR3D"
	// MagicBundle starts a cached bundle payload.
	MagicBundle = "NFTB"

	// Version is the only format version this package reads and writes.
	Version uint16 = 1

	headerSize       = 8
	levelRecordSize  = 20
	featureHeader    = 16
	featureFixedSize = 5 * 4
	// FeatureRecordSize is the encoded size of one feature.
	FeatureRecordSize = featureFixedSize + domain.DescriptorSize
)

type writer struct {
	buf []byte
}

func newWriter(magic string, size int) *writer {
	w := &writer{buf: make([]byte, 0, size)}
	w.buf = append(w.buf, magic...)
	w.u16(Version)
	w.u16(0)
	return w
}

func (w *writer) u16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *writer) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *writer) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *writer) bytes(b []byte) {
	w.buf = append(w.buf, b...)
}

type reader struct {
	buf  []byte
	off  int
	kind string
}

// newReader checks the magic, version and reserved fields of buf.
func newReader(buf []byte, magic string) (*reader, error) {
	r := &reader{buf: buf, kind: magic}
	if len(buf) < headerSize {
		return nil, r.fail("payload shorter than header")
	}
	if string(buf[:4]) != magic {
		return nil, zerr.With(r.fail("bad magic"), "magic", fmt.Sprintf("%q", buf[:4]))
	}
	r.off = 4
	version, _ := r.u16()
	if version != Version {
		return nil, zerr.With(r.fail("unsupported version"), "version", version)
	}
	if reserved, _ := r.u16(); reserved != 0 {
		return nil, zerr.With(r.fail("reserved header field is set"), "reserved", reserved)
	}
	return r, nil
}

func (r *reader) fail(msg string) error {
	return zerr.With(zerr.Wrap(domain.ErrCodec, msg), "format", r.kind)
}

func (r *reader) need(n int) error {
	if n < 0 || len(r.buf)-r.off < n {
		return zerr.With(r.fail("truncated payload"), "offset", r.off)
	}
	return nil
}

func (r *reader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) f32() (float32, error) {
	v, err := r.u32()
	return math.Float32frombits(v), err
}

func (r *reader) bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// done fails when bytes are left after the last record.
func (r *reader) done() error {
	if r.off != len(r.buf) {
		return zerr.With(r.fail("trailing bytes after payload"), "offset", r.off)
	}
	return nil
}

// u32s reads consecutive u32 values into dst.
func (r *reader) u32s(dst ...*uint32) error {
	for _, d := range dst {
		v, err := r.u32()
		if err != nil {
			return err
		}
		*d = v
	}
	return nil
}
