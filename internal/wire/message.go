// Package wire is the protocol-codec contract described in spec §6.1: it
// owns message framing, the object table, and per-object request
// dispatch. The spec treats a codec as an external collaborator ("assumed
// to exist as a library"); no such library appears anywhere in this
// codebase's lineage, so this package is a from-scratch implementation,
// deliberately narrow (fixed-width header, flat argument encoding) rather
// than a general RPC framework.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Opcode identifies a request (inbound) or event (outbound) within an
// interface's vtable.
type Opcode uint16

// header is the fixed 8-byte prefix of every message on the wire:
// the target/source object id, the opcode, and the total message size
// (header included).
type header struct {
	ObjectID uint32
	Opcode   Opcode
	Size     uint16
}

const headerSize = 8

func putHeader(buf []byte, h header) {
	binary.LittleEndian.PutUint32(buf[0:4], h.ObjectID)
	binary.LittleEndian.PutUint16(buf[4:6], uint16(h.Opcode))
	binary.LittleEndian.PutUint16(buf[6:8], h.Size)
}

func getHeader(buf []byte) header {
	return header{
		ObjectID: binary.LittleEndian.Uint32(buf[0:4]),
		Opcode:   Opcode(binary.LittleEndian.Uint16(buf[4:6])),
		Size:     binary.LittleEndian.Uint16(buf[6:8]),
	}
}

// Fixed is a 24.8 fixed-point number, per §4.6 (pointer/touch coordinates).
type Fixed int32

// FixedFromFloat64 converts a float into 24.8 fixed point.
func FixedFromFloat64(f float64) Fixed {
	return Fixed(int32(f * 256))
}

// Float64 converts 24.8 fixed point back into a float.
func (f Fixed) Float64() float64 {
	return float64(f) / 256
}

// ArgReader decodes a flat argument list out of one message's payload.
// Arguments are read in declaration order; there is no type tag on the
// wire, so caller and vtable entry must agree on the argument shape.
type ArgReader struct {
	buf []byte
	pos int
}

func NewArgReader(buf []byte) *ArgReader {
	return &ArgReader{buf: buf}
}

func (r *ArgReader) need(n int) error {
	if r.pos+n > len(r.buf) {
		return fmt.Errorf("wire: short argument read: need %d bytes at offset %d of %d", n, r.pos, len(r.buf))
	}
	return nil
}

func (r *ArgReader) Uint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *ArgReader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

func (r *ArgReader) Fixed() (Fixed, error) {
	v, err := r.Int32()
	return Fixed(v), err
}

// NewID reads an object id the peer has allocated for a new protocol
// object (a "new_id" wire argument in Wayland terms).
func (r *ArgReader) NewID() (uint32, error) {
	return r.Uint32()
}

func (r *ArgReader) String() (string, error) {
	n, err := r.Uint32()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	r.pos += padding(int(n))
	return s, nil
}

// Array reads a length-prefixed opaque byte blob (used for buffer
// payloads, which this core never interprets, only forwards).
func (r *ArgReader) Array() ([]byte, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	if err := r.need(int(n)); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+int(n)])
	r.pos += int(n)
	r.pos += padding(int(n))
	return out, nil
}

func padding(n int) int {
	return (4 - n%4) % 4
}

// ArgWriter builds the flat argument list for an outbound event.
type ArgWriter struct {
	buf []byte
}

func NewArgWriter() *ArgWriter {
	return &ArgWriter{}
}

func (w *ArgWriter) PutUint32(v uint32) *ArgWriter {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
	return w
}

func (w *ArgWriter) PutInt32(v int32) *ArgWriter {
	return w.PutUint32(uint32(v))
}

func (w *ArgWriter) PutFixed(v Fixed) *ArgWriter {
	return w.PutInt32(int32(v))
}

func (w *ArgWriter) PutString(s string) *ArgWriter {
	w.PutUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
	for i := 0; i < padding(len(s)); i++ {
		w.buf = append(w.buf, 0)
	}
	return w
}

func (w *ArgWriter) PutArray(data []byte) *ArgWriter {
	w.PutUint32(uint32(len(data)))
	w.buf = append(w.buf, data...)
	for i := 0; i < padding(len(data)); i++ {
		w.buf = append(w.buf, 0)
	}
	return w
}

func (w *ArgWriter) Bytes() []byte {
	return w.buf
}
