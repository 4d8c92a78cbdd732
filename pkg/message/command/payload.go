package command

import (
	"encoding/binary"
	"math"

	"github.com/sessamekesh/multiplayer-lan-client/pkg/errors"
	"github.com/sessamekesh/multiplayer-lan-client/pkg/objects"
)

// payloadWriter builds a command payload. Everything is little endian;
// strings and slices carry a uint16 length prefix. The first failure sticks
// and later writes are skipped, so encoders check err once in finish.
type payloadWriter struct {
	name string
	buf  []byte
	err  error
}

func (w *payloadWriter) writeUint8(v uint8) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, v)
}

func (w *payloadWriter) writeBool(v bool) {
	if v {
		w.writeUint8(0x1)
		return
	}
	w.writeUint8(0x0)
}

func (w *payloadWriter) writeUint32(v uint32) {
	if w.err != nil {
		return
	}
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *payloadWriter) writeInt32(v int32) {
	w.writeUint32(uint32(v))
}

func (w *payloadWriter) writeFloat32(v float32) {
	w.writeUint32(math.Float32bits(v))
}

// writeCount writes the uint16 length prefix of field, failing with an
// Overflow when n does not fit.
func (w *payloadWriter) writeCount(field string, n int) bool {
	if w.err != nil {
		return false
	}
	if n > math.MaxUint16 {
		w.err = &errors.Overflow{
			MessageName: w.name,
			FieldName:   field,
			Size:        n,
			MaximumSize: math.MaxUint16,
		}
		return false
	}
	w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(n))
	return true
}

func (w *payloadWriter) writeString(field string, s string) {
	if w.writeCount(field, len(s)) {
		w.buf = append(w.buf, s...)
	}
}

func (w *payloadWriter) writeId(id objects.Id) {
	if w.err != nil {
		return
	}
	w.buf = binary.LittleEndian.AppendUint32(w.buf, id.Owner)
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(id.Serial))
}

func (w *payloadWriter) finish() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}

// payloadReader walks a command payload. The first failure sticks; every later
// read returns a zero value so decoders can check err once at the end.
type payloadReader struct {
	name string
	buf  []byte
	ptr  int
	err  error
}

func (r *payloadReader) need(n int) bool {
	if r.err != nil {
		return false
	}
	if len(r.buf) < r.ptr+n {
		r.err = &errors.Underflow{
			MessageName: r.name,
			MsgSize:     len(r.buf),
			MinimumSize: r.ptr + n,
		}
		return false
	}
	return true
}

func (r *payloadReader) readUint8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.buf[r.ptr]
	r.ptr++
	return v
}

func (r *payloadReader) readUint16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.buf[r.ptr : r.ptr+2])
	r.ptr += 2
	return v
}

func (r *payloadReader) readUint32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(r.buf[r.ptr : r.ptr+4])
	r.ptr += 4
	return v
}

func (r *payloadReader) readInt32() int32 {
	return int32(r.readUint32())
}

func (r *payloadReader) readInt64() int64 {
	if !r.need(8) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.buf[r.ptr : r.ptr+8])
	r.ptr += 8
	return int64(v)
}

func (r *payloadReader) readFloat32() float32 {
	return math.Float32frombits(r.readUint32())
}

func (r *payloadReader) readBool() bool {
	v := r.readUint8()
	if r.err == nil && v > 1 {
		r.err = &errors.InvalidEnumValue{
			EnumName: r.name + "::bool",
			IntValue: int(v),
		}
	}
	return v == 1
}

func (r *payloadReader) readString() string {
	n := int(r.readUint16())
	if !r.need(n) {
		return ""
	}
	s := string(r.buf[r.ptr : r.ptr+n])
	r.ptr += n
	return s
}

func (r *payloadReader) readId() objects.Id {
	owner := r.readUint32()
	serial := r.readInt64()
	return objects.Id{Owner: owner, Serial: serial}
}

// finish reports the first read failure, or a size mismatch if the payload
// has bytes the decoder did not consume.
func (r *payloadReader) finish() error {
	if r.err != nil {
		return r.err
	}
	if r.ptr != len(r.buf) {
		return &errors.PayloadSizeMismatch{
			MessageName:  r.name,
			DeclaredSize: len(r.buf),
			ActualSize:   r.ptr,
		}
	}
	return nil
}
