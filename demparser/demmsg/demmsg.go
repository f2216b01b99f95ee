/*

Package demmsg decodes the protobuf net messages embedded in demo packet
frames. The wire schema is external (the engine's netmessages protocol);
this package consumes it field by field on top of protowire instead of
carrying generated code for a schema we do not own.

*/
package demmsg

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformedMessage indicates a protobuf parse failure in a recognized
// sub-message kind.
var ErrMalformedMessage = errors.New("malformed message")

// wireReader is a cursor over a protobuf-encoded byte slice.
// The first failure sticks; subsequent reads are no-ops.
type wireReader struct {
	buf []byte
	err error
}

func (w *wireReader) fail(n int) {
	if w.err == nil {
		w.err = fmt.Errorf("%w: %v", ErrMalformedMessage, protowire.ParseError(n))
	}
}

// next consumes the next field tag. ok is false at end of input or after
// a failure.
func (w *wireReader) next() (num protowire.Number, typ protowire.Type, ok bool) {
	if w.err != nil || len(w.buf) == 0 {
		return 0, 0, false
	}
	num, typ, n := protowire.ConsumeTag(w.buf)
	if n < 0 {
		w.fail(n)
		return 0, 0, false
	}
	w.buf = w.buf[n:]
	return num, typ, true
}

func (w *wireReader) readVarint() uint64 {
	v, n := protowire.ConsumeVarint(w.buf)
	if n < 0 {
		w.fail(n)
		return 0
	}
	w.buf = w.buf[n:]
	return v
}

func (w *wireReader) readInt32() int32 {
	return int32(w.readVarint())
}

func (w *wireReader) readBool() bool {
	return w.readVarint() != 0
}

func (w *wireReader) readFixed32() uint32 {
	v, n := protowire.ConsumeFixed32(w.buf)
	if n < 0 {
		w.fail(n)
		return 0
	}
	w.buf = w.buf[n:]
	return v
}

func (w *wireReader) readFloat() float32 {
	return math.Float32frombits(w.readFixed32())
}

func (w *wireReader) readBytes() []byte {
	v, n := protowire.ConsumeBytes(w.buf)
	if n < 0 {
		w.fail(n)
		return nil
	}
	w.buf = w.buf[n:]
	return v
}

func (w *wireReader) readString() string {
	return string(w.readBytes())
}

// skipField consumes a field of any type.
func (w *wireReader) skipField(num protowire.Number, typ protowire.Type) {
	n := protowire.ConsumeFieldValue(num, typ, w.buf)
	if n < 0 {
		w.fail(n)
		return
	}
	w.buf = w.buf[n:]
}
