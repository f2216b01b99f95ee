// Shared helpers for building synthetic bit streams in tests.

package demparser

import (
	"bytes"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/cskit/demparse/demparser/bitread"
)

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// bitWriter builds test bit streams in the reader's bit order (LSB first
// within each byte).
type bitWriter struct {
	bits []bool
}

func (w *bitWriter) writeBit(bit bool) {
	w.bits = append(w.bits, bit)
}

func (w *bitWriter) writeBits(v uint64, n int) {
	for i := 0; i < n; i++ {
		w.writeBit(v&(1<<uint(i)) != 0)
	}
}

func (w *bitWriter) writeBytes(b []byte) {
	for _, x := range b {
		w.writeBits(uint64(x), 8)
	}
}

func (w *bitWriter) writeString(s string) {
	w.writeBytes([]byte(s))
	w.writeBits(0, 8)
}

// writeFieldIndexTerminator writes the 0xfff sentinel ending a property
// index stream.
func (w *bitWriter) writeFieldIndexTerminator() {
	w.writeBit(false)
	w.writeBit(false)
	w.writeBits(127, 7)
	w.writeBits(127, 7)
}

// data returns the packed stream, padded with zero bytes past the end.
func (w *bitWriter) data() []byte {
	out := make([]byte, (len(w.bits)+7)/8+8)
	for i, bit := range w.bits {
		if bit {
			out[i>>3] |= 1 << uint(i&7)
		}
	}
	return out
}

func (w *bitWriter) reader() *bitread.BitReader {
	return bitread.NewSmallBitReader(bytes.NewReader(w.data()))
}
