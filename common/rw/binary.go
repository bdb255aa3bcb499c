package rw

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
)

var ErrShortRead = errors.New("rw: short read")

// ReaderWriter is a little-endian buffer. The first failed read sticks in Err and every
// later read returns zero values.
type ReaderWriter struct {
	order   binary.ByteOrder
	dataBuf []byte
	rw      bytes.Buffer
	err     error
}

func NewBinWriter() *ReaderWriter {
	return &ReaderWriter{order: binary.LittleEndian, dataBuf: make([]byte, 8)}
}

func NewBinReader(data []byte) *ReaderWriter {
	d := &ReaderWriter{order: binary.LittleEndian, dataBuf: make([]byte, 8)}
	d.rw.Write(data)
	return d
}

func (w *ReaderWriter) Err() error {
	return w.err
}

func (w *ReaderWriter) read(n int) []byte {
	if w.err != nil {
		return nil
	}
	m, err := io.ReadFull(&w.rw, w.dataBuf[:n])
	if err != nil || m != n {
		w.err = ErrShortRead
		return nil
	}
	return w.dataBuf[:n]
}

func (w *ReaderWriter) ReadUInt8() uint8 {
	b := w.read(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (w *ReaderWriter) ReadUInt16() uint16 {
	b := w.read(2)
	if b == nil {
		return 0
	}
	return w.order.Uint16(b)
}

func (w *ReaderWriter) ReadUInt32() uint32 {
	b := w.read(4)
	if b == nil {
		return 0
	}
	return w.order.Uint32(b)
}

func (w *ReaderWriter) ReadInt32() int32 {
	return int32(w.ReadUInt32())
}

func (w *ReaderWriter) ReadUInt64() uint64 {
	b := w.read(8)
	if b == nil {
		return 0
	}
	return w.order.Uint64(b)
}

func (w *ReaderWriter) ReadFloat64() float64 {
	return math.Float64frombits(w.ReadUInt64())
}

func (w *ReaderWriter) ReadFloat64s(value []float64) {
	for i := range value {
		value[i] = w.ReadFloat64()
	}
}

// ReadString reads a uint32 length prefix followed by the bytes.
func (w *ReaderWriter) ReadString() string {
	n := int(w.ReadUInt32())
	if w.err != nil {
		return ""
	}
	if w.rw.Len() < n {
		w.err = ErrShortRead
		return ""
	}
	return string(w.rw.Next(n))
}

func (w *ReaderWriter) WriteUInt8(v uint8) {
	w.rw.WriteByte(v)
}

func (w *ReaderWriter) WriteUInt16(v uint16) {
	w.order.PutUint16(w.dataBuf, v)
	w.rw.Write(w.dataBuf[:2])
}

func (w *ReaderWriter) WriteUInt32(v uint32) {
	w.order.PutUint32(w.dataBuf, v)
	w.rw.Write(w.dataBuf[:4])
}

func (w *ReaderWriter) WriteInt32(v int32) {
	w.WriteUInt32(uint32(v))
}

func (w *ReaderWriter) WriteUInt64(v uint64) {
	w.order.PutUint64(w.dataBuf, v)
	w.rw.Write(w.dataBuf[:8])
}

func (w *ReaderWriter) WriteFloat64(v float64) {
	w.WriteUInt64(math.Float64bits(v))
}

func (w *ReaderWriter) WriteFloat64s(v []float64) {
	for _, tmp := range v {
		w.WriteFloat64(tmp)
	}
}

func (w *ReaderWriter) WriteString(s string) {
	w.WriteUInt32(uint32(len(s)))
	w.rw.WriteString(s)
}

func (w *ReaderWriter) GetWriteBytes() (res []byte) {
	return w.rw.Bytes()
}

func (w *ReaderWriter) Size() int {
	return w.rw.Len()
}
