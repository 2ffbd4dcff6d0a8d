// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Package binio holds the byte-order aware primitives shared by the archive
// codec: fixed-width integers, NUL-terminated strings in a legacy codepage,
// absolute seeking and alignment padding.
//
// Reader and Writer carry a sticky error. After the first failure every
// further call is a no-op returning zero values, and Err reports the cause.
package binio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
)

// ErrUnterminated is reported when a string has no NUL within its limit.
var ErrUnterminated = errors.New("binio: unterminated string")

// Align rounds n up to the next multiple of a. a must be a power of two.
func Align(n, a int64) int64 {
	return (n + a - 1) &^ (a - 1)
}

// Reader decodes values from a seekable stream.
type Reader struct {
	r     io.ReadSeeker
	order binary.ByteOrder
	dec   *encoding.Decoder
	tmp   [8]byte
	err   error
}

// NewReader returns a Reader over r. Strings are decoded from cp into UTF-8;
// a nil cp passes bytes through unchanged.
func NewReader(r io.ReadSeeker, order binary.ByteOrder, cp encoding.Encoding) *Reader {
	if cp == nil {
		cp = encoding.Nop
	}
	return &Reader{r: r, order: order, dec: cp.NewDecoder()}
}

// Err returns the error that stopped reading, if any.
func (r *Reader) Err() error {
	return r.err
}

// SetErr stops the reader with err unless it has already failed.
func (r *Reader) SetErr(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Seek moves to the absolute offset off.
func (r *Reader) Seek(off int64) {
	if r.err != nil {
		return
	}
	_, r.err = r.r.Seek(off, io.SeekStart)
}

// Offset returns the current absolute offset.
func (r *Reader) Offset() int64 {
	if r.err != nil {
		return 0
	}
	off, err := r.r.Seek(0, io.SeekCurrent)
	if err != nil {
		r.err = err
	}
	return off
}

// Data fills p entirely.
func (r *Reader) Data(p []byte) {
	if r.err != nil {
		return
	}
	if n, err := io.ReadFull(r.r, p); err != nil {
		r.err = fmt.Errorf("%w after reading %d of %d bytes", err, n, len(p))
	}
}

func (r *Reader) Uint8() uint8 {
	r.Data(r.tmp[:1])
	if r.err != nil {
		return 0
	}
	return r.tmp[0]
}

func (r *Reader) Uint16() uint16 {
	r.Data(r.tmp[:2])
	if r.err != nil {
		return 0
	}
	return r.order.Uint16(r.tmp[:2])
}

func (r *Reader) Uint32() uint32 {
	r.Data(r.tmp[:4])
	if r.err != nil {
		return 0
	}
	return r.order.Uint32(r.tmp[:4])
}

// CString reads a NUL-terminated string of at most limit bytes, terminator
// included, and decodes it through the reader's codepage.
func (r *Reader) CString(limit int) string {
	var raw []byte
	for i := 0; i < limit; i++ {
		b := r.Uint8()
		if r.err != nil {
			return ""
		}
		if b == 0 {
			return r.decode(raw)
		}
		raw = append(raw, b)
	}
	r.SetErr(ErrUnterminated)
	return ""
}

func (r *Reader) decode(raw []byte) string {
	s, err := r.dec.Bytes(raw)
	if err != nil {
		r.SetErr(fmt.Errorf("decode string: %w", err))
		return ""
	}
	return string(s)
}

// Writer encodes values to a seekable stream.
type Writer struct {
	w     io.WriteSeeker
	order binary.ByteOrder
	tmp   [8]byte
	err   error
}

// NewWriter returns a Writer over w.
func NewWriter(w io.WriteSeeker, order binary.ByteOrder) *Writer {
	return &Writer{w: w, order: order}
}

// Err returns the error that stopped writing, if any.
func (w *Writer) Err() error {
	return w.err
}

// Seek moves to the absolute offset off.
func (w *Writer) Seek(off int64) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Seek(off, io.SeekStart)
}

// Offset returns the current absolute offset.
func (w *Writer) Offset() int64 {
	if w.err != nil {
		return 0
	}
	off, err := w.w.Seek(0, io.SeekCurrent)
	if err != nil {
		w.err = err
	}
	return off
}

func (w *Writer) Data(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	if err != nil {
		w.err = err
	} else if n != len(p) {
		w.err = io.ErrShortWrite
	}
}

func (w *Writer) Uint8(v uint8) {
	w.tmp[0] = v
	w.Data(w.tmp[:1])
}

func (w *Writer) Uint16(v uint16) {
	w.order.PutUint16(w.tmp[:2], v)
	w.Data(w.tmp[:2])
}

func (w *Writer) Uint32(v uint32) {
	w.order.PutUint32(w.tmp[:4], v)
	w.Data(w.tmp[:4])
}

// Pad writes fill bytes until the offset is a multiple of align.
func (w *Writer) Pad(align int64, fill byte) {
	off := w.Offset()
	if w.err != nil {
		return
	}
	if n := Align(off, align) - off; n > 0 {
		w.Data(padding(int(n), fill))
	}
}

// AppendCString appends s, encoded by enc, and a NUL terminator to dst.
// A nil enc copies the UTF-8 bytes unchanged.
func AppendCString(dst []byte, s string, enc *encoding.Encoder) ([]byte, error) {
	raw := []byte(s)
	if enc != nil {
		var err error
		if raw, err = enc.Bytes(raw); err != nil {
			return dst, fmt.Errorf("encode %q: %w", s, err)
		}
	}
	dst = append(dst, raw...)
	return append(dst, 0), nil
}

// AppendPad appends fill bytes to dst until its length is a multiple of align.
func AppendPad(dst []byte, align int64, fill byte) []byte {
	n := Align(int64(len(dst)), align) - int64(len(dst))
	return append(dst, padding(int(n), fill)...)
}

func padding(n int, fill byte) []byte {
	p := make([]byte, n)
	if fill != 0 {
		for i := range p {
			p[i] = fill
		}
	}
	return p
}
