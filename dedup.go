// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package u8

import (
	"bytes"

	"github.com/cespare/xxhash/v2"

	"github.com/suprsokr/go-u8/internal/binio"
)

// placedPayload locates a payload already written to the data section.
type placedPayload struct {
	start  int // Offset within buf
	length int
}

// dataSection accumulates file payloads, storing each distinct payload once.
// Payloads are bucketed by xxhash digest and matched by full comparison.
type dataSection struct {
	base    int64
	buf     []byte
	buckets map[uint64][]placedPayload
	deduped int
}

func newDataSection(base int64) *dataSection {
	return &dataSection{base: base, buckets: make(map[uint64][]placedPayload)}
}

// add places p and returns its absolute offset. Identical payloads share an
// offset; new ones are padded to the data alignment.
func (s *dataSection) add(p []byte) int64 {
	sum := xxhash.Sum64(p)
	for _, c := range s.buckets[sum] {
		if bytes.Equal(s.buf[c.start:c.start+c.length], p) {
			s.deduped++
			return s.base + int64(c.start)
		}
	}

	start := len(s.buf)
	s.buf = append(s.buf, p...)
	s.buf = binio.AppendPad(s.buf, dataAlignment, 0)
	s.buckets[sum] = append(s.buckets[sum], placedPayload{start: start, length: len(p)})
	return s.base + int64(start)
}
