// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package u8

import (
	"log/slog"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

// DefaultMaxNodes caps the node count accepted by Decode.
const DefaultMaxNodes = 1 << 20

// config holds codec configuration shared by decode and encode.
type config struct {
	logger   *slog.Logger
	codepage encoding.Encoding
	maxNodes int
}

// Option configures an Archive.
type Option func(*config)

func newConfig(opts []Option) config {
	cfg := config{codepage: japanese.ShiftJIS}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.codepage == nil {
		cfg.codepage = encoding.Nop
	}
	return cfg
}

// WithLogger sets the logger for debug summaries. Nil discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithCodepage sets the legacy codepage entry names are stored in.
// The default is Shift-JIS; charmap.Windows1252 and encoding.Nop (raw UTF-8)
// are common alternatives.
func WithCodepage(cp encoding.Encoding) Option {
	return func(cfg *config) {
		cfg.codepage = cp
	}
}

// WithMaxNodes limits the number of nodes Decode accepts.
// Zero uses DefaultMaxNodes. Negative means no limit.
func WithMaxNodes(n int) Option {
	return func(cfg *config) {
		cfg.maxNodes = n
	}
}

// log returns the logger, falling back to a discard logger if nil.
func (c *config) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

func (c *config) nodeLimit() int {
	if c.maxNodes == 0 {
		return DefaultMaxNodes
	}
	return c.maxNodes
}
