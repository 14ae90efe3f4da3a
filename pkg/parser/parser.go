// Package parser extracts structured scheduler events from raw trace text.
package parser

import (
	"context"
	"io"

	"github.com/schedtrace/schedtrace/internal/model"
)

// Parser defines the interface for extracting events from a raw trace.
// Implementations must be safe for concurrent use and must not retain
// references to the output channel after returning.
type Parser interface {
	// Parse reads from r and sends extracted events to out.
	// It should respect context cancellation.
	// The caller is responsible for closing the out channel.
	Parse(ctx context.Context, r io.Reader, out chan<- model.Event) error
}

// Config holds common parser configuration.
type Config struct {
	// BufferSize is the size of the read buffer in bytes.
	BufferSize int
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize: 64 * 1024,
	}
}
