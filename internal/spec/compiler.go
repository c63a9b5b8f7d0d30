package spec

import (
	"bytes"
	"log/slog"
)

// DefaultMaxLineSize bounds the length of a single patch line.
const DefaultMaxLineSize = 1 << 20

// Stats counts what a Compiler has seen.
type Stats struct {
	// Lines is the number of non-blank lines extracted.
	Lines int
	// Applied is the number of lines applied to the tree.
	Applied int
	// Dropped is the number of lines that failed to decode or exceeded the line size.
	Dropped int
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used to report dropped lines at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxLineSize bounds the length of a line, without its newline. A longer
// line is dropped whichever way it was chunked. Zero or a negative value
// disables the bound.
func WithMaxLineSize(n int) Option {
	return func(c *Compiler) {
		c.maxLineSize = n
	}
}

// Compiler turns a chunked JSONL patch stream into a Spec.
//
// Chunk boundaries are arbitrary: a chunk may split a line or a multi-byte
// rune, or carry many lines. Each complete line is decoded and applied once.
// Push calls must be serialized by the caller; Result may be called between
// them at any time.
type Compiler struct {
	tree        *Tree
	buf         []byte
	discarding  bool
	maxLineSize int
	stats       Stats
	logger      *slog.Logger
}

// NewCompiler returns an empty compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		tree:        NewTree(),
		maxLineSize: DefaultMaxLineSize,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Push feeds a chunk of stream text and returns the number of patches applied.
func (c *Compiler) Push(chunk string) int {
	return c.push([]byte(chunk))
}

// Write implements io.Writer. It never fails.
func (c *Compiler) Write(p []byte) (int, error) {
	c.push(p)
	return len(p), nil
}

func (c *Compiler) push(chunk []byte) int {
	applied := 0
	for len(chunk) > 0 {
		segment, rest, terminated := bytes.Cut(chunk, []byte("\n"))
		chunk = rest

		if !c.discarding {
			if c.maxLineSize > 0 && len(c.buf)+len(segment) > c.maxLineSize {
				c.logger.Debug("dropping oversized spec line", "size", len(c.buf)+len(segment), "limit", c.maxLineSize)
				c.stats.Lines++
				c.stats.Dropped++
				c.buf = c.buf[:0]
				c.discarding = true
			} else {
				c.buf = append(c.buf, segment...)
			}
		}
		if !terminated {
			break
		}

		// The line is complete.
		if c.discarding {
			c.discarding = false
		} else if c.apply(c.buf) {
			applied++
		}
		c.buf = c.buf[:0]
	}
	return applied
}

// apply decodes one line without its terminator and applies it.
func (c *Compiler) apply(line []byte) bool {
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(bytes.TrimSpace(line)) == 0 {
		return false
	}
	c.stats.Lines++
	patch, err := DecodePatch(line)
	if err != nil {
		c.stats.Dropped++
		c.logger.Debug("dropping spec line", "error", err, "line", string(line))
		return false
	}
	c.tree.Apply(patch)
	c.stats.Applied++
	return true
}

// Flush treats any buffered unterminated text as a final line.
func (c *Compiler) Flush() int {
	if c.discarding {
		c.discarding = false
		return 0
	}
	if len(c.buf) == 0 {
		return 0
	}
	line := c.buf
	c.buf = nil
	if c.apply(line) {
		return 1
	}
	return 0
}

// Result returns a snapshot of the spec built so far. It does not consume
// buffered input.
func (c *Compiler) Result() *Spec {
	return c.tree.Snapshot()
}

// Pending returns the number of buffered bytes not yet terminated by a newline.
func (c *Compiler) Pending() int {
	return len(c.buf)
}

// Stats returns the line counters.
func (c *Compiler) Stats() Stats {
	return c.stats
}

// Reset discards the tree and any buffered input.
func (c *Compiler) Reset() {
	c.tree = NewTree()
	c.buf = nil
	c.discarding = false
	c.stats = Stats{}
}
