package mwdump

import (
	"io"

	"golang.org/x/net/html/charset"
)

// Tokenizer selects the XML tokenizer behind NewParser.
type Tokenizer int

const (
	// StdTokenizer uses encoding/xml. It checks well-formedness and
	// keeps character data byte for byte.
	StdTokenizer Tokenizer = iota
	// FastTokenizer uses github.com/muktihari/xmltokenizer. It is
	// considerably faster and allocates less. It does not check that
	// end tags match; inside a page a mismatch surfaces as
	// StructuralMismatch, inside skipped elements not at all.
	// Character data, CDATA included, is read back from the input
	// unchanged.
	FastTokenizer
)

func (t Tokenizer) String() string {
	switch t {
	case StdTokenizer:
		return "std"
	case FastTokenizer:
		return "fast"
	}
	return "unknown"
}

// ParseTokenizer maps "std" or "fast" to a Tokenizer.
func ParseTokenizer(s string) (Tokenizer, bool) {
	switch s {
	case "std", "":
		return StdTokenizer, true
	case "fast":
		return FastTokenizer, true
	}
	return StdTokenizer, false
}

// CharsetReaderFunc converts a non-UTF-8 input to UTF-8, see
// xml.Decoder.CharsetReader.
type CharsetReaderFunc func(label string, input io.Reader) (io.Reader, error)

type config struct {
	tokenizer      Tokenizer
	readBufferSize int
	charsetReader  CharsetReaderFunc
}

// An Option configures NewParser.
type Option func(*config)

// WithTokenizer selects the tokenizer. The default is StdTokenizer.
func WithTokenizer(t Tokenizer) Option {
	return func(c *config) { c.tokenizer = t }
}

// WithReadBufferSize sets the FastTokenizer read buffer size.
func WithReadBufferSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.readBufferSize = n
		}
	}
}

// WithCharsetReader overrides how StdTokenizer handles a non-UTF-8
// encoding declaration. The default understands every label the WHATWG
// encoding standard knows.
func WithCharsetReader(f CharsetReaderFunc) Option {
	return func(c *config) { c.charsetReader = f }
}

const defaultReadBufferSize = 64 << 10

func buildConfig(opts []Option) config {
	c := config{
		tokenizer:      StdTokenizer,
		readBufferSize: defaultReadBufferSize,
		charsetReader:  charset.NewReaderLabel,
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}

func newSource(r io.Reader, c config) EventSource {
	if c.tokenizer == FastTokenizer {
		return newFastSource(r, c.readBufferSize)
	}
	return newStdSource(r, c.charsetReader)
}
