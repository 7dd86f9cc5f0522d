package mwdump

import (
	"io"
)

// That which emits wiki pages.
//
// Next returns io.EOF when there are no more pages. Any other error is
// terminal: it is returned once and every later call returns io.EOF.
type Parser interface {
	Next() (*Page, error)
}

// StreamParser reads pages from a single XML stream.
//
// A StreamParser is not safe for concurrent use. Nothing is read from
// the underlying stream except from within Next, so a caller may stop
// at any point.
type StreamParser struct {
	src EventSource
	m   machine
}

// NewParser gets a dump parser reading from the given reader.
//
// r must already be decompressed.
func NewParser(r io.Reader, opts ...Option) *StreamParser {
	return NewEventParser(newSource(r, buildConfig(opts)))
}

// NewEventParser gets a dump parser fed by an arbitrary event source.
func NewEventParser(src EventSource) *StreamParser {
	return &StreamParser{src: src}
}

// newFragmentParser reads bare <page> elements, as found in the
// chunks of a multistream dump.
func newFragmentParser(r io.Reader, opts ...Option) *StreamParser {
	return &StreamParser{src: newSource(r, buildConfig(opts)), m: newFragmentMachine()}
}

// Next gets the next page from the parser.
func (p *StreamParser) Next() (*Page, error) {
	for !p.m.done() {
		ev, err := pull(p.src)
		if err != nil {
			p.m.state = stateError
			return nil, &Error{Kind: MalformedXML, Pos: ev.Pos, Err: err}
		}
		page, err := p.m.step(ev)
		if err != nil {
			return nil, err
		}
		if page != nil {
			return page, nil
		}
	}
	return nil, io.EOF
}
