package mwdump

import (
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
)

// stdSource adapts encoding/xml to an EventSource.
type stdSource struct {
	d *xml.Decoder
}

func newStdSource(r io.Reader, cr CharsetReaderFunc) *stdSource {
	d := xml.NewDecoder(r)
	d.CharsetReader = cr
	return &stdSource{d: d}
}

func (s *stdSource) pos() Position {
	line, col := s.d.InputPos()
	return Position{Line: line, Column: col, Offset: s.d.InputOffset()}
}

func (s *stdSource) NextEvent() (Event, error) {
	for {
		t, err := s.d.Token()
		if err != nil {
			if err == io.EOF || isTruncation(err) {
				return Event{Kind: EventEOF, Pos: s.pos()}, nil
			}
			return Event{Pos: s.pos()}, errors.Wrap(err, "xml")
		}
		switch t := t.(type) {
		case xml.StartElement:
			return Event{Kind: EventStart, Name: t.Name.Local, Pos: s.pos()}, nil
		case xml.EndElement:
			return Event{Kind: EventEnd, Name: t.Name.Local, Pos: s.pos()}, nil
		case xml.CharData:
			// encoding/xml has already resolved entities.
			return Event{Kind: EventCDATA, Data: t, Pos: s.pos()}, nil
		}
		// Comments, processing instructions and directives.
	}
}

// isTruncation reports whether err is encoding/xml complaining that
// input ended with elements still open. The state machine decides
// whether that matters.
func isTruncation(err error) bool {
	var se *xml.SyntaxError
	return errors.As(err, &se) && se.Msg == "unexpected EOF"
}
