package mwdump

import (
	"bytes"
	"io"

	"github.com/muktihari/xmltokenizer"
	"github.com/pkg/errors"
)

// fastSource adapts xmltokenizer to an EventSource.
//
// xmltokenizer folds the character data that follows a start tag into
// the start token, unwraps CDATA sections and trims whitespace. The
// data is therefore re-read from the raw input instead, between the
// end of the start tag and the next element or end tag, so CDATA stays
// literal and text stays byte for byte.
type fastSource struct {
	raw     *rawWindow
	tok     *xmltokenizer.Tokenizer
	pending []Event
}

func newFastSource(r io.Reader, bufSize int) *fastSource {
	raw := &rawWindow{r: r}
	return &fastSource{
		raw: raw,
		tok: xmltokenizer.New(raw, xmltokenizer.WithReadBufferSize(bufSize)),
	}
}

func (s *fastSource) NextEvent() (Event, error) {
	if len(s.pending) > 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		return ev, nil
	}
	for {
		t, err := s.tok.Token()
		if err != nil {
			if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
				return Event{Kind: EventEOF}, nil
			}
			return Event{}, errors.Wrap(err, "xmltokenizer")
		}
		begin := int64(t.Begin.Offset)
		s.raw.discard(begin)
		if len(t.Name.Full) == 0 {
			// Declaration, comment, doctype or processing instruction.
			continue
		}
		pos := Position{
			Line:   int(t.Begin.Line),
			Column: int(t.Begin.Column),
			Offset: begin,
		}
		name := string(t.Name.Local)
		switch {
		case t.IsEndElement:
			return Event{Kind: EventEnd, Name: name, Pos: pos}, nil
		case t.SelfClosing:
			s.pending = append(s.pending[:0], Event{Kind: EventEnd, Name: name, Pos: pos})
		default:
			s.pending = s.pending[:0]
			if raw, ok := s.raw.from(begin); ok {
				s.pending = appendCharData(s.pending, raw, pos)
			} else if len(t.Data) > 0 {
				s.pending = append(s.pending, Event{Kind: EventText, Data: t.Data, Pos: pos})
			}
		}
		return Event{Kind: EventStart, Name: name, Pos: pos}, nil
	}
}

var (
	cdataOpen    = []byte("<![CDATA[")
	cdataClose   = []byte("]]>")
	commentOpen  = []byte("<!--")
	commentClose = []byte("-->")
	piOpen       = []byte("<?")
	piClose      = []byte("?>")
)

// appendCharData splits the character data following the start tag at
// the head of raw into text and CDATA events. It stops at the first
// element or end tag. Comments and processing instructions in between
// are dropped.
func appendCharData(evs []Event, raw []byte, pos Position) []Event {
	end := tagEnd(raw)
	if end < 0 {
		return evs
	}
	raw = raw[end:]
	for len(raw) > 0 {
		switch {
		case raw[0] != '<':
			i := bytes.IndexByte(raw, '<')
			if i < 0 {
				// Unterminated; the input ends inside the element.
				return evs
			}
			evs = append(evs, Event{Kind: EventText, Data: raw[:i], Pos: pos})
			raw = raw[i:]
		case bytes.HasPrefix(raw, cdataOpen):
			i := bytes.Index(raw, cdataClose)
			if i < 0 {
				return evs
			}
			evs = append(evs, Event{Kind: EventCDATA, Data: raw[len(cdataOpen):i], Pos: pos})
			raw = raw[i+len(cdataClose):]
		case bytes.HasPrefix(raw, commentOpen):
			raw = skipPast(raw, commentClose)
		case bytes.HasPrefix(raw, piOpen):
			raw = skipPast(raw, piClose)
		default:
			return evs
		}
	}
	return evs
}

func skipPast(raw, marker []byte) []byte {
	i := bytes.Index(raw, marker)
	if i < 0 {
		return nil
	}
	return raw[i+len(marker):]
}

// tagEnd returns the index just past the '>' closing the tag at the
// head of b, or -1.
func tagEnd(b []byte) int {
	var quote byte
	for i, c := range b {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			return i + 1
		}
	}
	return -1
}

// rawWindow records the bytes the tokenizer reads, from the start of
// the current token onwards.
type rawWindow struct {
	r    io.Reader
	buf  []byte
	base int64 // stream offset of buf[0]
}

func (w *rawWindow) Read(p []byte) (int, error) {
	n, err := w.r.Read(p)
	w.buf = append(w.buf, p[:n]...)
	return n, err
}

// discard drops everything before stream offset off.
func (w *rawWindow) discard(off int64) {
	n := off - w.base
	if n <= 0 {
		return
	}
	if n > int64(len(w.buf)) {
		n = int64(len(w.buf))
	}
	w.buf = w.buf[n:]
	w.base += n
}

// from returns the recorded bytes starting at stream offset off.
func (w *rawWindow) from(off int64) ([]byte, bool) {
	i := off - w.base
	if i < 0 || i >= int64(len(w.buf)) || w.buf[i] != '<' {
		return nil, false
	}
	return w.buf[i:], true
}
