package mwdump

import (
	"fmt"
	"io"
)

// EventKind identifies the structural XML event an EventSource
// produced.
type EventKind uint8

const (
	// EventStart is a start tag. Name holds the local name.
	EventStart EventKind = iota + 1
	// EventEnd is an end tag. Name holds the local name.
	EventEnd
	// EventText is character data as it appears in the document, with
	// entity references still encoded.
	EventText
	// EventCDATA is literal character data that must not be entity
	// decoded.
	EventCDATA
	// EventEOF marks the end of input.
	EventEOF
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventEnd:
		return "end"
	case EventText:
		return "text"
	case EventCDATA:
		return "cdata"
	case EventEOF:
		return "eof"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Position is a location in the input.
type Position struct {
	Line   int
	Column int
	Offset int64
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Event is a single structural XML event.
//
// Data is only valid until the next call to NextEvent.
type Event struct {
	Kind EventKind
	Name string
	Data []byte
	Pos  Position
}

// An EventSource is a pull based XML tokenizer.
//
// NextEvent returns events in document order. At the end of input it
// returns an EventEOF event; returning io.EOF as the error means the
// same thing. Any other error is a tokenizer failure and is reported
// as MalformedXML.
type EventSource interface {
	NextEvent() (Event, error)
}

// pull reads the next event from src, folding io.EOF into EventEOF.
func pull(src EventSource) (Event, error) {
	ev, err := src.NextEvent()
	if err == io.EOF {
		return Event{Kind: EventEOF, Pos: ev.Pos}, nil
	}
	return ev, err
}
