package mwdump

import (
	"bytes"
	"strconv"

	"github.com/pkg/errors"
)

type state uint8

const (
	stateStart state = iota
	stateRoot
	statePage
	stateRevision
	stateLeaf
	stateSkip
	stateError
	stateEnd
)

func (s state) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateRoot:
		return "mediawiki"
	case statePage:
		return "page"
	case stateRevision:
		return "revision"
	case stateLeaf:
		return "leaf"
	case stateSkip:
		return "skip"
	case stateError:
		return "error"
	case stateEnd:
		return "end"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// leaf identifies the scalar element whose text is being collected.
type leaf uint8

const (
	leafTitle leaf = iota
	leafNS
	leafFormat
	leafModel
	leafText
)

var leafNames = [...]string{
	leafTitle:  "title",
	leafNS:     "ns",
	leafFormat: "format",
	leafModel:  "model",
	leafText:   "text",
}

func (l leaf) String() string { return leafNames[l] }

// owner is the state a leaf returns to.
func (l leaf) owner() state {
	if l == leafTitle || l == leafNS {
		return statePage
	}
	return stateRevision
}

type pendingPage struct {
	title       string
	hasTitle    bool
	ns          Namespace
	hasNS       bool
	sawRevision bool

	format *string
	model  *string
	text   string
}

type pendingRevision struct {
	format  *string
	model   *string
	text    string
	hasText bool
}

// machine turns XML events into pages. It holds no reference to the
// event source; step is fed one event at a time.
type machine struct {
	state state

	leaf leaf
	buf  []byte

	depth int
	ret   state

	page pendingPage
	rev  pendingRevision
}

// newFragmentMachine returns a machine for input that holds bare
// <page> elements with no <mediawiki> root, as in the chunks of a
// multistream dump.
func newFragmentMachine() machine {
	return machine{state: stateRoot}
}

func (m *machine) done() bool {
	return m.state == stateError || m.state == stateEnd
}

// step applies one event. It returns a page when a </page> closes
// successfully. Once an error is returned the machine stays in its
// error state.
func (m *machine) step(ev Event) (*Page, error) {
	p, err := m.transition(ev)
	if err != nil {
		m.state = stateError
		m.buf = nil
		return nil, err
	}
	return p, nil
}

func (m *machine) transition(ev Event) (*Page, error) {
	switch m.state {
	case stateStart:
		return nil, m.inStart(ev)
	case stateRoot:
		return nil, m.inRoot(ev)
	case statePage:
		return m.inPage(ev)
	case stateRevision:
		return nil, m.inRevision(ev)
	case stateLeaf:
		return nil, m.inLeaf(ev)
	case stateSkip:
		return nil, m.inSkip(ev)
	}
	return nil, errors.Errorf("mwdump: step called in %v state", m.state)
}

func (m *machine) inStart(ev Event) error {
	switch ev.Kind {
	case EventStart:
		if ev.Name == "mediawiki" {
			m.state = stateRoot
			return nil
		}
		return errMismatch(ev, "document root is <%s>, want <mediawiki>", ev.Name)
	case EventText, EventCDATA:
		if isSpace(ev.Data) {
			return nil
		}
		return errMismatch(ev, "character data before <mediawiki>")
	case EventEOF:
		return errMismatch(ev, "no <mediawiki> element in input")
	}
	return errMismatch(ev, "unexpected %v event before <mediawiki>", ev.Kind)
}

func (m *machine) inRoot(ev Event) error {
	switch ev.Kind {
	case EventStart:
		if ev.Name == "page" {
			m.page = pendingPage{}
			m.state = statePage
			return nil
		}
		m.skip(stateRoot)
	case EventEnd:
		if ev.Name == "mediawiki" {
			m.state = stateEnd
			return nil
		}
		return errMismatch(ev, "</%s> closes nothing", ev.Name)
	case EventEOF:
		m.state = stateEnd
	}
	return nil
}

func (m *machine) inPage(ev Event) (*Page, error) {
	switch ev.Kind {
	case EventStart:
		switch ev.Name {
		case "title":
			return nil, m.enterLeaf(ev, leafTitle, m.page.hasTitle)
		case "ns":
			return nil, m.enterLeaf(ev, leafNS, m.page.hasNS)
		case "revision":
			if m.page.sawRevision {
				return nil, newError(DuplicateRevision, ev,
					errors.Errorf("page %q has more than one revision", m.page.title))
			}
			m.page.sawRevision = true
			m.rev = pendingRevision{}
			m.state = stateRevision
		default:
			m.skip(statePage)
		}
	case EventEnd:
		if ev.Name != "page" {
			return nil, errMismatch(ev, "</%s> inside <page>", ev.Name)
		}
		return m.finishPage(ev)
	case EventEOF:
		return nil, newError(UnexpectedEOF, ev, errors.New("input ended inside <page>"))
	}
	return nil, nil
}

func (m *machine) finishPage(ev Event) (*Page, error) {
	switch {
	case m.page.title == "":
		// An empty <title/> counts as absent.
		return nil, errMissing("title", "page", ev.Pos)
	case !m.page.hasNS:
		return nil, errMissing("ns", "page", ev.Pos)
	case !m.page.sawRevision:
		return nil, errMissing("revision", "page", ev.Pos)
	}
	p := &Page{
		Title:     m.page.title,
		Namespace: m.page.ns,
		Format:    m.page.format,
		Model:     m.page.model,
		Text:      m.page.text,
	}
	m.page = pendingPage{}
	m.state = stateRoot
	return p, nil
}

func (m *machine) inRevision(ev Event) error {
	switch ev.Kind {
	case EventStart:
		switch ev.Name {
		case "format":
			return m.enterLeaf(ev, leafFormat, m.rev.format != nil)
		case "model":
			return m.enterLeaf(ev, leafModel, m.rev.model != nil)
		case "text":
			return m.enterLeaf(ev, leafText, m.rev.hasText)
		default:
			m.skip(stateRevision)
		}
	case EventEnd:
		if ev.Name != "revision" {
			return errMismatch(ev, "</%s> inside <revision>", ev.Name)
		}
		if !m.rev.hasText {
			return errMissing("text", "revision", ev.Pos)
		}
		m.page.format = m.rev.format
		m.page.model = m.rev.model
		m.page.text = m.rev.text
		m.rev = pendingRevision{}
		m.state = statePage
	case EventEOF:
		return newError(UnexpectedEOF, ev, errors.New("input ended inside <revision>"))
	}
	return nil
}

func (m *machine) enterLeaf(ev Event, l leaf, seen bool) error {
	if seen {
		return errMismatch(ev, "repeated <%s> element", l)
	}
	m.leaf = l
	m.buf = m.buf[:0]
	m.state = stateLeaf
	return nil
}

func (m *machine) inLeaf(ev Event) error {
	switch ev.Kind {
	case EventText:
		var err error
		if m.buf, err = appendUnescaped(m.buf, ev.Data); err != nil {
			return newError(MalformedXML, Event{Name: m.leaf.String(), Pos: ev.Pos}, err)
		}
	case EventCDATA:
		m.buf = append(m.buf, ev.Data...)
	case EventStart:
		return errMismatch(ev, "element <%s> inside <%s>", ev.Name, m.leaf)
	case EventEnd:
		if ev.Name != m.leaf.String() {
			return errMismatch(ev, "</%s> closes <%s>", ev.Name, m.leaf)
		}
		return m.finishLeaf(ev)
	case EventEOF:
		return newError(UnexpectedEOF, Event{Name: m.leaf.String(), Pos: ev.Pos},
			errors.Errorf("input ended inside <%s>", m.leaf))
	}
	return nil
}

func (m *machine) finishLeaf(ev Event) error {
	value := string(m.buf)
	switch m.leaf {
	case leafTitle:
		m.page.title, m.page.hasTitle = value, true
	case leafNS:
		code, err := strconv.Atoi(string(bytes.TrimSpace(m.buf)))
		if err != nil {
			return newError(MalformedXML, ev, errors.Wrap(err, "namespace code"))
		}
		m.page.ns, m.page.hasNS = NamespaceFromCode(code), true
	case leafFormat:
		m.rev.format = &value
	case leafModel:
		m.rev.model = &value
	case leafText:
		m.rev.text, m.rev.hasText = value, true
	}
	// Don't pin a large page body between leaves.
	if cap(m.buf) > maxRetainedBuffer {
		m.buf = nil
	}
	m.state = m.leaf.owner()
	return nil
}

const maxRetainedBuffer = 64 * 1024

func (m *machine) skip(ret state) {
	m.depth = 1
	m.ret = ret
	m.state = stateSkip
}

func (m *machine) inSkip(ev Event) error {
	switch ev.Kind {
	case EventStart:
		m.depth++
	case EventEnd:
		m.depth--
		if m.depth == 0 {
			m.state = m.ret
		}
	case EventEOF:
		return newError(UnexpectedEOF, ev, errors.New("input ended inside skipped element"))
	}
	return nil
}

func isSpace(b []byte) bool {
	return len(bytes.TrimSpace(b)) == 0
}
