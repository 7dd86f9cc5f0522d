package mwdump

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func start(name string) Event { return Event{Kind: EventStart, Name: name} }
func end(name string) Event   { return Event{Kind: EventEnd, Name: name} }
func text(s string) Event     { return Event{Kind: EventText, Data: []byte(s)} }
func cdata(s string) Event    { return Event{Kind: EventCDATA, Data: []byte(s)} }

var eof = Event{Kind: EventEOF}

func elem(name string, body ...Event) []Event {
	evs := []Event{start(name)}
	evs = append(evs, body...)
	return append(evs, end(name))
}

func leafElem(name, value string) []Event {
	return elem(name, text(value))
}

func seq(parts ...[]Event) []Event {
	var rv []Event
	for _, p := range parts {
		rv = append(rv, p...)
	}
	return rv
}

func one(ev Event) []Event { return []Event{ev} }

// eventSlice is an EventSource replaying a fixed list of events. It
// reports io.EOF once the list is exhausted and remembers how far it
// was read.
type eventSlice struct {
	evs  []Event
	read int
	err  error
}

func (s *eventSlice) NextEvent() (Event, error) {
	if s.read >= len(s.evs) {
		if s.err != nil {
			return Event{}, s.err
		}
		return Event{}, io.EOF
	}
	ev := s.evs[s.read]
	s.read++
	return ev, nil
}

func simplePage(title, ns, body string) []Event {
	return elem("page", seq(
		leafElem("title", title),
		leafElem("ns", ns),
		elem("revision", seq(
			leafElem("model", ModelWikitext),
			leafElem("format", FormatWikitext),
			leafElem("text", body),
		)...),
	)...)
}

func doc(pages ...[]Event) []Event {
	return elem("mediawiki", seq(pages...)...)
}

// drain pulls every page, stopping at the first error.
func drain(t *testing.T, p Parser) ([]*Page, error) {
	t.Helper()
	var pages []*Page
	for {
		page, err := p.Next()
		if err == io.EOF {
			return pages, nil
		}
		if err != nil {
			return pages, err
		}
		pages = append(pages, page)
	}
}

func strp(s string) *string { return &s }

func TestMachinePages(t *testing.T) {
	src := &eventSlice{evs: doc(
		simplePage("alpha", "0", "first"),
		simplePage("beta", "4", "second"),
		simplePage("gamma", "14", "third"),
	)}
	pages, err := drain(t, NewEventParser(src))
	require.NoError(t, err)
	require.Len(t, pages, 3)

	assert.Equal(t, &Page{
		Title:     "alpha",
		Namespace: Main,
		Format:    strp(FormatWikitext),
		Model:     strp(ModelWikitext),
		Text:      "first",
	}, pages[0])
	assert.Equal(t, "beta", pages[1].Title)
	assert.Equal(t, Project, pages[1].Namespace)
	assert.Equal(t, "gamma", pages[2].Title)
	assert.Equal(t, Category, pages[2].Namespace)
	assert.True(t, pages[0].IsArticle())
}

func TestMachineOptionalFields(t *testing.T) {
	src := &eventSlice{evs: doc(
		elem("page", seq(
			leafElem("ns", "0"),
			leafElem("title", "bare"),
			elem("revision", leafElem("text", "body")...),
		)...),
		elem("page", seq(
			leafElem("title", "empty"),
			leafElem("ns", "0"),
			elem("revision", seq(
				elem("format"),
				elem("model"),
				elem("text"),
			)...),
		)...),
	)}
	pages, err := drain(t, NewEventParser(src))
	require.NoError(t, err)
	require.Len(t, pages, 2)

	assert.Nil(t, pages[0].Format)
	assert.Nil(t, pages[0].Model)
	assert.False(t, pages[0].IsArticle())

	// Present but empty is not the same as absent.
	require.NotNil(t, pages[1].Format)
	require.NotNil(t, pages[1].Model)
	assert.Equal(t, "", *pages[1].Format)
	assert.Equal(t, "", *pages[1].Model)
	assert.Equal(t, "", pages[1].Text)
}

func TestMachineSkipsUnknownElements(t *testing.T) {
	junk := elem("contributor", seq(
		leafElem("username", "Example &bogus; not decoded"),
		elem("id", text("1"), start("deeper"), cdata("x"), end("deeper")),
	)...)

	plain := doc(simplePage("alpha", "0", "body"))
	noisy := seq(
		one(start("mediawiki")),
		elem("siteinfo", seq(
			leafElem("sitename", "Wikipedia"),
			elem("namespaces", elem("namespace", text("Talk"))...),
		)...),
		elem("page", seq(
			junk,
			leafElem("title", "alpha"),
			elem("redirect"),
			leafElem("ns", "0"),
			leafElem("id", "10"),
			elem("revision", seq(
				leafElem("id", "100"),
				junk,
				leafElem("model", ModelWikitext),
				elem("minor"),
				leafElem("format", FormatWikitext),
				leafElem("text", "body"),
				leafElem("sha1", "x"),
			)...),
			junk,
		)...),
		elem("logitem", junk...),
		one(end("mediawiki")),
	)

	want, err := drain(t, NewEventParser(&eventSlice{evs: plain}))
	require.NoError(t, err)
	got, err := drain(t, NewEventParser(&eventSlice{evs: noisy}))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMachineLeafText(t *testing.T) {
	src := &eventSlice{evs: doc(elem("page", seq(
		elem("title", text("T&amp;T"), text(" &#x41;&#66;"), cdata(" &amp;")),
		leafElem("ns", " -1\n"),
		elem("revision", elem("text", text("&lt;b&gt; &quot;q&quot; &apos;a&apos;"))...),
	)...))}
	pages, err := drain(t, NewEventParser(src))
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "T&T AB &amp;", pages[0].Title)
	assert.Equal(t, Special, pages[0].Namespace)
	assert.Equal(t, `<b> "q" 'a'`, pages[0].Text)
}

func TestMachineNamespaces(t *testing.T) {
	for _, tc := range []struct {
		code   string
		want   Namespace
		custom bool
	}{
		{"0", Main, false},
		{"-1", Special, false},
		{"-2", Media, false},
		{"15", CategoryTalk, false},
		{"828", Module, false},
		{"6742", Namespace(6742), true},
	} {
		t.Run(tc.code, func(t *testing.T) {
			src := &eventSlice{evs: doc(simplePage("x", tc.code, "y"))}
			pages, err := drain(t, NewEventParser(src))
			require.NoError(t, err)
			require.Len(t, pages, 1)
			assert.Equal(t, tc.want, pages[0].Namespace)
			assert.Equal(t, tc.custom, pages[0].Namespace.Custom())
		})
	}
}

func TestMachineEndOfInputInRoot(t *testing.T) {
	// A dump cut off between pages still yields what it has.
	evs := seq(one(start("mediawiki")), simplePage("a", "0", "b"), one(eof))
	pages, err := drain(t, NewEventParser(&eventSlice{evs: evs}))
	require.NoError(t, err)
	assert.Len(t, pages, 1)
}

func TestMachineStopsAtRootEnd(t *testing.T) {
	evs := seq(doc(simplePage("a", "0", "b")), one(start("garbage")))
	src := &eventSlice{evs: evs}
	pages, err := drain(t, NewEventParser(src))
	require.NoError(t, err)
	assert.Len(t, pages, 1)
	assert.Equal(t, len(evs)-1, src.read, "read past </mediawiki>")
}

func TestFragmentMachine(t *testing.T) {
	src := &eventSlice{evs: seq(
		one(text("\n  ")),
		simplePage("a", "0", "b"),
		simplePage("c", "1", "d"),
	)}
	p := &StreamParser{src: src, m: newFragmentMachine()}
	pages, err := drain(t, p)
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, Talk, pages[1].Namespace)
}

func TestMachineErrors(t *testing.T) {
	revision := elem("revision", leafElem("text", "x")...)
	for _, tc := range []struct {
		name  string
		evs   []Event
		kind  ErrorKind
		field string
		pages int
	}{
		{
			name: "duplicate revision",
			evs: doc(
				simplePage("ok", "0", "fine"),
				elem("page", seq(leafElem("title", "t"), leafElem("ns", "0"), revision, revision)...),
				simplePage("never", "0", "reached"),
			),
			kind:  DuplicateRevision,
			pages: 1,
		},
		{
			name:  "missing title",
			evs:   doc(elem("page", seq(leafElem("ns", "0"), revision)...)),
			kind:  MissingField,
			field: "title",
		},
		{
			name:  "empty title",
			evs:   doc(elem("page", seq(elem("title"), leafElem("ns", "0"), revision)...)),
			kind:  MissingField,
			field: "title",
		},
		{
			name:  "missing ns",
			evs:   doc(elem("page", seq(leafElem("title", "t"), revision)...)),
			kind:  MissingField,
			field: "ns",
		},
		{
			name:  "missing revision",
			evs:   doc(elem("page", seq(leafElem("title", "t"), leafElem("ns", "0"))...)),
			kind:  MissingField,
			field: "revision",
		},
		{
			name: "missing text",
			evs: doc(elem("page", seq(leafElem("title", "t"), leafElem("ns", "0"),
				elem("revision", leafElem("model", "wikitext")...))...)),
			kind:  MissingField,
			field: "text",
		},
		{
			name: "eof in page",
			evs:  seq(one(start("mediawiki")), one(start("page")), leafElem("title", "t"), one(eof)),
			kind: UnexpectedEOF,
		},
		{
			name: "eof in revision",
			evs:  seq(one(start("mediawiki")), one(start("page")), one(start("revision"))),
			kind: UnexpectedEOF,
		},
		{
			name: "eof in leaf",
			evs:  seq(one(start("mediawiki")), one(start("page")), one(start("title")), one(text("t"))),
			kind: UnexpectedEOF,
		},
		{
			name: "eof in skipped element",
			evs:  seq(one(start("mediawiki")), one(start("siteinfo")), one(start("sitename"))),
			kind: UnexpectedEOF,
		},
		{
			name: "wrong root",
			evs:  elem("feed"),
			kind: StructuralMismatch,
		},
		{
			name: "empty input",
			kind: StructuralMismatch,
		},
		{
			name: "text before root",
			evs:  seq(one(text("hello")), doc()),
			kind: StructuralMismatch,
		},
		{
			name: "stray end tag",
			evs:  seq(one(start("mediawiki")), one(end("page"))),
			kind: StructuralMismatch,
		},
		{
			name: "element inside title",
			evs:  doc(elem("page", elem("title", start("b"))...)),
			kind: StructuralMismatch,
		},
		{
			name: "mismatched leaf end",
			evs:  seq(one(start("mediawiki")), one(start("page")), one(start("title")), one(end("ns"))),
			kind: StructuralMismatch,
		},
		{
			name: "wrong end inside page",
			evs:  seq(one(start("mediawiki")), one(start("page")), one(end("revision"))),
			kind: StructuralMismatch,
		},
		{
			name: "wrong end inside revision",
			evs:  seq(one(start("mediawiki")), one(start("page")), one(start("revision")), one(end("page"))),
			kind: StructuralMismatch,
		},
		{
			name: "repeated title",
			evs:  doc(elem("page", seq(leafElem("title", "a"), leafElem("title", "b"))...)),
			kind: StructuralMismatch,
		},
		{
			name: "non-integer ns",
			evs:  doc(elem("page", leafElem("ns", "zero")...)),
			kind: MalformedXML,
		},
		{
			name: "unknown entity",
			evs:  doc(elem("page", leafElem("title", "&nbsp;")...)),
			kind: MalformedXML,
		},
		{
			name: "unterminated entity",
			evs:  doc(elem("page", leafElem("title", "AT&T")...)),
			kind: MalformedXML,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			src := &eventSlice{evs: tc.evs}
			p := NewEventParser(src)
			pages, err := drain(t, p)
			assert.Len(t, pages, tc.pages)
			require.Error(t, err)

			var perr *Error
			require.True(t, errors.As(err, &perr), "%T is not an *Error", err)
			assert.Equal(t, tc.kind, perr.Kind, "%v", err)
			assert.Equal(t, tc.field, perr.Field)
			assert.True(t, errors.Is(err, &Error{Kind: tc.kind}))

			// The error is terminal and nothing more is read.
			read := src.read
			for i := 0; i < 3; i++ {
				page, err := p.Next()
				assert.Nil(t, page)
				assert.Equal(t, io.EOF, err)
			}
			assert.Equal(t, read, src.read)
		})
	}
}

func TestMachineTokenizerError(t *testing.T) {
	boom := errors.New("boom")
	src := &eventSlice{
		evs: seq(one(start("mediawiki")), simplePage("a", "0", "b"), one(start("page"))),
		err: boom,
	}
	p := NewEventParser(src)

	page, err := p.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", page.Title)

	_, err = p.Next()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedXML))
	assert.True(t, errors.Is(err, boom))

	_, err = p.Next()
	assert.Equal(t, io.EOF, err)
}
