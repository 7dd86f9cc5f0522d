package mwdump

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// An IndexEntry is an individual page from a multistream index.
type IndexEntry struct {
	// StreamOffset is the byte offset of the bzip2 stream holding the
	// page within the data file.
	StreamOffset int64
	PageID       uint64
	Title        string
}

func (i IndexEntry) String() string {
	return fmt.Sprintf("%v:%v:%v", i.StreamOffset, i.PageID, i.Title)
}

// An IndexReader reads a multistream index, one
// "offset:pageid:title" line at a time.
type IndexReader struct {
	s          *bufio.Scanner
	line       int
	base       int64
	prevOffset int64
}

// NewIndexReader gets an index reader. r must already be
// decompressed.
func NewIndexReader(r io.Reader) *IndexReader {
	return &IndexReader{s: bufio.NewScanner(r)}
}

// Next gets the next entry from the index stream.
//
// Old indexes wrote offsets as 32 bit integers. Offsets only ever
// grow, so a decrease is taken as a wrap and corrected.
func (ir *IndexReader) Next() (IndexEntry, error) {
	if !ir.s.Scan() {
		err := ir.s.Err()
		if err == nil {
			err = io.EOF
		}
		return IndexEntry{}, err
	}
	ir.line++

	parts := strings.SplitN(ir.s.Text(), ":", 3)
	if len(parts) != 3 {
		return IndexEntry{}, errors.Errorf("index line %d: want offset:pageid:title", ir.line)
	}
	offset, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return IndexEntry{}, errors.Wrapf(err, "index line %d: offset", ir.line)
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return IndexEntry{}, errors.Wrapf(err, "index line %d: page id", ir.line)
	}
	if offset < ir.prevOffset {
		ir.base += 1 << 32
	}
	ir.prevOffset = offset

	return IndexEntry{
		StreamOffset: offset + ir.base,
		PageID:       id,
		Title:        parts[2],
	}, nil
}

// IndexSummaryReader gets offsets and page counts from an index.
//
// If you don't want to know the individual pages, just how many and
// where, this is for you.
type IndexSummaryReader struct {
	index      *IndexReader
	prevOffset int64
	count      int
}

// NewIndexSummaryReader gets a new IndexSummaryReader from the given
// stream of index lines.
func NewIndexSummaryReader(r io.Reader) (*IndexSummaryReader, error) {
	rv := &IndexSummaryReader{index: NewIndexReader(r)}
	first, err := rv.index.Next()
	if err != nil {
		return nil, err
	}
	rv.prevOffset = first.StreamOffset
	rv.count = 1
	return rv, nil
}

// Next gets the next offset and count from the index summary reader.
//
// Note that the last chunk comes back with io.EOF as the error, but a
// valid offset and count. Calls after that return 0, 0, io.EOF.
func (isr *IndexSummaryReader) Next() (offset int64, count int, err error) {
	for {
		e, err := isr.index.Next()
		if err != nil {
			offset, count = isr.prevOffset, isr.count
			isr.prevOffset, isr.count = 0, 0
			return offset, count, err
		}

		if e.StreamOffset != isr.prevOffset {
			offset, count = isr.prevOffset, isr.count
			isr.prevOffset, isr.count = e.StreamOffset, 1
			return offset, count, nil
		}
		isr.count++
	}
}
