package mwdump

import (
	"compress/bzip2"
	"context"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type indexChunk struct {
	offset int64
	count  int
}

// IndexedParser reads a multistream dump with the help of its index,
// decoding several bzip2 streams at once.
//
// Pages come out in the order workers finish them, not in dump order.
type IndexedParser struct {
	chunks  chan indexChunk
	entries chan *Page
	cancel  context.CancelFunc

	// err is written before entries is closed.
	err  error
	done bool
}

// NewIndexedParser gets a multistream dump parser. indexfn is the
// bzip2 compressed index and datafn the multistream data file.
//
// Cancel ctx, or call Close, to stop the workers early.
func NewIndexedParser(ctx context.Context, indexfn, datafn string,
	numWorkers int, opts ...Option) (*IndexedParser, error) {

	if numWorkers < 1 {
		numWorkers = 1
	}
	// Fail early on unreadable files rather than from inside a worker.
	for _, fn := range []string{indexfn, datafn} {
		f, err := os.Open(fn)
		if err != nil {
			return nil, err
		}
		f.Close()
	}

	ctx, cancel := context.WithCancel(ctx)
	p := &IndexedParser{
		chunks:  make(chan indexChunk, 1000),
		entries: make(chan *Page, 1000),
		cancel:  cancel,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.readIndex(ctx, indexfn) })
	for i := 0; i < numWorkers; i++ {
		g.Go(func() error { return p.work(ctx, datafn, opts) })
	}

	go func() {
		err := g.Wait()
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		p.err = err
		close(p.entries)
	}()

	return p, nil
}

func (p *IndexedParser) readIndex(ctx context.Context, indexfn string) error {
	defer close(p.chunks)

	f, err := os.Open(indexfn)
	if err != nil {
		return err
	}
	defer f.Close()

	isr, err := NewIndexSummaryReader(bzip2.NewReader(f))
	if err != nil {
		return errors.Wrapf(err, "reading %v", indexfn)
	}
	for {
		offset, count, err := isr.Next()
		if err != nil && err != io.EOF {
			return errors.Wrapf(err, "reading %v", indexfn)
		}
		if count > 0 {
			select {
			case p.chunks <- indexChunk{offset, count}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err == io.EOF {
			return nil
		}
	}
}

func (p *IndexedParser) work(ctx context.Context, datafn string, opts []Option) error {
	f, err := os.Open(datafn)
	if err != nil {
		return err
	}
	defer f.Close()

	for chunk := range p.chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := f.Seek(chunk.offset, io.SeekStart); err != nil {
			return errors.Wrapf(err, "seeking to stream at %d", chunk.offset)
		}
		glog.V(2).Infof("Reading %d pages from stream at %d", chunk.count, chunk.offset)

		fp := newFragmentParser(bzip2.NewReader(f), opts...)
		for i := 0; i < chunk.count; i++ {
			page, err := fp.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				return errors.Wrapf(err, "stream at %d", chunk.offset)
			}
			select {
			case p.entries <- page:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// Next gets the next page. The first worker error is returned once.
func (p *IndexedParser) Next() (*Page, error) {
	if p.done {
		return nil, io.EOF
	}
	page, ok := <-p.entries
	if ok {
		return page, nil
	}
	p.done = true
	if p.err != nil {
		return nil, p.err
	}
	return nil, io.EOF
}

// Close stops the workers and drains what they already produced.
func (p *IndexedParser) Close() error {
	p.cancel()
	for range p.entries {
	}
	p.done = true
	return nil
}
