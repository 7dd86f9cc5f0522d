// Package pump feeds pages from a dump parser to concurrent handlers
// and reports progress along the way.
package pump

import (
	"compress/bzip2"
	"context"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"golang.org/x/sync/errgroup"

	"github.com/dustin/go-mwdump"
)

// Handler processes one page. A returned error is counted and logged
// but does not stop the pump; return a *Fatal to stop it.
type Handler func(ctx context.Context, p *mwdump.Page) error

// Fatal wraps a handler error that should stop the whole run.
type Fatal struct{ Err error }

func (f *Fatal) Error() string { return f.Err.Error() }
func (f *Fatal) Unwrap() error { return f.Err }

// Options tune a run.
type Options struct {
	// Workers is the number of concurrent handlers.
	Workers int
	// ReportEvery logs progress after this many pages.
	ReportEvery int64
	// Registry receives the pump meters. Nil means
	// metrics.DefaultRegistry.
	Registry metrics.Registry
}

// Summary describes a finished run.
type Summary struct {
	Pages    int64
	Failed   int64
	Duration time.Duration
	// Err is the parser's terminal error, nil on a clean end of input.
	Err error
}

func (s Summary) String() string {
	return humanize.Comma(s.Pages) + " pages (" + humanize.Comma(s.Failed) +
		" failed) in " + s.Duration.Round(time.Millisecond).String()
}

// Run pulls every page out of p and hands it to h.
//
// The returned error is a Fatal from a handler or ctx's error. A
// parser error ends the run and is reported in Summary.Err.
func Run(ctx context.Context, p mwdump.Parser, h Handler, opts Options) (Summary, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.ReportEvery < 1 {
		opts.ReportEvery = 1000
	}
	reg := opts.Registry
	if reg == nil {
		reg = metrics.DefaultRegistry
	}
	parsed := metrics.GetOrRegisterMeter("pages.parsed", reg)
	failed := metrics.GetOrRegisterCounter("pages.failed", reg)

	var nfailed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	ch := make(chan *mwdump.Page, 1000)

	for i := 0; i < opts.Workers; i++ {
		g.Go(func() error {
			for page := range ch {
				err := h(ctx, page)
				if err == nil {
					continue
				}
				var fatal *Fatal
				if errors.As(err, &fatal) {
					return fatal
				}
				failed.Inc(1)
				nfailed.Add(1)
				glog.Warningf("Error handling %q: %v", page.Title, err)
			}
			return nil
		})
	}

	sum := Summary{}
	start := time.Now()
	g.Go(func() error {
		defer close(ch)
		for {
			page, err := p.Next()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				sum.Err = err
				return nil
			}
			select {
			case ch <- page:
			case <-ctx.Done():
				return ctx.Err()
			}
			sum.Pages++
			parsed.Mark(1)
			if sum.Pages%opts.ReportEvery == 0 {
				glog.Infof("Processed %s pages total (%.2f/s)",
					humanize.Comma(sum.Pages), parsed.Rate1())
			}
		}
	})

	err := g.Wait()
	sum.Failed = nfailed.Load()
	sum.Duration = time.Since(start)
	return sum, err
}

// Open opens a dump file, decompressing it if the name ends in .bz2.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".bz2") {
		return f, nil
	}
	return struct {
		io.Reader
		io.Closer
	}{bzip2.NewReader(f), f}, nil
}
