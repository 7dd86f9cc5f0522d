// Sample program that walks a dump and counts pages by namespace.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"

	"github.com/dustin/go-mwdump"
	"github.com/dustin/go-mwdump/internal/pump"
)

type tally struct {
	mu       sync.Mutex
	byNS     map[mwdump.Namespace]int64
	articles int64
}

func (t *tally) count(_ context.Context, p *mwdump.Page) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byNS[p.Namespace]++
	if p.IsArticle() {
		t.articles++
	}
	return nil
}

func (t *tally) print() {
	nss := make([]mwdump.Namespace, 0, len(t.byNS))
	for ns := range t.byNS {
		nss = append(nss, ns)
	}
	sort.Slice(nss, func(i, j int) bool { return nss[i] < nss[j] })
	for _, ns := range nss {
		fmt.Printf("%6d %-22s %s\n", ns.Code(), ns, humanize.Comma(t.byNS[ns]))
	}
	fmt.Printf("ordinary articles: %s\n", humanize.Comma(t.articles))
}

func process(ctx context.Context, p mwdump.Parser, workers int) {
	t := &tally{byNS: map[mwdump.Namespace]int64{}}
	sum, err := pump.Run(ctx, p, t.count, pump.Options{Workers: workers})
	if err != nil {
		glog.Fatalf("Error traversing dump: %v", err)
	}
	glog.Infof("Ended after %v", sum)
	t.print()
	if sum.Err != nil {
		glog.Fatalf("Dump error after %s pages: %v", humanize.Comma(sum.Pages), sum.Err)
	}
}

// printSiteInfo reads the dump header from its own reader, leaving the
// page parser a fresh one.
func printSiteInfo(filename string) {
	f, err := pump.Open(filename)
	if err != nil {
		glog.Fatalf("Error opening file: %v", err)
	}
	defer f.Close()

	si, err := mwdump.ReadSiteInfo(f)
	if err != nil {
		glog.Warningf("Error reading site info: %v", err)
		return
	}
	fmt.Printf("%s (%s), %d namespaces\n", si.SiteName, si.Generator, len(si.Namespaces))
}

func processSingleStream(ctx context.Context, filename string, workers int, opts []mwdump.Option) {
	f, err := pump.Open(filename)
	if err != nil {
		glog.Fatalf("Error opening file: %v", err)
	}
	defer f.Close()

	process(ctx, mwdump.NewParser(f, opts...), workers)
}

func processMultiStream(ctx context.Context, idx, data string, workers int, opts []mwdump.Option) {
	p, err := mwdump.NewIndexedParser(ctx, idx, data, runtime.GOMAXPROCS(0), opts...)
	if err != nil {
		glog.Fatalf("Error initializing multistream parser: %v", err)
	}
	defer p.Close()
	process(ctx, p, workers)
}

func main() {
	var cpus, workers int
	var tokenizer string
	flag.IntVar(&workers, "workers", 8, "Number of page workers")
	flag.IntVar(&cpus, "cpus", runtime.GOMAXPROCS(0), "Number of CPUS to utilize")
	flag.StringVar(&tokenizer, "tokenizer", "std", "XML tokenizer: std or fast")
	flag.Parse()

	runtime.GOMAXPROCS(cpus)

	tok, ok := mwdump.ParseTokenizer(tokenizer)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown tokenizer %q\n", tokenizer)
		os.Exit(2)
	}
	opts := []mwdump.Option{mwdump.WithTokenizer(tok)}

	ctx := context.Background()
	switch flag.NArg() {
	case 1:
		printSiteInfo(flag.Arg(0))
		processSingleStream(ctx, flag.Arg(0), workers, opts)
	case 2:
		// The first stream of a multistream file holds the header.
		printSiteInfo(flag.Arg(1))
		processMultiStream(ctx, flag.Arg(0), flag.Arg(1), workers, opts)
	default:
		glog.Fatalf("Need either a single stream dump, or index and multi-stream")
	}
	glog.Flush()
}
