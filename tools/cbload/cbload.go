// Load a wikipedia dump into CouchBase
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/couchbase/go-couchbase"
	"github.com/golang/glog"

	"github.com/dustin/go-mwdump"
	"github.com/dustin/go-mwdump/internal/pump"
)

var numWorkers = flag.Int("numWorkers", 8, "Number of page workers")

func init() {
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"Usage:\n  %s [opts] wikipedia.xml.bz2\n  %s [opts] wikipedia.index.bz2 wikipedia.xml.bz2\n",
		os.Args[0], os.Args[0])
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

type Article struct {
	Title     string `json:"title"`
	Namespace int    `json:"ns"`
	Format    string `json:"format,omitempty"`
	Model     string `json:"model,omitempty"`
	Text      string `json:"text"`
	Article   bool   `json:"article"`
}

func docKey(p *mwdump.Page) string {
	return strconv.Itoa(p.Namespace.Code()) + ":" + p.Title
}

func newArticle(p *mwdump.Page) Article {
	a := Article{
		Title:     p.Title,
		Namespace: p.Namespace.Code(),
		Text:      p.Text,
		Article:   p.IsArticle(),
	}
	if p.Format != nil {
		a.Format = *p.Format
	}
	if p.Model != nil {
		a.Model = *p.Model
	}
	return a
}

func storePage(db *couchbase.Bucket) pump.Handler {
	return func(_ context.Context, p *mwdump.Page) error {
		return db.Set(docKey(p), 0, newArticle(p))
	}
}

func main() {
	couchbaseServer := flag.String("couchbase", "http://localhost:8091/",
		"Couchbase URL")
	couchbaseBucket := flag.String("bucket", "default", "Couchbase bucket")
	procs := flag.Int("cpus", runtime.NumCPU(), "Number of CPUS to use")
	flag.Parse()

	runtime.GOMAXPROCS(*procs)

	db, err := couchbase.GetBucket(*couchbaseServer,
		"default", *couchbaseBucket)
	if err != nil {
		glog.Fatalf("Error connecting to couchbase: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	var p mwdump.Parser
	switch flag.NArg() {
	case 1:
		f, err := pump.Open(flag.Arg(0))
		if err != nil {
			glog.Fatalf("Error opening file: %v", err)
		}
		defer f.Close()
		p = mwdump.NewParser(f)
	case 2:
		ip, err := mwdump.NewIndexedParser(ctx, flag.Arg(0), flag.Arg(1),
			runtime.GOMAXPROCS(0))
		if err != nil {
			glog.Fatalf("Error initializing multistream parser: %v", err)
		}
		defer ip.Close()
		p = ip
	default:
		usage()
	}

	sum, err := pump.Run(ctx, p, storePage(db), pump.Options{Workers: *numWorkers})
	if err != nil {
		glog.Fatalf("Error loading: %v", err)
	}
	glog.Infof("Ended with err %v after %v", sum.Err, sum)
	glog.Flush()
}
