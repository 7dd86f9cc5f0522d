// Load a wikipedia dump into ElasticSearch
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-elasticsearch"
	"github.com/golang/glog"

	"github.com/dustin/go-mwdump"
	"github.com/dustin/go-mwdump/internal/pump"
)

var index = flag.String("index", "wikipedia", "ElasticSearch index")
var workers = flag.Int("workers", 4, "Number of bulk loaders")
var batch = flag.Int("batch", 1000, "Updates per bulk request")

func newInstruction(p *mwdump.Page) elasticsearch.UpdateInstruction {
	body := map[string]interface{}{
		"title":   p.Title,
		"ns":      p.Namespace.Code(),
		"text":    p.Text,
		"article": p.IsArticle(),
	}
	if p.Model != nil {
		body["model"] = *p.Model
	}
	return elasticsearch.UpdateInstruction{
		Id:    strconv.Itoa(p.Namespace.Code()) + ":" + p.Title,
		Index: *index,
		Type:  "page",
		Body:  body,
	}
}

func main() {
	flag.Parse()
	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [opts] wikipedia.xml.bz2 http://es:9200/\n", os.Args[0])
		os.Exit(1)
	}
	filename, esurl := flag.Arg(0), flag.Arg(1)

	f, err := pump.Open(filename)
	if err != nil {
		glog.Fatalf("Error opening file: %v", err)
	}
	defer f.Close()

	// A bulk loader is not shared between goroutines, so handlers
	// borrow one from the pool for each page.
	es := elasticsearch.ElasticSearch{URL: esurl}
	loaders := make(chan func(*mwdump.Page), *workers)
	var quits []func()
	for i := 0; i < *workers; i++ {
		bulk := es.Bulk()
		pending := 0
		loaders <- func(p *mwdump.Page) {
			ui := newInstruction(p)
			bulk.Update(&ui)
			pending++
			if pending >= *batch {
				bulk.SendBatch()
				pending = 0
			}
		}
		quits = append(quits, func() { bulk.Quit() })
	}

	handle := func(_ context.Context, p *mwdump.Page) error {
		load := <-loaders
		load(p)
		loaders <- load
		return nil
	}

	sum, err := pump.Run(context.Background(), mwdump.NewParser(f), handle,
		pump.Options{Workers: *workers})
	for _, quit := range quits {
		quit()
	}
	if err != nil {
		glog.Fatalf("Error loading: %v", err)
	}
	glog.Infof("Ended with err %v after %v", sum.Err, sum)
	glog.Flush()
}
