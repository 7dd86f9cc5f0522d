// Load a wikipedia dump into CouchDB
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-couch"
	"github.com/dustin/httputil"
	"github.com/golang/glog"

	"github.com/dustin/go-mwdump"
	"github.com/dustin/go-mwdump/internal/pump"
)

type Article struct {
	ID        string `json:"_id"`
	Rev       string `json:"_rev,omitempty"`
	Title     string `json:"title"`
	Namespace int    `json:"ns"`
	Format    string `json:"format,omitempty"`
	Model     string `json:"model,omitempty"`
	Text      string `json:"text"`
}

func escapeID(in string) string {
	return strings.Replace(strings.Replace(in, "/", "%2f", -1),
		"+", "%2b", -1)
}

func docID(p *mwdump.Page) string {
	return escapeID(strconv.Itoa(p.Namespace.Code()) + ":" + p.Title)
}

// docStore is the part of couch.Database the loader uses.
type docStore interface {
	Insert(d interface{}) (string, string, error)
	Retrieve(id string, d interface{}) error
	EditWith(d interface{}, id, rev string) (string, error)
}

// replace overwrites the stored copy of a with a.
func replace(db docStore, a *Article) error {
	glog.V(1).Infof("Resolving conflict on %s", a.ID)
	var prev Article
	if err := db.Retrieve(a.ID, &prev); err != nil {
		return err
	}
	if prev.Rev == "" {
		return fmt.Errorf("got no rev from %v", a.ID)
	}
	_, err := db.EditWith(a, a.ID, prev.Rev)
	return err
}

func storePage(db docStore) pump.Handler {
	return func(_ context.Context, p *mwdump.Page) error {
		a := Article{
			ID:        docID(p),
			Title:     p.Title,
			Namespace: p.Namespace.Code(),
			Text:      p.Text,
		}
		if p.Format != nil {
			a.Format = *p.Format
		}
		if p.Model != nil {
			a.Model = *p.Model
		}

		_, _, err := db.Insert(&a)
		if httputil.IsHTTPStatus(err, http.StatusConflict) {
			return replace(db, &a)
		}
		return err
	}
}

func main() {
	workers := flag.Int("workers", 20, "Number of page workers")
	flag.Parse()
	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [opts] http://couch:5984/db wikipedia.xml.bz2\n", os.Args[0])
		os.Exit(1)
	}
	dburl, file := flag.Arg(0), flag.Arg(1)

	db, err := couch.Connect(dburl)
	if err != nil {
		glog.Fatalf("Error connecting to couchdb: %v", err)
	}

	f, err := pump.Open(file)
	if err != nil {
		glog.Fatalf("Error opening file: %v", err)
	}
	defer f.Close()

	hf, err := pump.Open(file)
	if err != nil {
		glog.Fatalf("Error opening file: %v", err)
	}
	si, err := mwdump.ReadSiteInfo(hf)
	hf.Close()
	if err != nil {
		glog.Fatalf("Error reading site info: %v", err)
	}
	glog.Infof("Got site info:  %+v", si)

	sum, err := pump.Run(context.Background(), mwdump.NewParser(f),
		storePage(db), pump.Options{Workers: *workers})
	if err != nil {
		glog.Fatalf("Error loading: %v", err)
	}
	glog.Infof("Ended with err %v after %v", sum.Err, sum)
	glog.Flush()
}
