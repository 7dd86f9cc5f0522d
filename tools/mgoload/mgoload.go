// Load a wikipedia dump into MongoDB.
package main

import (
	"context"
	"flag"
	"runtime"

	"github.com/golang/glog"
	"gopkg.in/mgo.v2"

	"github.com/dustin/go-mwdump"
	"github.com/dustin/go-mwdump/internal/pump"
)

var proc = flag.Int("proc", 8, "How many page workers to run.")
var file = flag.String("file", "", "The dump file (.xml or .xml.bz2).")
var cpus = flag.Int("cpus", runtime.NumCPU(), "Number of CPUs to use.")
var dburl = flag.String("dburl", "localhost", "The dburl(s). I.e. localhost.")
var collection = flag.String("collection", "articles", "The collection to store dumped pages in.")
var dbname = flag.String("dbname", "wp", "The database name to use.")

// Titles are only unique within a namespace.
var titleIndex = mgo.Index{
	Key:        []string{"ns", "title"},
	Unique:     true,
	DropDups:   true,
	Background: true,
}

type article struct {
	Title  string `bson:"title"`
	NS     int    `bson:"ns"`
	Format string `bson:"format,omitempty"`
	Model  string `bson:"model,omitempty"`
	Text   string `bson:"text,omitempty"`
}

func makeArticle(p *mwdump.Page) article {
	a := article{Title: p.Title, NS: p.Namespace.Code(), Text: p.Text}
	if p.Format != nil {
		a.Format = *p.Format
	}
	if p.Model != nil {
		a.Model = *p.Model
	}
	return a
}

func insertPage(session *mgo.Session) pump.Handler {
	return func(_ context.Context, p *mwdump.Page) error {
		s := session.Copy()
		defer s.Close()
		a := makeArticle(p)
		err := s.DB(*dbname).C(*collection).Insert(&a)
		if mgo.IsDup(err) {
			glog.V(1).Infof("Duplicate Key Error inserting %s", a.Title)
			return nil
		}
		return err
	}
}

func main() {
	flag.Parse()
	if *file == "" {
		glog.Fatal("You must supply a dump file.")
	}
	runtime.GOMAXPROCS(*cpus)

	session, err := mgo.Dial(*dburl)
	if err != nil {
		glog.Fatalf("Error connecting to %v: %v", *dburl, err)
	}
	defer session.Close()

	f, err := pump.Open(*file)
	if err != nil {
		glog.Fatalf("Error opening file: %v", err)
	}
	defer f.Close()

	err = session.DB(*dbname).C(*collection).EnsureIndex(titleIndex)
	if err != nil {
		glog.Fatalf("Error creating title index: %v", err)
	}

	sum, err := pump.Run(context.Background(), mwdump.NewParser(f),
		insertPage(session), pump.Options{Workers: *proc, ReportEvery: 10000})
	if err != nil {
		glog.Fatalf("Error loading: %v", err)
	}
	glog.Infof("Ended with err %v after %v", sum.Err, sum)
	glog.Flush()
}
