// Print a multistream index with 64 bit stream offsets.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"

	"github.com/dustin/go-mwdump"
	"github.com/dustin/go-mwdump/internal/pump"
)

// copyIndex rewrites every entry of the index in r to w, one per line.
func copyIndex(w io.Writer, r io.Reader) error {
	ir := mwdump.NewIndexReader(r)
	for {
		e, err := ir.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, e.String()); err != nil {
			return err
		}
	}
}

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [opts] wikipedia-index.txt[.bz2]\n", os.Args[0])
		os.Exit(1)
	}

	r, err := pump.Open(flag.Arg(0))
	if err != nil {
		glog.Fatalf("Error opening %v: %v", flag.Arg(0), err)
	}
	defer r.Close()

	w := bufio.NewWriter(os.Stdout)
	err = copyIndex(w, r)
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		r.Close()
		glog.Fatalf("Error reading stream:  %v", err)
	}
}
