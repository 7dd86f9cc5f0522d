package mwdump

import (
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/pkg/errors"
)

// NamespaceInfo is a namespace as declared in a dump header.
type NamespaceInfo struct {
	Namespace Namespace
	// Case is the title case rule, usually "first-letter".
	Case string
	// Name is the localized prefix, empty for the main namespace.
	Name string
}

// SiteInfo describes the wiki a dump was taken from.
type SiteInfo struct {
	SiteName   string
	DBName     string
	Base       string
	Generator  string
	Case       string
	Namespaces []NamespaceInfo
}

var (
	xpSiteName   = xpath.MustCompile(`sitename`)
	xpDBName     = xpath.MustCompile(`dbname`)
	xpBase       = xpath.MustCompile(`base`)
	xpGenerator  = xpath.MustCompile(`generator`)
	xpCase       = xpath.MustCompile(`case`)
	xpNamespaces = xpath.MustCompile(`namespaces/namespace`)
)

// ReadSiteInfo reads the <siteinfo> header at the top of a dump.
//
// r is read past the header, so pages must be parsed from a fresh
// reader. A dump whose first element is not <siteinfo> is reported as
// MissingField.
func ReadSiteInfo(r io.Reader) (*SiteInfo, error) {
	sp, err := xmlquery.CreateStreamParser(r, `/mediawiki/*`)
	if err != nil {
		return nil, errors.Wrap(err, "siteinfo")
	}
	n, err := sp.Read()
	switch {
	case err == io.EOF:
		return nil, &Error{Kind: MissingField, Field: "siteinfo", Element: "mediawiki"}
	case err != nil:
		return nil, &Error{Kind: MalformedXML, Element: "siteinfo", Err: err}
	case n.Data != "siteinfo":
		return nil, &Error{Kind: MissingField, Field: "siteinfo", Element: "mediawiki",
			Err: errors.Errorf("first element is <%s>", n.Data)}
	}

	si := &SiteInfo{
		SiteName:  innerText(n, xpSiteName),
		DBName:    innerText(n, xpDBName),
		Base:      innerText(n, xpBase),
		Generator: innerText(n, xpGenerator),
		Case:      innerText(n, xpCase),
	}
	for _, ns := range xmlquery.QuerySelectorAll(n, xpNamespaces) {
		code, err := strconv.Atoi(strings.TrimSpace(ns.SelectAttr("key")))
		if err != nil {
			return nil, &Error{Kind: MalformedXML, Element: "namespace",
				Err: errors.Wrap(err, "namespace key")}
		}
		si.Namespaces = append(si.Namespaces, NamespaceInfo{
			Namespace: NamespaceFromCode(code),
			Case:      ns.SelectAttr("case"),
			Name:      ns.InnerText(),
		})
	}
	return si, nil
}

func innerText(n *xmlquery.Node, expr *xpath.Expr) string {
	if c := xmlquery.QuerySelector(n, expr); c != nil {
		return c.InnerText()
	}
	return ""
}
