package mwdump

// Format and model of ordinary wikitext pages.
const (
	FormatWikitext = "text/x-wiki"
	ModelWikitext  = "wikitext"
)

// A Page is one wiki page with its single revision.
type Page struct {
	Title     string
	Namespace Namespace
	// Format is the content MIME type from <format>, nil if the dump
	// doesn't carry one. Older export schemas don't.
	Format *string
	// Model is the content model from <model>, nil if absent.
	Model *string
	// Text is the raw revision body. It is not interpreted.
	Text string
}

// IsArticle reports whether p is an ordinary article: main namespace
// with wikitext content.
func (p *Page) IsArticle() bool {
	return p.Namespace == Main &&
		p.Format != nil && *p.Format == FormatWikitext &&
		p.Model != nil && *p.Model == ModelWikitext
}
