package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dustin/go-mwdump"
)

func TestMakeArticle(t *testing.T) {
	model := mwdump.ModelWikitext
	a := makeArticle(&mwdump.Page{
		Title:     "Anarchism",
		Namespace: mwdump.Main,
		Model:     &model,
		Text:      "body",
	})
	assert.Equal(t, article{Title: "Anarchism", NS: 0, Model: "wikitext", Text: "body"}, a)
}
