package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dustin/go-mwdump"
)

func TestNewInstruction(t *testing.T) {
	format, model := mwdump.FormatWikitext, mwdump.ModelWikitext
	ui := newInstruction(&mwdump.Page{
		Title:     "Talk:Anarchism",
		Namespace: mwdump.Talk,
		Format:    &format,
		Model:     &model,
		Text:      "Discussion",
	})
	assert.Equal(t, "1:Talk:Anarchism", ui.Id)
	assert.Equal(t, "wikipedia", ui.Index)
	assert.Equal(t, "page", ui.Type)
	assert.Equal(t, map[string]interface{}{
		"title":   "Talk:Anarchism",
		"ns":      1,
		"text":    "Discussion",
		"article": false,
		"model":   "wikitext",
	}, ui.Body)
}
