package mwdump

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendUnescaped(t *testing.T) {
	for _, tc := range []struct {
		in, want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"T&amp;T", "T&T"},
		{"&lt;&gt;&quot;&apos;&amp;", `<>"'&`},
		{"&#65;&#x42;&#x63;", "ABc"},
		{"&#x1F600;", "\U0001F600"},
		{"&#10;&#9;", "\n\t"},
		{"&amp;amp;", "&amp;"},
	} {
		got, err := appendUnescaped(nil, []byte(tc.in))
		if assert.NoError(t, err, tc.in) {
			assert.Equal(t, tc.want, string(got), tc.in)
		}
	}
}

func TestAppendUnescapedKeepsPrefix(t *testing.T) {
	got, err := appendUnescaped([]byte("x"), []byte("&lt;y"))
	assert.NoError(t, err)
	assert.Equal(t, "x<y", string(got))
}

func TestAppendUnescapedErrors(t *testing.T) {
	for _, in := range []string{
		"AT&T",
		"&nbsp;",
		"&;",
		"&#;",
		"&#x;",
		"&#xZZ;",
		"&#0;",
		"&#xD800;",
		"&#x110000;",
		"&#99999999999;",
	} {
		_, err := appendUnescaped(nil, []byte(in))
		assert.Error(t, err, in)
	}
}
