package message

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		want      string
	}{
		{
			name:      "twenty chars drops one group",
			signature: "abcdEFGH+/IJ+/KLmn==",
			want:      "EFGH-_IJ+/KLmn=",
		},
		{
			name:      "sixteen chars kept whole",
			signature: "ABCDEFGHIJKLMNOP",
			want:      "ABCDEFGHIJKLMNOP",
		},
		{
			name:      "short signature",
			signature: "a+b/c=",
			want:      "a-b_c",
		},
		{
			name:      "seventeen chars leaves thirteen",
			signature: "0123456789abcdefg",
			want:      "456789abcdefg",
		},
		{
			name:      "long signature folds to the tail",
			signature: strings.Repeat("A", 72) + "wxyz+/12ab34==",
			want:      "wxyz-_12ab34=",
		},
		{
			name:      "empty",
			signature: "",
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.signature))
		})
	}
}

func TestLink(t *testing.T) {
	assert.Equal(t, "/message/EFGH-_IJ+/KLmn=", Link(DefaultLinkPrefix, "abcdEFGH+/IJ+/KLmn=="))
	assert.Equal(t, "", Link(DefaultLinkPrefix, ""))
	assert.Equal(t, "/m/abc", Link("/m/", "abc"))
}

func TestDecodeContent(t *testing.T) {
	c, err := DecodeContent(`{"type":1,"text":"Hello, world"}`)
	assert.NoError(t, err)
	assert.Equal(t, "Hello, world", c.Text)
	assert.Equal(t, 1, c.Type)

	_, err = DecodeContent("")
	assert.Error(t, err)

	_, err = DecodeContent("not json")
	assert.Error(t, err)
}

func TestEncodeContent_RoundTrip(t *testing.T) {
	data, err := EncodeContent(Content{Text: "<b>hi</b>"})
	assert.NoError(t, err)

	c, err := DecodeContent(data)
	assert.NoError(t, err)
	assert.Equal(t, "<b>hi</b>", c.Text)
}
