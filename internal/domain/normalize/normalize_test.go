package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		want      string
		wantShape Shape
	}{
		{"result body", `{"result":{"body":"<div>A</div>"}}`, "<div>A</div>", ShapeResultBody},
		{"result body wins over body", `{"result":{"body":"<a/>"},"body":"<b/>"}`, "<a/>", ShapeResultBody},
		{"top level body", `{"body":"<p>B</p>"}`, "<p>B</p>", ShapeBody},
		{"empty result body falls through", `{"result":{"body":""},"body":"<b/>"}`, "<b/>", ShapeBody},
		{"non string result body falls through", `{"result":{"body":42},"body":"<b/>"}`, "<b/>", ShapeBody},
		{"bare string", `"<p>C</p>"`, "<p>C</p>", ShapeString},
		{"raw html", "<!DOCTYPE html><html></html>", "<!DOCTYPE html><html></html>", ShapeRawHTML},
		{"raw html with leading whitespace kept", "\n  <div>x</div>", "\n  <div>x</div>", ShapeRawHTML},
		{"doctype anywhere", "junk <!DOCTYPE html>", "junk <!DOCTYPE html>", ShapeRawHTML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, shape, err := Detect([]byte(tt.body), "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantShape, shape)

			html, err := HTML([]byte(tt.body), "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, html)
		})
	}
}

func TestHTMLFormatErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind FormatKind
		wantText string
	}{
		{"object without body", `{"data":1}`, UnexpectedFormat, "Unexpected response format"},
		{"empty body", `{"body":""}`, UnexpectedFormat, "Unexpected response format"},
		{"number", `42`, UnexpectedFormat, "Unexpected response format"},
		{"array", `["<p/>"]`, UnexpectedFormat, "Unexpected response format"},
		{"plain text", "hello world", NotHTML, "Function did not return valid HTML"},
		{"empty", "", NotHTML, "Function did not return valid HTML"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, shape, err := Detect([]byte(tt.body), "")
			assert.Equal(t, ShapeInvalid, shape)

			var fe *FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.wantKind, fe.Kind)
			assert.Equal(t, tt.wantText, fe.UserMessage())
			assert.NotEmpty(t, fe.MIME)
		})
	}
}

func TestNotHTMLMentionsMIME(t *testing.T) {
	_, err := HTML([]byte("just text"), "text/plain")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text/plain")
}

func TestHTMLTranscodesDeclaredCharset(t *testing.T) {
	// "<p>café</p>" in ISO-8859-1
	body := []byte{'<', 'p', '>', 'c', 'a', 'f', 0xe9, '<', '/', 'p', '>'}

	got, err := HTML(body, "text/html; charset=iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "<p>café</p>", got)
}

func TestHTMLKeepsUTF8(t *testing.T) {
	got, err := HTML([]byte("<p>café ☕</p>"), "text/html")
	require.NoError(t, err)
	assert.Equal(t, "<p>café ☕</p>", got)
}

func TestHTMLStripsUTF8BOM(t *testing.T) {
	got, err := HTML([]byte("\xef\xbb\xbf<p>x</p>"), "")
	require.NoError(t, err)
	assert.Equal(t, "<p>x</p>", got)
}
