// Package normalize extracts the HTML document from a function response.
//
// Function backends wrap their output in different envelopes. In order of
// precedence the normalizer accepts {"result":{"body":"..."}}, {"body":"..."},
// a bare JSON string, and finally a raw HTML document. Anything else is a
// *FormatError.
package normalize

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// Shape names the envelope a response matched.
type Shape string

const (
	ShapeResultBody Shape = "result_body"
	ShapeBody       Shape = "body"
	ShapeString     Shape = "string"
	ShapeRawHTML    Shape = "raw_html"
	ShapeInvalid    Shape = "invalid"
)

// FormatKind distinguishes the two format failures.
type FormatKind int

const (
	// UnexpectedFormat: valid JSON that matches no envelope.
	UnexpectedFormat FormatKind = iota
	// NotHTML: not JSON and does not look like HTML.
	NotHTML
)

// FormatError reports a response the normalizer could not use.
type FormatError struct {
	Kind FormatKind
	// MIME is the sniffed type of the body, for diagnostics.
	MIME string
}

func (e *FormatError) Error() string {
	if e.Kind == NotHTML {
		return fmt.Sprintf("function did not return valid HTML (got %s)", e.MIME)
	}
	return "unexpected response format"
}

// UserMessage is the text shown on the launcher page.
func (e *FormatError) UserMessage() string {
	if e.Kind == NotHTML {
		return "Function did not return valid HTML"
	}
	return "Unexpected response format"
}

// HTML returns the HTML carried by body. contentType is the response header
// and only informs charset decoding of non-JSON bodies.
func HTML(body []byte, contentType string) (string, error) {
	html, _, err := Detect(body, contentType)
	return html, err
}

// Detect is HTML that also reports which shape matched.
func Detect(body []byte, contentType string) (string, Shape, error) {
	var data any
	if err := sonic.Unmarshal(body, &data); err == nil {
		return fromJSON(body, data)
	}

	text := decodeText(body, contentType)
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "<") || strings.Contains(text, "<!DOCTYPE") {
		return text, ShapeRawHTML, nil
	}

	return "", ShapeInvalid, &FormatError{Kind: NotHTML, MIME: mimetype.Detect(body).String()}
}

func fromJSON(raw []byte, data any) (string, Shape, error) {
	switch v := data.(type) {
	case map[string]any:
		if result, ok := v["result"].(map[string]any); ok {
			if s, ok := result["body"].(string); ok && s != "" {
				return s, ShapeResultBody, nil
			}
		}
		if s, ok := v["body"].(string); ok && s != "" {
			return s, ShapeBody, nil
		}
	case string:
		return v, ShapeString, nil
	}
	return "", ShapeInvalid, &FormatError{Kind: UnexpectedFormat, MIME: mimetype.Detect(raw).String()}
}

// decodeText converts body to UTF-8. A charset in contentType or a BOM wins;
// otherwise valid UTF-8 is kept and anything else goes through detection.
func decodeText(body []byte, contentType string) string {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if !certain {
		if utf8.Valid(body) {
			return string(body)
		}
		if detected := detectCharset(body); detected != "" {
			if e, n := charset.Lookup(detected); e != nil {
				enc, name = e, n
			}
		}
	}
	if name == "utf-8" {
		return string(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf")))
	}

	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(out)
}

func detectCharset(body []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(body)
	if err != nil || result == nil || result.Confidence < 30 {
		return ""
	}
	return strings.ToLower(result.Charset)
}
