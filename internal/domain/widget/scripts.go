package widget

import (
	"fmt"
	"strings"

	"github.com/antchfx/htmlquery"
)

// InlineScripts returns the bodies of the document's inline scripts in
// document order. External scripts, non-JavaScript types and the injected
// bridge are skipped.
func InlineScripts(html string) ([]string, error) {
	doc, err := htmlquery.Parse(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	nodes, err := htmlquery.QueryAll(doc, "//script[not(@src)]")
	if err != nil {
		return nil, err
	}

	var scripts []string
	for _, n := range nodes {
		if htmlquery.SelectAttr(n, "id") == BridgeID {
			continue
		}
		if !isJavaScript(htmlquery.SelectAttr(n, "type")) {
			continue
		}
		if body := strings.TrimSpace(htmlquery.InnerText(n)); body != "" {
			scripts = append(scripts, body)
		}
	}
	return scripts, nil
}

func isJavaScript(typ string) bool {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", "text/javascript", "application/javascript", "module":
		return true
	}
	return false
}
