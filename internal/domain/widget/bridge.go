package widget

import (
	"fmt"
	"strings"

	"github.com/GriffinCanCode/RivalWidget/backend/internal/domain/store"
	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BridgeID is the id of the injected bootstrap script element.
const BridgeID = "rival-widget-bridge"

const bridgeTemplate = `(function (cfg) {
  window.RivalWidget = {
    getApiKey: function () { return cfg.apiKey; },
    getFunctionId: function () { return cfg.functionId; },
    getBaseUrl: function () { return cfg.baseUrl; },
    getVersion: function () { return cfg.version; },
    getFunctionUrl: function () { return cfg.functionUrl; },
    reload: function () { window.location.href = cfg.reloadUrl; },
    invokeFunction: function (eventData) {
      return fetch(cfg.functionUrl, {
        method: 'POST',
        headers: { 'Content-Type': 'application/json', 'Authorization': cfg.apiKey },
        body: JSON.stringify({ version: cfg.version, event: eventData || {} })
      }).then(function (response) {
        if (!response.ok) { throw new Error('HTTP error! status: ' + response.status); }
        return response;
      });
    }
  };
})(%s);`

// Bridge injects the window.RivalWidget bootstrap into returned documents.
type Bridge struct {
	surface *Surface
}

// NewBridge creates a bridge serving s's values.
func NewBridge(s *Surface) *Bridge {
	return &Bridge{surface: s}
}

// Script renders the bootstrap for session.
func (b *Bridge) Script(session store.Config) (string, error) {
	// ConfigStd escapes <, > and & so the payload cannot close the script.
	cfg, err := sonic.ConfigStd.MarshalToString(b.surface.snapshot(session))
	if err != nil {
		return "", fmt.Errorf("encode bridge config: %w", err)
	}
	return fmt.Sprintf(bridgeTemplate, cfg), nil
}

// Inject places the bootstrap first in <head>, replacing an earlier one.
// Fragments are wrapped into a full document.
func (b *Bridge) Inject(document string, session store.Config) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", fmt.Errorf("parse document: %w", err)
	}

	script, err := b.Script(session)
	if err != nil {
		return "", err
	}

	node := &html.Node{
		Type:     html.ElementNode,
		Data:     "script",
		DataAtom: atom.Script,
		Attr:     []html.Attribute{{Key: "id", Val: BridgeID}},
	}
	node.AppendChild(&html.Node{Type: html.TextNode, Data: script})

	doc.Find("script#" + BridgeID).Remove()
	doc.Find("head").First().PrependNodes(node)

	return doc.Html()
}
