package widget

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
)

// Element is the read-only view of an element handed to scripts.
type Element struct {
	TagName     string            `json:"tagName"`
	ID          string            `json:"id"`
	ClassName   string            `json:"className"`
	TextContent string            `json:"textContent"`
	Attributes  map[string]string `json:"-"`
}

// GetAttribute returns the named attribute or "".
func (e *Element) GetAttribute(name string) string {
	return e.Attributes[name]
}

func newElement(s *goquery.Selection) *Element {
	node := s.Get(0)
	e := &Element{
		TagName:     strings.ToUpper(goquery.NodeName(s)),
		TextContent: s.Text(),
		Attributes:  make(map[string]string, len(node.Attr)),
	}
	for _, a := range node.Attr {
		e.Attributes[a.Key] = a.Val
	}
	e.ID = e.Attributes["id"]
	e.ClassName = e.Attributes["class"]
	return e
}

// injectDocument exposes doc as a minimal read-only document global.
func (r *Runtime) injectDocument(doc *goquery.Document) error {
	document := r.vm.NewObject()
	if err := document.Set("title", doc.Find("title").First().Text()); err != nil {
		return err
	}
	if err := document.Set("querySelector", func(call goja.FunctionCall) goja.Value {
		sel := doc.Find(call.Argument(0).String()).First()
		if sel.Length() == 0 {
			return goja.Null()
		}
		return r.elementValue(newElement(sel))
	}); err != nil {
		return err
	}
	if err := document.Set("querySelectorAll", func(call goja.FunctionCall) goja.Value {
		var out []any
		doc.Find(call.Argument(0).String()).Each(func(_ int, s *goquery.Selection) {
			out = append(out, r.elementValue(newElement(s)))
		})
		return r.vm.ToValue(out)
	}); err != nil {
		return err
	}
	if err := document.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		var match *goquery.Selection
		want := call.Argument(0).String()
		doc.Find("[id]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if id, _ := s.Attr("id"); id == want {
				match = s
				return false
			}
			return true
		})
		if match == nil {
			return goja.Null()
		}
		return r.elementValue(newElement(match))
	}); err != nil {
		return err
	}
	return r.vm.Set("document", document)
}

func (r *Runtime) elementValue(e *Element) goja.Value {
	obj := r.vm.NewObject()
	_ = obj.Set("tagName", e.TagName)
	_ = obj.Set("id", e.ID)
	_ = obj.Set("className", e.ClassName)
	_ = obj.Set("textContent", e.TextContent)
	_ = obj.Set("getAttribute", func(name string) goja.Value {
		if v, ok := e.Attributes[name]; ok {
			return r.vm.ToValue(v)
		}
		return goja.Null()
	})
	return obj
}
