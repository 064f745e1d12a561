package archive

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EmbedResources rewrites every successfully fetched reference in the
// page to an inline, self-contained representation:
//
//   - images become data: URIs with their sniffed mimetype
//   - stylesheet links are replaced by <style> elements holding the
//     already-flattened sheet text
//   - scripts get the fetched body inlined and their src removed
//
// References whose fetch failed are left untouched unless
// Options.StripFailed was set. The method is pure: it never fetches and
// may be called repeatedly with identical output.
func (a *Result) EmbedResources() string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(a.Page.Body))
	if err != nil {
		return a.Page.Body
	}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok {
			return
		}
		res := a.lookup(src)
		switch {
		case res == nil:
		case res.Fetched():
			s.SetAttr("src", res.DataURI())
		case a.opts.StripFailed:
			s.RemoveAttr("src")
		}
	})

	doc.Find("link").Each(func(_ int, s *goquery.Selection) {
		if rel, _ := s.Attr("rel"); !strings.EqualFold(rel, "stylesheet") {
			return
		}
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		res := a.lookup(href)
		switch {
		case res == nil:
		case res.Fetched():
			s.ReplaceWithNodes(styleNode(string(res.Body)))
		case a.opts.StripFailed:
			s.Remove()
		}
	})

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok {
			return
		}
		res := a.lookup(src)
		switch {
		case res == nil:
		case res.Fetched():
			// Raw text node: script bodies must not be entity-escaped.
			s.Empty()
			s.AppendNodes(textNode(string(res.Body)))
			s.RemoveAttr("src")
		case a.opts.StripFailed:
			s.Remove()
		}
	})

	out, err := doc.Html()
	if err != nil {
		return a.Page.Body
	}
	return out
}

// lookup resolves a raw reference the same way discovery did and returns
// its Resource, or nil when the reference needed no fetch or resolved to
// a URL this run never saw.
func (a *Result) lookup(raw string) *Resource {
	if skipReference(raw) {
		return nil
	}
	u, err := resolveReference(a.Page.URL, raw)
	if err != nil {
		return nil
	}
	return a.Resources[u.String()]
}

func styleNode(css string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: "style", DataAtom: atom.Style}
	n.AppendChild(textNode(css))
	return n
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
