package archive

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cssURLPattern matches url(...) occurrences in stylesheet text, with or
// without single or double quoting around the value.
var cssURLPattern = regexp.MustCompile(`url\(\s*['"]?([^'"()]+?)['"]?\s*\)`)

// skipReference reports whether a raw reference value needs no fetch:
// empty values, fragment-only links, data: URIs, and javascript: links.
func skipReference(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return true
	}
	lower := strings.ToLower(raw)
	return strings.HasPrefix(lower, "data:") || strings.HasPrefix(lower, "javascript:")
}

// resolveReference turns a raw value into an absolute URL against base.
// Already-absolute values pass through url resolution unchanged.
func resolveReference(base *url.URL, raw string) (*url.URL, error) {
	return base.Parse(strings.TrimSpace(raw))
}

// discoverHTML scans markup for resource-bearing elements: img[src],
// link[rel=stylesheet][href], and script[src]. One Reference is emitted
// per occurrence in document order, duplicates included. Malformed
// references become failures, never errors.
func discoverHTML(body string, base *url.URL) ([]Reference, []Failure) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, []Failure{{URL: base.String(), Reason: "parse document: " + err.Error()}}
	}

	var refs []Reference
	var fails []Failure
	add := func(raw string, kind Kind) {
		if skipReference(raw) {
			return
		}
		u, err := resolveReference(base, raw)
		if err != nil {
			fails = append(fails, Failure{URL: raw, Reason: "unresolvable reference: " + err.Error()})
			return
		}
		refs = append(refs, Reference{Raw: raw, URL: u, Kind: kind})
	}

	doc.Find("img, link, script").Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "img":
			if src, ok := s.Attr("src"); ok {
				add(src, KindImage)
			}
		case "link":
			if rel, _ := s.Attr("rel"); !strings.EqualFold(rel, "stylesheet") {
				return
			}
			if href, ok := s.Attr("href"); ok {
				add(href, KindStylesheet)
			}
		case "script":
			if src, ok := s.Attr("src"); ok {
				add(src, KindScript)
			}
		}
	})

	return refs, fails
}

// discoverCSS scans stylesheet text for url(...) occurrences. The base
// is the stylesheet's own resolved URL, so relative paths inside the
// sheet resolve the way a browser would resolve them.
func discoverCSS(body string, base *url.URL) ([]Reference, []Failure) {
	var refs []Reference
	var fails []Failure
	for _, m := range cssURLPattern.FindAllStringSubmatch(body, -1) {
		raw := m[1]
		if skipReference(raw) {
			continue
		}
		u, err := resolveReference(base, raw)
		if err != nil {
			fails = append(fails, Failure{URL: raw, Reason: "unresolvable reference: " + err.Error()})
			continue
		}
		refs = append(refs, Reference{Raw: raw, URL: u, Kind: KindImage})
	}
	return refs, fails
}

// uniqueURLs returns the resolved URLs of refs in first-seen order with
// duplicates removed. Duplicate references share one fetch.
func uniqueURLs(refs []Reference) []string {
	seen := make(map[string]bool, len(refs))
	urls := make([]string, 0, len(refs))
	for _, ref := range refs {
		u := ref.URL.String()
		if seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}
