package archive

import (
	"fmt"
	"net/url"
)

// Archive downloads the page at rawurl and all resources it references,
// fetching resources concurrently. It returns once every discovered
// resource has been attempted. Per-resource failures are recorded on the
// Result; only a root document failure is fatal.
func Archive(rawurl string, opts Options) (*Result, error) {
	return run(rawurl, opts, true)
}

// BlockingArchive is the strictly sequential variant of Archive, with
// identical semantics and no parallelism.
func BlockingArchive(rawurl string, opts Options) (*Result, error) {
	return run(rawurl, opts, false)
}

func run(rawurl string, opts Options, concurrent bool) (*Result, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(rawurl)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawurl, err)
	}
	if !base.IsAbs() || base.Host == "" {
		return nil, fmt.Errorf("parse url %q: not an absolute URL", rawurl)
	}

	rootFetcher, err := newFetcher(opts, false)
	if err != nil {
		return nil, err
	}
	root := rootFetcher.fetchOne(base.String())
	if !root.Fetched() {
		return nil, &RootFetchError{URL: base.String(), Err: root.Err}
	}

	result := &Result{
		Page:      Page{URL: base, Body: string(root.Body)},
		Resources: make(map[string]*Resource),
		opts:      opts,
	}

	refs, fails := discoverHTML(result.Page.Body, base)
	result.references = refs
	result.failures = append(result.failures, fails...)

	f, err := newFetcher(opts, concurrent)
	if err != nil {
		return nil, err
	}
	for u, res := range f.fetchAll(uniqueURLs(refs)) {
		result.Resources[u] = res
	}

	// Walk references in discovery order: record fetch failures once per
	// URL and flatten each stylesheet before anything embeds it.
	failed := make(map[string]bool)
	for _, ref := range refs {
		u := ref.URL.String()
		res := result.Resources[u]
		if res == nil {
			continue
		}
		if !res.Fetched() {
			if !failed[u] {
				failed[u] = true
				result.failures = append(result.failures, Failure{URL: u, Reason: res.Err.Error()})
			}
			continue
		}
		if ref.Kind == KindStylesheet && !res.flattened {
			res.flattened = true
			result.flattenStylesheet(res, ref.URL, concurrent, failed)
		}
	}

	return result, nil
}

// flattenStylesheet makes a fetched stylesheet self-contained: its own
// url(...) references are discovered, fetched, and inlined as data URIs
// into the sheet text. Recursion stops at this level; sheets are not
// scanned for further nested sheets.
func (a *Result) flattenStylesheet(sheet *Resource, sheetURL *url.URL, concurrent bool, failed map[string]bool) {
	text := string(sheet.Body)
	refs, fails := discoverCSS(text, sheetURL)
	a.failures = append(a.failures, fails...)
	if len(refs) == 0 {
		return
	}

	f, err := newFetcher(a.opts, concurrent)
	if err != nil {
		return
	}
	for u, res := range f.fetchAll(uniqueURLs(refs)) {
		if _, ok := a.Resources[u]; !ok {
			a.Resources[u] = res
		}
	}
	for _, ref := range refs {
		u := ref.URL.String()
		if res := a.Resources[u]; res != nil && !res.Fetched() && !failed[u] {
			failed[u] = true
			a.failures = append(a.failures, Failure{URL: u, Reason: res.Err.Error()})
		}
	}

	sheet.Body = []byte(cssURLPattern.ReplaceAllStringFunc(text, func(m string) string {
		raw := cssURLPattern.FindStringSubmatch(m)[1]
		if skipReference(raw) {
			return m
		}
		u, err := resolveReference(sheetURL, raw)
		if err != nil {
			return m
		}
		if res := a.Resources[u.String()]; res != nil && res.Fetched() {
			return "url(" + res.DataURI() + ")"
		}
		return m
	}))
}
