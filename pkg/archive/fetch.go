package archive

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gocolly/colly"

	"web-archiver/pkg/mimetype"
)

// originKey carries the URL a request was issued for, so redirected
// responses still land under the key the caller asked about.
const originKey = "origin"

// fetcher wraps a single-use colly collector configured for one fetch
// wave. Concurrent mode rides the collector's async dispatcher; the
// sequential mode uses the same collector synchronously, so both produce
// the same result map for the same responses.
type fetcher struct {
	c *colly.Collector
}

func newFetcher(opts Options, concurrent bool) (*fetcher, error) {
	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
	)
	c.AllowURLRevisit = true
	c.IgnoreRobotsTxt = true
	c.Async = concurrent

	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if opts.SkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	c.WithTransport(transport)

	if opts.Proxy != nil {
		if err := c.SetProxy(opts.Proxy.URL()); err != nil {
			return nil, fmt.Errorf("%w: proxy %s: %v", ErrUnsupportedOption, opts.Proxy.URL(), err)
		}
	}
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		if r.Ctx.Get(originKey) == "" {
			r.Ctx.Put(originKey, r.URL.String())
		}
	})

	return &fetcher{c: c}, nil
}

// fetchAll retrieves every URL independently and returns a map keyed by
// requested URL. Per-URL failures are captured on the Resource and never
// abort sibling fetches; completion order cannot affect the result.
func (f *fetcher) fetchAll(urls []string) map[string]*Resource {
	resources := make(map[string]*Resource, len(urls))
	var mu sync.Mutex

	record := func(u string, res *Resource) {
		mu.Lock()
		defer mu.Unlock()
		if _, ok := resources[u]; !ok {
			resources[u] = res
		}
	}

	f.c.OnResponse(func(r *colly.Response) {
		u := r.Ctx.Get(originKey)
		if u == "" {
			u = r.Request.URL.String()
		}
		body := make([]byte, len(r.Body))
		copy(body, r.Body)
		record(u, &Resource{URL: u, Body: body, Mimetype: mimetype.Sniff(body)})
	})

	f.c.OnError(func(r *colly.Response, err error) {
		if r == nil {
			return
		}
		var u string
		if r.Ctx != nil {
			u = r.Ctx.Get(originKey)
		}
		if u == "" && r.Request != nil {
			u = r.Request.URL.String()
		}
		if u == "" {
			return
		}
		record(u, &Resource{URL: u, Err: err})
	})

	for _, u := range urls {
		if err := f.c.Visit(u); err != nil {
			record(u, &Resource{URL: u, Err: err})
		}
	}
	f.c.Wait()

	return resources
}

func (f *fetcher) fetchOne(u string) *Resource {
	if res := f.fetchAll([]string{u})[u]; res != nil {
		return res
	}
	return &Resource{URL: u, Err: errors.New("no response")}
}
