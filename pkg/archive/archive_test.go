package archive_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"web-archiver/pkg/archive"
)

var (
	pngBytes = []byte("\x89PNG\x0D\x0A\x1A\x0Athe-actual-pixels")
	gifBytes = []byte("GIF89a-background-pixels")
	jsText   = "function doStuff() { console.log(\"hello\"); }"
	cssText  = "body { background: url(bg.gif); }"
)

const indexPage = `<html>
<head>
<link rel="stylesheet" href="style.css">
<script src="app.js"></script>
</head>
<body>
<img src="img/a.png">
<img src="missing.png">
</body>
</html>`

func pageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(indexPage))
	})
	mux.HandleFunc("/style.css", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(cssText))
	})
	mux.HandleFunc("/bg.gif", func(w http.ResponseWriter, _ *http.Request) {
		w.Write(gifBytes)
	})
	mux.HandleFunc("/img/a.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Write(pngBytes)
	})
	mux.HandleFunc("/app.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(jsText))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func b64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }

func TestArchiveEndToEnd(t *testing.T) {
	srv := pageServer(t)

	a, err := archive.Archive(srv.URL+"/", archive.Options{})
	require.NoError(t, err)

	out := a.EmbedResources()

	// The image is inlined with its sniffed mimetype and exact payload.
	assert.Contains(t, out, `<img src="data:image/png;base64,`+b64(pngBytes)+`"`)

	// The stylesheet was flattened before embedding: its url(bg.gif)
	// reference is already a data URI inside the <style> element.
	assert.Contains(t, out, "<style>")
	assert.Contains(t, out, "url(data:image/gif;base64,"+b64(gifBytes)+")")
	assert.NotContains(t, out, `href="style.css"`)
	assert.NotContains(t, out, "url(bg.gif)")

	// The script body is inlined and its src removed.
	assert.Contains(t, out, "<script>"+jsText+"</script>")
	assert.NotContains(t, out, `src="app.js"`)

	// The failed image keeps its original reference and is reported.
	assert.Contains(t, out, `src="missing.png"`)
	require.Len(t, a.Failures(), 1)
	assert.Equal(t, srv.URL+"/missing.png", a.Failures()[0].URL)
}

func TestArchivePartialFailureEmbedsTheRest(t *testing.T) {
	srv := pageServer(t)

	a, err := archive.Archive(srv.URL+"/", archive.Options{})
	require.NoError(t, err)

	fetched := 0
	for _, res := range a.Resources {
		if res.Fetched() {
			fetched++
		}
	}
	// style.css, bg.gif, a.png, app.js fetched; missing.png failed.
	assert.Equal(t, 4, fetched)
	assert.Len(t, a.Failures(), 1)
}

func TestBlockingArchiveMatchesConcurrent(t *testing.T) {
	srv := pageServer(t)

	concurrent, err := archive.Archive(srv.URL+"/", archive.Options{})
	require.NoError(t, err)
	sequential, err := archive.BlockingArchive(srv.URL+"/", archive.Options{})
	require.NoError(t, err)

	assert.Equal(t, concurrent.EmbedResources(), sequential.EmbedResources())
	assert.Equal(t, concurrent.Failures(), sequential.Failures())
}

func TestArchiveIdempotence(t *testing.T) {
	// Every reference must embed successfully: a failed reference stays
	// in the output by design, so only a fully embedded document can be
	// re-archived without discovering anything.
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`<html>
<head>
<link rel="stylesheet" href="style.css">
<script src="app.js"></script>
</head>
<body>
<img src="img/a.png">
</body>
</html>`))
	})
	mux.HandleFunc("/style.css", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(cssText))
	})
	mux.HandleFunc("/bg.gif", func(w http.ResponseWriter, _ *http.Request) {
		w.Write(gifBytes)
	})
	mux.HandleFunc("/img/a.png", func(w http.ResponseWriter, _ *http.Request) {
		w.Write(pngBytes)
	})
	mux.HandleFunc("/app.js", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(jsText))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	first, err := archive.Archive(srv.URL+"/", archive.Options{})
	require.NoError(t, err)
	require.Empty(t, first.Failures())
	embedded := first.EmbedResources()

	// Serve the already-embedded document; archiving it again must
	// discover nothing remote and reproduce it byte for byte.
	again := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(embedded))
	}))
	defer again.Close()

	second, err := archive.Archive(again.URL+"/", archive.Options{})
	require.NoError(t, err)

	assert.Empty(t, second.References())
	failures := second.Failures()
	for _, f := range failures {
		t.Logf("unexpected failure: %s: %s", f.URL, f.Reason)
	}
	assert.Empty(t, failures)
	assert.Equal(t, embedded, second.EmbedResources())
}

func TestArchiveRootFetchFailureIsFatal(t *testing.T) {
	srv := pageServer(t)

	a, err := archive.Archive(srv.URL+"/no-such-page", archive.Options{})
	assert.Nil(t, a)
	require.Error(t, err)

	var rootErr *archive.RootFetchError
	require.ErrorAs(t, err, &rootErr)
	assert.Equal(t, srv.URL+"/no-such-page", rootErr.URL)
}

func TestArchiveRejectsNonAbsoluteURL(t *testing.T) {
	a, err := archive.Archive("this~is~not~a~url", archive.Options{})
	assert.Nil(t, a)
	assert.Error(t, err)
}

func TestArchiveRejectsUnsupportedOptionsBeforeFetching(t *testing.T) {
	opts := archive.Options{Proxy: &archive.ProxyConfig{Scheme: "gopher", Host: "p", Port: 70}}
	a, err := archive.Archive("http://127.0.0.1:1/", opts)
	assert.Nil(t, a)
	assert.ErrorIs(t, err, archive.ErrUnsupportedOption)
}

func TestArchiveSharedFetchForDuplicateReferences(t *testing.T) {
	hits := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><img src="a.png"><img src="a.png"></body></html>`))
	})
	mux.HandleFunc("/a.png", func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Write(pngBytes)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	a, err := archive.BlockingArchive(srv.URL+"/", archive.Options{})
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
	assert.Len(t, a.References(), 2)

	out := a.EmbedResources()
	// Both occurrences are rewritten from the one shared fetch.
	uri := "data:image/png;base64," + b64(pngBytes)
	assert.NotContains(t, out, `src="a.png"`)
	assert.Equal(t, 2, strings.Count(out, uri))
}
