// Package archive downloads a web page together with its linked image,
// script, and stylesheet resources and rewrites the page so that every
// external reference becomes an inline, self-contained representation.
package archive

import (
	"encoding/base64"
	"net/url"
)

// Kind classifies a discovered reference.
type Kind string

const (
	KindImage      Kind = "image"
	KindStylesheet Kind = "stylesheet"
	KindScript     Kind = "script"
)

// Page is the root document being archived.
type Page struct {
	// URL is the absolute base URL that relative references resolve against.
	URL *url.URL
	// Body is the original markup text, untouched by embedding.
	Body string
}

// Reference is a discovered pointer from a document to an external
// resource. Multiple references may resolve to the same URL; they share
// one fetch but each occurrence is rewritten independently.
type Reference struct {
	// Raw is the literal string found in the source.
	Raw string
	// URL is the absolute URL after resolution.
	URL *url.URL
	// Kind says which element the reference came from.
	Kind Kind
}

// Resource holds the fetched bytes for one resolved URL. A Resource is
// never mutated after the archiving run that created it; a failed fetch
// is terminal for that URL within the run.
type Resource struct {
	// URL is the resolved absolute URL the resource was requested under.
	URL string
	// Body is the raw fetched content.
	Body []byte
	// Mimetype is sniffed from Body, never taken from response headers.
	Mimetype string
	// Err is non-nil when the fetch failed.
	Err error

	flattened bool
}

// Fetched reports whether the resource was retrieved successfully.
func (r *Resource) Fetched() bool { return r.Err == nil }

// DataURI encodes the resource as a data: URI with its sniffed mimetype.
func (r *Resource) DataURI() string {
	return "data:" + r.Mimetype + ";base64," + base64.StdEncoding.EncodeToString(r.Body)
}

// Failure records one resource that could not be embedded.
type Failure struct {
	URL    string
	Reason string
}

// Result is the outcome of one archiving run: the root page, every
// fetched resource keyed by resolved URL, and the failures encountered
// along the way. EmbedResources may be called any number of times; the
// Result never fetches again.
type Result struct {
	Page      Page
	Resources map[string]*Resource

	references []Reference
	failures   []Failure
	opts       Options
}

// Failures returns the resources that could not be embedded, in
// discovery order.
func (a *Result) Failures() []Failure {
	return a.failures
}

// References returns the discovered references in document order,
// duplicates included.
func (a *Result) References() []Reference {
	return a.references
}
