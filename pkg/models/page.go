package models

import "time"

// ArchivedPage is the persisted record of one archiving run: the fully
// embedded document plus whatever could not be inlined.
type ArchivedPage struct {
	URL       string
	Timestamp time.Time
	HTML      string
	Failures  []ResourceFailure
}

// ResourceFailure names one resource that could not be embedded.
type ResourceFailure struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// ArchiveEvent is the completion record published after a page has been
// archived and stored.
type ArchiveEvent struct {
	URL          string    `json:"url"`
	Timestamp    time.Time `json:"timestamp"`
	Bytes        int       `json:"bytes"`
	FailureCount int       `json:"failure_count"`
}
