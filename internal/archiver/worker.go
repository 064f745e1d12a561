package archiver

import (
	"time"

	"web-archiver/pkg/archive"
	"web-archiver/pkg/models"
)

// Worker archives one page at a time. The coordinator keeps a bounded
// pool of workers, so the pool size caps how many pages are in flight;
// each run still fetches its own resources concurrently.
type Worker struct {
	opts archive.Options
}

func NewWorker(opts archive.Options) *Worker {
	return &Worker{opts: opts}
}

func (w *Worker) Archive(url string) (*models.ArchivedPage, error) {
	result, err := archive.Archive(url, w.opts)
	if err != nil {
		return nil, err
	}

	page := &models.ArchivedPage{
		URL:       url,
		Timestamp: time.Now(),
		HTML:      result.EmbedResources(),
	}
	for _, f := range result.Failures() {
		page.Failures = append(page.Failures, models.ResourceFailure{URL: f.URL, Reason: f.Reason})
	}
	return page, nil
}
