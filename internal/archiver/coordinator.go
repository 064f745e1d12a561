package archiver

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"web-archiver/internal/config"
	"web-archiver/internal/frontier"
	"web-archiver/internal/storage"
	"web-archiver/pkg/archive"
	"web-archiver/pkg/models"
	"web-archiver/pkg/util"
)

// Coordinator pulls URLs from the frontier and drives a bounded pool of
// workers: dedup through redis, robots.txt gate, archive, persist to
// cassandra, publish a completion event.
type Coordinator struct {
	urlFrontier *frontier.URLFrontier
	events      *frontier.EventWriter
	store       *storage.CassandraStorage
	cache       *storage.RedisCache
	workers     []*Worker
	workerChan  chan *Worker
	opts        archive.Options
	agent       string
	log         *zap.SugaredLogger
}

func NewCoordinator(cfg *config.Config, log *zap.SugaredLogger) (*Coordinator, error) {
	frontierClient := frontier.NewURLFrontier(cfg.KafkaBrokers, cfg.FrontierTopic)
	events := frontier.NewEventWriter(cfg.KafkaBrokers, cfg.EventsTopic)

	store, err := storage.NewCassandraStorage(cfg.CassandraHosts, cfg.CassandraKeyspace)
	if err != nil {
		return nil, err
	}

	cache, err := storage.NewRedisCache(cfg.RedisAddress)
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		urlFrontier: frontierClient,
		events:      events,
		store:       store,
		cache:       cache,
		workers:     make([]*Worker, cfg.NumWorkers),
		workerChan:  make(chan *Worker, cfg.NumWorkers),
		opts:        cfg.ArchiveOptions(),
		agent:       cfg.RobotsAgent,
		log:         log,
	}

	for i := 0; i < cfg.NumWorkers; i++ {
		c.workers[i] = NewWorker(c.opts)
		c.workerChan <- c.workers[i]
	}

	return c, nil
}

// getAvailableWorker blocks until a pool worker frees up. The pool never
// grows past the workerChan buffer, so releaseWorker can never block.
func (c *Coordinator) getAvailableWorker(ctx context.Context) *Worker {
	select {
	case worker := <-c.workerChan:
		return worker
	case <-ctx.Done():
		return nil
	}
}

func (c *Coordinator) releaseWorker(w *Worker) {
	c.workerChan <- w
}

func (c *Coordinator) Run(ctx context.Context) {
	for {
		url, err := c.urlFrontier.GetURL(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.log.Errorf("Error reading message from frontier: %v", err)
			continue
		}

		archived, err := c.cache.HasArchivedURL(ctx, url)
		if err != nil {
			c.log.Errorf("Error checking Redis cache: %v", err)
		} else if archived {
			c.log.Infof("URL already archived: %s", url)
			continue
		}

		allowed, err := c.checkRobotsTXT(ctx, url)
		if err != nil {
			c.log.Errorf("Error checking robots.txt: %v", err)
			continue
		}
		if !allowed {
			c.log.Infof("URL not allowed by robots.txt: %s", url)
			continue
		}

		worker := c.getAvailableWorker(ctx)
		if worker == nil {
			return
		}
		go func(url string, worker *Worker) {
			page, err := worker.Archive(url)
			if err != nil {
				c.log.Errorf("Error archiving page %s: %v", url, err)
			} else {
				c.handleResult(ctx, page)
				if err := c.cache.SetArchivedURL(ctx, url); err != nil {
					c.log.Errorf("Error setting archived URL in Redis: %v", err)
				}
			}
			c.releaseWorker(worker)
		}(url, worker)
	}
}

func (c *Coordinator) handleResult(ctx context.Context, page *models.ArchivedPage) {
	if err := c.store.StoreArchivedPage(ctx, page); err != nil {
		c.log.Errorf("Error storing archived page: %v", err)
	}

	event := models.ArchiveEvent{
		URL:          page.URL,
		Timestamp:    page.Timestamp,
		Bytes:        len(page.HTML),
		FailureCount: len(page.Failures),
	}
	if err := c.events.WriteEvent(ctx, event); err != nil {
		c.log.Errorf("Error publishing archive event: %v", err)
	}
}

func (c *Coordinator) checkRobotsTXT(ctx context.Context, url string) (bool, error) {
	domain, err := util.GetDomainFromURL(url)
	if err != nil {
		return false, err
	}

	robotsTXT, err := c.cache.GetRobotsTXT(ctx, domain)
	if errors.Is(err, redis.Nil) {
		// robots.txt not in cache, fetch it
		robotsTXT, err = util.FetchRobotsTXT(domain)
		if err != nil {
			return false, err
		}

		// cache the robots.txt
		if _, err := c.cache.SetRobotsTXT(ctx, domain, robotsTXT); err != nil {
			c.log.Errorf("Error caching robots.txt: %v", err)
		}
	} else if err != nil {
		return false, err
	}
	return util.IsAllowedByRobotsTXT(robotsTXT, url, c.agent), nil
}

func (c *Coordinator) AddURL(ctx context.Context, url string) error {
	return c.urlFrontier.AddURL(ctx, url)
}

func (c *Coordinator) Close() {
	if err := c.urlFrontier.Close(); err != nil {
		c.log.Errorf("Error closing frontier: %v", err)
	}
	if err := c.events.Close(); err != nil {
		c.log.Errorf("Error closing event writer: %v", err)
	}
	if err := c.cache.Close(); err != nil {
		c.log.Errorf("Error closing redis cache: %v", err)
	}
	c.store.Close()
}
