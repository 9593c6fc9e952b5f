package scraper

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"facebook-scraper/internal/config"
	"facebook-scraper/internal/monitoring"
	"facebook-scraper/pkg/types"
)

// Collector searches every configured keyword in turn and gathers the
// normalized posts. A failing keyword never aborts the job.
type Collector struct {
	searcher Searcher
	keywords []string
	delay    time.Duration
	backoff  time.Duration
	logger   *logrus.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewCollector(cfg *config.Config, logger *logrus.Logger) *Collector {
	return NewCollectorWithSearcher(NewSearchClient(cfg.RapidAPI), cfg.Scraper, logger)
}

func NewCollectorWithSearcher(searcher Searcher, cfg config.ScraperConfig, logger *logrus.Logger) *Collector {
	return &Collector{
		searcher: searcher,
		keywords: append([]string(nil), cfg.Keywords...),
		delay:    cfg.Delay(),
		backoff:  cfg.Backoff(),
		logger:   logger,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Collect runs one scrape job. It stops early when ctx is cancelled and
// returns whatever was collected up to that point; the result is never nil.
func (c *Collector) Collect(ctx context.Context) []types.Post {
	jobID := xid.New().String()
	log := c.logger.WithField("job_id", jobID)
	log.Info("--- Starting Scrape Job ---")

	run := monitoring.NewRun(jobID)
	posts := make([]types.Post, 0)

	for i, keyword := range c.keywords {
		if i > 0 {
			if err := c.sleep(ctx, c.delay); err != nil {
				break
			}
		}

		metric := c.searchKeyword(ctx, log.WithField("keyword", keyword), keyword, &posts)
		run.RecordKeyword(metric)
		if metric.Outcome == monitoring.OutcomeCancelled {
			break
		}
	}

	if err := ctx.Err(); err != nil {
		log.Warnf("Scrape job stopped early: %v", err)
	}
	run.Finish(log)
	return posts
}

func (c *Collector) searchKeyword(ctx context.Context, log *logrus.Entry, keyword string, posts *[]types.Post) monitoring.KeywordMetric {
	start := time.Now()
	metric := monitoring.KeywordMetric{Keyword: keyword}

	log.Infof("Searching for: '%s'...", keyword)
	raws, err := c.searcher.SearchPosts(ctx, keyword)

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		metric.StatusCode = statusErr.StatusCode
	}

	switch {
	case err == nil:
		batch, stats := BatchNormalize(raws, keyword, c.now(), log)
		*posts = append(*posts, batch...)
		metric.Outcome = monitoring.OutcomeOK
		metric.StatusCode = http.StatusOK
		metric.Posts = stats.KeptPosts
		metric.Skipped = stats.Skipped()
		log.Debugf("Filter results: %s", stats)
	case ctx.Err() != nil:
		metric.Outcome = monitoring.OutcomeCancelled
	case errors.Is(err, ErrRateLimited):
		metric.Outcome = monitoring.OutcomeRateLimited
		log.Warnf("Rate limit hit! Waiting %s...", c.backoff)
		// A cancelled backoff ends the job at the next pause.
		_ = c.sleep(ctx, c.backoff)
	default:
		metric.Outcome = monitoring.OutcomeFailed
		log.Errorf("Search failed for %s: %v", keyword, err)
	}

	metric.Duration = time.Since(start)
	return metric
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
