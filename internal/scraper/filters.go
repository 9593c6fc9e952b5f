package scraper

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"facebook-scraper/pkg/types"
)

type normalized struct {
	post types.Post
	err  error
}

func normalizeAll(raws []gjson.Result, keyword string, now time.Time) []normalized {
	results := make([]normalized, len(raws))
	for i, raw := range raws {
		results[i].post, results[i].err = NormalizePost(raw, keyword, now)
	}
	return results
}

// BatchNormalize normalizes one keyword's results and keeps the ones that
// succeed, in the order received. Malformed results are logged; empty ones
// are only counted.
func BatchNormalize(raws []gjson.Result, keyword string, now time.Time, logger logrus.FieldLogger) ([]types.Post, types.FilterStats) {
	stats := types.FilterStats{TotalPosts: len(raws)}
	posts := make([]types.Post, 0, len(raws))

	for i, result := range normalizeAll(raws, keyword, now) {
		switch {
		case result.err == nil:
			posts = append(posts, result.post)
		case errors.Is(result.err, ErrEmptyText):
			stats.EmptyText++
		default:
			stats.Malformed++
			logger.WithFields(logrus.Fields{
				"keyword": keyword,
				"index":   i,
			}).Warnf("Error parsing a post: %v", result.err)
		}
	}

	stats.KeptPosts = len(posts)
	return posts, stats
}
