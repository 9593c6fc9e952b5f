package scraper

import (
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestBatchNormalize(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	raws := gjson.Parse(`[
		{"post_id": "a", "message": "first"},
		{"post_id": "b", "message": null},
		{"post_id": "c", "message": 17},
		{"post_id": "d", "message": "https://only.a/link"},
		{"post_id": "e", "message_rich": "second"}
	]`).Array()

	posts, stats := BatchNormalize(raws, "Phil Lyman", fixedNow, logger)

	require.Len(t, posts, 2)
	assert.Equal(t, "a", *posts[0].PostID)
	assert.Equal(t, "first", posts[0].PostText)
	assert.Equal(t, "e", *posts[1].PostID)
	assert.Equal(t, "second", posts[1].PostText)
	for _, p := range posts {
		assert.Equal(t, "Phil Lyman", p.FoundViaKeyword)
	}

	assert.Equal(t, 5, stats.TotalPosts)
	assert.Equal(t, 2, stats.KeptPosts)
	assert.Equal(t, 2, stats.EmptyText)
	assert.Equal(t, 1, stats.Malformed)
	assert.Equal(t, 3, stats.Skipped())
	assert.Equal(t, "Total: 5, Kept: 2, Empty text: 2, Malformed: 1", stats.String())

	// Only the malformed post is logged.
	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Contains(t, entry.Message, "Error parsing a post")
	assert.Equal(t, 2, entry.Data["index"])
	assert.Equal(t, "Phil Lyman", entry.Data["keyword"])
}

func TestBatchNormalizeOutOfRangeDropsOnlyThatPost(t *testing.T) {
	logger, hook := logtest.NewNullLogger()

	raws := gjson.Parse(`[
		{"post_id": "a", "message": "seconds", "timestamp": 1700000000},
		{"post_id": "b", "message": "milliseconds", "timestamp": 1700000000000},
		{"post_id": "c", "message": "huge likes", "reactions_count": 1e30},
		{"post_id": "d", "message": "no timestamp"}
	]`).Array()

	posts, stats := BatchNormalize(raws, "k", fixedNow, logger)

	require.Len(t, posts, 2)
	assert.Equal(t, "a", *posts[0].PostID)
	assert.Equal(t, "d", *posts[1].PostID)
	assert.Equal(t, 2, stats.Malformed)
	assert.Len(t, hook.AllEntries(), 2)

	// Every kept post must survive JSON encoding.
	_, err := json.Marshal(posts)
	assert.NoError(t, err)
}

func TestBatchNormalizeEmpty(t *testing.T) {
	logger, _ := logtest.NewNullLogger()

	posts, stats := BatchNormalize(nil, "k", fixedNow, logger)

	assert.NotNil(t, posts)
	assert.Empty(t, posts)
	assert.Equal(t, 0, stats.TotalPosts)
}
