package monitoring

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRun() *Run {
	r := NewRun("job-1")
	r.startedAt = time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return r.startedAt.Add(5 * time.Second) }
	return r
}

func TestRunSummary(t *testing.T) {
	r := newTestRun()
	r.RecordKeyword(KeywordMetric{Keyword: "a", Outcome: OutcomeOK, StatusCode: 200, Posts: 3, Skipped: 1})
	r.RecordKeyword(KeywordMetric{Keyword: "b", Outcome: OutcomeRateLimited, StatusCode: 429})
	r.RecordKeyword(KeywordMetric{Keyword: "c", Outcome: OutcomeOK, StatusCode: 200, Posts: 2, Skipped: 4})

	s := r.Summary()

	assert.Equal(t, "job-1", s.JobID)
	assert.Equal(t, 5*time.Second, s.Elapsed)
	assert.Equal(t, 3, s.Keywords)
	assert.Equal(t, 2, s.Outcomes[OutcomeOK])
	assert.Equal(t, 1, s.Outcomes[OutcomeRateLimited])
	assert.Equal(t, 5, s.Posts)
	assert.Equal(t, 5, s.Skipped)
	assert.Len(t, r.Keywords(), 3)

	assert.Equal(t, []string{"ALERT: Rate limited on 1 of 3 keywords"}, r.Alerts())
}

func TestRunAlertsWhenNothingWorked(t *testing.T) {
	r := newTestRun()
	r.RecordKeyword(KeywordMetric{Keyword: "a", Outcome: OutcomeFailed, StatusCode: 500})
	r.RecordKeyword(KeywordMetric{Keyword: "b", Outcome: OutcomeFailed})

	assert.Equal(t, []string{
		"ALERT: No keyword search succeeded",
		"ALERT: No posts were collected",
	}, r.Alerts())
}

func TestRunGenerateReport(t *testing.T) {
	r := newTestRun()
	r.RecordKeyword(KeywordMetric{Keyword: "Sean Reyes", Outcome: OutcomeOK, Posts: 2, Skipped: 1, Duration: 1500 * time.Millisecond})

	report := r.GenerateReport()

	assert.Contains(t, report, "Scrape job job-1")
	assert.Contains(t, report, "Started: 2025-05-01 12:00:00")
	assert.Contains(t, report, "Posts: 2 (skipped 1)")
	assert.Contains(t, report, "- Sean Reyes: ok, 2 posts, 1 skipped, 1.5s")
}

func TestRunFinishLogs(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	r := newTestRun()
	r.RecordKeyword(KeywordMetric{Keyword: "a", Outcome: OutcomeRateLimited})

	s := r.Finish(logger)
	assert.Equal(t, 0, s.Posts)

	entries := hook.AllEntries()
	require.Len(t, entries, 4)
	assert.Equal(t, "--- Job Done. Returning 0 posts. ---", entries[0].Message)
	assert.Equal(t, 1, entries[0].Data["rate_limited"])
	for _, e := range entries[1:] {
		assert.Equal(t, logrus.WarnLevel, e.Level)
	}
}
