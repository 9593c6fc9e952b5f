package monitoring

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"facebook-scraper/internal/utils"
)

type Outcome string

const (
	OutcomeOK          Outcome = "ok"
	OutcomeRateLimited Outcome = "rate_limited"
	OutcomeFailed      Outcome = "failed"
	OutcomeCancelled   Outcome = "cancelled"
)

type KeywordMetric struct {
	Keyword    string        `json:"keyword"`
	Outcome    Outcome       `json:"outcome"`
	StatusCode int           `json:"status_code,omitempty"`
	Posts      int           `json:"posts"`
	Skipped    int           `json:"skipped"`
	Duration   time.Duration `json:"duration"`
}

type Summary struct {
	JobID     string          `json:"job_id"`
	StartedAt time.Time       `json:"started_at"`
	Elapsed   time.Duration   `json:"elapsed"`
	Keywords  int             `json:"keywords"`
	Outcomes  map[Outcome]int `json:"outcomes"`
	Posts     int             `json:"posts"`
	Skipped   int             `json:"skipped"`
}

// Run collects the metrics of one scrape job. It is not safe for concurrent use;
// a job processes its keywords sequentially.
type Run struct {
	jobID     string
	startedAt time.Time
	keywords  []KeywordMetric
	now       func() time.Time
}

func NewRun(jobID string) *Run {
	return &Run{
		jobID:     jobID,
		startedAt: time.Now(),
		now:       time.Now,
	}
}

func (r *Run) RecordKeyword(m KeywordMetric) {
	r.keywords = append(r.keywords, m)
}

func (r *Run) Keywords() []KeywordMetric {
	return append([]KeywordMetric(nil), r.keywords...)
}

func (r *Run) Summary() Summary {
	s := Summary{
		JobID:     r.jobID,
		StartedAt: r.startedAt,
		Elapsed:   r.now().Sub(r.startedAt),
		Keywords:  len(r.keywords),
		Outcomes:  make(map[Outcome]int),
	}
	for _, m := range r.keywords {
		s.Outcomes[m.Outcome]++
		s.Posts += m.Posts
		s.Skipped += m.Skipped
	}
	return s
}

// Alerts lists conditions worth a warning once the run is over.
func (r *Run) Alerts() []string {
	var alerts []string
	s := r.Summary()

	if s.Keywords > 0 && s.Outcomes[OutcomeOK] == 0 {
		alerts = append(alerts, "ALERT: No keyword search succeeded")
	}
	if n := s.Outcomes[OutcomeRateLimited]; n > 0 {
		alerts = append(alerts, fmt.Sprintf("ALERT: Rate limited on %d of %d keywords", n, s.Keywords))
	}
	if s.Posts == 0 {
		alerts = append(alerts, "ALERT: No posts were collected")
	}

	return alerts
}

func (r *Run) GenerateReport() string {
	s := r.Summary()

	var b strings.Builder
	fmt.Fprintf(&b, "Scrape job %s\n", s.JobID)
	fmt.Fprintf(&b, "Started: %s\n", utils.FormatTimestamp(s.StartedAt))
	fmt.Fprintf(&b, "Elapsed: %s\n", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(&b, "Posts: %d (skipped %d)\n", s.Posts, s.Skipped)
	for _, m := range r.keywords {
		fmt.Fprintf(&b, "- %s: %s, %d posts, %d skipped, %s\n",
			m.Keyword, m.Outcome, m.Posts, m.Skipped, m.Duration.Round(time.Millisecond))
	}
	return b.String()
}

// Finish logs the summary and any alerts.
func (r *Run) Finish(logger logrus.FieldLogger) Summary {
	s := r.Summary()

	logger.WithFields(logrus.Fields{
		"keywords":     s.Keywords,
		"ok":           s.Outcomes[OutcomeOK],
		"rate_limited": s.Outcomes[OutcomeRateLimited],
		"failed":       s.Outcomes[OutcomeFailed],
		"cancelled":    s.Outcomes[OutcomeCancelled],
		"skipped":      s.Skipped,
		"elapsed":      s.Elapsed.Round(time.Millisecond).String(),
	}).Infof("--- Job Done. Returning %d posts. ---", s.Posts)
	logger.Debug(r.GenerateReport())

	for _, alert := range r.Alerts() {
		logger.Warn(alert)
	}

	return s
}
