package utils

import (
	"errors"
	"math"
	"time"
)

var ErrTimestampOutOfRange = errors.New("timestamp out of range")

// Bounds of years 1 through 9999, the range time.Time can marshal to JSON.
var (
	minEpochSeconds = float64(time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC).Unix())
	maxEpochSeconds = float64(time.Date(10000, time.January, 1, 0, 0, 0, 0, time.UTC).Unix())
)

// FromEpochSeconds converts a possibly fractional Unix timestamp to UTC,
// keeping microsecond precision. Values outside years 1 to 9999 are rejected.
func FromEpochSeconds(seconds float64) (time.Time, error) {
	if math.IsNaN(seconds) || seconds < minEpochSeconds || seconds >= maxEpochSeconds {
		return time.Time{}, ErrTimestampOutOfRange
	}
	whole, frac := math.Modf(seconds)
	nanos := math.Round(frac*1e6) * 1e3
	t := time.Unix(int64(whole), int64(nanos)).UTC()
	// Rounding the fraction can carry into year 10000.
	if t.Year() > 9999 {
		return time.Time{}, ErrTimestampOutOfRange
	}
	return t, nil
}

func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
