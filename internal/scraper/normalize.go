package scraper

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/tidwall/gjson"

	"facebook-scraper/internal/utils"
	"facebook-scraper/pkg/types"
)

const unknownAuthor = "Unknown"

var (
	// ErrEmptyText marks a post with nothing left after cleaning. Such posts are dropped silently.
	ErrEmptyText = errors.New("post has no text")
	// ErrMalformedPost marks a result whose fields have unexpected types.
	ErrMalformedPost = errors.New("malformed post")
)

// A URL runs until the next whitespace rune, using the same notion of
// whitespace as isSpace.
var urlPattern = regexp.MustCompile(`https?://[^\t\n\v\f\r\x{1c}-\x{1f}\x{85}\p{Z}]+`)

// isSpace is unicode.IsSpace plus the information separators U+001C to U+001F.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// CleanText removes URLs, collapses every whitespace run to one space and trims the result.
func CleanText(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	return strings.Join(strings.FieldsFunc(text, isSpace), " ")
}

// NormalizePost flattens one raw search result. now stands in for a missing timestamp.
func NormalizePost(raw gjson.Result, keyword string, now time.Time) (types.Post, error) {
	if !raw.IsObject() {
		return types.Post{}, fmt.Errorf("%w: expected object, got %s", ErrMalformedPost, raw.Type)
	}

	createdAt, err := postTime(raw.Get("timestamp"), now)
	if err != nil {
		return types.Post{}, err
	}

	likes, err := countField(raw, "reactions.like")
	if err != nil {
		return types.Post{}, err
	}
	if likes == 0 {
		if likes, err = countField(raw, "reactions_count"); err != nil {
			return types.Post{}, err
		}
	}

	text, err := postText(raw)
	if err != nil {
		return types.Post{}, err
	}
	text = CleanText(text)
	if text == "" {
		return types.Post{}, ErrEmptyText
	}

	post := types.Post{
		PostText:        text,
		AuthorName:      authorName(raw.Get("author.name")),
		CreatedAt:       createdAt,
		Likes:           likes,
		FoundViaKeyword: keyword,
	}

	if post.PostID, err = optionalString(raw, "post_id"); err != nil {
		return types.Post{}, err
	}
	if post.PostURL, err = optionalString(raw, "url"); err != nil {
		return types.Post{}, err
	}
	if post.Comments, err = countField(raw, "comments_count"); err != nil {
		return types.Post{}, err
	}
	if post.Shares, err = countField(raw, "reshare_count"); err != nil {
		return types.Post{}, err
	}
	if post.Views, err = countField(raw, "video_view_count"); err != nil {
		return types.Post{}, err
	}

	return post, nil
}

func postTime(ts gjson.Result, now time.Time) (time.Time, error) {
	var seconds float64
	switch ts.Type {
	case gjson.Null:
		return now.UTC(), nil
	case gjson.Number:
		seconds = ts.Float()
	case gjson.String:
		var err error
		if seconds, err = strconv.ParseFloat(strings.TrimSpace(ts.Str), 64); err != nil {
			return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrMalformedPost, ts.Str)
		}
	default:
		return time.Time{}, fmt.Errorf("%w: timestamp is %s", ErrMalformedPost, ts.Type)
	}

	t, err := utils.FromEpochSeconds(seconds)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v (%s)", ErrMalformedPost, err, ts.Raw)
	}
	return t, nil
}

// postText prefers message_rich and falls back to message when it is absent or null.
func postText(raw gjson.Result) (string, error) {
	for _, field := range []string{"message_rich", "message"} {
		value := raw.Get(field)
		switch value.Type {
		case gjson.Null:
			continue
		case gjson.String:
			return value.Str, nil
		default:
			return "", fmt.Errorf("%w: %s is %s", ErrMalformedPost, field, value.Type)
		}
	}
	return "", nil
}

func authorName(name gjson.Result) string {
	if name.Type == gjson.String && strings.TrimSpace(name.Str) != "" {
		return name.Str
	}
	return unknownAuthor
}

// Counts at or above maxCount would overflow an int.
const maxCount = float64(math.MaxInt)

// countField reads a non-negative count. Fractions are truncated.
func countField(raw gjson.Result, path string) (int, error) {
	value := raw.Get(path)
	var n float64
	switch value.Type {
	case gjson.Null:
		return 0, nil
	case gjson.Number:
		n = value.Float()
	case gjson.String:
		var err error
		if n, err = strconv.ParseFloat(strings.TrimSpace(value.Str), 64); err != nil {
			return 0, fmt.Errorf("%w: %s %q", ErrMalformedPost, path, value.Str)
		}
	default:
		return 0, fmt.Errorf("%w: %s is %s", ErrMalformedPost, path, value.Type)
	}

	if math.IsNaN(n) || n < 0 || n >= maxCount {
		return 0, fmt.Errorf("%w: %s out of range (%s)", ErrMalformedPost, path, value.Raw)
	}
	return int(n), nil
}

func optionalString(raw gjson.Result, path string) (*string, error) {
	value := raw.Get(path)
	switch value.Type {
	case gjson.Null:
		return nil, nil
	case gjson.String:
		s := value.Str
		return &s, nil
	case gjson.Number:
		s := value.Raw
		return &s, nil
	}
	return nil, fmt.Errorf("%w: %s is %s", ErrMalformedPost, path, value.Type)
}
