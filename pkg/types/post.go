package types

import (
	"fmt"
	"time"
)

// Post is a search result flattened into the shape returned by /scrape-facebook.
type Post struct {
	PostText        string    `json:"post_text"`
	PostID          *string   `json:"post_id"`
	PostURL         *string   `json:"post_url"`
	AuthorName      string    `json:"author_name"`
	CreatedAt       time.Time `json:"created_at"`
	Likes           int       `json:"likes"`
	Comments        int       `json:"comments"`
	Shares          int       `json:"shares"`
	Views           int       `json:"views"`
	FoundViaKeyword string    `json:"found_via_keyword"`
}

// FilterStats counts what happened to one keyword's raw results.
type FilterStats struct {
	TotalPosts int `json:"total_posts"`
	KeptPosts  int `json:"kept_posts"`
	EmptyText  int `json:"empty_text"`
	Malformed  int `json:"malformed"`
}

// Skipped is the number of raw results that did not become a Post.
func (fs FilterStats) Skipped() int {
	return fs.EmptyText + fs.Malformed
}

func (fs FilterStats) String() string {
	return fmt.Sprintf("Total: %d, Kept: %d, Empty text: %d, Malformed: %d",
		fs.TotalPosts, fs.KeptPosts, fs.EmptyText, fs.Malformed)
}
