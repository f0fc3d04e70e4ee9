package domain

import "time"

// Post is a published media item.
type Post struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	MediaURL   string    `json:"media_url"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewPost is the payload for creating a post.
type NewPost struct {
	Title    string `json:"title"`
	MediaURL string `json:"media_url"`
}
