package models

import "time"

// Publication records a post successfully pushed to the blog.
type Publication struct {
	ID        int64
	UserID    int64
	Title     string
	URL       string
	CreatedAt time.Time
}
