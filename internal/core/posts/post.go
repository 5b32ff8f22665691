package posts

import (
	"time"
)

// Post is a user's published text and images.
// Hidden posts stay in storage and remain editable by their owner but are
// left out of the public feed.
type Post struct {
	CreatedAt    time.Time `json:"createdAt" db:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at" bson:"updated_at"`
	ID           string    `json:"id" db:"id" bson:"_id"`
	UserID       string    `json:"userId" db:"user_id" bson:"user_id"`
	Text         string    `json:"text,omitempty" db:"text" bson:"text"`
	ImageURLs    []string  `json:"imageUrls" db:"image_urls" bson:"image_urls"`
	LikeCount    int       `json:"likeCount" db:"-" bson:"-"`
	CommentCount int       `json:"commentCount" db:"-" bson:"-"`
	Hidden       bool      `json:"hidden" db:"hidden" bson:"hidden"`
}

// CreatePostRequest represents input for creating a new post
type CreatePostRequest struct {
	Text      string   `json:"text"`
	ImageURLs []string `json:"imageUrls"`
}

// EditPostRequest represents a partial update.
// Empty Text or an empty ImageURLs list leaves the stored value unchanged.
type EditPostRequest struct {
	Text      string   `json:"text"`
	ImageURLs []string `json:"imageUrls"`
}

// Cursor marks a position in a newest-first post listing
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// ListQuery selects posts for feeds, newest first (created_at DESC, id DESC)
type ListQuery struct {
	After         *Cursor // only posts strictly older than this position
	OwnerID       string  // empty for all owners
	Limit         int
	IncludeHidden bool
}

// CursorOf returns the cursor positioned at p
func CursorOf(p *Post) Cursor {
	return Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}

// IsAfter reports whether p sorts strictly after the cursor in newest-first order
func (c Cursor) IsAfter(p *Post) bool {
	if p.CreatedAt.Equal(c.CreatedAt) {
		return p.ID < c.ID
	}
	return p.CreatedAt.Before(c.CreatedAt)
}
