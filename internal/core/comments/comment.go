package comments

import (
	"time"
)

// Comment is a reply on a post. Replies to other comments point at their
// parent through ParentCommentID; top-level comments leave it nil.
// PostID and UserID never change after creation.
type Comment struct {
	CreatedAt       time.Time `json:"createdAt" db:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at" bson:"updated_at"`
	ParentCommentID *string   `json:"parentCommentId" db:"parent_comment_id" bson:"parent_comment_id"`
	ID              string    `json:"id" db:"id" bson:"_id"`
	PostID          string    `json:"postId" db:"post_id" bson:"post_id"`
	UserID          string    `json:"userId" db:"user_id" bson:"user_id"`
	Text            string    `json:"text" db:"text" bson:"text"`
	Likes           int       `json:"likes" db:"likes" bson:"likes"`
}

// IsReply reports whether the comment answers another comment
func (c *Comment) IsReply() bool {
	return c.ParentCommentID != nil
}

// AddCommentRequest is the input for adding a comment to a post
type AddCommentRequest struct {
	ParentCommentID *string `json:"parentCommentId,omitempty"`
	PostID          string  `json:"-"`
	UserID          string  `json:"-"`
	Text            string  `json:"text"`
}

// ThreadNode is a comment with its direct replies, used for threaded views
type ThreadNode struct {
	Comment *Comment      `json:"comment"`
	Replies []*ThreadNode `json:"replies"`
}
