package likes

import (
	"time"
)

// TargetType tags what a Like points at. Posts and comments share one likes
// collection and a single (user, target, type) uniqueness constraint.
type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
)

// Valid reports whether t is one of the known target kinds
func (t TargetType) Valid() bool {
	return t == TargetPost || t == TargetComment
}

// Like records that a user likes a post or a comment
type Like struct {
	CreatedAt  time.Time  `json:"createdAt" db:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at" bson:"updated_at"`
	ID         string     `json:"id" db:"id" bson:"_id"`
	UserID     string     `json:"userId" db:"user_id" bson:"user_id"`
	TargetID   string     `json:"targetId" db:"target_id" bson:"target_id"`
	TargetType TargetType `json:"targetType" db:"target_type" bson:"target_type"`
}

// Target identifies the liked entity
type Target struct {
	ID   string
	Type TargetType
}

// ToggleLikeRequest is the input for toggling a like
type ToggleLikeRequest struct {
	UserID     string     `json:"-"`
	TargetID   string     `json:"targetId"`
	TargetType TargetType `json:"targetType"`
}

// ToggleResult reports the state after a toggle
// Liked is true when the toggle created a like and false when it removed one
type ToggleResult struct {
	Liked bool `json:"liked"`
	Count int  `json:"count"`
}
