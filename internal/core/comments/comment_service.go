package comments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rivo/uniseg"

	"Agora/internal/metrics"
)

const (
	// MaxCommentLength is the maximum comment text length in grapheme clusters
	MaxCommentLength = 10000
)

type commentService struct {
	repo   Repository
	posts  PostChecker
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewCommentService creates a new comment service.
// posts may be nil, in which case post existence is not checked.
func NewCommentService(repo Repository, posts PostChecker, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &commentService{
		repo:   repo,
		posts:  posts,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// AddComment creates a comment on a post
// Flow: Validate -> Check post exists -> Check parent is on the same post -> Insert
func (s *commentService) AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error) {
	if err := validateAddRequest(&req); err != nil {
		return nil, err
	}

	s.logger.Info("adding comment", "user", req.UserID, "post", req.PostID)

	if s.posts != nil {
		exists, err := s.posts.PostExists(ctx, req.PostID)
		if err != nil {
			return nil, fmt.Errorf("failed to check post: %w", err)
		}
		if !exists {
			return nil, ErrPostNotFound
		}
	}

	// A new comment gets a fresh id and may only point at an existing comment
	// of the same post, so the parent chain can never loop back to it.
	if req.ParentCommentID != nil {
		parent, err := s.repo.GetByID(ctx, *req.ParentCommentID)
		if err != nil {
			if errors.Is(err, ErrCommentNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("failed to get parent comment: %w", err)
		}
		if parent.PostID != req.PostID {
			return nil, ErrInvalidParent
		}
	}

	now := s.now().UTC()
	comment := &Comment{
		ID:              s.newID(),
		PostID:          req.PostID,
		UserID:          req.UserID,
		Text:            req.Text,
		Likes:           0,
		ParentCommentID: req.ParentCommentID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, comment); err != nil {
		s.logger.Error("failed to add comment", "post", req.PostID, "error", err)
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return comment, nil
}

// LikeComment bumps the comment's like counter
func (s *commentService) LikeComment(ctx context.Context, commentID string) (*Comment, error) {
	if strings.TrimSpace(commentID) == "" {
		return nil, NewValidationError("commentId", "required")
	}

	comment, err := s.repo.IncrementLikes(ctx, commentID)
	if err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			return nil, ErrCommentNotFound
		}
		s.logger.Error("failed to like comment", "comment", commentID, "error", err)
		return nil, fmt.Errorf("failed to like comment: %w", err)
	}

	metrics.CommentLikes.Inc()
	s.logger.Info("comment liked", "comment", commentID, "likes", comment.Likes)

	return comment, nil
}

// GetMostLikedComment returns the post's top comment, or nil if it has none
func (s *commentService) GetMostLikedComment(ctx context.Context, postID string) (*Comment, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, NewValidationError("postId", "required")
	}

	comment, err := s.repo.GetTopByPost(ctx, postID)
	if err != nil {
		if errors.Is(err, ErrCommentNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get most liked comment for post %s: %w", postID, err)
	}
	return comment, nil
}

// TopCommentsForPosts returns the top comment of each post that has any
func (s *commentService) TopCommentsForPosts(ctx context.Context, postIDs []string) (map[string]*Comment, error) {
	if len(postIDs) == 0 {
		return map[string]*Comment{}, nil
	}

	top, err := s.repo.GetTopByPosts(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get top comments: %w", err)
	}
	return top, nil
}

// GetThread returns the post's comments as a reply tree
func (s *commentService) GetThread(ctx context.Context, postID string) ([]*ThreadNode, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, NewValidationError("postId", "required")
	}

	list, err := s.repo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return BuildThread(list), nil
}

// CountByPosts returns comment counts per post
func (s *commentService) CountByPosts(ctx context.Context, postIDs []string) (map[string]int, error) {
	if len(postIDs) == 0 {
		return map[string]int{}, nil
	}

	counts, err := s.repo.CountByPosts(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	return counts, nil
}

// CommentExists reports whether the comment is stored
func (s *commentService) CommentExists(ctx context.Context, commentID string) (bool, error) {
	if strings.TrimSpace(commentID) == "" {
		return false, nil
	}

	_, err := s.repo.GetByID(ctx, commentID)
	if errors.Is(err, ErrCommentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check comment: %w", err)
	}
	return true, nil
}

// GetComment looks up one comment by id
func (s *commentService) GetComment(ctx context.Context, commentID string) (*Comment, error) {
	if strings.TrimSpace(commentID) == "" {
		return nil, NewValidationError("commentId", "required")
	}

	comment, err := s.repo.GetByID(ctx, commentID)
	if errors.Is(err, ErrCommentNotFound) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

func validateAddRequest(req *AddCommentRequest) error {
	if strings.TrimSpace(req.PostID) == "" {
		return NewValidationError("postId", "required")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return NewValidationError("userId", "required")
	}
	if strings.TrimSpace(req.Text) == "" {
		return ErrContentEmpty
	}
	if uniseg.GraphemeClusterCount(req.Text) > MaxCommentLength {
		return ErrContentTooLong
	}
	if req.ParentCommentID != nil && strings.TrimSpace(*req.ParentCommentID) == "" {
		req.ParentCommentID = nil
	}
	return nil
}
