package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"Agora/internal/metrics"
)

const (
	// MaxImagesPerPost limits the number of image references on a post
	MaxImagesPerPost = 10

	// MaxPostLength is the maximum post text length in bytes
	MaxPostLength = 30000
)

type postService struct {
	repo     Repository
	counters Counters
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewPostService creates a new post service
func NewPostService(repo Repository, counters Counters, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &postService{
		repo:     repo,
		counters: counters,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CreatePost creates a new visible post with zero counters
func (s *postService) CreatePost(ctx context.Context, userID string, req CreatePostRequest) (*Post, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, NewValidationError("userId", "required")
	}
	if err := validateContent(req.Text, req.ImageURLs); err != nil {
		return nil, err
	}

	s.logger.Info("creating post", "user", userID)

	now := s.now().UTC()
	images := req.ImageURLs
	if images == nil {
		images = []string{}
	}
	post := &Post{
		ID:        s.newID(),
		UserID:    userID,
		Text:      req.Text,
		ImageURLs: images,
		Hidden:    false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.logger.Error("failed to create post", "user", userID, "error", err)
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	metrics.PostMutations.WithLabelValues("create").Inc()
	s.logger.Info("post created", "post", post.ID, "user", userID)

	return post, nil
}

// FindPostByID returns a post with its counts
func (s *postService) FindPostByID(ctx context.Context, postID string) (*Post, error) {
	if strings.TrimSpace(postID) == "" {
		return nil, NewValidationError("postId", "required")
	}

	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("post not found", "post", postID)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	s.fillCounts(ctx, []*Post{post})
	return post, nil
}

// EditPost applies a partial update to the caller's post
func (s *postService) EditPost(ctx context.Context, userID, postID string, req EditPostRequest) (*Post, error) {
	if err := validateIDs(userID, postID); err != nil {
		return nil, err
	}
	if err := validateContent(req.Text, req.ImageURLs); err != nil {
		return nil, err
	}

	post, err := s.repo.UpdateContentOwned(ctx, postID, userID, req.Text, req.ImageURLs, s.now().UTC())
	if err != nil {
		return nil, s.mutationError("edit", postID, userID, err)
	}

	metrics.PostMutations.WithLabelValues("edit").Inc()
	s.logger.Info("post updated", "post", postID, "user", userID)

	s.fillCounts(ctx, []*Post{post})
	return post, nil
}

// HidePost removes the caller's post from the public feed
func (s *postService) HidePost(ctx context.Context, userID, postID string) (*Post, error) {
	if err := validateIDs(userID, postID); err != nil {
		return nil, err
	}

	post, err := s.repo.SetHiddenOwned(ctx, postID, userID, s.now().UTC())
	if err != nil {
		return nil, s.mutationError("hide", postID, userID, err)
	}

	metrics.PostMutations.WithLabelValues("hide").Inc()
	s.logger.Info("post hidden", "post", postID, "user", userID)

	s.fillCounts(ctx, []*Post{post})
	return post, nil
}

// DeletePost hard-deletes the caller's post
func (s *postService) DeletePost(ctx context.Context, userID, postID string) error {
	if err := validateIDs(userID, postID); err != nil {
		return err
	}

	if err := s.repo.DeleteOwned(ctx, postID, userID); err != nil {
		return s.mutationError("delete", postID, userID, err)
	}

	metrics.PostMutations.WithLabelValues("delete").Inc()
	s.logger.Info("post deleted", "post", postID, "user", userID)
	return nil
}

// AuthorizeOwner is the explicit owner check callers may run before a mutation
func (s *postService) AuthorizeOwner(ctx context.Context, userID, postID string) error {
	if err := validateIDs(userID, postID); err != nil {
		return err
	}

	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to find post: %w", err)
	}

	if post.UserID != userID {
		s.logger.Warn("post owner mismatch", "post", postID, "user", userID)
		return ErrForbidden
	}
	return nil
}

// ListPosts returns posts newest first with counts filled in
func (s *postService) ListPosts(ctx context.Context, q ListQuery) ([]*Post, error) {
	if q.Limit <= 0 {
		return nil, NewValidationError("limit", "must be positive")
	}

	list, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	s.fillCounts(ctx, list)
	return list, nil
}

// PostExists reports whether the post exists
func (s *postService) PostExists(ctx context.Context, postID string) (bool, error) {
	_, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CanView checks hidden-post visibility without loading counts
func (s *postService) CanView(ctx context.Context, postID, viewerID string) (bool, error) {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to find post: %w", err)
	}
	return !post.Hidden || (viewerID != "" && post.UserID == viewerID), nil
}

// mutationError folds missing and foreign posts into ErrNotFound
func (s *postService) mutationError(op, postID, userID string, err error) error {
	if errors.Is(err, ErrNotFound) {
		s.logger.Warn("post not found or not owned by user", "op", op, "post", postID, "user", userID)
		return ErrNotFound
	}
	s.logger.Error("post mutation failed", "op", op, "post", postID, "error", err)
	return fmt.Errorf("failed to %s post: %w", op, err)
}

// fillCounts sets like and comment counts from the configured counters.
// A failing counter leaves its count at zero; posts are still returned.
func (s *postService) fillCounts(ctx context.Context, list []*Post) {
	if len(list) == 0 {
		return
	}

	ids := make([]string, len(list))
	for i, p := range list {
		ids[i] = p.ID
	}

	if s.counters.Likes != nil {
		counts, err := s.counters.Likes(ctx, ids)
		if err != nil {
			s.logger.Warn("failed to count post likes", "posts", len(ids), "error", err)
		} else {
			for _, p := range list {
				p.LikeCount = counts[p.ID]
			}
		}
	}

	if s.counters.Comments != nil {
		counts, err := s.counters.Comments(ctx, ids)
		if err != nil {
			s.logger.Warn("failed to count post comments", "posts", len(ids), "error", err)
		} else {
			for _, p := range list {
				p.CommentCount = counts[p.ID]
			}
		}
	}
}

func validateIDs(userID, postID string) error {
	if strings.TrimSpace(userID) == "" {
		return NewValidationError("userId", "required")
	}
	if strings.TrimSpace(postID) == "" {
		return NewValidationError("postId", "required")
	}
	return nil
}

func validateContent(text string, images []string) error {
	if len(text) > MaxPostLength {
		return NewValidationError("text", fmt.Sprintf("must not exceed %d bytes", MaxPostLength))
	}
	if len(images) > MaxImagesPerPost {
		return NewValidationError("imageUrls", fmt.Sprintf("must not exceed %d images", MaxImagesPerPost))
	}
	for _, u := range images {
		if strings.TrimSpace(u) == "" {
			return NewValidationError("imageUrls", "must not contain empty entries")
		}
	}
	return nil
}
