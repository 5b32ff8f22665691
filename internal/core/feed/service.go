package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"Agora/internal/core/comments"
	"Agora/internal/core/posts"
	"Agora/internal/metrics"
)

// PostLister is the part of the post service the feed reads from
type PostLister interface {
	ListPosts(ctx context.Context, q posts.ListQuery) ([]*posts.Post, error)
}

// CommentRanker is the part of the comment service used for enrichment
type CommentRanker interface {
	TopCommentsForPosts(ctx context.Context, postIDs []string) (map[string]*comments.Comment, error)
	GetMostLikedComment(ctx context.Context, postID string) (*comments.Comment, error)
}

type feedService struct {
	posts        PostLister
	comments     CommentRanker
	cursors      *CursorCodec
	logger       *slog.Logger
	defaultLimit int
	maxLimit     int
}

// Option configures a feed service
type Option func(*feedService)

// WithPageLimits overrides DefaultLimit and MaxLimit. Non-positive values keep the defaults.
func WithPageLimits(defaultLimit, maxLimit int) Option {
	return func(s *feedService) {
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
	}
}

// NewFeedService creates a new feed service
func NewFeedService(postLister PostLister, ranker CommentRanker, cursors *CursorCodec, logger *slog.Logger, opts ...Option) Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &feedService{
		posts:        postLister,
		comments:     ranker,
		cursors:      cursors,
		logger:       logger,
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.defaultLimit > s.maxLimit {
		s.defaultLimit = s.maxLimit
	}
	return s
}

// GetFeed returns the public feed: visible posts only
func (s *feedService) GetFeed(ctx context.Context, req GetFeedRequest) (*FeedResponse, error) {
	limit, after, err := s.pageParams(req.Limit, req.Cursor)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("retrieving feed", "limit", limit)

	return s.assemble(ctx, posts.ListQuery{
		Limit:         limit,
		After:         after,
		IncludeHidden: false,
	})
}

// GetUserFeeds returns one owner's posts; the owner also sees their hidden posts
func (s *feedService) GetUserFeeds(ctx context.Context, req GetUserFeedRequest) (*FeedResponse, error) {
	if strings.TrimSpace(req.OwnerID) == "" {
		return nil, NewValidationError("userId", "userId is required")
	}

	limit, after, err := s.pageParams(req.Limit, req.Cursor)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("retrieving user feed", "owner", req.OwnerID, "viewer", req.ViewerID, "limit", limit)

	return s.assemble(ctx, posts.ListQuery{
		OwnerID:       req.OwnerID,
		Limit:         limit,
		After:         after,
		IncludeHidden: req.ViewerID != "" && req.ViewerID == req.OwnerID,
	})
}

// assemble loads one page of posts and attaches each post's top comment
func (s *feedService) assemble(ctx context.Context, q posts.ListQuery) (*FeedResponse, error) {
	pageSize := q.Limit
	// Fetch one extra row to learn whether another page exists
	q.Limit = pageSize + 1

	list, err := s.posts.ListPosts(ctx, q)
	if err != nil {
		s.logger.Error("failed to query feed posts", "error", err)
		return nil, fmt.Errorf("failed to retrieve feed: %w", err)
	}

	var cursor *string
	if len(list) > pageSize {
		list = list[:pageSize]
		next := s.cursors.Encode(posts.CursorOf(list[len(list)-1]))
		cursor = &next
	}

	feedPosts := s.enrich(ctx, list)
	metrics.FeedPostsServed.Observe(float64(len(feedPosts)))

	return &FeedResponse{
		Feed:   feedPosts,
		Cursor: cursor,
	}, nil
}

// enrich attaches the most liked comment to every post.
// The page is ranked with one batched lookup. If that fails, each post is
// looked up on its own and a failing post gets no comment instead of
// failing the page.
func (s *feedService) enrich(ctx context.Context, list []*posts.Post) []*FeedPost {
	result := make([]*FeedPost, len(list))
	for i, p := range list {
		result[i] = &FeedPost{Post: p}
	}
	if len(list) == 0 {
		return result
	}

	ids := make([]string, len(list))
	for i, p := range list {
		ids[i] = p.ID
	}

	top, err := s.comments.TopCommentsForPosts(ctx, ids)
	if err == nil {
		for _, fp := range result {
			fp.MostLikedComment = top[fp.ID]
		}
		return result
	}

	metrics.FeedEnrichmentFailures.WithLabelValues("batch").Inc()
	s.logger.Warn("batched top comment lookup failed, falling back to per-post lookups",
		"posts", len(ids), "error", err)

	for _, fp := range result {
		comment, err := s.comments.GetMostLikedComment(ctx, fp.ID)
		if err != nil {
			metrics.FeedEnrichmentFailures.WithLabelValues("post").Inc()
			s.logger.Error("failed to fetch most liked comment", "post", fp.ID, "error", err)
			continue
		}
		fp.MostLikedComment = comment
	}
	return result
}

func (s *feedService) pageParams(limit int, cursor *string) (int, *posts.Cursor, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		return 0, nil, NewValidationError("limit", fmt.Sprintf("limit must not exceed %d", s.maxLimit))
	}

	if cursor == nil || *cursor == "" {
		return limit, nil, nil
	}

	after, err := s.cursors.Decode(*cursor)
	if err != nil {
		return 0, nil, err
	}
	return limit, after, nil
}
