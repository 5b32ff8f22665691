package likes

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

type likeService struct {
	repo    Repository
	targets TargetChecker
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewLikeService creates a new like service.
// targets may be nil, in which case target existence is left to the caller.
func NewLikeService(repo Repository, targets TargetChecker, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &likeService{
		repo:    repo,
		targets: targets,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// ToggleLike flips the user's like on a post or comment
// Toggle logic:
//   - No like -> Create like (liked=true)
//   - Existing like -> Delete like (liked=false)
func (s *likeService) ToggleLike(ctx context.Context, req ToggleLikeRequest) (*ToggleResult, error) {
	if err := validateToggleRequest(req); err != nil {
		return nil, err
	}

	target := Target{ID: req.TargetID, Type: req.TargetType}

	if s.targets != nil {
		exists, err := s.targets.TargetExists(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("failed to check like target: %w", err)
		}
		if !exists {
			return nil, ErrTargetNotFound
		}
	}

	now := s.now().UTC()
	like := &Like{
		ID:         s.newID(),
		UserID:     req.UserID,
		TargetID:   req.TargetID,
		TargetType: req.TargetType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	liked, err := s.repo.Toggle(ctx, like)
	if err != nil {
		s.logger.Error("like toggle failed",
			"user", req.UserID,
			"target_type", req.TargetType,
			"target", req.TargetID,
			"error", err)
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}

	result := "unliked"
	if liked {
		result = "liked"
	}
	metrics.LikeToggles.WithLabelValues(string(req.TargetType), result).Inc()

	s.logger.Info("like toggled",
		"user", req.UserID,
		"target_type", req.TargetType,
		"target", req.TargetID,
		"liked", liked)

	count, err := s.repo.CountByTarget(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	return &ToggleResult{Liked: liked, Count: count}, nil
}

// CountLikes returns the number of likes on a target
func (s *likeService) CountLikes(ctx context.Context, targetID string, targetType TargetType) (int, error) {
	if err := validateTarget(targetID, targetType); err != nil {
		return 0, err
	}

	count, err := s.repo.CountByTarget(ctx, Target{ID: targetID, Type: targetType})
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

// GetLikers returns the likes on a target for display
func (s *likeService) GetLikers(ctx context.Context, targetID string, targetType TargetType) ([]*Like, error) {
	if err := validateTarget(targetID, targetType); err != nil {
		return nil, err
	}

	likers, err := s.repo.ListByTarget(ctx, Target{ID: targetID, Type: targetType})
	if err != nil {
		return nil, fmt.Errorf("failed to get likers: %w", err)
	}

	s.logger.Debug("likers fetched",
		"target_type", targetType,
		"target", targetID,
		"count", len(likers))

	if likers == nil {
		likers = []*Like{}
	}
	return likers, nil
}

// HasLiked looks up the viewer's own like on a target
func (s *likeService) HasLiked(ctx context.Context, userID, targetID string, targetType TargetType) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, NewValidationError("userId", "required")
	}
	if err := validateTarget(targetID, targetType); err != nil {
		return false, err
	}

	_, err := s.repo.GetByUserAndTarget(ctx, userID, Target{ID: targetID, Type: targetType})
	if errors.Is(err, ErrLikeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check like: %w", err)
	}
	return true, nil
}

func validateToggleRequest(req ToggleLikeRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return NewValidationError("userId", "required")
	}
	return validateTarget(req.TargetID, req.TargetType)
}

func validateTarget(targetID string, targetType TargetType) error {
	if strings.TrimSpace(targetID) == "" {
		return NewValidationError("targetId", "required")
	}
	if !targetType.Valid() {
		return ErrInvalidTargetType
	}
	return nil
}
