// Package memory keeps posts, comments and likes in process memory.
// It backs the "memory" database backend and the service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"Agora/internal/core/comments"
	"Agora/internal/core/likes"
	"Agora/internal/core/posts"
)

type likeKey struct {
	userID     string
	targetID   string
	targetType likes.TargetType
}

// Store holds all three collections behind one lock so cascading deletes
// and like toggles are atomic
type Store struct {
	posts    map[string]*posts.Post
	comments map[string]*comments.Comment
	likes    map[likeKey]*likes.Like
	mu       sync.RWMutex
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		posts:    make(map[string]*posts.Post),
		comments: make(map[string]*comments.Comment),
		likes:    make(map[likeKey]*likes.Like),
	}
}

// Posts returns the post repository view of the store
func (s *Store) Posts() posts.Repository { return &postRepo{s: s} }

// Comments returns the comment repository view of the store
func (s *Store) Comments() comments.Repository { return &commentRepo{s: s} }

// Likes returns the like repository view of the store
func (s *Store) Likes() likes.Repository { return &likeRepo{s: s} }

// ---- posts ----

type postRepo struct{ s *Store }

func copyPost(p *posts.Post) *posts.Post {
	c := *p
	c.ImageURLs = append([]string{}, p.ImageURLs...)
	return &c
}

func (r *postRepo) Create(ctx context.Context, post *posts.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.posts[post.ID] = copyPost(post)
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, posts.ErrNotFound
	}
	return copyPost(p), nil
}

func (r *postRepo) UpdateContentOwned(ctx context.Context, id, userID, text string, imageURLs []string, updatedAt time.Time) (*posts.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok || p.UserID != userID {
		return nil, posts.ErrNotFound
	}
	if text != "" {
		p.Text = text
	}
	if len(imageURLs) > 0 {
		p.ImageURLs = append([]string{}, imageURLs...)
	}
	p.UpdatedAt = updatedAt
	return copyPost(p), nil
}

func (r *postRepo) SetHiddenOwned(ctx context.Context, id, userID string, updatedAt time.Time) (*posts.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok || p.UserID != userID {
		return nil, posts.ErrNotFound
	}
	if !p.Hidden {
		p.Hidden = true
		p.UpdatedAt = updatedAt
	}
	return copyPost(p), nil
}

func (r *postRepo) DeleteOwned(ctx context.Context, id, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok || p.UserID != userID {
		return posts.ErrNotFound
	}

	delete(r.s.posts, id)
	removed := map[string]bool{}
	for cid, c := range r.s.comments {
		if c.PostID == id {
			removed[cid] = true
			delete(r.s.comments, cid)
		}
	}
	for k := range r.s.likes {
		if (k.targetType == likes.TargetPost && k.targetID == id) ||
			(k.targetType == likes.TargetComment && removed[k.targetID]) {
			delete(r.s.likes, k)
		}
	}
	return nil
}

func (r *postRepo) List(ctx context.Context, q posts.ListQuery) ([]*posts.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]*posts.Post, 0)
	for _, p := range r.s.posts {
		if !q.IncludeHidden && p.Hidden {
			continue
		}
		if q.OwnerID != "" && p.UserID != q.OwnerID {
			continue
		}
		if q.After != nil && !q.After.IsAfter(p) {
			continue
		}
		result = append(result, copyPost(p))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if q.Limit > 0 && len(result) > q.Limit {
		result = result[:q.Limit]
	}
	return result, nil
}

// ---- comments ----

type commentRepo struct{ s *Store }

func copyComment(c *comments.Comment) *comments.Comment {
	cp := *c
	if c.ParentCommentID != nil {
		parent := *c.ParentCommentID
		cp.ParentCommentID = &parent
	}
	return &cp
}

func (r *commentRepo) Create(ctx context.Context, comment *comments.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.comments[comment.ID] = copyComment(comment)
	return nil
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (*comments.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, comments.ErrCommentNotFound
	}
	return copyComment(c), nil
}

func (r *commentRepo) IncrementLikes(ctx context.Context, id string) (*comments.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, comments.ErrCommentNotFound
	}
	c.Likes++
	return copyComment(c), nil
}

func (r *commentRepo) ListByPost(ctx context.Context, postID string) ([]*comments.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.listByPostLocked(postID), nil
}

func (r *commentRepo) listByPostLocked(postID string) []*comments.Comment {
	result := make([]*comments.Comment, 0)
	for _, c := range r.s.comments {
		if c.PostID == postID {
			result = append(result, copyComment(c))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (r *commentRepo) GetTopByPost(ctx context.Context, postID string) (*comments.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	top := comments.TopComment(r.listByPostLocked(postID))
	if top == nil {
		return nil, comments.ErrCommentNotFound
	}
	return top, nil
}

func (r *commentRepo) GetTopByPosts(ctx context.Context, postIDs []string) (map[string]*comments.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := toSet(postIDs)
	list := make([]*comments.Comment, 0)
	for _, c := range r.s.comments {
		if wanted[c.PostID] {
			list = append(list, copyComment(c))
		}
	}
	return comments.TopByPost(list), nil
}

func (r *commentRepo) CountByPosts(ctx context.Context, postIDs []string) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := toSet(postIDs)
	counts := make(map[string]int)
	for _, c := range r.s.comments {
		if wanted[c.PostID] {
			counts[c.PostID]++
		}
	}
	return counts, nil
}

// ---- likes ----

type likeRepo struct{ s *Store }

func keyOf(userID string, target likes.Target) likeKey {
	return likeKey{userID: userID, targetID: target.ID, targetType: target.Type}
}

func (r *likeRepo) Toggle(ctx context.Context, like *likes.Like) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := keyOf(like.UserID, likes.Target{ID: like.TargetID, Type: like.TargetType})
	if _, ok := r.s.likes[k]; ok {
		delete(r.s.likes, k)
		return false, nil
	}
	cp := *like
	r.s.likes[k] = &cp
	return true, nil
}

func (r *likeRepo) GetByUserAndTarget(ctx context.Context, userID string, target likes.Target) (*likes.Like, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.likes[keyOf(userID, target)]
	if !ok {
		return nil, likes.ErrLikeNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *likeRepo) CountByTarget(ctx context.Context, target likes.Target) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for k := range r.s.likes {
		if k.targetID == target.ID && k.targetType == target.Type {
			n++
		}
	}
	return n, nil
}

func (r *likeRepo) CountByTargets(ctx context.Context, targetType likes.TargetType, targetIDs []string) (map[string]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	wanted := toSet(targetIDs)
	counts := make(map[string]int)
	for k := range r.s.likes {
		if k.targetType == targetType && wanted[k.targetID] {
			counts[k.targetID]++
		}
	}
	return counts, nil
}

func (r *likeRepo) ListByTarget(ctx context.Context, target likes.Target) ([]*likes.Like, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]*likes.Like, 0)
	for k, l := range r.s.likes {
		if k.targetID == target.ID && k.targetType == target.Type {
			cp := *l
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
