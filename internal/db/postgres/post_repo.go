package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lib/pq"

	"Agora/internal/core/posts"
)

type postgresPostRepo struct {
	db *sql.DB
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sql.DB) posts.Repository {
	return &postgresPostRepo{db: db}
}

const postColumns = `id, user_id, text, image_urls, hidden, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*posts.Post, error) {
	var (
		post   posts.Post
		images pq.StringArray
	)
	if err := row.Scan(
		&post.ID, &post.UserID, &post.Text, &images,
		&post.Hidden, &post.CreatedAt, &post.UpdatedAt,
	); err != nil {
		return nil, err
	}
	post.ImageURLs = []string(images)
	if post.ImageURLs == nil {
		post.ImageURLs = []string{}
	}
	return &post, nil
}

// Create inserts a new post
func (r *postgresPostRepo) Create(ctx context.Context, post *posts.Post) error {
	query := `
		INSERT INTO posts (` + postColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		post.ID, post.UserID, post.Text, pq.Array(post.ImageURLs),
		post.Hidden, post.CreatedAt, post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by id
func (r *postgresPostRepo) GetByID(ctx context.Context, id string) (*posts.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// UpdateContentOwned rewrites text and images in one owner-filtered statement.
// Empty values keep the stored column; hidden is left alone.
func (r *postgresPostRepo) UpdateContentOwned(ctx context.Context, id, userID, text string, imageURLs []string, updatedAt time.Time) (*posts.Post, error) {
	query := `
		UPDATE posts
		SET text = CASE WHEN $3::text = '' THEN text ELSE $3::text END,
		    image_urls = CASE WHEN COALESCE(cardinality($4::text[]), 0) = 0 THEN image_urls ELSE $4::text[] END,
		    updated_at = $5
		WHERE id = $1 AND user_id = $2
		RETURNING ` + postColumns

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id, userID, text, pq.Array(imageURLs), updatedAt))
	if err == sql.ErrNoRows {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

// SetHiddenOwned hides a post in one owner-filtered statement.
// Text and images are left alone.
func (r *postgresPostRepo) SetHiddenOwned(ctx context.Context, id, userID string, updatedAt time.Time) (*posts.Post, error) {
	// SET expressions see the old row, so updated_at only moves on the first hide
	query := `
		UPDATE posts
		SET updated_at = CASE WHEN hidden THEN updated_at ELSE $3 END,
		    hidden = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING ` + postColumns

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id, userID, updatedAt))
	if err == sql.ErrNoRows {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hide post: %w", err)
	}
	return post, nil
}

// DeleteOwned removes a post, its comments and all likes on either, atomically
func (r *postgresPostRepo) DeleteOwned(ctx context.Context, id, userID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx, "delete_post")

	// Likes have no FK to their target, so clear them before the rows they point at
	likeQuery := `
		DELETE FROM likes
		WHERE (target_type = 'post' AND target_id = $1)
		   OR (target_type = 'comment' AND target_id IN (SELECT id FROM comments WHERE post_id = $1))
	`
	if _, err := tx.ExecContext(ctx, likeQuery, id); err != nil {
		return fmt.Errorf("failed to delete likes for post %s: %w", id, err)
	}

	// comments go with the post via ON DELETE CASCADE
	result, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rowsAffected == 0 {
		// rolls back the like deletion too
		return posts.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit post deletion: %w", err)
	}
	return nil
}

// List returns posts newest first using keyset pagination on (created_at, id)
func (r *postgresPostRepo) List(ctx context.Context, q posts.ListQuery) ([]*posts.Post, error) {
	var (
		conditions []string
		args       []any
	)

	if !q.IncludeHidden {
		conditions = append(conditions, "hidden = FALSE")
	}
	if q.OwnerID != "" {
		args = append(args, q.OwnerID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if q.After != nil {
		args = append(args, q.After.CreatedAt, q.After.ID)
		conditions = append(conditions, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Printf("Failed to close rows: %v", closeErr)
		}
	}()

	result := make([]*posts.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		result = append(result, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}
	return result, nil
}
