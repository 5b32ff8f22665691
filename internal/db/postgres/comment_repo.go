package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/lib/pq"

	"Agora/internal/core/comments"
)

type postgresCommentRepo struct {
	db *sql.DB
}

// NewCommentRepository creates a new PostgreSQL comment repository
func NewCommentRepository(db *sql.DB) comments.Repository {
	return &postgresCommentRepo{db: db}
}

const commentColumns = `id, post_id, parent_comment_id, user_id, text, likes, created_at, updated_at`

// commentRankOrder matches comments.Outranks
const commentRankOrder = `likes DESC, created_at ASC, id ASC`

func scanComment(row rowScanner) (*comments.Comment, error) {
	var (
		comment comments.Comment
		parent  sql.NullString
	)
	if err := row.Scan(
		&comment.ID, &comment.PostID, &parent, &comment.UserID,
		&comment.Text, &comment.Likes, &comment.CreatedAt, &comment.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if parent.Valid {
		comment.ParentCommentID = &parent.String
	}
	return &comment, nil
}

// Create inserts a new comment
func (r *postgresCommentRepo) Create(ctx context.Context, comment *comments.Comment) error {
	query := `
		INSERT INTO comments (` + commentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		comment.ID, comment.PostID, comment.ParentCommentID, comment.UserID,
		comment.Text, comment.Likes, comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		// The post can vanish between the existence check and the insert
		if strings.Contains(err.Error(), "violates foreign key constraint") {
			if strings.Contains(err.Error(), "parent_comment_id") {
				return comments.ErrParentNotFound
			}
			return comments.ErrPostNotFound
		}
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// GetByID retrieves a comment by id
func (r *postgresCommentRepo) GetByID(ctx context.Context, id string) (*comments.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE id = $1`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, comments.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return comment, nil
}

// IncrementLikes bumps the counter in a single statement
func (r *postgresCommentRepo) IncrementLikes(ctx context.Context, id string) (*comments.Comment, error) {
	query := `
		UPDATE comments
		SET likes = likes + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + commentColumns

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, comments.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment comment likes: %w", err)
	}
	return comment, nil
}

// ListByPost returns a post's comments in creation order
func (r *postgresCommentRepo) ListByPost(ctx context.Context, postID string) ([]*comments.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return collectComments(rows)
}

// GetTopByPost returns the highest ranked comment on a post
func (r *postgresCommentRepo) GetTopByPost(ctx context.Context, postID string) (*comments.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE post_id = $1
		ORDER BY ` + commentRankOrder + `
		LIMIT 1
	`

	comment, err := scanComment(r.db.QueryRowContext(ctx, query, postID))
	if err == sql.ErrNoRows {
		return nil, comments.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get top comment: %w", err)
	}
	return comment, nil
}

// GetTopByPosts ranks comments for many posts with one DISTINCT ON query
func (r *postgresCommentRepo) GetTopByPosts(ctx context.Context, postIDs []string) (map[string]*comments.Comment, error) {
	result := make(map[string]*comments.Comment)
	if len(postIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT DISTINCT ON (post_id) ` + commentColumns + `
		FROM comments
		WHERE post_id = ANY($1)
		ORDER BY post_id, ` + commentRankOrder

	rows, err := r.db.QueryContext(ctx, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to get top comments: %w", err)
	}

	list, err := collectComments(rows)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		result[c.PostID] = c
	}
	return result, nil
}

// CountByPosts counts comments per post
func (r *postgresCommentRepo) CountByPosts(ctx context.Context, postIDs []string) (map[string]int, error) {
	counts := make(map[string]int)
	if len(postIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT post_id, COUNT(*)
		FROM comments
		WHERE post_id = ANY($1)
		GROUP BY post_id
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	return collectCounts(rows, counts)
}

func collectComments(rows *sql.Rows) ([]*comments.Comment, error) {
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Printf("Failed to close rows: %v", closeErr)
		}
	}()

	result := make([]*comments.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		result = append(result, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}
	return result, nil
}

// collectCounts reads (id, count) rows into counts
func collectCounts(rows *sql.Rows, counts map[string]int) (map[string]int, error) {
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Printf("Failed to close rows: %v", closeErr)
		}
	}()

	for rows.Next() {
		var (
			id    string
			count int
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counts: %w", err)
	}
	return counts, nil
}
