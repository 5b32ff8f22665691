package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/lib/pq"

	"Agora/internal/core/likes"
)

type postgresLikeRepo struct {
	db *sql.DB
}

// NewLikeRepository creates a new PostgreSQL like repository
func NewLikeRepository(db *sql.DB) likes.Repository {
	return &postgresLikeRepo{db: db}
}

const likeColumns = `id, user_id, target_id, target_type, created_at, updated_at`

func scanLike(row rowScanner) (*likes.Like, error) {
	var like likes.Like
	if err := row.Scan(
		&like.ID, &like.UserID, &like.TargetID, &like.TargetType,
		&like.CreatedAt, &like.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &like, nil
}

// Toggle removes the user's like if present, otherwise inserts it.
// Both steps share one transaction; the unique_user_target constraint
// settles concurrent inserts.
func (r *postgresLikeRepo) Toggle(ctx context.Context, like *likes.Like) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx, "toggle_like")

	result, err := tx.ExecContext(ctx, `
		DELETE FROM likes
		WHERE user_id = $1 AND target_id = $2 AND target_type = $3
	`, like.UserID, like.TargetID, like.TargetType)
	if err != nil {
		return false, fmt.Errorf("failed to delete like: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check delete result: %w", err)
	}

	liked := false
	if rowsAffected == 0 {
		// ON CONFLICT DO NOTHING: a concurrent toggle that inserted first wins
		// and this call reports the like as present
		_, err = tx.ExecContext(ctx, `
			INSERT INTO likes (`+likeColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT ON CONSTRAINT unique_user_target DO NOTHING
		`, like.ID, like.UserID, like.TargetID, like.TargetType, like.CreatedAt, like.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err, "") {
				return false, likes.ErrLikeAlreadyExists
			}
			return false, fmt.Errorf("failed to insert like: %w", err)
		}
		liked = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit like toggle: %w", err)
	}
	return liked, nil
}

// GetByUserAndTarget retrieves a user's like on a target
func (r *postgresLikeRepo) GetByUserAndTarget(ctx context.Context, userID string, target likes.Target) (*likes.Like, error) {
	query := `
		SELECT ` + likeColumns + `
		FROM likes
		WHERE user_id = $1 AND target_id = $2 AND target_type = $3
	`

	like, err := scanLike(r.db.QueryRowContext(ctx, query, userID, target.ID, target.Type))
	if err == sql.ErrNoRows {
		return nil, likes.ErrLikeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get like: %w", err)
	}
	return like, nil
}

// CountByTarget counts likes on a target
func (r *postgresLikeRepo) CountByTarget(ctx context.Context, target likes.Target) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE target_id = $1 AND target_type = $2`,
		target.ID, target.Type,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

// CountByTargets counts likes for many targets of one type
func (r *postgresLikeRepo) CountByTargets(ctx context.Context, targetType likes.TargetType, targetIDs []string) (map[string]int, error) {
	counts := make(map[string]int)
	if len(targetIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT target_id, COUNT(*)
		FROM likes
		WHERE target_type = $1 AND target_id = ANY($2)
		GROUP BY target_id
	`
	rows, err := r.db.QueryContext(ctx, query, targetType, pq.Array(targetIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}
	return collectCounts(rows, counts)
}

// ListByTarget returns likes on a target newest first
func (r *postgresLikeRepo) ListByTarget(ctx context.Context, target likes.Target) ([]*likes.Like, error) {
	query := `
		SELECT ` + likeColumns + `
		FROM likes
		WHERE target_id = $1 AND target_type = $2
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, target.ID, target.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to list likes: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Printf("Failed to close rows: %v", closeErr)
		}
	}()

	result := make([]*likes.Like, 0)
	for rows.Next() {
		like, err := scanLike(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan like: %w", err)
		}
		result = append(result, like)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating likes: %w", err)
	}
	return result, nil
}
