package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mwhitlock/todo-backend/internal/domain"
)

// TodoRepository implements domain.TodoRepository using SQLite.
// All read paths filter out tombstoned rows.
type TodoRepository struct {
	db *sql.DB
}

const todoColumns = `id, user_id, title, description, is_completed, sort_order, created_at, updated_at`

func (r *TodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// The aggregate read and the insert share a transaction so two
	// concurrent creates for the same owner cannot pick the same slot.
	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM todos
		 WHERE user_id = ? AND deleted_at IS NULL`, todo.UserID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("next sort order: %w", err)
	}

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO todos (user_id, title, description, is_completed, sort_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		todo.UserID, todo.Title, todo.Description, todo.IsCompleted, next, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	todo.ID = id
	todo.SortOrder = next
	todo.CreatedAt = now
	todo.UpdatedAt = now
	return nil
}

func (r *TodoRepository) GetByID(ctx context.Context, id int64) (*domain.Todo, error) {
	t := &domain.Todo{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.IsCompleted, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query todo by id: %w", err)
	}
	return t, nil
}

func (r *TodoRepository) ListByOwner(ctx context.Context, userID int64) ([]domain.Todo, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+todoColumns+` FROM todos
		 WHERE user_id = ? AND deleted_at IS NULL
		 ORDER BY sort_order, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []domain.Todo
	for rows.Next() {
		var t domain.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.IsCompleted, &t.SortOrder, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

func (r *TodoRepository) NextOrder(ctx context.Context, userID int64) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM todos
		 WHERE user_id = ? AND deleted_at IS NULL`, userID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	return next, nil
}

func (r *TodoRepository) Update(ctx context.Context, id int64, changes domain.TodoUpdate) (*domain.Todo, error) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)

	if changes.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *changes.Title)
	}
	if changes.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *changes.Description)
	}
	if changes.IsCompleted != nil {
		sets = append(sets, "is_completed = ?")
		args = append(args, *changes.IsCompleted)
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	query := "UPDATE todos SET " + strings.Join(sets, ", ") + " WHERE id = ? AND deleted_at IS NULL"
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *TodoRepository) SetOrder(ctx context.Context, id int64, sortOrder int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE todos SET sort_order = ?, updated_at = ?
		 WHERE id = ? AND deleted_at IS NULL`,
		sortOrder, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set todo order: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TodoRepository) SoftDelete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE todos SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("soft delete todo: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
