package domain

import (
	"context"
	"time"
)

// Todo is a single task in a user's list. SortOrder defines the item's
// position among its owner's items; values need not be unique or
// contiguous, listings break ties by ID ascending.
type Todo struct {
	ID          int64
	UserID      int64
	Title       string
	Description string
	IsCompleted bool
	SortOrder   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// TodoUpdate carries a partial update. Nil fields are left unchanged.
// SortOrder is deliberately absent; ordering changes go through SetOrder.
type TodoUpdate struct {
	Title       *string
	Description *string
	IsCompleted *bool
}

// OrderUpdate assigns a new sort position to a single todo.
type OrderUpdate struct {
	ID        int64
	SortOrder int
}

// TodoRepository defines persistence operations for todos. Deleted rows
// are tombstoned, never physically removed, and are invisible to every
// read path.
type TodoRepository interface {
	// Create inserts the todo with SortOrder set to one past the owner's
	// current maximum (or 1 for an empty list). The aggregate read and
	// the insert happen in a single transaction.
	Create(ctx context.Context, todo *Todo) error
	GetByID(ctx context.Context, id int64) (*Todo, error)
	ListByOwner(ctx context.Context, userID int64) ([]Todo, error)
	// NextOrder returns 1 + max(SortOrder) over the owner's live todos,
	// or 1 if the owner has none.
	NextOrder(ctx context.Context, userID int64) (int, error)
	Update(ctx context.Context, id int64, changes TodoUpdate) (*Todo, error)
	SetOrder(ctx context.Context, id int64, sortOrder int) error
	SoftDelete(ctx context.Context, id int64) error
}
