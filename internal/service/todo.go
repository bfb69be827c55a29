package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwhitlock/todo-backend/internal/domain"
)

const maxTitleLength = 255

// TodoService enforces ownership on every todo operation and is the only
// caller of the todo repository. The acting user is always an explicit
// argument, never ambient request state.
type TodoService struct {
	todos domain.TodoRepository
}

// NewTodoService creates a new TodoService.
func NewTodoService(todos domain.TodoRepository) *TodoService {
	return &TodoService{todos: todos}
}

// List returns the user's todos sorted ascending by order, ties broken
// by ID.
func (s *TodoService) List(ctx context.Context, userID int64) ([]domain.Todo, error) {
	return s.todos.ListByOwner(ctx, userID)
}

// Create validates the title and appends a new todo to the end of the
// user's list.
func (s *TodoService) Create(ctx context.Context, userID int64, title, description string, completed bool) (*domain.Todo, error) {
	if err := validateTitle(title); err != nil {
		return nil, err
	}

	todo := &domain.Todo{
		UserID:      userID,
		Title:       title,
		Description: description,
		IsCompleted: completed,
	}

	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}
	return todo, nil
}

// Get returns a single todo. A todo owned by another user yields
// ErrForbidden, not ErrNotFound: existence is revealed, access denied.
func (s *TodoService) Get(ctx context.Context, userID, id int64) (*domain.Todo, error) {
	return s.fetchOwned(ctx, userID, id)
}

// Update applies a partial update to the user's todo. Only non-nil fields
// of changes are written; order never changes through this path.
func (s *TodoService) Update(ctx context.Context, userID, id int64, changes domain.TodoUpdate) (*domain.Todo, error) {
	if _, err := s.fetchOwned(ctx, userID, id); err != nil {
		return nil, err
	}

	if changes.Title != nil {
		if err := validateTitle(*changes.Title); err != nil {
			return nil, err
		}
	}

	updated, err := s.todos.Update(ctx, id, changes)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}
	return updated, nil
}

// Delete tombstones the user's todo. Deleting an already-deleted todo
// fails with ErrNotFound.
func (s *TodoService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.fetchOwned(ctx, userID, id); err != nil {
		return err
	}

	if err := s.todos.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("soft delete todo: %w", err)
	}
	return nil
}

// Reorder applies the given order assignments one by one, in input order.
// On the first id that is missing or owned by another user it stops and
// returns ErrForbidden; assignments already applied stay applied. Callers
// must not assume the batch is atomic. Items absent from the batch keep
// their order, so duplicates and gaps are possible; listings stay
// well-defined through the ID tie-break.
func (s *TodoService) Reorder(ctx context.Context, userID int64, updates []domain.OrderUpdate) error {
	for _, u := range updates {
		todo, err := s.todos.GetByID(ctx, u.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrForbidden
			}
			return fmt.Errorf("get todo: %w", err)
		}
		if todo.UserID != userID {
			return domain.ErrForbidden
		}

		if err := s.todos.SetOrder(ctx, u.ID, u.SortOrder); err != nil {
			return fmt.Errorf("set todo order: %w", err)
		}
	}
	return nil
}

func (s *TodoService) fetchOwned(ctx context.Context, userID, id int64) (*domain.Todo, error) {
	todo, err := s.todos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}
	if todo.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return todo, nil
}

func validateTitle(title string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", domain.ErrInvalidInput, maxTitleLength)
	}
	return nil
}
