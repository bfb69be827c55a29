package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mwhitlock/todo-backend/internal/domain"
	"github.com/mwhitlock/todo-backend/internal/service"
)

// TodoHandler handles todo-related HTTP requests. Every route behind it
// requires an authenticated user in the request context.
type TodoHandler struct {
	todos *service.TodoService
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(todos *service.TodoService) *TodoHandler {
	return &TodoHandler{todos: todos}
}

// HandleList returns the user's todos sorted by order.
// GET /api/todos
// Response: 200 {"status":"success","todos":[...]}
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	todos, err := h.todos.List(r.Context(), user.ID)
	if err != nil {
		slog.Error("list todos", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to retrieve todos.")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"todos": toTodoDTOs(todos)})
}

// HandleCreate appends a new todo to the user's list.
// POST /api/todos
// Request:  {"title":"...","description":"...","isCompleted":false}
// Response: 201 {"status":"success","message":"...","todo":{...}}
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		IsCompleted bool   `json:"isCompleted"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	todo, err := h.todos.Create(r.Context(), user.ID, req.Title, req.Description, req.IsCompleted)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.Error("create todo", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Failed to create todo.")
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{
		"message": "Todo created successfully.",
		"todo":    toTodoDTO(todo),
	})
}

// HandleGet returns a single todo.
// GET /api/todos/{id}
// Response: 200 {"status":"success","todo":{...}}
func (h *TodoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid todo id.")
		return
	}

	todo, err := h.todos.Get(r.Context(), user.ID, id)
	if err != nil {
		h.writeTodoError(w, err, "retrieve", user.ID, id)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"todo": toTodoDTO(todo)})
}

// HandleUpdate applies a partial update to a todo. Only fields present in
// the request body change; order is not updatable through this route.
// PUT /api/todos/{id}
// Request:  {"title":"...","description":"...","isCompleted":true} (all optional)
// Response: 200 {"status":"success","message":"...","todo":{...}}
func (h *TodoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid todo id.")
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		IsCompleted *bool   `json:"isCompleted"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	changes := domain.TodoUpdate{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	}

	todo, err := h.todos.Update(r.Context(), user.ID, id, changes)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.writeTodoError(w, err, "update", user.ID, id)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"message": "Todo updated successfully.",
		"todo":    toTodoDTO(todo),
	})
}

// HandleDelete tombstones a todo.
// DELETE /api/todos/{id}
// Response: 200 {"status":"success","message":"..."}
func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid todo id.")
		return
	}

	if err := h.todos.Delete(r.Context(), user.ID, id); err != nil {
		h.writeTodoError(w, err, "delete", user.ID, id)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Todo deleted successfully."})
}

// HandleReorder applies order assignments one by one; on the first missing
// or foreign id it stops with 403 while earlier assignments stay applied.
// POST /api/todos/reorder
// Request:  {"todos":[{"id":1,"order":2},...]}
// Response: 200 {"status":"success","message":"..."}
func (h *TodoHandler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Unauthenticated.")
		return
	}

	var req struct {
		Todos []struct {
			ID    int64 `json:"id"`
			Order int   `json:"order"`
		} `json:"todos"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if len(req.Todos) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "todos must be a non-empty array.")
		return
	}

	updates := make([]domain.OrderUpdate, len(req.Todos))
	for i, t := range req.Todos {
		updates[i] = domain.OrderUpdate{ID: t.ID, SortOrder: t.Order}
	}

	if err := h.todos.Reorder(r.Context(), user.ID, updates); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			writeError(w, http.StatusForbidden, "Todo not found or unauthorized.")
			return
		}
		slog.Error("reorder todos", "error", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "Something went wrong, please try again later.")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"message": "Order updated successfully."})
}

func (h *TodoHandler) writeTodoError(w http.ResponseWriter, err error, verb string, userID, todoID int64) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Todo not found.")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "You do not have access to this todo.")
	default:
		slog.Error(verb+" todo", "error", err, "user_id", userID, "todo_id", todoID)
		writeError(w, http.StatusInternalServerError, "Failed to "+verb+" todo.")
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
