package handler

import (
	"net/http"

	"github.com/mwhitlock/todo-backend/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, todos *service.TodoService) {
	authHandler := NewAuthHandler(auth)
	todoHandler := NewTodoHandler(todos)

	mux.HandleFunc("GET /{$}", HandleRoot)
	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("POST /api/auth/register", authHandler.HandleRegister)
	mux.HandleFunc("POST /api/auth/login", authHandler.HandleLogin)
	mux.Handle("POST /api/auth/logout", RequireAuth(auth, http.HandlerFunc(authHandler.HandleLogout)))
	mux.Handle("GET /api/auth/me", RequireAuth(auth, http.HandlerFunc(authHandler.HandleMe)))

	mux.Handle("GET /api/todos", RequireAuth(auth, http.HandlerFunc(todoHandler.HandleList)))
	mux.Handle("POST /api/todos", RequireAuth(auth, http.HandlerFunc(todoHandler.HandleCreate)))
	mux.Handle("GET /api/todos/{id}", RequireAuth(auth, http.HandlerFunc(todoHandler.HandleGet)))
	mux.Handle("PUT /api/todos/{id}", RequireAuth(auth, http.HandlerFunc(todoHandler.HandleUpdate)))
	mux.Handle("DELETE /api/todos/{id}", RequireAuth(auth, http.HandlerFunc(todoHandler.HandleDelete)))
	mux.Handle("POST /api/todos/reorder", RequireAuth(auth, http.HandlerFunc(todoHandler.HandleReorder)))
}
