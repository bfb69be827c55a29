package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mwhitlock/todo-backend/internal/handler"
)

type apiClient struct {
	t     *testing.T
	base  string
	token string
}

func (c *apiClient) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, c.base+path, &buf)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.t.Fatalf("%s %s: decode response: %v", method, path, err)
	}
	return resp.StatusCode, decoded
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	auth, todos := newTestServices(t)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, todos)
	srv := httptest.NewServer(handler.SecurityHeaders(mux))
	t.Cleanup(srv.Close)
	return srv
}

func registerViaAPI(t *testing.T, c *apiClient, name, email string) string {
	t.Helper()
	status, body := c.do(http.MethodPost, "/api/auth/register", map[string]any{
		"name": name, "email": email, "password": "password123",
	})
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%v)", status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("register: expected a token, got %v", body)
	}
	return token
}

func todosFromBody(t *testing.T, body map[string]any) []map[string]any {
	t.Helper()
	raw, ok := body["todos"].([]any)
	if !ok {
		t.Fatalf("expected todos array, got %v", body)
	}
	todos := make([]map[string]any, len(raw))
	for i, item := range raw {
		todos[i] = item.(map[string]any)
	}
	return todos
}

func TestIntegration_TodoLifecycle(t *testing.T) {
	srv := newTestServer(t)
	c := &apiClient{t: t, base: srv.URL}

	// Register and capture the issued token.
	c.token = registerViaAPI(t, c, "Alice", "alice@example.com")

	// Create three todos; orders append 1, 2, 3.
	var ids []int64
	for _, title := range []string{"a", "b", "c"} {
		status, body := c.do(http.MethodPost, "/api/todos", map[string]any{"title": title})
		if status != http.StatusCreated {
			t.Fatalf("create %q: expected 201, got %d (%v)", title, status, body)
		}
		todo := body["todo"].(map[string]any)
		ids = append(ids, int64(todo["id"].(float64)))
	}

	status, body := c.do(http.MethodGet, "/api/todos", nil)
	if status != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", status)
	}
	todos := todosFromBody(t, body)
	if len(todos) != 3 {
		t.Fatalf("expected 3 todos, got %d", len(todos))
	}
	for i, want := range []float64{1, 2, 3} {
		if todos[i]["order"].(float64) != want {
			t.Fatalf("todo %d: expected order %v, got %v", i, want, todos[i]["order"])
		}
	}

	// Delete "b"; the listing keeps a gap at order 2.
	status, _ = c.do(http.MethodDelete, fmt.Sprintf("/api/todos/%d", ids[1]), nil)
	if status != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", status)
	}

	status, body = c.do(http.MethodGet, "/api/todos", nil)
	if status != http.StatusOK {
		t.Fatalf("list after delete: expected 200, got %d", status)
	}
	todos = todosFromBody(t, body)
	if len(todos) != 2 || todos[0]["title"] != "a" || todos[1]["title"] != "c" {
		t.Fatalf("expected [a c], got %v", todos)
	}
	if todos[0]["order"].(float64) != 1 || todos[1]["order"].(float64) != 3 {
		t.Fatalf("expected orders 1,3, got %v,%v", todos[0]["order"], todos[1]["order"])
	}

	// Swap the survivors.
	status, _ = c.do(http.MethodPost, "/api/todos/reorder", map[string]any{
		"todos": []map[string]any{
			{"id": ids[2], "order": 1},
			{"id": ids[0], "order": 3},
		},
	})
	if status != http.StatusOK {
		t.Fatalf("reorder: expected 200, got %d", status)
	}

	status, body = c.do(http.MethodGet, "/api/todos", nil)
	if status != http.StatusOK {
		t.Fatalf("list after reorder: expected 200, got %d", status)
	}
	todos = todosFromBody(t, body)
	if todos[0]["title"] != "c" || todos[1]["title"] != "a" {
		t.Fatalf("expected [c a], got %v", todos)
	}
}

func TestIntegration_PartialUpdate(t *testing.T) {
	srv := newTestServer(t)
	c := &apiClient{t: t, base: srv.URL}
	c.token = registerViaAPI(t, c, "Bob", "bob@example.com")

	status, body := c.do(http.MethodPost, "/api/todos", map[string]any{
		"title": "original", "description": "keep me",
	})
	if status != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", status)
	}
	id := int64(body["todo"].(map[string]any)["id"].(float64))

	status, body = c.do(http.MethodPut, fmt.Sprintf("/api/todos/%d", id), map[string]any{
		"title": "changed",
	})
	if status != http.StatusOK {
		t.Fatalf("update: expected 200, got %d (%v)", status, body)
	}
	todo := body["todo"].(map[string]any)
	if todo["title"] != "changed" || todo["description"] != "keep me" {
		t.Fatalf("expected partial update to preserve description, got %v", todo)
	}
	if todo["isCompleted"] != false {
		t.Fatalf("expected isCompleted untouched, got %v", todo["isCompleted"])
	}
}

func TestIntegration_CrossUserAccess(t *testing.T) {
	srv := newTestServer(t)
	owner := &apiClient{t: t, base: srv.URL}
	owner.token = registerViaAPI(t, owner, "Owner", "owner@example.com")

	status, body := owner.do(http.MethodPost, "/api/todos", map[string]any{"title": "secret"})
	if status != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", status)
	}
	id := int64(body["todo"].(map[string]any)["id"].(float64))

	intruder := &apiClient{t: t, base: srv.URL}
	intruder.token = registerViaAPI(t, intruder, "Intruder", "intruder@example.com")

	// Existence is revealed, access is denied: 403, not 404.
	status, body = intruder.do(http.MethodGet, fmt.Sprintf("/api/todos/%d", id), nil)
	if status != http.StatusForbidden {
		t.Fatalf("get: expected 403, got %d (%v)", status, body)
	}
	if body["status"] != "error" {
		t.Fatalf("expected error envelope, got %v", body)
	}

	status, _ = intruder.do(http.MethodDelete, fmt.Sprintf("/api/todos/%d", id), nil)
	if status != http.StatusForbidden {
		t.Fatalf("delete: expected 403, got %d", status)
	}

	status, _ = intruder.do(http.MethodPost, "/api/todos/reorder", map[string]any{
		"todos": []map[string]any{{"id": id, "order": 1}},
	})
	if status != http.StatusForbidden {
		t.Fatalf("reorder: expected 403, got %d", status)
	}
}

func TestIntegration_AuthFlow(t *testing.T) {
	srv := newTestServer(t)
	c := &apiClient{t: t, base: srv.URL}

	// Unauthenticated requests are rejected.
	status, _ := c.do(http.MethodGet, "/api/todos", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("unauthenticated list: expected 401, got %d", status)
	}

	c.token = registerViaAPI(t, c, "Carol", "carol@example.com")

	// Duplicate registration conflicts.
	status, _ = c.do(http.MethodPost, "/api/auth/register", map[string]any{
		"name": "Carol", "email": "carol@example.com", "password": "password123",
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate register: expected 409, got %d", status)
	}

	// Login with wrong password fails with 401.
	status, _ = c.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email": "carol@example.com", "password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", status)
	}

	// Login issues a fresh token.
	status, body := c.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email": "carol@example.com", "password": "password123",
	})
	if status != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", status)
	}
	c.token = body["token"].(string)

	status, body = c.do(http.MethodGet, "/api/auth/me", nil)
	if status != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", status)
	}
	user := body["user"].(map[string]any)
	if user["email"] != "carol@example.com" {
		t.Fatalf("expected carol@example.com, got %v", user["email"])
	}

	// Logout revokes the token; subsequent calls are unauthenticated.
	status, _ = c.do(http.MethodPost, "/api/auth/logout", nil)
	if status != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", status)
	}
	status, _ = c.do(http.MethodGet, "/api/todos", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("list after logout: expected 401, got %d", status)
	}
}

func TestIntegration_ValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	c := &apiClient{t: t, base: srv.URL}
	c.token = registerViaAPI(t, c, "Dana", "dana@example.com")

	status, body := c.do(http.MethodPost, "/api/todos", map[string]any{"title": ""})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("empty title: expected 422, got %d (%v)", status, body)
	}

	status, _ = c.do(http.MethodGet, "/api/todos/99999", nil)
	if status != http.StatusNotFound {
		t.Fatalf("missing todo: expected 404, got %d", status)
	}

	status, _ = c.do(http.MethodPost, "/api/todos/reorder", map[string]any{"todos": []any{}})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("empty reorder batch: expected 422, got %d", status)
	}
}
