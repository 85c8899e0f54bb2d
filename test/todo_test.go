package test

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateTodo(t *testing.T) {
	app := CreateTestApp()
	token := RegisterAndLogin(t, app, "alice", "password123")

	resp := DoJSON(t, app, "POST", "/todos", token, map[string]interface{}{
		"title":       "buy milk",
		"description": "2 liters",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", resp.StatusCode)
	}

	todo := DecodeBody(t, resp)
	if todo["id"] != float64(1) {
		t.Errorf("Expected first todo id 1, got %v", todo["id"])
	}
	if todo["title"] != "buy milk" {
		t.Errorf("Expected title 'buy milk', got %v", todo["title"])
	}
	if todo["completed"] != false {
		t.Errorf("Expected completed false, got %v", todo["completed"])
	}
	if todo["created_at"] == nil {
		t.Errorf("Expected created_at to be set")
	}
}

func TestCreateTodoWithoutTitle(t *testing.T) {
	app := CreateTestApp()
	token := RegisterAndLogin(t, app, "alice", "password123")

	resp := DoJSON(t, app, "POST", "/todos", token, map[string]interface{}{
		"description": "no title here",
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400 without title, got %d", resp.StatusCode)
	}
}

func TestListTodosInsertionOrder(t *testing.T) {
	app := CreateTestApp()
	token := RegisterAndLogin(t, app, "alice", "password123")

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		resp := DoJSON(t, app, "POST", "/todos", token, map[string]interface{}{"title": title})
		resp.Body.Close()
	}

	listResp := DoJSON(t, app, "GET", "/todos", token, nil)
	defer listResp.Body.Close()
	if listResp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", listResp.StatusCode)
	}

	todos := DecodeList(t, listResp)
	if len(todos) != len(titles) {
		t.Fatalf("Expected %d todos, got %d", len(titles), len(todos))
	}
	for i, title := range titles {
		if todos[i]["title"] != title {
			t.Errorf("Expected todo %d title %q, got %v", i, title, todos[i]["title"])
		}
	}
}

func TestGetTodoNotFound(t *testing.T) {
	app := CreateTestApp()
	token := RegisterAndLogin(t, app, "alice", "password123")

	resp := DoJSON(t, app, "GET", "/todos/999", token, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestUpdateTodoKeepsCreatedAt(t *testing.T) {
	app := CreateTestApp()
	token := RegisterAndLogin(t, app, "alice", "password123")

	createResp := DoJSON(t, app, "POST", "/todos", token, map[string]interface{}{
		"title":       "original",
		"description": "before",
	})
	created := DecodeBody(t, createResp)
	createResp.Body.Close()

	updateResp := DoJSON(t, app, "PUT", "/todos/1", token, map[string]interface{}{
		"title":       "changed",
		"description": "after",
		"completed":   true,
	})
	defer updateResp.Body.Close()
	if updateResp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", updateResp.StatusCode)
	}

	updated := DecodeBody(t, updateResp)
	if updated["title"] != "changed" || updated["description"] != "after" || updated["completed"] != true {
		t.Errorf("Update did not replace mutable fields: %v", updated)
	}
	if updated["id"] != created["id"] {
		t.Errorf("Update changed the id: %v -> %v", created["id"], updated["id"])
	}
	if updated["created_at"] != created["created_at"] {
		t.Errorf("Update changed created_at: %v -> %v", created["created_at"], updated["created_at"])
	}
}

func TestToggleTodoIsInvolution(t *testing.T) {
	app := CreateTestApp()
	token := RegisterAndLogin(t, app, "alice", "password123")

	createResp := DoJSON(t, app, "POST", "/todos", token, map[string]interface{}{"title": "flip me"})
	createResp.Body.Close()

	first := DoJSON(t, app, "PATCH", "/todos/1", token, nil)
	toggled := DecodeBody(t, first)
	first.Body.Close()
	if toggled["completed"] != true {
		t.Errorf("Expected completed true after first toggle, got %v", toggled["completed"])
	}

	second := DoJSON(t, app, "PATCH", "/todos/1", token, nil)
	back := DecodeBody(t, second)
	second.Body.Close()
	if back["completed"] != false {
		t.Errorf("Expected completed false after second toggle, got %v", back["completed"])
	}
}

func TestDeleteTodo(t *testing.T) {
	app := CreateTestApp()
	token := RegisterAndLogin(t, app, "alice", "password123")

	createResp := DoJSON(t, app, "POST", "/todos", token, map[string]interface{}{"title": "buy milk"})
	createResp.Body.Close()

	// Complete it first, the returned record must reflect that
	patchResp := DoJSON(t, app, "PATCH", "/todos/1", token, nil)
	patchResp.Body.Close()

	deleteResp := DoJSON(t, app, "DELETE", "/todos/1", token, nil)
	defer deleteResp.Body.Close()
	if deleteResp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", deleteResp.StatusCode)
	}

	result := DecodeBody(t, deleteResp)
	deleted, ok := result["deleted_todo"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected deleted_todo in response, got %v", result)
	}
	if deleted["completed"] != true {
		t.Errorf("Expected deleted todo completed true, got %v", deleted["completed"])
	}

	// Gone afterwards, and a second delete answers the same way
	getResp := DoJSON(t, app, "GET", "/todos/1", token, nil)
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", getResp.StatusCode)
	}

	again := DoJSON(t, app, "DELETE", "/todos/1", token, nil)
	again.Body.Close()
	if again.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404 on second delete, got %d", again.StatusCode)
	}
}

func TestClearTodosOnlyOwn(t *testing.T) {
	app := CreateTestApp()
	aliceToken := RegisterAndLogin(t, app, "alice", "password123")
	bobToken := RegisterAndLogin(t, app, "bob", "password123")

	for _, title := range []string{"a1", "a2"} {
		resp := DoJSON(t, app, "POST", "/todos", aliceToken, map[string]interface{}{"title": title})
		resp.Body.Close()
	}
	resp := DoJSON(t, app, "POST", "/todos", bobToken, map[string]interface{}{"title": "b1"})
	resp.Body.Close()

	clearResp := DoJSON(t, app, "DELETE", "/todos", aliceToken, nil)
	defer clearResp.Body.Close()
	if clearResp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", clearResp.StatusCode)
	}
	result := DecodeBody(t, clearResp)
	if result["deleted_count"] != float64(2) {
		t.Errorf("Expected deleted_count 2, got %v", result["deleted_count"])
	}

	aliceList := DoJSON(t, app, "GET", "/todos", aliceToken, nil)
	aliceTodos := DecodeList(t, aliceList)
	aliceList.Body.Close()
	if len(aliceTodos) != 0 {
		t.Errorf("Expected alice to have 0 todos, got %d", len(aliceTodos))
	}

	bobList := DoJSON(t, app, "GET", "/todos", bobToken, nil)
	bobTodos := DecodeList(t, bobList)
	bobList.Body.Close()
	if len(bobTodos) != 1 {
		t.Errorf("Expected bob to keep 1 todo, got %d", len(bobTodos))
	}

	// Clearing an already-empty list still succeeds
	emptyClear := DoJSON(t, app, "DELETE", "/todos", aliceToken, nil)
	emptyClear.Body.Close()
	if emptyClear.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200 on empty clear, got %d", emptyClear.StatusCode)
	}
}

func TestOwnerIsolation(t *testing.T) {
	app := CreateTestApp()
	aliceToken := RegisterAndLogin(t, app, "alice", "password123")
	bobToken := RegisterAndLogin(t, app, "bob", "password123")

	createResp := DoJSON(t, app, "POST", "/todos", aliceToken, map[string]interface{}{"title": "alice only"})
	createResp.Body.Close()

	// Every operation on alice's todo with bob's token answers 404, never 403
	cases := []struct {
		method string
		body   interface{}
	}{
		{"GET", nil},
		{"PUT", map[string]interface{}{"title": "stolen"}},
		{"PATCH", nil},
		{"DELETE", nil},
	}
	for _, tc := range cases {
		resp := DoJSON(t, app, tc.method, "/todos/1", bobToken, tc.body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s /todos/1 as other user: expected 404, got %d", tc.method, resp.StatusCode)
		}
	}

	// Bob's list never contains alice's todo
	listResp := DoJSON(t, app, "GET", "/todos", bobToken, nil)
	bobTodos := DecodeList(t, listResp)
	listResp.Body.Close()
	if len(bobTodos) != 0 {
		t.Errorf("Expected bob to see 0 todos, got %d", len(bobTodos))
	}

	// Alice still has it, untouched
	getResp := DoJSON(t, app, "GET", "/todos/1", aliceToken, nil)
	todo := DecodeBody(t, getResp)
	getResp.Body.Close()
	if todo["title"] != "alice only" {
		t.Errorf("Expected title 'alice only', got %v", todo["title"])
	}
}

func TestTodosRequireAuth(t *testing.T) {
	app := CreateTestApp()

	req := httptest.NewRequest("GET", "/todos", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without token, got %d", resp.StatusCode)
	}
}

func TestRootEndpoint(t *testing.T) {
	app := CreateTestApp()

	req := httptest.NewRequest("GET", "/", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	result := DecodeBody(t, resp)
	if result["message"] != "Welcome to TODO CRUD API" {
		t.Errorf("Unexpected root message: %v", result["message"])
	}
	if result["endpoints"] == nil {
		t.Errorf("Expected endpoints description in root response")
	}
}
