package test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	v1 "todo-api/internal/api/v1"
	"todo-api/internal/api/v1/handlers"
	"todo-api/internal/middleware"
	"todo-api/internal/repository"
	"todo-api/pkg/logger"
	"todo-api/pkg/token"
)

func TestMain(m *testing.M) {
	os.Setenv("GO_ENV", "test")

	logger.InitLoggers()
	defer logger.SyncLoggers()

	os.Exit(m.Run())
}

// CreateTestApp builds the app on the in-memory repositories, so every test
// starts from an empty store and needs no external services.
func CreateTestApp() *fiber.App {
	users := repository.NewMemoryUserRepository()
	todos := repository.NewMemoryTodoRepository()
	issuer := token.NewIssuer([]byte("test-secret"), time.Hour)
	validate := validator.New()

	authHandler := &handlers.AuthHandler{Users: users, Tokens: issuer, Validate: validate}
	todoHandler := &handlers.TodoHandler{Todos: todos, Validate: validate}

	app := fiber.New()
	app.Use(middleware.ErrorHandler())
	v1.RegisterRoutes(app, authHandler, todoHandler, issuer)
	return app
}

// RegisterUser registers a user through the HTTP surface.
func RegisterUser(t *testing.T, app *fiber.App, username, password string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": password,
	})
	req := httptest.NewRequest("POST", "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Register request failed: %v", err)
	}
	return resp
}

// LoginUser exchanges credentials for a bearer token via the form endpoint.
func LoginUser(t *testing.T, app *fiber.App, username, password string) *http.Response {
	t.Helper()
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	req := httptest.NewRequest("POST", "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Login request failed: %v", err)
	}
	return resp
}

// RegisterAndLogin registers a fresh user and returns its bearer token.
func RegisterAndLogin(t *testing.T, app *fiber.App, username, password string) string {
	t.Helper()
	resp := RegisterUser(t, app, username, password)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected register status 200, got %d", resp.StatusCode)
	}

	loginResp := LoginUser(t, app, username, password)
	defer loginResp.Body.Close()
	if loginResp.StatusCode != http.StatusOK {
		t.Fatalf("Expected login status 200, got %d", loginResp.StatusCode)
	}
	result := DecodeBody(t, loginResp)
	tokenString, ok := result["access_token"].(string)
	if !ok || tokenString == "" {
		t.Fatalf("Expected access_token in login response, got %v", result)
	}
	return tokenString
}

// DoJSON sends an authenticated JSON request and returns the response.
func DoJSON(t *testing.T, app *fiber.App, method, path, tokenString string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Error encoding request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tokenString != "" {
		req.Header.Set("Authorization", "Bearer "+tokenString)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return resp
}

// DecodeBody decodes a JSON response body into a generic map.
func DecodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Error decoding response body: %v", err)
	}
	return result
}

// DecodeList decodes a JSON array response body.
func DecodeList(t *testing.T, resp *http.Response) []map[string]interface{} {
	t.Helper()
	var result []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Error decoding response list: %v", err)
	}
	return result
}
