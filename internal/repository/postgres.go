package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/lib/pq"

	"todo-api/internal/models"
)

const cacheTTL = time.Hour

// PostgresUserRepository persists users in PostgreSQL.
type PostgresUserRepository struct {
	DB *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

func (r *PostgresUserRepository) Create(username, email, passwordHash string) (models.User, error) {
	var user models.User
	err := r.DB.QueryRow(
		"INSERT INTO users (username, email, password) VALUES ($1, $2, $3) RETURNING id, username, email, created_at",
		username, email, passwordHash,
	).Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		// Unique violation means the username or email is already taken
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, fmt.Errorf("inserting user: %w", err)
	}
	user.Password = passwordHash
	return user, nil
}

func (r *PostgresUserRepository) GetByUsername(username string) (models.User, error) {
	var user models.User
	err := r.DB.QueryRow(
		"SELECT id, username, email, password, created_at FROM users WHERE username = $1",
		username,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("fetching user: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) GetByID(id int) (models.User, error) {
	var user models.User
	err := r.DB.QueryRow(
		"SELECT id, username, email, password, created_at FROM users WHERE id = $1",
		id,
	).Scan(&user.ID, &user.Username, &user.Email, &user.Password, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("fetching user: %w", err)
	}
	return user, nil
}

// PostgresTodoRepository persists todos in PostgreSQL with an optional Redis
// read-through cache. The cache belongs to this storage layer; callers never
// see it. Cache failures are ignored, the database stays the source of truth.
type PostgresTodoRepository struct {
	DB    *sql.DB
	Cache *redis.Client
	ctx   context.Context
}

func NewPostgresTodoRepository(db *sql.DB, cache *redis.Client) *PostgresTodoRepository {
	return &PostgresTodoRepository{DB: db, Cache: cache, ctx: context.Background()}
}

func cacheKey(id int) string {
	return fmt.Sprintf("todo:%d", id)
}

func (r *PostgresTodoRepository) cacheSet(todo models.Todo) {
	if r.Cache == nil {
		return
	}
	data, err := json.Marshal(todo)
	if err != nil {
		return
	}
	r.Cache.SetEX(r.ctx, cacheKey(todo.ID), data, cacheTTL)
}

func (r *PostgresTodoRepository) cacheGet(userID, id int) (models.Todo, bool) {
	if r.Cache == nil {
		return models.Todo{}, false
	}
	cached, err := r.Cache.Get(r.ctx, cacheKey(id)).Result()
	if err != nil {
		return models.Todo{}, false
	}
	var todo models.Todo
	if err := json.Unmarshal([]byte(cached), &todo); err != nil {
		return models.Todo{}, false
	}
	// A cached todo owned by someone else is a miss, not a hit
	if todo.UserID != userID {
		return models.Todo{}, false
	}
	return todo, true
}

func (r *PostgresTodoRepository) cacheDel(id int) {
	if r.Cache == nil {
		return
	}
	r.Cache.Del(r.ctx, cacheKey(id))
}

func (r *PostgresTodoRepository) Create(userID int, title, description string, completed bool) (models.Todo, error) {
	var todo models.Todo
	err := r.DB.QueryRow(
		"INSERT INTO todos (user_id, title, description, completed) VALUES ($1, $2, $3, $4) RETURNING id, user_id, title, description, completed, created_at",
		userID, title, description, completed,
	).Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description, &todo.Completed, &todo.CreatedAt)
	if err != nil {
		return models.Todo{}, fmt.Errorf("inserting todo: %w", err)
	}
	r.cacheSet(todo)
	return todo, nil
}

func (r *PostgresTodoRepository) List(userID int) ([]models.Todo, error) {
	rows, err := r.DB.Query(
		"SELECT id, user_id, title, description, completed, created_at FROM todos WHERE user_id = $1 ORDER BY id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching todos: %w", err)
	}
	defer rows.Close()

	todos := []models.Todo{}
	for rows.Next() {
		var todo models.Todo
		if err := rows.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description, &todo.Completed, &todo.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating todos: %w", err)
	}

	for _, todo := range todos {
		r.cacheSet(todo)
	}
	return todos, nil
}

func (r *PostgresTodoRepository) Get(userID, id int) (models.Todo, error) {
	if todo, ok := r.cacheGet(userID, id); ok {
		return todo, nil
	}

	var todo models.Todo
	err := r.DB.QueryRow(
		"SELECT id, user_id, title, description, completed, created_at FROM todos WHERE id = $1 AND user_id = $2",
		id, userID,
	).Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description, &todo.Completed, &todo.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Todo{}, ErrNotFound
	}
	if err != nil {
		return models.Todo{}, fmt.Errorf("fetching todo: %w", err)
	}
	r.cacheSet(todo)
	return todo, nil
}

func (r *PostgresTodoRepository) Update(userID, id int, title, description string, completed bool) (models.Todo, error) {
	var todo models.Todo
	err := r.DB.QueryRow(
		"UPDATE todos SET title = $1, description = $2, completed = $3 WHERE id = $4 AND user_id = $5 RETURNING id, user_id, title, description, completed, created_at",
		title, description, completed, id, userID,
	).Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description, &todo.Completed, &todo.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Todo{}, ErrNotFound
	}
	if err != nil {
		return models.Todo{}, fmt.Errorf("updating todo: %w", err)
	}
	r.cacheDel(id)
	r.cacheSet(todo)
	return todo, nil
}

func (r *PostgresTodoRepository) Toggle(userID, id int) (models.Todo, error) {
	var todo models.Todo
	err := r.DB.QueryRow(
		"UPDATE todos SET completed = NOT completed WHERE id = $1 AND user_id = $2 RETURNING id, user_id, title, description, completed, created_at",
		id, userID,
	).Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description, &todo.Completed, &todo.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Todo{}, ErrNotFound
	}
	if err != nil {
		return models.Todo{}, fmt.Errorf("toggling todo: %w", err)
	}
	r.cacheDel(id)
	r.cacheSet(todo)
	return todo, nil
}

func (r *PostgresTodoRepository) Delete(userID, id int) (models.Todo, error) {
	var todo models.Todo
	err := r.DB.QueryRow(
		"DELETE FROM todos WHERE id = $1 AND user_id = $2 RETURNING id, user_id, title, description, completed, created_at",
		id, userID,
	).Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description, &todo.Completed, &todo.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Todo{}, ErrNotFound
	}
	if err != nil {
		return models.Todo{}, fmt.Errorf("deleting todo: %w", err)
	}
	r.cacheDel(id)
	return todo, nil
}

func (r *PostgresTodoRepository) ClearAll(userID int) (int64, error) {
	rows, err := r.DB.Query("DELETE FROM todos WHERE user_id = $1 RETURNING id", userID)
	if err != nil {
		return 0, fmt.Errorf("clearing todos: %w", err)
	}
	defer rows.Close()

	var count int64
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return count, fmt.Errorf("scanning deleted id: %w", err)
		}
		r.cacheDel(id)
		count++
	}
	if err := rows.Err(); err != nil {
		return count, fmt.Errorf("iterating deleted ids: %w", err)
	}
	return count, nil
}
