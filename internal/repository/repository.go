package repository

import (
	"errors"

	"todo-api/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist for the acting user.
	// A todo owned by someone else is reported the same way as a missing one.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint (username, email) is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository stores user identities with their password hashes.
type UserRepository interface {
	Create(username, email, passwordHash string) (models.User, error)
	GetByUsername(username string) (models.User, error)
	GetByID(id int) (models.User, error)
}

// TodoRepository stores todos scoped to their owning user. Every operation
// takes the acting user id explicitly and only ever touches that user's rows.
type TodoRepository interface {
	Create(userID int, title, description string, completed bool) (models.Todo, error)
	List(userID int) ([]models.Todo, error)
	Get(userID, id int) (models.Todo, error)
	Update(userID, id int, title, description string, completed bool) (models.Todo, error)
	Toggle(userID, id int) (models.Todo, error)
	Delete(userID, id int) (models.Todo, error)
	ClearAll(userID int) (int64, error)
}
