package repository

import (
	"sync"
	"time"

	"todo-api/internal/models"
)

// MemoryUserRepository keeps users in process memory. It backs the
// single-process prototype and the test suite.
type MemoryUserRepository struct {
	mu     sync.Mutex
	users  map[int]models.User
	nextID int
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:  make(map[int]models.User),
		nextID: 1,
	}
}

func (r *MemoryUserRepository) Create(username, email, passwordHash string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Username == username || user.Email == email {
			return models.User{}, ErrDuplicate
		}
	}

	user := models.User{
		ID:        r.nextID,
		Username:  username,
		Email:     email,
		Password:  passwordHash,
		CreatedAt: time.Now(),
	}
	r.users[user.ID] = user
	r.nextID++
	return user, nil
}

func (r *MemoryUserRepository) GetByUsername(username string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, ErrNotFound
}

func (r *MemoryUserRepository) GetByID(id int) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

// MemoryTodoRepository keeps todos in process memory. Ids are assigned
// sequentially and listing preserves insertion order.
type MemoryTodoRepository struct {
	mu     sync.Mutex
	todos  map[int]models.Todo
	order  []int
	nextID int
}

func NewMemoryTodoRepository() *MemoryTodoRepository {
	return &MemoryTodoRepository{
		todos:  make(map[int]models.Todo),
		nextID: 1,
	}
}

func (r *MemoryTodoRepository) Create(userID int, title, description string, completed bool) (models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo := models.Todo{
		ID:          r.nextID,
		UserID:      userID,
		Title:       title,
		Description: description,
		Completed:   completed,
		CreatedAt:   time.Now(),
	}
	r.todos[todo.ID] = todo
	r.order = append(r.order, todo.ID)
	r.nextID++
	return todo, nil
}

func (r *MemoryTodoRepository) List(userID int) ([]models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todos := []models.Todo{}
	for _, id := range r.order {
		if todo := r.todos[id]; todo.UserID == userID {
			todos = append(todos, todo)
		}
	}
	return todos, nil
}

// owned returns the todo only when it exists and belongs to userID.
// Someone else's todo is indistinguishable from a missing one.
func (r *MemoryTodoRepository) owned(userID, id int) (models.Todo, bool) {
	todo, ok := r.todos[id]
	if !ok || todo.UserID != userID {
		return models.Todo{}, false
	}
	return todo, true
}

func (r *MemoryTodoRepository) Get(userID, id int) (models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo, ok := r.owned(userID, id)
	if !ok {
		return models.Todo{}, ErrNotFound
	}
	return todo, nil
}

func (r *MemoryTodoRepository) Update(userID, id int, title, description string, completed bool) (models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo, ok := r.owned(userID, id)
	if !ok {
		return models.Todo{}, ErrNotFound
	}
	todo.Title = title
	todo.Description = description
	todo.Completed = completed
	r.todos[id] = todo
	return todo, nil
}

func (r *MemoryTodoRepository) Toggle(userID, id int) (models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo, ok := r.owned(userID, id)
	if !ok {
		return models.Todo{}, ErrNotFound
	}
	todo.Completed = !todo.Completed
	r.todos[id] = todo
	return todo, nil
}

func (r *MemoryTodoRepository) Delete(userID, id int) (models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	todo, ok := r.owned(userID, id)
	if !ok {
		return models.Todo{}, ErrNotFound
	}
	delete(r.todos, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return todo, nil
}

func (r *MemoryTodoRepository) ClearAll(userID int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	kept := r.order[:0]
	for _, id := range r.order {
		if r.todos[id].UserID == userID {
			delete(r.todos, id)
			count++
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return count, nil
}
