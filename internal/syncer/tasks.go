package syncer

import (
	"sync"
	"time"
)

// Task is a background job reported by the backend, such as a download.
type Task struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Started time.Time `json:"-"`
}

// Tasks tracks running backend tasks in start order.
type Tasks struct {
	mu    sync.Mutex
	order []string
	byID  map[string]Task
	now   func() time.Time
}

// NewTasks creates an empty registry.
func NewTasks() *Tasks {
	return &Tasks{byID: make(map[string]Task), now: time.Now}
}

// Start records a running task. Restarting a known ID keeps its position.
func (t *Tasks) Start(task Task) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if task.Started.IsZero() {
		task.Started = t.now()
	}
	if _, ok := t.byID[task.ID]; !ok {
		t.order = append(t.order, task.ID)
	}
	t.byID[task.ID] = task
}

// Finish forgets a task. Returns false for unknown IDs.
func (t *Tasks) Finish(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.byID[id]; !ok {
		return false
	}
	delete(t.byID, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns the running tasks, oldest first.
func (t *Tasks) List() []Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	result := make([]Task, 0, len(t.order))
	for _, id := range t.order {
		result = append(result, t.byID[id])
	}
	return result
}

// Len returns the number of running tasks.
func (t *Tasks) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.order)
}
