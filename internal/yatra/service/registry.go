package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ============================================================
// Instance Registry
// ============================================================

var ErrUnknownInstance = errors.New("unknown instance")

type entry[T any] struct {
	mu       sync.Mutex
	value    T
	lastUsed time.Time
}

// Registry хранит экземпляры просмотра или редактора по id. Доступ к одному
// экземпляру сериализуется его собственным мьютексом.
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]*entry[T]
	now     func() time.Time
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		entries: make(map[string]*entry[T]),
		now:     time.Now,
	}
}

// Add регистрирует значение и возвращает его id.
func (r *Registry[T]) Add(value T) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	r.entries[id] = &entry[T]{value: value, lastUsed: r.now()}
	return id
}

// With вызывает fn под блокировкой экземпляра.
func (r *Registry[T]) With(id string, fn func(T) error) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	if !ok {
		return ErrUnknownInstance
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastUsed = r.now()
	return fn(e.value)
}

// Remove удаляет экземпляр и возвращает его.
func (r *Registry[T]) Remove(id string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		var zero T
		return zero, false
	}
	delete(r.entries, id)
	return e.value, true
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep удаляет экземпляры, не использованные дольше maxIdle.
func (r *Registry[T]) Sweep(maxIdle time.Duration) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	var removed []T
	for id, e := range r.entries {
		e.mu.Lock()
		idle := e.lastUsed.Before(cutoff)
		e.mu.Unlock()
		if idle {
			removed = append(removed, e.value)
			delete(r.entries, id)
		}
	}
	return removed
}
