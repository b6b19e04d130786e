// Package notify holds the per-visitor queue of transient user notifications.
package notify

import "sync"

// DefaultCapacity bounds a visitor's queue; the oldest entry is dropped first.
const DefaultCapacity = 20

type Kind string

const (
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
)

type Notification struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Queue is safe for concurrent use.
type Queue struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{capacity: capacity}
}

func (q *Queue) Push(kind Kind, message string) {
	if message == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == q.capacity {
		q.items = q.items[1:]
	}
	q.items = append(q.items, Notification{Kind: kind, Message: message})
}

func (q *Queue) Error(message string)   { q.Push(KindError, message) }
func (q *Queue) Info(message string)    { q.Push(KindInfo, message) }
func (q *Queue) Success(message string) { q.Push(KindSuccess, message) }

// Drain returns all pending notifications in push order and empties the queue.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
