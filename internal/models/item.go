package models

import "time"

type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Тело POST /api/items
type CreateItemRequest struct {
	Name string `json:"name"`
}

// Тело PUT /api/items/{id}; nil-поле означает "не менять"
type UpdateItemRequest struct {
	Name      *string `json:"name,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

func (r UpdateItemRequest) Empty() bool {
	return r.Name == nil && r.Completed == nil
}

// SortOrder задаёт порядок выдачи списка.
type SortOrder string

const (
	// Сначала невыполненные, внутри группы — новые сверху.
	SortPendingFirst SortOrder = "pending-first"
	// В порядке добавления.
	SortOldestFirst SortOrder = "oldest-first"
)

func (o SortOrder) Valid() bool {
	return o == SortPendingFirst || o == SortOldestFirst
}

type Counts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func CountItems(items []Item) Counts {
	c := Counts{Total: len(items)}
	for _, it := range items {
		if it.Completed {
			c.Completed++
		}
	}
	c.Pending = c.Total - c.Completed
	return c
}
