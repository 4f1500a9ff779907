package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"shopping-list/internal/models"
)

var ErrNotFound = errors.New("item not found")

// Storage интерфейс для абстракции хранилища
type Storage interface {
	AddItem(ctx context.Context, name string) (models.Item, error)
	ListItems(ctx context.Context, order models.SortOrder) ([]models.Item, error)
	GetItem(ctx context.Context, id int64) (models.Item, error)
	UpdateItem(ctx context.Context, id int64, req models.UpdateItemRequest) (models.Item, error)
	ToggleItem(ctx context.Context, id int64) (models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
	ClearCompleted(ctx context.Context) (int64, error)

	Close() error
}

func notFound(id int64) error {
	return fmt.Errorf("item %d: %w", id, ErrNotFound)
}

// MemoryStorage держит список в памяти; используется в тестах и в режиме --memory.
type MemoryStorage struct {
	mu     sync.Mutex
	items  map[int64]models.Item
	nextID int64
	now    func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items:  make(map[int64]models.Item),
		nextID: 1,
		now:    time.Now,
	}
}

func (m *MemoryStorage) AddItem(_ context.Context, name string) (models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := models.Item{
		ID:        m.nextID,
		Name:      name,
		CreatedAt: m.now().UTC(),
	}
	m.items[item.ID] = item
	m.nextID++
	return item, nil
}

func (m *MemoryStorage) ListItems(_ context.Context, order models.SortOrder) ([]models.Item, error) {
	m.mu.Lock()
	items := make([]models.Item, 0, len(m.items))
	for _, it := range m.items {
		items = append(items, it)
	}
	m.mu.Unlock()

	SortItems(items, order)
	return items, nil
}

func (m *MemoryStorage) GetItem(_ context.Context, id int64) (models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return models.Item{}, notFound(id)
	}
	return item, nil
}

func (m *MemoryStorage) UpdateItem(_ context.Context, id int64, req models.UpdateItemRequest) (models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return models.Item{}, notFound(id)
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Completed != nil {
		item.Completed = *req.Completed
	}
	m.items[id] = item
	return item, nil
}

func (m *MemoryStorage) ToggleItem(_ context.Context, id int64) (models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return models.Item{}, notFound(id)
	}
	item.Completed = !item.Completed
	m.items[id] = item
	return item, nil
}

func (m *MemoryStorage) DeleteItem(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return notFound(id)
	}
	delete(m.items, id)
	return nil
}

func (m *MemoryStorage) ClearCompleted(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for id, it := range m.items {
		if it.Completed {
			delete(m.items, id)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

// SortItems упорядочивает items так же, как это делает ORDER BY в SQLite-хранилище.
func SortItems(items []models.Item, order models.SortOrder) {
	switch order {
	case models.SortOldestFirst:
		sort.SliceStable(items, func(i, j int) bool {
			if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
				return items[i].CreatedAt.Before(items[j].CreatedAt)
			}
			return items[i].ID < items[j].ID
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			if items[i].Completed != items[j].Completed {
				return !items[i].Completed
			}
			if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
				return items[i].CreatedAt.After(items[j].CreatedAt)
			}
			return items[i].ID > items[j].ID
		})
	}
}
