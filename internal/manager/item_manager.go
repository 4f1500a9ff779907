package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"shopping-list/internal/logger"
	"shopping-list/internal/models"
	"shopping-list/internal/storage"
)

const MaxNameLength = 200

var (
	ErrEmptyName   = errors.New("item name is required")
	ErrNameTooLong = fmt.Errorf("item name must not exceed %d characters", MaxNameLength)
	ErrEmptyUpdate = errors.New("nothing to update")
)

var (
	addItemCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopping_items_added_total",
			Help: "Total number of AddItem operations",
		},
		[]string{"status"},
	)

	updateItemCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopping_items_updated_total",
			Help: "Total number of item updates (rename, toggle, set completed)",
		},
		[]string{"op", "status"},
	)

	deleteItemCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopping_items_deleted_total",
			Help: "Total number of deleted items",
		},
		[]string{"op"},
	)

	itemNameLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shopping_item_name_length_bytes",
			Help:    "Length distribution of item names",
			Buckets: []float64{8, 16, 32, 64, 128, 200},
		},
	)

	opDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopping_item_operation_duration_seconds",
			Help:    "Duration of item operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

// ItemManager проверяет входные данные и пишет метрики поверх хранилища.
type ItemManager struct {
	storage storage.Storage
	order   models.SortOrder
}

func NewItemManager(s storage.Storage, order models.SortOrder) *ItemManager {
	if !order.Valid() {
		order = models.SortPendingFirst
	}
	return &ItemManager{storage: s, order: order}
}

func (m *ItemManager) Order() models.SortOrder {
	return m.order
}

// NormalizeName обрезает пробелы и проверяет длину имени.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

func observe(op string) func() {
	start := time.Now()
	return func() {
		opDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *ItemManager) AddItem(ctx context.Context, name string) (models.Item, error) {
	defer observe("add")()

	name, err := NormalizeName(name)
	if err != nil {
		addItemCount.WithLabelValues("error").Inc()
		return models.Item{}, err
	}

	item, err := m.storage.AddItem(ctx, name)
	addItemCount.WithLabelValues(status(err)).Inc()
	if err != nil {
		return models.Item{}, err
	}

	itemNameLength.Observe(float64(len(name)))
	logger.Debug(ctx, "item added", "id", item.ID, "name", item.Name)
	return item, nil
}

func (m *ItemManager) ListItems(ctx context.Context) ([]models.Item, error) {
	defer observe("list")()
	return m.storage.ListItems(ctx, m.order)
}

func (m *ItemManager) GetItem(ctx context.Context, id int64) (models.Item, error) {
	return m.storage.GetItem(ctx, id)
}

// UpdateItem применяет частичное обновление: переименование и/или отметку выполнения.
func (m *ItemManager) UpdateItem(ctx context.Context, id int64, req models.UpdateItemRequest) (models.Item, error) {
	defer observe("update")()

	if req.Empty() {
		updateItemCount.WithLabelValues("update", "error").Inc()
		return models.Item{}, ErrEmptyUpdate
	}
	if req.Name != nil {
		name, err := NormalizeName(*req.Name)
		if err != nil {
			updateItemCount.WithLabelValues("update", "error").Inc()
			return models.Item{}, err
		}
		req.Name = &name
	}

	item, err := m.storage.UpdateItem(ctx, id, req)
	updateItemCount.WithLabelValues("update", status(err)).Inc()
	return item, err
}

func (m *ItemManager) RenameItem(ctx context.Context, id int64, name string) (models.Item, error) {
	return m.UpdateItem(ctx, id, models.UpdateItemRequest{Name: &name})
}

func (m *ItemManager) SetCompleted(ctx context.Context, id int64, completed bool) (models.Item, error) {
	return m.UpdateItem(ctx, id, models.UpdateItemRequest{Completed: &completed})
}

func (m *ItemManager) ToggleItem(ctx context.Context, id int64) (models.Item, error) {
	defer observe("toggle")()

	item, err := m.storage.ToggleItem(ctx, id)
	updateItemCount.WithLabelValues("toggle", status(err)).Inc()
	return item, err
}

func (m *ItemManager) DeleteItem(ctx context.Context, id int64) error {
	defer observe("delete")()

	if err := m.storage.DeleteItem(ctx, id); err != nil {
		return err
	}
	deleteItemCount.WithLabelValues("delete").Inc()
	return nil
}

func (m *ItemManager) ClearCompleted(ctx context.Context) (int64, error) {
	defer observe("clear_completed")()

	removed, err := m.storage.ClearCompleted(ctx)
	if err != nil {
		return 0, err
	}
	deleteItemCount.WithLabelValues("clear_completed").Add(float64(removed))
	if removed > 0 {
		logger.Info(ctx, "completed items cleared", "removed", removed)
	}
	return removed, nil
}

func (m *ItemManager) Counts(ctx context.Context) (models.Counts, error) {
	items, err := m.ListItems(ctx)
	if err != nil {
		return models.Counts{}, err
	}
	return models.CountItems(items), nil
}
