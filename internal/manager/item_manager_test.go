package manager

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"shopping-list/internal/models"
	"shopping-list/internal/storage"
)

func newManager() *ItemManager {
	return NewItemManager(storage.NewMemoryStorage(), models.SortPendingFirst)
}

func TestAddItem(t *testing.T) {
	m := newManager()
	ctx := context.Background()

	item, err := m.AddItem(ctx, "  Молоко  ")
	if err != nil {
		t.Fatalf("Ошибка при добавлении: %v", err)
	}
	if item.ID != 1 {
		t.Errorf("Ожидался ID=1, получено %d", item.ID)
	}
	if item.Name != "Молоко" {
		t.Errorf("Имя должно быть обрезано, получено %q", item.Name)
	}

	items, err := m.ListItems(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Errorf("Ожидался 1 элемент, получено %d", len(items))
	}
}

func TestAddEmptyItem(t *testing.T) {
	m := newManager()

	_, err := m.AddItem(context.Background(), "   ")
	if !errors.Is(err, ErrEmptyName) {
		t.Errorf("Ожидалась ErrEmptyName, получено %v", err)
	}
}

func TestAddItemWithMaxLength(t *testing.T) {
	m := newManager()
	ctx := context.Background()

	// Ровно MaxNameLength символов (многобайтовых) — допустимо
	valid := strings.Repeat("я", MaxNameLength)
	if _, err := m.AddItem(ctx, valid); err != nil {
		t.Errorf("Ожидалась успешная валидация для %d символов: %v", MaxNameLength, err)
	}

	if _, err := m.AddItem(ctx, valid+"я"); !errors.Is(err, ErrNameTooLong) {
		t.Errorf("Ожидалась ErrNameTooLong, получено %v", err)
	}
}

func TestUpdateItem(t *testing.T) {
	m := newManager()
	ctx := context.Background()

	item, _ := m.AddItem(ctx, "Bread")

	renamed, err := m.RenameItem(ctx, item.ID, " Rye bread ")
	if err != nil {
		t.Fatal(err)
	}
	if renamed.Name != "Rye bread" {
		t.Errorf("got %q", renamed.Name)
	}

	if _, err := m.RenameItem(ctx, item.ID, ""); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}

	done, err := m.SetCompleted(ctx, item.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if !done.Completed || done.Name != "Rye bread" {
		t.Errorf("unexpected item after SetCompleted: %+v", done)
	}

	if _, err := m.UpdateItem(ctx, item.ID, models.UpdateItemRequest{}); !errors.Is(err, ErrEmptyUpdate) {
		t.Errorf("expected ErrEmptyUpdate, got %v", err)
	}

	if _, err := m.RenameItem(ctx, 999, "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleDeleteClear(t *testing.T) {
	m := newManager()
	ctx := context.Background()

	a, _ := m.AddItem(ctx, "Apples")
	b, _ := m.AddItem(ctx, "Bananas")
	m.AddItem(ctx, "Cherries")

	if it, err := m.ToggleItem(ctx, a.ID); err != nil || !it.Completed {
		t.Fatalf("toggle: %+v, %v", it, err)
	}
	m.ToggleItem(ctx, b.ID)

	counts, err := m.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts != (models.Counts{Total: 3, Completed: 2, Pending: 1}) {
		t.Errorf("unexpected counts %+v", counts)
	}

	removed, err := m.ClearCompleted(ctx)
	if err != nil || removed != 2 {
		t.Fatalf("clear completed: %d, %v", removed, err)
	}

	items, _ := m.ListItems(ctx)
	if len(items) != 1 || items[0].Name != "Cherries" {
		t.Errorf("unexpected items %+v", items)
	}

	if err := m.DeleteItem(ctx, items[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := m.DeleteItem(ctx, items[0].ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete should be ErrNotFound, got %v", err)
	}
}

func TestAddItemMetrics(t *testing.T) {
	// Сохраняем оригинальные метрики
	originalAddItemCount := addItemCount
	originalNameLength := itemNameLength

	registry := prometheus.NewRegistry()

	testAddItemCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopping_items_added_total",
			Help: "Test counter",
		},
		[]string{"status"},
	)
	testNameLength := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shopping_item_name_length_bytes",
			Help:    "Test histogram",
			Buckets: []float64{8, 16, 32, 64, 128, 200},
		},
	)
	registry.MustRegister(testAddItemCount, testNameLength)

	// Подменяем глобальные метрики
	addItemCount = testAddItemCount
	itemNameLength = testNameLength
	defer func() {
		addItemCount = originalAddItemCount
		itemNameLength = originalNameLength
	}()

	m := newManager()
	ctx := context.Background()

	if _, err := m.AddItem(ctx, "Valid name"); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if got := testutil.ToFloat64(testAddItemCount.WithLabelValues("success")); got != 1 {
		t.Errorf("Expected 1 success, got %v", got)
	}

	metrics, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	found := false
	for _, mf := range metrics {
		if mf.GetName() == "shopping_item_name_length_bytes" {
			found = true
			if mf.GetMetric()[0].GetHistogram().GetSampleCount() != 1 {
				t.Error("Histogram should have exactly one sample")
			}
		}
	}
	if !found {
		t.Error("Histogram metric not found")
	}

	if _, err := m.AddItem(ctx, ""); err == nil {
		t.Error("Expected error for empty name")
	}
	if got := testutil.ToFloat64(testAddItemCount.WithLabelValues("error")); got != 1 {
		t.Errorf("Expected 1 error, got %v", got)
	}
}
