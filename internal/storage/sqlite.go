package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"shopping-list/internal/logger"
	"shopping-list/internal/models"

	_ "modernc.org/sqlite"
)

const itemColumns = "id, name, completed, created_at"

type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath) // "sqlite" вместо "sqlite3"
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Одно соединение: SQLite не любит параллельных писателей, а :memory: живёт в рамках соединения.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info(context.Background(), "SQLite database ready", "path", dbPath)
	return &SQLiteStorage{db: db, now: time.Now}, nil
}

func createTables(db *sql.DB) error {
	createItemsTable := `
	CREATE TABLE IF NOT EXISTS shopping_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

	if _, err := db.Exec(createItemsTable); err != nil {
		return fmt.Errorf("create table shopping_items: %w", err)
	}
	return nil
}

// Закрытие соединения
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) AddItem(ctx context.Context, name string) (models.Item, error) {
	item := models.Item{Name: name, CreatedAt: s.now().UTC()}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO shopping_items (name, completed, created_at) VALUES (?, ?, ?)",
		item.Name, false, item.CreatedAt,
	)
	if err != nil {
		return models.Item{}, fmt.Errorf("insert item: %w", err)
	}

	item.ID, err = result.LastInsertId()
	if err != nil {
		return models.Item{}, fmt.Errorf("insert item: %w", err)
	}
	return item, nil
}

func (s *SQLiteStorage) ListItems(ctx context.Context, order models.SortOrder) ([]models.Item, error) {
	query := "SELECT " + itemColumns + " FROM shopping_items ORDER BY " + orderClause(order)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

func orderClause(order models.SortOrder) string {
	if order == models.SortOldestFirst {
		return "created_at ASC, id ASC"
	}
	return "completed ASC, created_at DESC, id DESC"
}

func (s *SQLiteStorage) GetItem(ctx context.Context, id int64) (models.Item, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM shopping_items WHERE id = ?", id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, notFound(id)
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("get item %d: %w", id, err)
	}
	return item, nil
}

// UpdateItem меняет только переданные поля и возвращает строку тем же запросом,
// поэтому параллельные частичные обновления не затирают друг друга.
func (s *SQLiteStorage) UpdateItem(ctx context.Context, id int64, req models.UpdateItemRequest) (models.Item, error) {
	var sets []string
	var args []any
	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, *req.Completed)
	}
	if len(sets) == 0 {
		return s.GetItem(ctx, id)
	}
	args = append(args, id)

	row := s.db.QueryRowContext(ctx,
		"UPDATE shopping_items SET "+strings.Join(sets, ", ")+" WHERE id = ? RETURNING "+itemColumns,
		args...,
	)
	return s.returned(row, id, "update")
}

func (s *SQLiteStorage) ToggleItem(ctx context.Context, id int64) (models.Item, error) {
	row := s.db.QueryRowContext(ctx,
		"UPDATE shopping_items SET completed = NOT completed WHERE id = ? RETURNING "+itemColumns, id)
	return s.returned(row, id, "toggle")
}

func (s *SQLiteStorage) returned(row *sql.Row, id int64, op string) (models.Item, error) {
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, notFound(id)
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("%s item %d: %w", op, id, err)
	}
	return item, nil
}

func (s *SQLiteStorage) DeleteItem(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM shopping_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return notFound(id)
	}
	return nil
}

func (s *SQLiteStorage) ClearCompleted(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM shopping_items WHERE completed = 1")
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return result.RowsAffected()
}

// MigrateLegacy переносит записи из старой таблицы items (первая версия схемы)
// в shopping_items и переименовывает старую таблицу, чтобы повторный запуск ничего не дублировал.
func (s *SQLiteStorage) MigrateLegacy(ctx context.Context) (int64, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'items'",
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("inspect schema: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
	INSERT INTO shopping_items (name, completed, created_at)
	SELECT name, completed, COALESCE(created_at, CURRENT_TIMESTAMP)
	FROM items ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return 0, fmt.Errorf("copy legacy items: %w", err)
	}
	copied, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("copy legacy items: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "ALTER TABLE items RENAME TO items_migrated"); err != nil {
		return 0, fmt.Errorf("rename legacy table: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit migration: %w", err)
	}
	return copied, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (models.Item, error) {
	var item models.Item
	var created sqlTime
	if err := row.Scan(&item.ID, &item.Name, &item.Completed, &created); err != nil {
		return models.Item{}, err
	}
	item.CreatedAt = created.Time
	return item, nil
}

// Вспомогательная функция для сканирования списка
func scanItems(rows *sql.Rows) ([]models.Item, error) {
	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan items: %w", err)
	}
	return items, nil
}

// sqlTime принимает и time.Time от драйвера, и текст CURRENT_TIMESTAMP из старых записей.
type sqlTime struct {
	Time time.Time
}

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *sqlTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (t *sqlTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
