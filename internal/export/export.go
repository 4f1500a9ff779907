// Package export пишет и читает список покупок в JSON и CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"shopping-list/internal/models"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var csvHeader = []string{"id", "name", "completed", "created_at"}

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (json|csv)", raw)
	}
}

// FormatFromPath определяет формат по расширению файла.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

func Write(w io.Writer, format Format, items []models.Item) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if items == nil {
			items = []models.Item{}
		}
		return enc.Encode(items)
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		for _, it := range items {
			created := ""
			if !it.CreatedAt.IsZero() {
				created = it.CreatedAt.UTC().Format(time.RFC3339)
			}
			rec := []string{strconv.FormatInt(it.ID, 10), it.Name, strconv.FormatBool(it.Completed), created}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func Read(r io.Reader, format Format) ([]models.Item, error) {
	switch format {
	case FormatJSON:
		var items []models.Item
		if err := json.NewDecoder(r).Decode(&items); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return items, nil
	case FormatCSV:
		return readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func readCSV(r io.Reader) ([]models.Item, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// колонки ищем по заголовку, обязательна только name
	cols := map[string]int{}
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	nameCol, ok := cols["name"]
	if !ok {
		return nil, fmt.Errorf("csv: missing name column")
	}
	field := func(rec []string, name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	items := make([]models.Item, 0, len(records)-1)
	for n, rec := range records[1:] {
		if nameCol >= len(rec) {
			return nil, fmt.Errorf("csv line %d: missing name", n+2)
		}
		it := models.Item{Name: rec[nameCol]}
		if v := field(rec, "id"); v != "" {
			if it.ID, err = strconv.ParseInt(v, 10, 64); err != nil {
				return nil, fmt.Errorf("csv line %d: bad id: %w", n+2, err)
			}
		}
		if v := field(rec, "completed"); v != "" {
			if it.Completed, err = strconv.ParseBool(v); err != nil {
				return nil, fmt.Errorf("csv line %d: bad completed: %w", n+2, err)
			}
		}
		if v := field(rec, "created_at"); v != "" {
			if it.CreatedAt, err = time.Parse(time.RFC3339, v); err != nil {
				return nil, fmt.Errorf("csv line %d: bad created_at: %w", n+2, err)
			}
		}
		items = append(items, it)
	}
	return items, nil
}
