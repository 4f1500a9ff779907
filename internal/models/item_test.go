package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCreatedAtJSON(t *testing.T) {
	raw, err := json.Marshal(Item{ID: 1, Name: "Milk"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "created_at", "нулевое время не сериализуется")

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	raw, err = json.Marshal(Item{ID: 1, Name: "Milk", CreatedAt: at})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"created_at":"2024-03-01T10:00:00Z"`)
}
