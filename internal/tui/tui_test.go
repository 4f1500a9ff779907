package tui

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopping-list/internal/auth"
	"shopping-list/internal/client"
	"shopping-list/internal/controller"
	"shopping-list/internal/manager"
	"shopping-list/internal/models"
	"shopping-list/internal/prefs"
	"shopping-list/internal/server"
	"shopping-list/internal/storage"
)

func newModel(t *testing.T) (Model, *client.Client) {
	t.Helper()
	sessions := auth.NewSessions(auth.Options{
		Username: "admin",
		Password: "password123",
		Secret:   "test-secret",
		TTL:      time.Hour,
	})
	im := manager.NewItemManager(storage.NewMemoryStorage(), models.SortOldestFirst)
	srv := httptest.NewServer(server.NewRouter(im, sessions, server.Options{}))
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL)
	require.NoError(t, err)
	_, err = c.Login(context.Background(), "admin", "password123")
	require.NoError(t, err)

	ctrl := controller.New(c, prefs.NewStore(t.TempDir()))
	m := New(context.Background(), ctrl)

	// первая загрузка
	msg := m.Init()()
	next, _ := m.Update(msg)
	return next.(Model), c
}

func press(t *testing.T, m Model, presses ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range presses {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case " ":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
		// фоновое действие доводим до конца, как это сделал бы рантайм
		if m.busy && cmd != nil {
			next, cmd = m.Update(cmd())
			m = next.(Model)
		}
	}
	return m, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func TestAddToggleClear(t *testing.T) {
	m, api := newModel(t)
	assert.False(t, m.loading)
	assert.Contains(t, m.View(), "No items")

	m, _ = press(t, m, "a")
	assert.Equal(t, modeAdd, m.mode)
	m = typeText(t, m, "Milk")
	m, _ = press(t, m, "enter")
	assert.Equal(t, modeList, m.mode)

	m, _ = press(t, m, "a")
	m = typeText(t, m, "Eggs")
	m, _ = press(t, m, "enter")
	assert.Equal(t, 1, m.cursor, "курсор на новом элементе")
	assert.Contains(t, m.View(), "2 items")

	m, _ = press(t, m, " ")
	assert.Contains(t, m.View(), "1 pending, 1 done")

	m, _ = press(t, m, "c")
	assert.Equal(t, modeConfirm, m.mode)
	assert.Contains(t, m.View(), "Remove 1 completed item? (y/n)")

	m, _ = press(t, m, "n")
	assert.Len(t, m.ctrl.Items(), 2)

	m, _ = press(t, m, "c", "y")
	assert.Equal(t, modeList, m.mode)
	require.Len(t, m.ctrl.Items(), 1)
	assert.Equal(t, 0, m.cursor)

	remote, err := api.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, remote, 1)
}

func TestRenameAndDelete(t *testing.T) {
	m, _ := newModel(t)
	m, _ = press(t, m, "a")
	m = typeText(t, m, "Bread")
	m, _ = press(t, m, "enter")

	m, _ = press(t, m, "e")
	assert.Equal(t, "Bread", m.input.Value())
	m = typeText(t, m, " rolls")
	m, _ = press(t, m, "enter")
	assert.Equal(t, "Bread rolls", m.ctrl.Items()[0].Name)

	m, _ = press(t, m, "d")
	assert.Empty(t, m.ctrl.Items())
	assert.Contains(t, m.View(), "Your list is empty")
}

func TestActionsRunInBackground(t *testing.T) {
	m, _ := newModel(t)
	m, _ = press(t, m, "a")
	m = typeText(t, m, "Milk")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Equal(t, modeList, m.mode)
	assert.Empty(t, m.ctrl.Items(), "запрос ещё не отправлен")

	// пока действие идёт, клавиши игнорируются
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	m = next.(Model)
	assert.Equal(t, modeList, m.mode)

	next, retry := m.Update(hideErrorMsg{seq: m.errSeq})
	m = next.(Model)
	assert.NotNil(t, retry, "скрытие ошибки откладывается")

	msg := cmd()
	require.IsType(t, actionDoneMsg{}, msg)
	assert.Contains(t, m.View(), "No items", "до ответа рисуется снимок")

	next, _ = m.Update(msg)
	m = next.(Model)
	assert.False(t, m.busy)
	require.Len(t, m.ctrl.Items(), 1)
	assert.Contains(t, m.View(), "1 item")
	assert.Equal(t, 0, m.cursor)

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.False(t, m.ctrl.Items()[0].Completed)
	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.True(t, m.ctrl.Items()[0].Completed)
}

func TestErrorBannerHides(t *testing.T) {
	m, api := newModel(t)
	m, _ = press(t, m, "a")
	m = typeText(t, m, "Milk")
	m, _ = press(t, m, "enter")

	require.NoError(t, api.Delete(context.Background(), m.ctrl.Items()[0].ID))

	m, _ = press(t, m, "e")
	m.input.SetValue("gone")
	m, cmd := press(t, m, "enter")
	assert.Equal(t, "Failed to update item", m.ctrl.Error())
	assert.Contains(t, m.View(), "Failed to update item")
	require.NotNil(t, cmd, "таймер скрытия")

	// устаревший таймер ничего не делает
	next, _ := m.Update(hideErrorMsg{seq: m.errSeq - 1})
	m = next.(Model)
	assert.NotEmpty(t, m.ctrl.Error())

	next, _ = m.Update(hideErrorMsg{seq: m.errSeq})
	m = next.(Model)
	assert.Empty(t, m.ctrl.Error())
	assert.NotContains(t, m.View(), "Failed to update item")
}

func TestLogoutQuits(t *testing.T) {
	m, api := newModel(t)

	m, _ = press(t, m, "L")
	assert.Contains(t, m.View(), "Are you sure you want to logout?")

	m, cmd := press(t, m, "y")
	assert.True(t, m.needAuth)
	assert.Empty(t, api.Token())
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestThemeKey(t *testing.T) {
	m, _ := newModel(t)
	assert.Equal(t, models.ThemeLight, m.ctrl.Theme())
	m, _ = press(t, m, "t")
	assert.Equal(t, models.ThemeDark, m.ctrl.Theme())
	assert.Contains(t, m.View(), "dark")
}

func TestUnauthorizedLoadQuits(t *testing.T) {
	m, api := newModel(t)
	api.SetToken("")

	m, cmd := press(t, m, "r")
	assert.True(t, m.loading)
	next, cmd := m.Update(cmd())
	m = next.(Model)
	assert.True(t, m.needAuth)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
