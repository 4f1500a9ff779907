// Package controller держит локальную копию списка покупок и синхронизирует её с сервером:
// загрузка при старте, один запрос на действие пользователя, после успешного ответа
// локальное состояние повторяет ответ сервера, а представление строится из локального состояния.
package controller

import (
	"context"
	"errors"
	"strings"

	"shopping-list/internal/client"
	"shopping-list/internal/logger"
	"shopping-list/internal/models"
)

// API — то, что контроллер использует из REST-клиента.
type API interface {
	List(ctx context.Context) ([]models.Item, error)
	Add(ctx context.Context, name string) (models.Item, error)
	Update(ctx context.Context, id int64, req models.UpdateItemRequest) (models.Item, error)
	Delete(ctx context.Context, id int64) error
	ClearCompleted(ctx context.Context) (int64, error)
	Logout(ctx context.Context) error
}

type ThemeStore interface {
	LoadTheme() (models.Theme, error)
	SaveTheme(models.Theme) error
}

// Confirm задаёт вопрос пользователю; false отменяет действие.
type Confirm func(prompt string) bool

const logoutPrompt = "Are you sure you want to logout?"

// View — всё, что нужно для отрисовки.
type View struct {
	Items      []models.Item
	Counts     models.Counts
	CountText  string
	Error      string
	Loading    bool
	NeedsLogin bool
	Theme      models.Theme
}

type Controller struct {
	api    API
	themes ThemeStore

	items      []models.Item
	errMsg     string
	loading    bool
	needsLogin bool
	theme      models.Theme
}

func New(api API, themes ThemeStore) *Controller {
	c := &Controller{api: api, themes: themes, theme: models.ThemeLight}
	if themes != nil {
		if t, err := themes.LoadTheme(); err == nil {
			c.theme = t
		} else {
			logger.Warn(context.Background(), "theme not loaded", "error", err.Error())
		}
	}
	return c
}

func (c *Controller) Load(ctx context.Context) error {
	c.loading = true
	defer func() { c.loading = false }()

	items, err := c.api.List(ctx)
	if err != nil {
		return c.fail(models.ActionLoad, err)
	}
	c.items = items
	return nil
}

// Add добавляет элемент; пустой ввод игнорируется.
func (c *Controller) Add(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	item, err := c.api.Add(ctx, name)
	if err != nil {
		return c.fail(models.ActionAdd, err)
	}
	c.items = append(c.items, item)
	return nil
}

// Rename: пустое имя оставляет прежнее, неизменённое ничего не отправляет.
func (c *Controller) Rename(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	item, ok := c.find(id)
	if !ok || name == "" || name == item.Name {
		return nil
	}
	return c.update(ctx, id, models.UpdateItemRequest{Name: &name})
}

func (c *Controller) ToggleComplete(ctx context.Context, id int64) error {
	item, ok := c.find(id)
	if !ok {
		return nil
	}
	completed := !item.Completed
	return c.update(ctx, id, models.UpdateItemRequest{Completed: &completed})
}

func (c *Controller) update(ctx context.Context, id int64, req models.UpdateItemRequest) error {
	updated, err := c.api.Update(ctx, id, req)
	if err != nil {
		return c.fail(models.ActionUpdate, err)
	}
	c.replace(id, updated)
	return nil
}

func (c *Controller) Delete(ctx context.Context, id int64) error {
	if err := c.api.Delete(ctx, id); err != nil {
		return c.fail(models.ActionDelete, err)
	}
	c.items = filter(c.items, func(it models.Item) bool { return it.ID != id })
	return nil
}

// ClearCompleted ничего не делает, если выполненных нет или пользователь отказался.
func (c *Controller) ClearCompleted(ctx context.Context, confirm Confirm) error {
	counts := c.Counts()
	if counts.Completed == 0 {
		return nil
	}
	if confirm != nil && !confirm(counts.ClearPrompt()) {
		return nil
	}

	if _, err := c.api.ClearCompleted(ctx); err != nil {
		return c.fail(models.ActionClear, err)
	}
	c.items = filter(c.items, func(it models.Item) bool { return !it.Completed })
	return nil
}

// Logout всегда заканчивается переходом на вход, даже если запрос к серверу не удался.
func (c *Controller) Logout(ctx context.Context, confirm Confirm) bool {
	if confirm != nil && !confirm(logoutPrompt) {
		return false
	}
	if err := c.api.Logout(ctx); err != nil {
		logger.Warn(ctx, "logout request failed", "error", err.Error())
	}
	c.items = nil
	c.errMsg = ""
	c.needsLogin = true
	return true
}

func (c *Controller) ToggleTheme() error {
	c.theme = c.theme.Toggle()
	if c.themes == nil {
		return nil
	}
	return c.themes.SaveTheme(c.theme)
}

func (c *Controller) Items() []models.Item {
	out := make([]models.Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Controller) Counts() models.Counts {
	return models.CountItems(c.items)
}

func (c *Controller) CountText() string {
	return c.Counts().Text()
}

func (c *Controller) Error() string {
	return c.errMsg
}

func (c *Controller) DismissError() {
	c.errMsg = ""
}

func (c *Controller) NeedsLogin() bool {
	return c.needsLogin
}

// LoggedIn сбрасывает флаг после повторного входа.
func (c *Controller) LoggedIn() {
	c.needsLogin = false
}

func (c *Controller) Theme() models.Theme {
	return c.theme
}

func (c *Controller) View() View {
	counts := c.Counts()
	return View{
		Items:      c.Items(),
		Counts:     counts,
		CountText:  counts.Text(),
		Error:      c.errMsg,
		Loading:    c.loading,
		NeedsLogin: c.needsLogin,
		Theme:      c.theme,
	}
}

// fail сводит любую ошибку к одному сообщению для действия; 401 означает переход на вход.
func (c *Controller) fail(action models.Action, err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		c.needsLogin = true
		return err
	}
	logger.Debug(context.Background(), "action failed", "action", string(action), "error", err.Error())
	c.errMsg = action.FailureMessage()
	return err
}

func (c *Controller) find(id int64) (models.Item, bool) {
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return models.Item{}, false
}

func (c *Controller) replace(id int64, item models.Item) {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i] = item
			return
		}
	}
}

func filter(items []models.Item, keep func(models.Item) bool) []models.Item {
	out := items[:0:0]
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
