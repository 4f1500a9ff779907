package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"shopping-list/internal/auth"
	"shopping-list/internal/logger"
	"shopping-list/internal/manager"
	"shopping-list/internal/models"
)

const themeCookie = "shopping_theme"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Handler отдаёт HTML-страницу списка. Каждое действие — обычная форма,
// после обработки браузер перенаправляется обратно на "/".
type Handler struct {
	items    *manager.ItemManager
	sessions *auth.Sessions
}

type loginPage struct {
	Error string
	Theme models.Theme
}

type listPage struct {
	Items     []models.Item
	CountText string
	Counts    models.Counts
	Error     string
	Theme     models.Theme
}

func NewHandler(items *manager.ItemManager, sessions *auth.Sessions) *Handler {
	return &Handler{items: items, sessions: sessions}
}

func (h *Handler) Mount(r chi.Router) {
	r.Get("/login", h.loginForm)
	r.Post("/login", h.login)
	r.Get("/logout", h.logout)
	r.Post("/theme", h.toggleTheme)

	r.Group(func(r chi.Router) {
		r.Use(h.requireLogin)
		r.Get("/", h.index)
		r.Post("/items", h.add)
		r.Post("/items/clear-completed", h.clearCompleted)
		r.Post("/items/{id:[0-9]+}/toggle", h.toggle)
		r.Post("/items/{id:[0-9]+}/rename", h.rename)
		r.Post("/items/{id:[0-9]+}/delete", h.delete)
	})
}

func (h *Handler) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := h.sessions.Authenticate(r); err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.Authenticate(r); err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, "login.html", loginPage{Theme: theme(r)})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		render(w, r, http.StatusBadRequest, "login.html", loginPage{Error: "Invalid credentials", Theme: theme(r)})
		return
	}

	sess, err := h.sessions.Login(r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		logger.Warn(r.Context(), "page login failed", "username", r.PostFormValue("username"))
		render(w, r, http.StatusUnauthorized, "login.html", loginPage{Error: "Invalid credentials", Theme: theme(r)})
		return
	}

	h.sessions.SetCookie(w, sess)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	page := listPage{Theme: theme(r)}
	if a, ok := models.ParseAction(r.URL.Query().Get("error")); ok {
		page.Error = a.FailureMessage()
	}

	items, err := h.items.ListItems(r.Context())
	if err != nil {
		logger.Error(r.Context(), err, "load items for page")
		page.Error = models.ActionLoad.FailureMessage()
		items = nil
	}
	page.Items = items
	page.Counts = models.CountItems(items)
	page.CountText = page.Counts.Text()

	render(w, r, http.StatusOK, "index.html", page)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PostFormValue("name"))
	// Пустой ввод просто игнорируется.
	if name == "" {
		back(w, r, "")
		return
	}
	if _, err := h.items.AddItem(r.Context(), name); err != nil {
		h.failed(w, r, models.ActionAdd, err)
		return
	}
	back(w, r, "")
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := formItemID(r)
	if !ok {
		back(w, r, models.ActionUpdate)
		return
	}
	if _, err := h.items.ToggleItem(r.Context(), id); err != nil {
		h.failed(w, r, models.ActionUpdate, err)
		return
	}
	back(w, r, "")
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	id, ok := formItemID(r)
	if !ok {
		back(w, r, models.ActionUpdate)
		return
	}

	// Пустое имя — вернуть прежнее (просто перерисовать), неизменённое — ничего не делать.
	name := strings.TrimSpace(r.PostFormValue("name"))
	if name == "" {
		back(w, r, "")
		return
	}
	current, err := h.items.GetItem(r.Context(), id)
	if err != nil {
		h.failed(w, r, models.ActionUpdate, err)
		return
	}
	if current.Name == name {
		back(w, r, "")
		return
	}

	if _, err := h.items.RenameItem(r.Context(), id, name); err != nil {
		h.failed(w, r, models.ActionUpdate, err)
		return
	}
	back(w, r, "")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := formItemID(r)
	if !ok {
		back(w, r, models.ActionDelete)
		return
	}
	if err := h.items.DeleteItem(r.Context(), id); err != nil {
		h.failed(w, r, models.ActionDelete, err)
		return
	}
	back(w, r, "")
}

func (h *Handler) clearCompleted(w http.ResponseWriter, r *http.Request) {
	if _, err := h.items.ClearCompleted(r.Context()); err != nil {
		h.failed(w, r, models.ActionClear, err)
		return
	}
	back(w, r, "")
}

func (h *Handler) toggleTheme(w http.ResponseWriter, r *http.Request) {
	next := theme(r).Toggle()
	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    string(next),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
	})

	target := "/"
	if ref, err := url.Parse(r.Referer()); err == nil && ref.Path == "/login" {
		target = "/login"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) failed(w http.ResponseWriter, r *http.Request, action models.Action, err error) {
	if !errors.Is(err, manager.ErrEmptyName) {
		logger.Error(r.Context(), err, "page action failed", "action", string(action))
	}
	back(w, r, action)
}

func back(w http.ResponseWriter, r *http.Request, failed models.Action) {
	target := "/"
	if failed != "" {
		target += "?error=" + url.QueryEscape(string(failed))
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func formItemID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func theme(r *http.Request) models.Theme {
	c, err := r.Cookie(themeCookie)
	if err != nil {
		return models.ThemeLight
	}
	return models.ParseTheme(c.Value)
}

func render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		logger.Error(r.Context(), err, "render template", "template", name)
	}
}
