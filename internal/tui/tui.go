// Package tui рисует список покупок в терминале поверх controller.Controller.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"shopping-list/internal/controller"
	"shopping-list/internal/manager"
)

// ErrorTimeout — через столько баннер с ошибкой прячется сам.
const ErrorTimeout = 5 * time.Second

type mode int

const (
	modeList mode = iota
	modeAdd
	modeRename
	modeConfirm
)

type keyMap struct {
	Up, Down, Add, Rename, Toggle, Delete, Clear, Theme, Reload, Logout, Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Rename, k.Toggle, k.Delete, k.Clear, k.Theme, k.Reload, k.Logout, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, k.ShortHelp()}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Add:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Rename: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "rename")),
	Toggle: key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "done")),
	Delete: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Clear:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear done")),
	Theme:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	Logout: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type loadedMsg struct{ err error }

// actionDoneMsg приходит, когда фоновый вызов контроллера закончился.
type actionDoneMsg struct{ focusLast bool }

type hideErrorMsg struct{ seq int }

// Model — bubbletea-модель страницы списка.
type Model struct {
	ctx  context.Context
	ctrl *controller.Controller

	cursor  int
	mode    mode
	input   textinput.Model
	help    help.Model
	loading bool
	busy    bool
	// пока busy, контроллер меняется в фоне: рисуем снимок
	shown controller.View

	// подтверждение: вопрос и что делать после "y"
	prompt    string
	onConfirm func(*Model) tea.Cmd

	renaming int64
	errSeq   int
	lastErr  string
	needAuth bool
}

func New(ctx context.Context, ctrl *controller.Controller) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = manager.MaxNameLength

	return Model{
		ctx:     ctx,
		ctrl:    ctrl,
		input:   ti,
		help:    help.New(),
		loading: true,
	}
}

// Run запускает интерфейс; true означает, что нужен повторный вход.
func Run(ctx context.Context, ctrl *controller.Controller) (bool, error) {
	p := tea.NewProgram(New(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m, ok := final.(Model)
	return ok && m.needAuth, nil
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

// load уходит в фон; пока она идёт, контроллер не трогаем.
func (m Model) load() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return loadedMsg{err: ctrl.Load(ctx)}
	}
}

// run отправляет действие контроллера в фон так же, как load.
func (m *Model) run(do func(context.Context, *controller.Controller) error, focusLast bool) tea.Cmd {
	m.shown = m.ctrl.View()
	m.busy = true
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		err := do(ctx, ctrl)
		return actionDoneMsg{focusLast: focusLast && err == nil}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loading = false
		m.clampCursor()
		return m.afterAction()
	case actionDoneMsg:
		m.busy = false
		if n := len(m.ctrl.Items()); msg.focusLast && n > 0 {
			m.cursor = n - 1
		}
		m.clampCursor()
		return m.afterAction()
	case hideErrorMsg:
		if m.loading || m.busy {
			return m, tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg { return msg })
		}
		if msg.seq == m.errSeq {
			m.ctrl.DismissError()
			m.lastErr = ""
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.input.Width = msg.Width - 8
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.loading || m.busy {
			return m, nil
		}
		switch m.mode {
		case modeAdd, modeRename:
			return m.updateInput(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.ctrl.Items()

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(items)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Add):
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Placeholder = "Add item..."
		return m, m.input.Focus()
	case key.Matches(msg, keys.Rename):
		if len(items) == 0 {
			return m, nil
		}
		it := items[m.cursor]
		m.mode = modeRename
		m.renaming = it.ID
		m.input.SetValue(it.Name)
		m.input.CursorEnd()
		m.input.Placeholder = "Item name..."
		return m, m.input.Focus()
	case key.Matches(msg, keys.Toggle):
		if len(items) > 0 {
			id := items[m.cursor].ID
			cmd := m.run(func(ctx context.Context, c *controller.Controller) error {
				return c.ToggleComplete(ctx, id)
			}, false)
			return m, cmd
		}
	case key.Matches(msg, keys.Delete):
		if len(items) > 0 {
			id := items[m.cursor].ID
			cmd := m.run(func(ctx context.Context, c *controller.Controller) error {
				return c.Delete(ctx, id)
			}, false)
			return m, cmd
		}
	case key.Matches(msg, keys.Clear):
		counts := m.ctrl.Counts()
		if counts.Completed == 0 {
			return m, nil
		}
		return m.ask(counts.ClearPrompt(), func(m *Model) tea.Cmd {
			return m.run(func(ctx context.Context, c *controller.Controller) error {
				return c.ClearCompleted(ctx, func(string) bool { return true })
			}, false)
		}), nil
	case key.Matches(msg, keys.Theme):
		_ = m.ctrl.ToggleTheme()
	case key.Matches(msg, keys.Reload):
		m.loading = true
		return m, m.load()
	case key.Matches(msg, keys.Logout):
		return m.ask("Are you sure you want to logout?", func(m *Model) tea.Cmd {
			return m.run(func(ctx context.Context, c *controller.Controller) error {
				c.Logout(ctx, nil)
				return nil
			}, false)
		}), nil
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.input.Blur()
		return m, nil
	case "enter":
		value := m.input.Value()
		var cmd tea.Cmd
		if m.mode == modeAdd {
			cmd = m.run(func(ctx context.Context, c *controller.Controller) error {
				return c.Add(ctx, value)
			}, strings.TrimSpace(value) != "")
		} else {
			id := m.renaming
			cmd = m.run(func(ctx context.Context, c *controller.Controller) error {
				return c.Rename(ctx, id, value)
			}, false)
		}
		m.mode = modeList
		m.input.Blur()
		m.input.SetValue("")
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action := m.onConfirm
	m.mode = modeList
	m.prompt = ""
	m.onConfirm = nil

	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		cmd := action(&m)
		return m, cmd
	}
	return m, nil
}

func (m Model) ask(prompt string, action func(*Model) tea.Cmd) Model {
	m.mode = modeConfirm
	m.prompt = prompt
	m.onConfirm = action
	return m
}

// afterAction заводит таймер, если контроллер показал новую ошибку.
func (m Model) afterAction() (tea.Model, tea.Cmd) {
	if m.ctrl.NeedsLogin() {
		m.needAuth = true
		return m, tea.Quit
	}
	msg := m.ctrl.Error()
	if msg == "" || msg == m.lastErr {
		m.lastErr = msg
		return m, nil
	}
	m.lastErr = msg
	m.errSeq++
	seq := m.errSeq
	return m, tea.Tick(ErrorTimeout, func(time.Time) tea.Msg { return hideErrorMsg{seq: seq} })
}

func (m *Model) clampCursor() {
	n := len(m.ctrl.Items())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) View() string {
	if m.loading {
		return stylesFor(m.ctrl.Theme()).panel.Render("Loading...")
	}

	v := m.shown
	if !m.busy {
		v = m.ctrl.View()
	}
	st := stylesFor(v.Theme)

	var b strings.Builder
	b.WriteString(st.title.Render("Shopping List"))
	b.WriteString("  ")
	b.WriteString(st.muted.Render(string(v.Theme)))
	b.WriteString("\n\n")

	if v.Error != "" {
		b.WriteString(st.errorBar.Render(v.Error))
		b.WriteString("\n\n")
	}

	if len(v.Items) == 0 {
		b.WriteString(st.muted.Render("Your list is empty"))
		b.WriteString("\n")
	}
	for i, it := range v.Items {
		box, name := st.muted.Render(boxUnchecked), it.Name
		if it.Completed {
			box, name = st.success.Render(boxChecked), st.done.Render(it.Name)
		}
		prefix := "  "
		if i == m.cursor {
			prefix = st.selected.Render(">") + " "
		}
		fmt.Fprintf(&b, "%s%s %s\n", prefix, box, name)
	}

	b.WriteString("\n")
	b.WriteString(st.accent.Render(v.CountText))

	switch m.mode {
	case modeAdd, modeRename:
		title := "Add item"
		if m.mode == modeRename {
			title = "Rename item"
		}
		b.WriteString("\n")
		b.WriteString(st.input.Render(title + "\n" + m.input.View()))
	case modeConfirm:
		b.WriteString("\n\n")
		b.WriteString(st.pending.Render(m.prompt + " (y/n)"))
	}

	b.WriteString("\n")
	b.WriteString(st.help.Render(m.help.View(keys)))
	return st.panel.Render(b.String())
}
