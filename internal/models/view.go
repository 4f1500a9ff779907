package models

import "fmt"

// Action — пользовательское действие; у каждого одно сообщение об ошибке без уточнения причины.
type Action string

const (
	ActionLoad   Action = "load"
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionClear  Action = "clear"
)

var failureMessages = map[Action]string{
	ActionLoad:   "Failed to load shopping list",
	ActionAdd:    "Failed to add item",
	ActionUpdate: "Failed to update item",
	ActionDelete: "Failed to delete item",
	ActionClear:  "Failed to clear completed items",
}

func (a Action) FailureMessage() string {
	if msg, ok := failureMessages[a]; ok {
		return msg
	}
	return "Something went wrong"
}

func ParseAction(raw string) (Action, bool) {
	a := Action(raw)
	_, ok := failureMessages[a]
	return a, ok
}

// Text — строка счётчика под списком.
func (c Counts) Text() string {
	switch {
	case c.Total == 0:
		return "No items"
	case c.Completed == 0:
		return fmt.Sprintf("%d %s", c.Total, plural(c.Total, "item"))
	default:
		return fmt.Sprintf("%d pending, %d done", c.Pending, c.Completed)
	}
}

// ClearPrompt — вопрос перед удалением выполненных.
func (c Counts) ClearPrompt() string {
	return fmt.Sprintf("Remove %d completed %s?", c.Completed, plural(c.Completed, "item"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseTheme(raw string) Theme {
	if Theme(raw) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
