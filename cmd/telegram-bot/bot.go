package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"shopping-list/internal/logger"
	"shopping-list/internal/manager"
	"shopping-list/internal/models"
	"shopping-list/internal/storage"
)

// sender — часть tgbotapi.BotAPI, которой пользуется бот.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api     sender
	items   *manager.ItemManager
	allowed func(chatID int64) bool
}

func NewBot(api sender, im *manager.ItemManager, allowed func(int64) bool) *Bot {
	if allowed == nil {
		allowed = func(int64) bool { return true }
	}
	return &Bot{api: api, items: im, allowed: allowed}
}

// Start читает обновления, пока не отменён ctx или не закрыт канал.
func (b *Bot) Start(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	logger.Info(ctx, "bot is listening for messages")
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user := ""
	if msg.From != nil {
		user = msg.From.UserName
	}
	logger.Debug(ctx, "message received", "chat_id", msg.Chat.ID, "user", user, "text", msg.Text)

	if !b.allowed(msg.Chat.ID) {
		logger.Warn(ctx, "chat not allowed", "chat_id", msg.Chat.ID, "user", user)
		b.send(msg.Chat.ID, "⛔ This chat is not allowed to use the shopping list.")
		return
	}

	b.send(msg.Chat.ID, b.reply(ctx, msg))
}

// reply строит ответ на сообщение; обычный текст добавляется как элемент.
func (b *Bot) reply(ctx context.Context, msg *tgbotapi.Message) string {
	if !msg.IsCommand() {
		if strings.TrimSpace(msg.Text) == "" {
			return ""
		}
		return b.addItem(ctx, msg.Text)
	}

	args := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start":
		return welcomeText
	case "help":
		return helpText
	case "add":
		if args == "" {
			return "Tell me what to add: /add Milk"
		}
		return b.addItem(ctx, args)
	case "list":
		return b.listItems(ctx)
	case "done":
		return b.withID(args, "/done 1", func(id int64) string {
			it, err := b.items.ToggleItem(ctx, id)
			if err != nil {
				return failure(models.ActionUpdate, err)
			}
			if it.Completed {
				return fmt.Sprintf("✅ #%d %s is done", it.ID, escape(it.Name))
			}
			return fmt.Sprintf("🛒 #%d %s is back on the list", it.ID, escape(it.Name))
		})
	case "rename":
		idRaw, name, _ := strings.Cut(args, " ")
		return b.withID(idRaw, "/rename 1 Oat milk", func(id int64) string {
			it, err := b.items.RenameItem(ctx, id, name)
			if err != nil {
				return failure(models.ActionUpdate, err)
			}
			return fmt.Sprintf("✏️ #%d renamed to %s", it.ID, escape(it.Name))
		})
	case "delete":
		return b.withID(args, "/delete 1", func(id int64) string {
			if err := b.items.DeleteItem(ctx, id); err != nil {
				return failure(models.ActionDelete, err)
			}
			return fmt.Sprintf("🗑️ Item #%d deleted", id)
		})
	case "clear":
		removed, err := b.items.ClearCompleted(ctx)
		if err != nil {
			return failure(models.ActionClear, err)
		}
		if removed == 0 {
			return "Nothing to clear"
		}
		return fmt.Sprintf("🧹 Removed %d completed item(s)", removed)
	default:
		return "Unknown command. Use /help to see the list of commands."
	}
}

func (b *Bot) addItem(ctx context.Context, text string) string {
	it, err := b.items.AddItem(ctx, text)
	if err != nil {
		return failure(models.ActionAdd, err)
	}
	return fmt.Sprintf("✅ *Added!*\n\n#%d %s", it.ID, escape(it.Name))
}

func (b *Bot) listItems(ctx context.Context) string {
	items, err := b.items.ListItems(ctx)
	if err != nil {
		return failure(models.ActionLoad, err)
	}
	if len(items) == 0 {
		return "📭 Your list is empty"
	}

	var sb strings.Builder
	sb.WriteString("📋 *Shopping list:*\n\n")
	for _, it := range items {
		status := "🛒"
		if it.Completed {
			status = "✅"
		}
		fmt.Fprintf(&sb, "%s #%d %s\n", status, it.ID, escape(it.Name))
	}
	sb.WriteString("\n")
	sb.WriteString(models.CountItems(items).Text())
	return sb.String()
}

func (b *Bot) withID(raw, example string, fn func(int64) string) string {
	if raw == "" {
		return "Give me the item number: " + example
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 10, 64)
	if err != nil || id <= 0 {
		return "Item number must be a positive number"
	}
	return fn(id)
}

// failure: ошибки валидации показываем как есть, остальное — общим сообщением действия.
func failure(action models.Action, err error) string {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return "❌ Item not found"
	case errors.Is(err, manager.ErrEmptyName), errors.Is(err, manager.ErrNameTooLong), errors.Is(err, manager.ErrEmptyUpdate):
		return "❌ " + err.Error()
	}
	logger.Error(context.Background(), err, "bot action failed", "action", string(action))
	return "❌ " + action.FailureMessage()
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func (b *Bot) send(chatID int64, text string) {
	if text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"

	if _, err := b.api.Send(msg); err != nil {
		logger.Error(context.Background(), err, "send message", "chat_id", chatID)
	}
}

const welcomeText = `🛒 *Welcome to the shopping list bot!*

Send any text to add it to the list.

*Commands:*
/add [item] - Add an item
/list - Show the list
/done [number] - Mark an item done (again to undo)
/rename [number] [name] - Rename an item
/delete [number] - Delete an item
/clear - Remove completed items
/help - Help`

const helpText = `🤖 *Commands*

*/add [item]* - Add an item
*/list* - Show the list
*/done [number]* - Toggle done
*/rename [number] [name]* - Rename
*/delete [number]* - Delete
*/clear* - Remove completed items

*Examples:*
/add Milk
/done 1
/rename 1 Oat milk`
