package main

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"

	"shopping-list/internal/manager"
	"shopping-list/internal/models"
	"shopping-list/internal/storage"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) last() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1].Text
}

func message(chatID int64, text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{UserName: "tester"},
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		msg.Entities = &[]tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	return msg
}

func newTestBot(allowed func(int64) bool) (*Bot, *fakeSender, *manager.ItemManager) {
	im := manager.NewItemManager(storage.NewMemoryStorage(), models.SortOldestFirst)
	fs := &fakeSender{}
	return NewBot(fs, im, allowed), fs, im
}

func TestBotCommands(t *testing.T) {
	ctx := context.Background()
	bot, fs, im := newTestBot(nil)

	bot.handleMessage(ctx, message(1, "/add Milk"))
	if !strings.Contains(fs.last(), "#1 Milk") {
		t.Errorf("ответ на /add: %q", fs.last())
	}

	// обычный текст тоже добавляет
	bot.handleMessage(ctx, message(1, "snake_case_bread"))
	if !strings.Contains(fs.last(), `snake\_case\_bread`) {
		t.Errorf("имя не экранировано: %q", fs.last())
	}

	bot.handleMessage(ctx, message(1, "/done 1"))
	if !strings.Contains(fs.last(), "is done") {
		t.Errorf("ответ на /done: %q", fs.last())
	}

	bot.handleMessage(ctx, message(1, "/list"))
	if !strings.Contains(fs.last(), "1 pending, 1 done") {
		t.Errorf("ответ на /list: %q", fs.last())
	}

	bot.handleMessage(ctx, message(1, "/rename 2 Rye bread"))
	if it, _ := im.GetItem(ctx, 2); it.Name != "Rye bread" {
		t.Errorf("ожидалось Rye bread, получено %q", it.Name)
	}

	bot.handleMessage(ctx, message(1, "/clear"))
	if !strings.Contains(fs.last(), "Removed 1") {
		t.Errorf("ответ на /clear: %q", fs.last())
	}

	bot.handleMessage(ctx, message(1, "/delete 2"))
	items, _ := im.ListItems(ctx)
	if len(items) != 0 {
		t.Errorf("ожидался пустой список, получено %d", len(items))
	}
}

func TestBotErrors(t *testing.T) {
	ctx := context.Background()
	bot, fs, _ := newTestBot(nil)

	tests := []struct {
		text string
		want string
	}{
		{"/add", "Tell me what to add"},
		{"/done", "Give me the item number"},
		{"/done abc", "must be a positive number"},
		{"/delete 42", "Item not found"},
		{"/add " + strings.Repeat("x", manager.MaxNameLength+1), "must not exceed"},
		{"/clear", "Nothing to clear"},
		{"/dance", "Unknown command"},
	}
	for _, tt := range tests {
		bot.handleMessage(ctx, message(1, tt.text))
		if !strings.Contains(fs.last(), tt.want) {
			t.Errorf("%s: ожидалось %q в %q", tt.text, tt.want, fs.last())
		}
	}
}

func TestBotAllowlist(t *testing.T) {
	ctx := context.Background()
	bot, fs, im := newTestBot(func(id int64) bool { return id == 7 })

	bot.handleMessage(ctx, message(8, "/add Milk"))
	if !strings.Contains(fs.last(), "not allowed") {
		t.Errorf("чужой чат должен получить отказ: %q", fs.last())
	}
	if items, _ := im.ListItems(ctx); len(items) != 0 {
		t.Errorf("чужой чат не должен менять список")
	}

	bot.handleMessage(ctx, message(7, "/add Milk"))
	if items, _ := im.ListItems(ctx); len(items) != 1 {
		t.Errorf("разрешённый чат должен добавить элемент")
	}
}

func TestBotStartStops(t *testing.T) {
	bot, fs, _ := newTestBot(nil)
	updates := make(chan tgbotapi.Update, 2)
	updates <- tgbotapi.Update{Message: message(1, "/start")}
	updates <- tgbotapi.Update{}
	close(updates)

	bot.Start(context.Background(), updates)
	if len(fs.sent) != 1 || !strings.Contains(fs.sent[0].Text, "Welcome") {
		t.Errorf("ожидалось одно приветствие, получено %v", fs.sent)
	}
}
