package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/KirillkoTankisto/iiko-bot/internal/handlers"
	"github.com/KirillkoTankisto/iiko-bot/internal/ui"
)

func TestInboundFromUpdate(t *testing.T) {
	testCases := []struct {
		name   string
		update tgbotapi.Update
		want   handlers.Inbound
		ok     bool
	}{
		{
			name: "text message",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				Chat: &tgbotapi.Chat{ID: 42},
				From: &tgbotapi.User{UserName: "alice"},
				Text: ui.ButtonReports,
			}},
			want: handlers.Inbound{ChatID: 42, Handle: "alice", Text: ui.ButtonReports},
			ok:   true,
		},
		{
			name: "sender without handle",
			update: tgbotapi.Update{Message: &tgbotapi.Message{
				Chat: &tgbotapi.Chat{ID: 7},
				From: &tgbotapi.User{FirstName: "Bob"},
				Text: "/start",
			}},
			want: handlers.Inbound{ChatID: 7, Text: "/start"},
			ok:   true,
		},
		{
			name: "callback query",
			update: tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
				ID:      "cb",
				From:    &tgbotapi.User{UserName: "boss"},
				Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 9}},
				Data:    "Пицца",
			}},
			want: handlers.Inbound{ChatID: 9, Handle: "boss", Text: "Пицца", Callback: true},
			ok:   true,
		},
		{
			name:   "sticker",
			update: tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1}}},
		},
		{
			name:   "callback without message",
			update: tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "cb", Data: "x"}},
		},
		{
			name:   "edited message",
			update: tgbotapi.Update{EditedMessage: &tgbotapi.Message{Text: "x"}},
		},
	}

	for _, tc := range testCases {
		got, ok := InboundFromUpdate(tc.update)
		if ok != tc.ok {
			t.Fatalf("%s: expected ok=%v, got %v", tc.name, tc.ok, ok)
		}
		if got != tc.want {
			t.Fatalf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}
}

func TestBuildMessage(t *testing.T) {
	plain := BuildMessage(5, handlers.Reply{Text: "hello"})
	if plain.ParseMode != "" || plain.ReplyMarkup != nil {
		t.Fatalf("expected plain message, got %+v", plain)
	}

	rich := BuildMessage(5, handlers.Reply{Text: "*bold*", Markdown: true, Options: ui.MainMenu()})
	if rich.ParseMode != tgbotapi.ModeMarkdownV2 {
		t.Fatalf("unexpected parse mode: %q", rich.ParseMode)
	}
	keyboard, ok := rich.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	if !ok {
		t.Fatalf("expected reply keyboard, got %T", rich.ReplyMarkup)
	}
	if len(keyboard.Keyboard) != 2 || keyboard.Keyboard[0][0].Text != ui.ButtonReports {
		t.Fatalf("unexpected keyboard: %+v", keyboard.Keyboard)
	}
	if !keyboard.ResizeKeyboard {
		t.Fatal("expected resized keyboard")
	}
}

func TestBotCommandsMatchHelp(t *testing.T) {
	commands := BotCommands()
	if len(commands) != len(ui.Commands()) {
		t.Fatalf("expected %d commands, got %d", len(ui.Commands()), len(commands))
	}
	for _, cmd := range commands {
		if cmd.Command == "" || cmd.Description == "" {
			t.Fatalf("incomplete command: %+v", cmd)
		}
	}
}

func TestDryRunClient(t *testing.T) {
	client, err := NewClient(Config{Token: "  ", Workers: 2}, nil, func(context.Context, handlers.Inbound) {})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Send(context.Background(), 1, handlers.Reply{Text: "x"}); err != nil {
		t.Fatalf("dry run send: %v", err)
	}
	if err := client.RegisterCommands(); err != nil {
		t.Fatalf("dry run commands: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.Start(ctx); err != nil {
		t.Fatalf("dry run start: %v", err)
	}
}

func TestNewClientRequiresHandler(t *testing.T) {
	if _, err := NewClient(Config{}, nil, nil); err == nil {
		t.Fatal("expected error without handler")
	}
}
