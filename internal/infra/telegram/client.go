// Package telegram connects the conversation engine to the Bot API.
package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/KirillkoTankisto/iiko-bot/internal/handlers"
	"github.com/KirillkoTankisto/iiko-bot/internal/ui"
)

// UpdateHandler handles one inbound message.
type UpdateHandler func(context.Context, handlers.Inbound)

// Config configures the Bot API client.
type Config struct {
	// Token is the Bot API token; empty selects dry mode
	Token string
	// PollTimeout is the long polling timeout in seconds
	PollTimeout int
	// Workers is the number of chat workers
	Workers int
	// Debug logs Bot API requests
	Debug bool
}

// Client polls for updates and sends replies. Without a token it runs in
// dry mode: nothing is received and sends are only logged.
type Client struct {
	api         *tgbotapi.BotAPI
	logger      *zap.Logger
	handler     UpdateHandler
	pollTimeout int
	workers     int
	dryRun      bool
}

// NewClient creates a client and authorizes the token.
//
// Parameters:
//   - cfg: client settings
//   - logger: structured logger; nil discards logs
//   - handler: receives every inbound message
//
// Returns:
//   - *Client: the client
//   - error: when handler is nil or the token is rejected
func NewClient(cfg Config, logger *zap.Logger, handler UpdateHandler) (*Client, error) {
	if handler == nil {
		return nil, errors.New("telegram update handler is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	c := &Client{
		logger:      logger,
		handler:     handler,
		pollTimeout: cfg.PollTimeout,
		workers:     workers,
	}

	if strings.TrimSpace(cfg.Token) == "" {
		c.dryRun = true
		return c, nil
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	api.Debug = cfg.Debug
	c.api = api
	logger.Info("authorized on telegram", zap.String("account", api.Self.UserName))
	return c, nil
}

// RegisterCommands publishes the slash command list shown by clients.
func (c *Client) RegisterCommands() error {
	if c.dryRun {
		return nil
	}
	_, err := c.api.Request(tgbotapi.NewSetMyCommands(BotCommands()...))
	return err
}

// Start blocks until ctx is done. Each chat is pinned to one of Workers
// goroutines so its updates are handled in arrival order; Start waits for
// queued updates before returning.
//
// Parameters:
//   - ctx: stops polling when done
//
// Returns:
//   - error: nil once ctx is done or updates stop
func (c *Client) Start(ctx context.Context) error {
	if c.dryRun {
		c.logger.Warn("BOT_TOKEN is empty, running in dry mode")
		<-ctx.Done()
		return nil
	}

	timeout := c.pollTimeout
	if timeout <= 0 {
		timeout = 30
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = timeout
	updates := c.api.GetUpdatesChan(updateConfig)

	workers := newPool(c.workers, c.handler)
	done := make(chan error, 1)
	go func() {
		done <- workers.run(ctx)
	}()
	defer func() {
		workers.close()
		<-done
	}()

	for {
		select {
		case <-ctx.Done():
			c.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			c.answerCallback(update)
			in, ok := InboundFromUpdate(update)
			if !ok {
				continue
			}
			if !workers.submit(ctx, in) {
				c.api.StopReceivingUpdates()
				return nil
			}
		}
	}
}

func (c *Client) answerCallback(update tgbotapi.Update) {
	if update.CallbackQuery == nil {
		return
	}
	if _, err := c.api.Request(tgbotapi.NewCallback(update.CallbackQuery.ID, "")); err != nil {
		c.logger.Warn("answer callback", zap.Error(err))
	}
}

// Send implements handlers.Sender.
//
// Parameters:
//   - chatID: destination chat
//   - reply: text, parse mode and keyboard
//
// Returns:
//   - error: when the Bot API rejects the message
func (c *Client) Send(_ context.Context, chatID int64, reply handlers.Reply) error {
	if c.dryRun {
		c.logger.Debug("dry run send", zap.Int64("chat_id", chatID), zap.String("text", reply.Text))
		return nil
	}
	_, err := c.api.Send(BuildMessage(chatID, reply))
	return err
}

// InboundFromUpdate extracts the chat, sender handle and text of a message
// or a callback query. ok is false for updates the bot does not handle.
func InboundFromUpdate(update tgbotapi.Update) (handlers.Inbound, bool) {
	switch {
	case update.Message != nil:
		msg := update.Message
		if msg.Chat == nil || msg.Text == "" {
			return handlers.Inbound{}, false
		}
		in := handlers.Inbound{ChatID: msg.Chat.ID, Text: msg.Text}
		if msg.From != nil {
			in.Handle = msg.From.UserName
		}
		return in, true
	case update.CallbackQuery != nil:
		query := update.CallbackQuery
		if query.Message == nil || query.Message.Chat == nil {
			return handlers.Inbound{}, false
		}
		in := handlers.Inbound{ChatID: query.Message.Chat.ID, Text: query.Data, Callback: true}
		if query.From != nil {
			in.Handle = query.From.UserName
		}
		return in, true
	default:
		return handlers.Inbound{}, false
	}
}

// BuildMessage converts reply into a Bot API message for chatID.
func BuildMessage(chatID int64, reply handlers.Reply) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.Markdown {
		msg.ParseMode = tgbotapi.ModeMarkdownV2
	}
	if reply.Options != nil {
		msg.ReplyMarkup = BuildReplyKeyboard(reply.Options)
	}
	return msg
}

// BotCommands converts the slash command list for SetMyCommands.
func BotCommands() []tgbotapi.BotCommand {
	commands := ui.Commands()
	out := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, cmd := range commands {
		out = append(out, tgbotapi.BotCommand{Command: cmd[0], Description: cmd[1]})
	}
	return out
}
