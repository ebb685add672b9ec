// Package handlers implements the conversation engine of the bot.
// It classifies every inbound message, checks the sender's role, and runs the
// transition registered for the chat's current state and that input.
package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/KirillkoTankisto/iiko-bot/internal/api"
	"github.com/KirillkoTankisto/iiko-bot/internal/conversation"
	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
	"github.com/KirillkoTankisto/iiko-bot/internal/infra/metrics"
	"github.com/KirillkoTankisto/iiko-bot/internal/services/access"
	"github.com/KirillkoTankisto/iiko-bot/internal/services/servers"
	"github.com/KirillkoTankisto/iiko-bot/internal/services/shifts"
	"github.com/KirillkoTankisto/iiko-bot/internal/session"
	"github.com/KirillkoTankisto/iiko-bot/internal/ui"
)

// Inbound is a chat message or button press, independent of the transport.
type Inbound struct {
	// ChatID identifies the chat
	ChatID int64
	// Handle is the sender's username without '@'; empty when the sender has none.
	Handle string
	// Text is the message text or callback data
	Text string
	// Callback marks text that came from an inline button.
	Callback bool
}

// Reply is one outbound message.
type Reply struct {
	// Text is the message body
	Text string
	// Markdown selects MarkdownV2 parsing.
	Markdown bool
	// Options is the reply keyboard; nil leaves the keyboard untouched.
	Options [][]string
}

// Sender delivers replies to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, reply Reply) error
}

// TokenSource hands out iiko session keys.
type TokenSource interface {
	Acquire(ctx context.Context, creds model.Credentials, server string) (string, error)
	Invalidate(server string)
}

// ShiftLister lists cash shifts for a period.
type ShiftLister interface {
	ListShifts(ctx context.Context, token, server string, period shifts.Period) ([]model.Shift, error)
}

// OlapFetcher fetches the grouped OLAP sales report.
type OlapFetcher interface {
	Fetch(ctx context.Context, server, token string) (model.OlapGroup, error)
}

// Deps holds the collaborators of the Handler.
type Deps struct {
	// Sender delivers replies
	Sender Sender
	// Store keeps per-chat state
	Store conversation.Store
	// Sessions hands out iiko session keys
	Sessions TokenSource
	// Shifts lists cash shifts
	Shifts ShiftLister
	// Olap fetches the OLAP report
	Olap OlapFetcher
	// Registry holds the selectable servers
	Registry *servers.Registry
	// Access resolves roles and edits the allow-list
	Access *access.Service
	// Credentials log in to every server
	Credentials model.Credentials
	// Logger receives structured logs
	Logger *zap.Logger
	// Metrics records handled messages
	Metrics *metrics.Recorder
	// ReportTimeout bounds one report operation including authentication.
	ReportTimeout time.Duration
}

// Handler is the conversation engine.
// It keeps exactly one pending state per chat in the Store and only advances
// it when a transition succeeds.
type Handler struct {
	deps        Deps
	logger      *zap.Logger
	locks       *chatLocks
	transitions map[transitionKey]step
	shortcuts   map[Input]step
}

// NewHandler creates a new conversation engine.
//
// Parameters:
// - deps: collaborators; Sender, Store, Sessions, Shifts, Olap, Registry and Access are required
//
// Returns:
// - *Handler: A new handler instance
// - error: when a required collaborator is missing
func NewHandler(deps Deps) (*Handler, error) {
	switch {
	case deps.Sender == nil:
		return nil, errors.New("sender is required")
	case deps.Store == nil:
		return nil, errors.New("conversation store is required")
	case deps.Sessions == nil, deps.Shifts == nil, deps.Olap == nil:
		return nil, errors.New("report services are required")
	case deps.Registry == nil:
		return nil, errors.New("server registry is required")
	case deps.Access == nil:
		return nil, errors.New("access service is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.ReportTimeout <= 0 {
		deps.ReportTimeout = 30 * time.Second
	}

	h := &Handler{
		deps:   deps,
		logger: deps.Logger,
		locks:  newChatLocks(),
	}
	h.transitions = h.transitionTable()
	h.shortcuts = h.shortcutTable()
	return h, nil
}

// call is the context of one inbound message.
type call struct {
	in     Inbound
	cmd    command
	state  conversation.State
	role   access.Role
	logger *zap.Logger
}

// Handle processes one inbound message. Messages of the same chat are
// handled one at a time.
//
// Parameters:
//   - ctx: bounds the whole step including replies
//   - in: the message to process
func (h *Handler) Handle(ctx context.Context, in Inbound) {
	unlock := h.locks.lock(in.ChatID)
	defer unlock()

	logger := h.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.Int64("chat_id", in.ChatID),
		zap.String("handle", in.Handle),
		zap.Bool("callback", in.Callback),
	)

	state, err := h.deps.Store.State(ctx, in.ChatID)
	if err != nil {
		logger.Error("load conversation state", zap.Error(err))
		h.send(ctx, logger, in.ChatID, Reply{Text: ui.MessageInternalError})
		return
	}

	c := &call{
		in:     in,
		cmd:    classify(state, in.Text),
		state:  state,
		role:   h.deps.Access.ResolveRole(in.Handle),
		logger: logger,
	}
	c.logger = c.logger.With(zap.String("state", state.String()), zap.String("input", c.cmd.input.String()))
	h.deps.Metrics.Message(ctx, state.String(), c.cmd.input.String())

	if c.cmd.input == InputHelp {
		h.send(ctx, c.logger, in.ChatID, Reply{Text: ui.RenderHelp()})
		return
	}
	if c.role == access.RoleNone {
		c.logger.Info("access denied")
		h.send(ctx, c.logger, in.ChatID, Reply{Text: ui.MessageNotAllowed})
		return
	}

	next, err := h.lookup(c)(ctx, c)
	if err != nil {
		h.fail(ctx, c, err)
		return
	}
	if next == state {
		return
	}
	if err := h.deps.Store.SetState(ctx, in.ChatID, next); err != nil {
		c.logger.Error("save conversation state", zap.String("next", next.String()), zap.Error(err))
		h.send(ctx, c.logger, in.ChatID, Reply{Text: ui.MessageInternalError, Options: h.keyboardFor(ctx, in.ChatID, state)})
		return
	}
	c.logger.Debug("state changed", zap.String("next", next.String()))
}

// lookup resolves the step: /commands work from any state, everything else
// goes through the transition table. Unmatched input shows the main menu.
func (h *Handler) lookup(c *call) step {
	if c.cmd.slash {
		if s, ok := h.shortcuts[c.cmd.input]; ok {
			return s
		}
	} else if s, ok := h.transitions[transitionKey{state: c.state, input: c.cmd.input}]; ok {
		return s
	}
	return h.showMainMenu
}

// userError carries the text shown to the operator for a failure.
type userError struct {
	message string
	err     error
}

// Error returns the cause, or the operator text when there is none.
func (e *userError) Error() string {
	if e.err == nil {
		return e.message
	}
	return e.err.Error()
}

// Unwrap returns the cause.
func (e *userError) Unwrap() error {
	return e.err
}

// fail reports err to the chat and leaves the state as it was.
func (h *Handler) fail(ctx context.Context, c *call, err error) {
	var uErr *userError
	var authErr *session.AuthError
	message := ui.MessageInternalError
	switch {
	case errors.As(err, &uErr):
		message = uErr.message
	case errors.As(err, &authErr), api.IsTransient(err):
		message = ui.MessageServiceDown
	case errors.Is(err, access.ErrAccessDenied):
		message = ui.MessageNotAdmin
	}

	switch {
	case errors.Is(err, access.ErrAccessDenied):
		c.logger.Info("admin action denied", zap.String("role", c.role.String()))
	case uErr != nil && uErr.err == nil:
		c.logger.Info("request rejected", zap.String("reason", uErr.message))
	default:
		c.logger.Error("handle message", zap.Error(err))
	}
	h.send(ctx, c.logger, c.in.ChatID, Reply{Text: message, Options: h.keyboardFor(ctx, c.in.ChatID, c.state)})
}

func (h *Handler) send(ctx context.Context, logger *zap.Logger, chatID int64, reply Reply) {
	if err := h.deps.Sender.Send(ctx, chatID, reply); err != nil {
		logger.Error("send reply", zap.Error(err))
	}
}

// keyboardFor rebuilds the keyboard that belongs to state.
func (h *Handler) keyboardFor(ctx context.Context, chatID int64, state conversation.State) [][]string {
	switch state {
	case conversation.StateAwaitingMenuChoice:
		return ui.MainMenu()
	case conversation.StateAwaitingReportMenuChoice:
		return ui.ReportMenu()
	case conversation.StateAwaitingAdminMenuChoice:
		return ui.AdminMenu()
	case conversation.StateAwaitingServerChoice:
		return ui.OptionRows(h.deps.Registry.Names())
	case conversation.StateAwaitingUserToDelete:
		return ui.OptionRows(h.deps.Access.ListUsers())
	case conversation.StateAwaitingNewUserName:
		return ui.BackOnly()
	case conversation.StateAwaitingOlapCategoryChoice:
		group, ok, err := h.deps.Store.OlapGroup(ctx, chatID)
		if err != nil || !ok {
			return ui.BackOnly()
		}
		return ui.OptionRows(group.Categories)
	default:
		return nil
	}
}
