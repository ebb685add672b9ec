package handlers

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/KirillkoTankisto/iiko-bot/internal/conversation"
	"github.com/KirillkoTankisto/iiko-bot/internal/services/access"
	"github.com/KirillkoTankisto/iiko-bot/internal/ui"
)

func (h *Handler) promptNewUser(ctx context.Context, c *call) (conversation.State, error) {
	if err := h.reply(ctx, c, Reply{Text: ui.MessageEnterUsername, Options: ui.BackOnly()}); err != nil {
		return c.state, err
	}
	return conversation.StateAwaitingNewUserName, nil
}

func (h *Handler) promptUserToDelete(ctx context.Context, c *call) (conversation.State, error) {
	if err := h.reply(ctx, c, Reply{Text: ui.MessageChooseToDelete, Options: ui.OptionRows(h.deps.Access.ListUsers())}); err != nil {
		return c.state, err
	}
	return conversation.StateAwaitingUserToDelete, nil
}

func (h *Handler) listUsers(ctx context.Context, c *call) (conversation.State, error) {
	return h.sendThenMenu(ctx, c, Reply{Text: ui.RenderUsers(h.deps.Access.ListUsers())})
}

func (h *Handler) listAdmins(ctx context.Context, c *call) (conversation.State, error) {
	return h.sendThenMenu(ctx, c, Reply{Text: ui.RenderAdmins(h.deps.Access.ListAdmins())})
}

func (h *Handler) addUser(ctx context.Context, c *call) (conversation.State, error) {
	name, err := h.deps.Access.AddUser(c.cmd.text)
	switch {
	case errors.Is(err, access.ErrEmptyUsername):
		if err := h.reply(ctx, c, Reply{Text: ui.MessageEmptyUsername, Options: ui.BackOnly()}); err != nil {
			return c.state, err
		}
		return c.state, nil
	case err != nil:
		return c.state, &userError{message: ui.MessageSaveFailed, err: err}
	}

	c.logger.Info("user added", zap.String("user", name))
	return h.sendThenMenu(ctx, c, Reply{Text: ui.RenderUserAdded(name)})
}

// deleteUser removes a handle from the allow-list. An unknown handle is
// reported and the chat keeps waiting for a valid one.
func (h *Handler) deleteUser(ctx context.Context, c *call) (conversation.State, error) {
	name, err := h.deps.Access.DeleteUser(c.cmd.text)
	switch {
	case errors.Is(err, access.ErrUserNotFound), errors.Is(err, access.ErrEmptyUsername):
		notice := ui.RenderUserNotFound(access.Normalize(c.cmd.text))
		if err := h.reply(ctx, c, Reply{Text: notice, Options: ui.OptionRows(h.deps.Access.ListUsers())}); err != nil {
			return c.state, err
		}
		return c.state, nil
	case err != nil:
		return c.state, &userError{message: ui.MessageSaveFailed, err: err}
	}

	c.logger.Info("user deleted", zap.String("user", name))
	return h.sendThenMenu(ctx, c, Reply{Text: ui.RenderUserDeleted(name)})
}
