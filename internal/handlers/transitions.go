package handlers

import (
	"context"

	"github.com/KirillkoTankisto/iiko-bot/internal/conversation"
	"github.com/KirillkoTankisto/iiko-bot/internal/services/access"
	"github.com/KirillkoTankisto/iiko-bot/internal/ui"
)

// step runs the effect of a transition and returns the next state. On error
// the state is left unchanged.
type step func(ctx context.Context, c *call) (conversation.State, error)

type transitionKey struct {
	state conversation.State
	input Input
}

func (h *Handler) transitionTable() map[transitionKey]step {
	const (
		idle     = conversation.StateIdle
		menu     = conversation.StateAwaitingMenuChoice
		reports  = conversation.StateAwaitingReportMenuChoice
		admin    = conversation.StateAwaitingAdminMenuChoice
		server   = conversation.StateAwaitingServerChoice
		olap     = conversation.StateAwaitingOlapCategoryChoice
		newUser  = conversation.StateAwaitingNewUserName
		deletion = conversation.StateAwaitingUserToDelete
	)

	return map[transitionKey]step{
		{idle, InputStart}: h.showMainMenu,

		{menu, InputReports}:    h.showReportMenu,
		{menu, InputSwitch}:     h.showServerChoice,
		{menu, InputServerList}: h.listServers,
		{menu, InputAdmin}:      h.adminOnly(h.showAdminMenu),

		{reports, InputToday}:     h.reportToday,
		{reports, InputYesterday}: h.reportYesterday,
		{reports, InputWeek}:      h.reportWeek,
		{reports, InputMonth}:     h.reportMonth,
		{reports, InputOlap}:      h.startOlap,
		{reports, InputBack}:      h.showMainMenu,

		{olap, InputText}: h.chooseOlapCategory,
		{olap, InputBack}: h.showMainMenu,

		{server, InputText}: h.chooseServer,
		{server, InputBack}: h.showMainMenu,

		{admin, InputAddUser}:    h.adminOnly(h.promptNewUser),
		{admin, InputDeleteUser}: h.adminOnly(h.promptUserToDelete),
		{admin, InputListUsers}:  h.adminOnly(h.listUsers),
		{admin, InputListAdmins}: h.adminOnly(h.listAdmins),
		{admin, InputBack}:       h.showMainMenu,

		{newUser, InputText}: h.adminOnly(h.addUser),
		{newUser, InputBack}: h.showMainMenu,

		{deletion, InputText}: h.adminOnly(h.deleteUser),
		{deletion, InputBack}: h.showMainMenu,
	}
}

// shortcutTable maps /commands, which are accepted in every state.
func (h *Handler) shortcutTable() map[Input]step {
	return map[Input]step{
		InputStart:      h.showMainMenu,
		InputToday:      h.reportToday,
		InputYesterday:  h.reportYesterday,
		InputWeek:       h.reportWeek,
		InputMonth:      h.reportMonth,
		InputOlap:       h.startOlap,
		InputSwitch:     h.showServerChoice,
		InputServerList: h.listServers,
		InputAddUser:    h.adminOnly(h.promptNewUser),
		InputDeleteUser: h.adminOnly(h.promptUserToDelete),
		InputListUsers:  h.adminOnly(h.listUsers),
		InputListAdmins: h.adminOnly(h.listAdmins),
	}
}

// adminOnly runs next for admins. Anyone else gets access.ErrAccessDenied,
// which leaves the state unchanged.
func (h *Handler) adminOnly(next step) step {
	return func(ctx context.Context, c *call) (conversation.State, error) {
		if c.role != access.RoleAdmin {
			return c.state, access.ErrAccessDenied
		}
		return next(ctx, c)
	}
}

func (h *Handler) reply(ctx context.Context, c *call, reply Reply) error {
	return h.deps.Sender.Send(ctx, c.in.ChatID, reply)
}

func (h *Handler) showMainMenu(ctx context.Context, c *call) (conversation.State, error) {
	if err := h.reply(ctx, c, Reply{Text: ui.MessageChooseOption, Options: ui.MainMenu()}); err != nil {
		return c.state, err
	}
	return conversation.StateAwaitingMenuChoice, nil
}

func (h *Handler) showReportMenu(ctx context.Context, c *call) (conversation.State, error) {
	if err := h.reply(ctx, c, Reply{Text: ui.MessageChooseOption, Options: ui.ReportMenu()}); err != nil {
		return c.state, err
	}
	return conversation.StateAwaitingReportMenuChoice, nil
}

func (h *Handler) showAdminMenu(ctx context.Context, c *call) (conversation.State, error) {
	if err := h.reply(ctx, c, Reply{Text: ui.MessageChooseOption, Options: ui.AdminMenu()}); err != nil {
		return c.state, err
	}
	return conversation.StateAwaitingAdminMenuChoice, nil
}

// sendThenMenu sends a result and returns the chat to the main menu.
func (h *Handler) sendThenMenu(ctx context.Context, c *call, result Reply) (conversation.State, error) {
	if err := h.reply(ctx, c, result); err != nil {
		return c.state, err
	}
	return h.showMainMenu(ctx, c)
}
