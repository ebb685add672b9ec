package handlers

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/KirillkoTankisto/iiko-bot/internal/conversation"
	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
	"github.com/KirillkoTankisto/iiko-bot/internal/services/olap"
	"github.com/KirillkoTankisto/iiko-bot/internal/services/shifts"
	"github.com/KirillkoTankisto/iiko-bot/internal/session"
	"github.com/KirillkoTankisto/iiko-bot/internal/ui"
)

func (h *Handler) withToken(ctx context.Context, server model.Server, fn func(ctx context.Context, token string) error) error {
	return session.WithToken(ctx, h.deps.Sessions, h.deps.Credentials, server.Address, fn)
}

func (h *Handler) listShifts(ctx context.Context, server model.Server, period shifts.Period) ([]model.Shift, error) {
	ctx, cancel := context.WithTimeout(ctx, h.deps.ReportTimeout)
	defer cancel()

	var list []model.Shift
	err := h.withToken(ctx, server, func(ctx context.Context, token string) error {
		var err error
		list, err = h.deps.Shifts.ListShifts(ctx, token, server.Address, period)
		return err
	})
	return list, err
}

func (h *Handler) reportToday(ctx context.Context, c *call) (conversation.State, error) {
	return h.reportShift(ctx, c, 0)
}

func (h *Handler) reportYesterday(ctx context.Context, c *call) (conversation.State, error) {
	return h.reportShift(ctx, c, 1)
}

// reportShift shows the shift offset positions before the latest one in the
// last week.
func (h *Handler) reportShift(ctx context.Context, c *call, offset int) (conversation.State, error) {
	server := h.deps.Registry.Current()
	list, err := h.listShifts(ctx, server, shifts.Week)
	if err != nil {
		return c.state, err
	}

	shift, err := shifts.LatestShift(list, offset)
	if err != nil {
		return c.state, &userError{message: ui.RenderNoShift(offset)}
	}

	c.logger.Info("shift report sent", zap.String("server", server.Name), zap.Int("offset", offset))
	return h.sendThenMenu(ctx, c, Reply{Text: ui.RenderShift(server.Name, shift, offset > 0), Markdown: true})
}

func (h *Handler) reportWeek(ctx context.Context, c *call) (conversation.State, error) {
	server := h.deps.Registry.Current()
	list, err := h.listShifts(ctx, server, shifts.Week)
	if err != nil {
		return c.state, err
	}
	return h.sendThenMenu(ctx, c, Reply{Text: ui.RenderWeekTotal(server.Name, shifts.SumShifts(list)), Markdown: true})
}

func (h *Handler) reportMonth(ctx context.Context, c *call) (conversation.State, error) {
	server := h.deps.Registry.Current()
	list, err := h.listShifts(ctx, server, shifts.ThisMonth)
	if err != nil {
		return c.state, err
	}
	return h.sendThenMenu(ctx, c, Reply{Text: ui.RenderMonthTotal(server.Name, shifts.SumShifts(list)), Markdown: true})
}

// startOlap fetches the report, caches it for the chat and offers its
// categories.
func (h *Handler) startOlap(ctx context.Context, c *call) (conversation.State, error) {
	server := h.deps.Registry.Current()

	fetchCtx, cancel := context.WithTimeout(ctx, h.deps.ReportTimeout)
	defer cancel()

	var group model.OlapGroup
	err := h.withToken(fetchCtx, server, func(ctx context.Context, token string) error {
		var err error
		group, err = h.deps.Olap.Fetch(ctx, server.Address, token)
		return err
	})
	if err != nil {
		return c.state, err
	}

	if err := h.deps.Store.SetOlapGroup(ctx, c.in.ChatID, group); err != nil {
		return c.state, err
	}
	if group.IsEmpty() {
		return h.sendThenMenu(ctx, c, Reply{Text: ui.MessageNothingFound})
	}

	c.logger.Info("olap report cached", zap.String("server", server.Name), zap.Int("rows", group.Len()))
	if err := h.reply(ctx, c, Reply{
		Text:     ui.RenderOlapMode(server.Name),
		Markdown: true,
		Options:  ui.OptionRows(group.Categories),
	}); err != nil {
		return c.state, err
	}
	return conversation.StateAwaitingOlapCategoryChoice, nil
}

func (h *Handler) chooseOlapCategory(ctx context.Context, c *call) (conversation.State, error) {
	group, ok, err := h.deps.Store.OlapGroup(ctx, c.in.ChatID)
	if err != nil {
		return c.state, err
	}
	if !ok {
		return h.sendThenMenu(ctx, c, Reply{Text: ui.MessageNoReportCached})
	}

	rows, err := olap.Category(group, c.cmd.text)
	if errors.Is(err, olap.ErrCategoryNotFound) {
		if err := h.reply(ctx, c, Reply{Text: ui.MessageChooseCategory, Options: ui.OptionRows(group.Categories)}); err != nil {
			return c.state, err
		}
		return c.state, nil
	}
	if err != nil {
		return c.state, err
	}

	table, err := olap.RenderCategory(rows)
	if errors.Is(err, olap.ErrNothingFound) {
		return h.sendThenMenu(ctx, c, Reply{Text: ui.MessageNothingFound})
	}
	if err != nil {
		return c.state, err
	}
	return h.sendThenMenu(ctx, c, Reply{Text: table, Markdown: true})
}

func (h *Handler) showServerChoice(ctx context.Context, c *call) (conversation.State, error) {
	current := h.deps.Registry.Current()
	if err := h.reply(ctx, c, Reply{
		Text:     ui.RenderCurrentServer(current.Name),
		Markdown: true,
		Options:  ui.OptionRows(h.deps.Registry.Names()),
	}); err != nil {
		return c.state, err
	}
	return conversation.StateAwaitingServerChoice, nil
}

func (h *Handler) chooseServer(ctx context.Context, c *call) (conversation.State, error) {
	server, err := h.deps.Registry.Switch(c.cmd.text)
	if err != nil {
		names := h.deps.Registry.Names()
		if err := h.reply(ctx, c, Reply{Text: ui.RenderUnknownServer(c.cmd.text, names), Options: ui.OptionRows(names)}); err != nil {
			return c.state, err
		}
		return c.state, nil
	}

	c.logger.Info("server switched", zap.String("server", server.Name))
	return h.sendThenMenu(ctx, c, Reply{Text: ui.RenderSwitched(server)})
}

func (h *Handler) listServers(ctx context.Context, c *call) (conversation.State, error) {
	text := ui.RenderServerList(h.deps.Registry.List(), h.deps.Registry.Current().Name)
	return h.sendThenMenu(ctx, c, Reply{Text: text, Markdown: true})
}
