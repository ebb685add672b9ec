package app

import (
	"context"
	"fmt"

	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
	"github.com/KirillkoTankisto/iiko-bot/internal/services/olap"
	"github.com/KirillkoTankisto/iiko-bot/internal/services/shifts"
	"github.com/KirillkoTankisto/iiko-bot/internal/session"
	"github.com/KirillkoTankisto/iiko-bot/internal/ui"
)

// ReportKind names a cash shift report offered by the report command.
type ReportKind string

const (
	// ReportToday is the shift of the current reporting day
	ReportToday ReportKind = "today"
	// ReportYesterday is the shift of the previous reporting day
	ReportYesterday ReportKind = "yesterday"
	// ReportWeek is the total of the last 7 reporting days
	ReportWeek ReportKind = "week"
	// ReportMonth is the total since the 1st of the month
	ReportMonth ReportKind = "month"
)

// ParseReportKind validates a report name given on the command line.
//
// Parameters:
//   - s: report name, one of today, yesterday, week or month
//
// Returns:
//   - ReportKind: the parsed kind
//   - error: when s names no report
func ParseReportKind(s string) (ReportKind, error) {
	switch kind := ReportKind(s); kind {
	case ReportToday, ReportYesterday, ReportWeek, ReportMonth:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown report %q", s)
	}
}

// Server resolves name in the registry; an empty name is the current server.
func (a *App) Server(name string) (model.Server, error) {
	if name == "" {
		return a.registry.Current(), nil
	}
	return a.registry.Lookup(name)
}

// Servers returns the configured servers and the name of the current one.
func (a *App) Servers() ([]model.Server, string) {
	return a.registry.List(), a.registry.Current().Name
}

// ShiftReport renders one shift or a period total for server as MarkdownV2.
func (a *App) ShiftReport(ctx context.Context, server model.Server, kind ReportKind) (string, error) {
	period := shifts.Week
	if kind == ReportMonth {
		period = shifts.ThisMonth
	}

	var list []model.Shift
	err := a.withToken(ctx, server, func(ctx context.Context, token string) error {
		var err error
		list, err = a.shifts.ListShifts(ctx, token, server.Address, period)
		return err
	})
	if err != nil {
		return "", err
	}

	switch kind {
	case ReportWeek:
		return ui.RenderWeekTotal(server.Name, shifts.SumShifts(list)), nil
	case ReportMonth:
		return ui.RenderMonthTotal(server.Name, shifts.SumShifts(list)), nil
	}

	offset := 0
	if kind == ReportYesterday {
		offset = 1
	}
	shift, err := shifts.LatestShift(list, offset)
	if err != nil {
		return "", err
	}
	return ui.RenderShift(server.Name, shift, offset > 0), nil
}

// OlapReport fetches the month-to-date sales report for server.
func (a *App) OlapReport(ctx context.Context, server model.Server) (model.OlapGroup, error) {
	var group model.OlapGroup
	err := a.withToken(ctx, server, func(ctx context.Context, token string) error {
		var err error
		group, err = a.olap.Fetch(ctx, server.Address, token)
		return err
	})
	if err != nil {
		return model.OlapGroup{}, err
	}
	if group.IsEmpty() {
		return model.OlapGroup{}, olap.ErrNothingFound
	}
	return group, nil
}

func (a *App) withToken(ctx context.Context, server model.Server, fn func(ctx context.Context, token string) error) error {
	return session.WithToken(ctx, a.sessions, a.credentials(), server.Address, fn)
}
