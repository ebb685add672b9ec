// Package shifts lists cash shifts and derives the single-shift and
// period-total reports from them.
package shifts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/KirillkoTankisto/iiko-bot/internal/dates"
	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
)

// ErrShiftNotFound is returned when the requested shift is not in the listing.
var ErrShiftNotFound = errors.New("shift not found")

// Lister fetches raw shift listings. *api.Client implements it.
type Lister interface {
	// ListShifts returns the shifts opened within r, oldest first.
	ListShifts(ctx context.Context, server, token string, r dates.Range) ([]model.Shift, error)
}

// Period selects the reporting days a listing covers.
type Period struct {
	// kind selects the range computation
	kind periodKind
	// daysBack is only used by Custom periods
	daysBack int
}

type periodKind int

const (
	periodWeek periodKind = iota
	periodThisMonth
	periodCustom
)

var (
	// Week is the last 7 reporting days including today.
	Week = Period{kind: periodWeek}
	// ThisMonth runs from the first of the current month to today.
	ThisMonth = Period{kind: periodThisMonth}
)

// Custom covers the last daysBack days up to today.
func Custom(daysBack int) Period {
	return Period{kind: periodCustom, daysBack: daysBack}
}

// Range resolves the period to concrete dates in the UTC+3 calendar.
//
// Parameters:
// - now: the current instant
//
// Returns:
// - dates.Range: inclusive first and last day
func (p Period) Range(now time.Time) dates.Range {
	switch p.kind {
	case periodThisMonth:
		return dates.ThisMonth(now)
	case periodCustom:
		return dates.Custom(now, p.daysBack)
	default:
		return dates.Week(now)
	}
}

// Service lists shifts for named periods.
type Service struct {
	// client performs the remote listing
	client Lister
	// nowFn is the clock periods are resolved against
	nowFn func() time.Time
}

// NewService creates a new shift service.
//
// Parameters:
// - client: remote shift listing
// - nowFn: clock; time.Now when nil
//
// Returns:
// - *Service: a ready service
func NewService(client Lister, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{client: client, nowFn: nowFn}
}

// ListShifts lists the shifts of a period on one server.
//
// Parameters:
// - ctx: bounds the remote call
// - token: session key
// - server: server address
// - period: which days to cover
//
// Returns:
// - []model.Shift: shifts in the order the server returned them
// - error: the wrapped remote failure
func (s *Service) ListShifts(ctx context.Context, token, server string, period Period) ([]model.Shift, error) {
	r := period.Range(s.nowFn())
	shifts, err := s.client.ListShifts(ctx, server, token, r)
	if err != nil {
		return nil, fmt.Errorf("list shifts %s..%s: %w", r.From, r.To, err)
	}
	return shifts, nil
}

// LatestShift picks the shift offset positions back from the newest one.
//
// Parameters:
// - shifts: a listing, oldest first
// - offset: 0 for the newest shift, 1 for the one before it
//
// Returns:
// - model.Shift: the selected shift
// - error: wraps ErrShiftNotFound when offset is out of range
func LatestShift(shifts []model.Shift, offset int) (model.Shift, error) {
	if offset < 0 || offset >= len(shifts) {
		return model.Shift{}, fmt.Errorf("offset %d of %d: %w", offset, len(shifts), ErrShiftNotFound)
	}
	return shifts[len(shifts)-1-offset], nil
}

// SumShifts totals paid orders. An empty listing sums to zero.
func SumShifts(shifts []model.Shift) decimal.Decimal {
	total := decimal.Zero
	for _, shift := range shifts {
		total = total.Add(shift.PayOrders)
	}
	return total
}
