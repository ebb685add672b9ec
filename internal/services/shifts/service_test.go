package shifts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/KirillkoTankisto/iiko-bot/internal/dates"
	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
)

type fakeLister struct {
	shifts []model.Shift
	err    error
	server string
	token  string
	rng    dates.Range
}

func (f *fakeLister) ListShifts(_ context.Context, server, token string, r dates.Range) ([]model.Shift, error) {
	f.server = server
	f.token = token
	f.rng = r
	return f.shifts, f.err
}

func shiftsWithPay(values ...int64) []model.Shift {
	out := make([]model.Shift, 0, len(values))
	for i, value := range values {
		out = append(out, model.Shift{SessionNumber: int64(i + 1), PayOrders: decimal.NewFromInt(value)})
	}
	return out
}

func TestListShiftsRanges(t *testing.T) {
	// 2024-03-15 01:30 in UTC+3
	now := time.Date(2024, 3, 14, 22, 30, 0, 0, time.UTC)

	testCases := []struct {
		name   string
		period Period
		want   dates.Range
	}{
		{name: "week", period: Week, want: dates.Range{From: "2024-03-09", To: "2024-03-15"}},
		{name: "month", period: ThisMonth, want: dates.Range{From: "2024-03-01", To: "2024-03-15"}},
		{name: "custom", period: Custom(1), want: dates.Range{From: "2024-03-14", To: "2024-03-15"}},
	}

	for _, tc := range testCases {
		lister := &fakeLister{}
		svc := NewService(lister, func() time.Time { return now })
		if _, err := svc.ListShifts(context.Background(), "tok", "srv", tc.period); err != nil {
			t.Fatalf("%s: list: %v", tc.name, err)
		}
		if lister.rng != tc.want {
			t.Fatalf("%s: expected %+v, got %+v", tc.name, tc.want, lister.rng)
		}
		if lister.server != "srv" || lister.token != "tok" {
			t.Fatalf("%s: unexpected server/token %q/%q", tc.name, lister.server, lister.token)
		}
	}
}

func TestListShiftsWrapsError(t *testing.T) {
	cause := errors.New("timeout")
	svc := NewService(&fakeLister{err: cause}, nil)
	if _, err := svc.ListShifts(context.Background(), "tok", "srv", Week); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestLatestShift(t *testing.T) {
	shifts := shiftsWithPay(10, 20, 30)

	for offset := 0; offset < len(shifts); offset++ {
		got, err := LatestShift(shifts, offset)
		if err != nil {
			t.Fatalf("offset %d: %v", offset, err)
		}
		if got.SessionNumber != shifts[len(shifts)-1-offset].SessionNumber {
			t.Fatalf("offset %d: got shift %d", offset, got.SessionNumber)
		}
	}

	for _, offset := range []int{3, 4, -1} {
		if _, err := LatestShift(shifts, offset); !errors.Is(err, ErrShiftNotFound) {
			t.Fatalf("offset %d: expected ErrShiftNotFound, got %v", offset, err)
		}
	}
	if _, err := LatestShift(nil, 0); !errors.Is(err, ErrShiftNotFound) {
		t.Fatalf("empty list: expected ErrShiftNotFound, got %v", err)
	}
}

func TestSumShifts(t *testing.T) {
	if got := SumShifts(nil); !got.IsZero() {
		t.Fatalf("expected zero, got %s", got)
	}
	if got := SumShifts(shiftsWithPay(100, 250, 75)); got.String() != "425" {
		t.Fatalf("expected 425, got %s", got)
	}
	if a, b := SumShifts(shiftsWithPay(1, 2, 3)), SumShifts(shiftsWithPay(3, 1, 2)); !a.Equal(b) {
		t.Fatalf("sum depends on order: %s vs %s", a, b)
	}

	fractional := []model.Shift{
		{PayOrders: decimal.RequireFromString("0.1")},
		{PayOrders: decimal.RequireFromString("0.2")},
	}
	if got := SumShifts(fractional); got.String() != "0.3" {
		t.Fatalf("expected exact 0.3, got %s", got)
	}
}
