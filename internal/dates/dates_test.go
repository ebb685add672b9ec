package dates

import (
	"testing"
	"time"
)

func TestTodayUsesUTCPlus3(t *testing.T) {
	// 22:30 UTC is already the next day in UTC+3.
	now := time.Date(2024, time.March, 31, 22, 30, 0, 0, time.UTC)
	if got := Today(now); got != "2024-04-01" {
		t.Fatalf("expected 2024-04-01, got %s", got)
	}
	if got := DayOfMonth(now); got != 1 {
		t.Fatalf("expected day 1, got %d", got)
	}
}

func TestRanges(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name string
		got  Range
		want Range
	}{
		{name: "week", got: Week(now), want: Range{From: "2024-03-09", To: "2024-03-15"}},
		{name: "this month", got: ThisMonth(now), want: Range{From: "2024-03-01", To: "2024-03-15"}},
		{name: "custom", got: Custom(now, 20), want: Range{From: "2024-02-24", To: "2024-03-15"}},
		{name: "negative custom", got: Custom(now, -3), want: Range{From: "2024-03-15", To: "2024-03-15"}},
	}

	for _, tc := range testCases {
		if tc.got != tc.want {
			t.Fatalf("%s: expected %+v, got %+v", tc.name, tc.want, tc.got)
		}
	}
}

func TestThisMonthOnFirstDay(t *testing.T) {
	now := time.Date(2024, time.February, 29, 21, 0, 0, 0, time.UTC)
	got := ThisMonth(now)
	if got.From != "2024-03-01" || got.To != "2024-03-01" {
		t.Fatalf("unexpected range: %+v", got)
	}
}
