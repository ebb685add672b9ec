package ui

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
)

func TestFormatWithDots(t *testing.T) {
	testCases := []struct {
		in   int64
		want string
	}{
		{in: 0, want: "0"},
		{in: 999, want: "999"},
		{in: 1000, want: "1.000"},
		{in: 425, want: "425"},
		{in: 1234567, want: "1.234.567"},
		{in: -15000, want: "-15.000"},
	}
	for _, tc := range testCases {
		if got := FormatWithDots(tc.in); got != tc.want {
			t.Fatalf("FormatWithDots(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatMoneyTruncates(t *testing.T) {
	if got := FormatMoney(decimal.RequireFromString("12345.99")); got != "12.345" {
		t.Fatalf("unexpected money: %q", got)
	}
}

func TestRenderShift(t *testing.T) {
	shift := model.Shift{
		SessionNumber: 1042,
		SessionStatus: model.ShiftStatusOpen,
		SalesCard:     decimal.NewFromInt(15300),
		SalesCash:     decimal.NewFromInt(4200),
		PayOrders:     decimal.RequireFromString("19500.50"),
	}

	text := RenderShift("Центр-1", shift, false)
	for _, token := range []string{
		"*Сервер*: *Центр\\-1*",
		"*Текущая смена*",
		"Номер смены: *1\\.042*",
		"Статус: *Открыта*",
		"Оплачено картой: *15\\.300*",
		"Оплачено наличкой: *4\\.200*",
		"Итог: *19\\.500*",
	} {
		if !strings.Contains(text, token) {
			t.Fatalf("expected %q in:\n%s", token, text)
		}
	}

	shift.SessionStatus = model.ShiftStatusAccepted
	text = RenderShift("Центр", shift, true)
	if !strings.Contains(text, "*Предыдущая смена*") || !strings.Contains(text, "Статус: *Закрыта*") {
		t.Fatalf("unexpected previous shift card:\n%s", text)
	}
}

func TestRenderTotals(t *testing.T) {
	week := RenderWeekTotal("Центр", decimal.NewFromInt(425))
	if !strings.Contains(week, "*Сумма за прошедшие 7 дней*: *425*") {
		t.Fatalf("unexpected week total: %s", week)
	}
	month := RenderMonthTotal("Центр", decimal.NewFromInt(1500000))
	if !strings.Contains(month, "*Сумма за текущий месяц*: *1\\.500\\.000*") {
		t.Fatalf("unexpected month total: %s", month)
	}
}

func TestRenderServerList(t *testing.T) {
	text := RenderServerList([]model.Server{
		{Name: "Центр", Address: "center.iiko.it"},
		{Name: "Парк", Address: "park.iiko.it"},
	}, "Парк")

	for _, token := range []string{
		"*Список серверов*:",
		"Центр \\-\\> center\\.iiko\\.it",
		"Парк \\-\\> park\\.iiko\\.it",
		"*Выбранный сервер*: *Парк*",
	} {
		if !strings.Contains(text, token) {
			t.Fatalf("expected %q in:\n%s", token, text)
		}
	}
}

func TestOptionRows(t *testing.T) {
	rows := OptionRows([]string{"a", "b", "c"})
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %v", rows)
	}
	if len(rows[0]) != 2 || len(rows[1]) != 1 || rows[2][0] != ButtonBack {
		t.Fatalf("unexpected layout: %v", rows)
	}
	if rows := OptionRows(nil); len(rows) != 1 || rows[0][0] != ButtonBack {
		t.Fatalf("unexpected empty layout: %v", rows)
	}
}

func TestRenderHelpListsCommands(t *testing.T) {
	help := RenderHelp()
	for _, command := range Commands() {
		if !strings.Contains(help, "/"+command[0]) {
			t.Fatalf("help misses /%s", command[0])
		}
	}
}

func TestMenusContainButtons(t *testing.T) {
	flatten := func(rows [][]string) string {
		var parts []string
		for _, row := range rows {
			parts = append(parts, row...)
		}
		return strings.Join(parts, "|")
	}

	if got := flatten(MainMenu()); got != "Отчёты|Сменить сервер|Список серверов|Администрирование" {
		t.Fatalf("unexpected main menu: %s", got)
	}
	if got := flatten(ReportMenu()); !strings.Contains(got, ButtonOlap) || !strings.HasSuffix(got, ButtonBack) {
		t.Fatalf("unexpected report menu: %s", got)
	}
	if got := flatten(AdminMenu()); !strings.Contains(got, ButtonListAdmins) || !strings.HasSuffix(got, ButtonBack) {
		t.Fatalf("unexpected admin menu: %s", got)
	}
}

func TestPlain(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{in: "*Сервер*: *Центр*", want: "Сервер: Центр"},
		{in: `Итог: *1\.234\.567*`, want: "Итог: 1.234.567"},
		{in: "```\n│ a\\`b\\\\ │\n```", want: "│ a`b\\ │"},
		{in: "plain", want: "plain"},
	}

	for _, tc := range testCases {
		if got := Plain(tc.in); got != tc.want {
			t.Fatalf("Plain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
