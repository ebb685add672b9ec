package ui

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
)

// Escape prepares plain text for a MarkdownV2 message.
func Escape(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, text)
}

// FormatWithDots groups thousands with dots: 1234567 -> "1.234.567".
func FormatWithDots(n int64) string {
	sign := ""
	digits := strconv.FormatInt(n, 10)
	if n < 0 {
		sign, digits = "-", digits[1:]
	}

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatMoney drops kopecks and groups thousands.
func FormatMoney(amount decimal.Decimal) string {
	return FormatWithDots(amount.IntPart())
}

// RenderShift is the MarkdownV2 card of one shift. previous selects the
// heading used for the shift before the latest one.
func RenderShift(server string, shift model.Shift, previous bool) string {
	heading := "Текущая смена"
	if previous {
		heading = "Предыдущая смена"
	}
	return fmt.Sprintf(
		"*Сервер*: *%s*\n*%s*:\nНомер смены: *%s*\nСтатус: *%s*\nОплачено картой: *%s*\nОплачено наличкой: *%s*\nИтог: *%s*",
		Escape(server),
		heading,
		Escape(FormatWithDots(shift.SessionNumber)),
		Escape(shift.SessionStatus.Label()),
		Escape(FormatMoney(shift.SalesCard)),
		Escape(FormatMoney(shift.SalesCash)),
		Escape(FormatMoney(shift.PayOrders)),
	)
}

// RenderWeekTotal renders the 7 day total of server.
func RenderWeekTotal(server string, sum decimal.Decimal) string {
	return renderTotal(server, "Сумма за прошедшие 7 дней", sum)
}

// RenderMonthTotal renders the month-to-date total of server.
func RenderMonthTotal(server string, sum decimal.Decimal) string {
	return renderTotal(server, "Сумма за текущий месяц", sum)
}

func renderTotal(server, label string, sum decimal.Decimal) string {
	return fmt.Sprintf("*Сервер*: *%s*\n*%s*: *%s*", Escape(server), label, Escape(FormatMoney(sum)))
}

// RenderServerList lists servers with their addresses and marks current.
func RenderServerList(servers []model.Server, current string) string {
	lines := make([]string, 0, len(servers))
	for _, server := range servers {
		lines = append(lines, fmt.Sprintf("%s -> %s", server.Name, server.Address))
	}
	return fmt.Sprintf("*Список серверов*:\n%s\n*Выбранный сервер*: *%s*",
		Escape(strings.Join(lines, "\n")), Escape(current))
}

// RenderCurrentServer prompts for a server name, showing current.
func RenderCurrentServer(current string) string {
	return fmt.Sprintf("Текущий сервер: *%s*", Escape(current))
}

// RenderSwitched confirms a server switch.
func RenderSwitched(server model.Server) string {
	return fmt.Sprintf("Текущий сервер теперь '%s' -> %s", server.Name, server.Address)
}

// RenderUnknownServer rejects name and lists the valid names.
func RenderUnknownServer(name string, names []string) string {
	return fmt.Sprintf("Сервер '%s' не найден. Доступные серверы:\n%s", name, strings.Join(names, "\n"))
}

// RenderOlapMode announces the OLAP report for current.
func RenderOlapMode(current string) string {
	return fmt.Sprintf("Режим Olap отчёта\\. Текущий сервер: *%s*", Escape(current))
}

// RenderNoShift reports a missing shift offset days back.
func RenderNoShift(offset int) string {
	return fmt.Sprintf("Нет смены со сдвигом %d", offset)
}

// RenderUserAdded confirms an added account.
func RenderUserAdded(name string) string {
	return fmt.Sprintf("Пользователь @%s успешно добавлен", name)
}

// RenderUserDeleted confirms a deleted account.
func RenderUserDeleted(name string) string {
	return fmt.Sprintf("Пользователь @%s успешно удалён", name)
}

// RenderUserNotFound reports an account missing from the allow-list.
func RenderUserNotFound(name string) string {
	return fmt.Sprintf("Пользователь @%s не найден в списке", name)
}

// RenderUsers lists the accounts.
func RenderUsers(users []string) string {
	return MessageUsersListHeader + strings.Join(users, "\n")
}

// RenderAdmins lists the admins.
func RenderAdmins(admins []string) string {
	return MessageAdminListHeader + strings.Join(admins, "\n")
}

type commandHelp struct {
	name        string
	description string
}

var commands = []commandHelp{
	{"start", "Запустить бота"},
	{"help", "Отобразить список команд"},
	{"today", "Сегодняшняя выручка"},
	{"yesterday", "Вчерашняя выручка"},
	{"week", "Выручка за 7 дней"},
	{"month", "Выручка за данный месяц"},
	{"switch", "Переключиться на другой сервер"},
	{"list", "Вывести список доступных серверов"},
	{"olap", "Режим Olap отчёта"},
	{"adduser", "Добавить пользователя"},
	{"deleteuser", "Удалить пользователя"},
	{"listusers", "Список пользователей"},
	{"listadmins", "Список админов"},
}

// Commands returns the slash commands with their descriptions, in menu order.
func Commands() [][2]string {
	out := make([][2]string, 0, len(commands))
	for _, command := range commands {
		out = append(out, [2]string{command.name, command.description})
	}
	return out
}

// RenderHelp lists the slash commands.
func RenderHelp() string {
	var b strings.Builder
	b.WriteString("Поддерживаемые команды:")
	for _, command := range commands {
		fmt.Fprintf(&b, "\n/%s - %s", command.name, command.description)
	}
	return b.String()
}

// Plain drops MarkdownV2 markup so a rendered reply reads well in a terminal.
func Plain(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	escaped := false
	for _, r := range text {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '*' || r == '`':
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
