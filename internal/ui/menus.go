// Package ui holds the operator-facing texts, keyboards and MarkdownV2
// renderers of the bot. All texts are in Russian.
package ui

// Button labels. Inbound text equal to a label is read as that button.
const (
	// ButtonReports opens the report menu
	ButtonReports = "Отчёты"
	// ButtonSwitch asks for a server to switch to
	ButtonSwitch = "Сменить сервер"
	// ButtonServerList lists the servers
	ButtonServerList = "Список серверов"
	// ButtonAdmin opens the admin menu
	ButtonAdmin = "Администрирование"
	// ButtonToday requests today's shift
	ButtonToday = "За сегодня"
	// ButtonYesterday requests yesterday's shift
	ButtonYesterday = "За вчера"
	// ButtonWeek requests the 7 day total
	ButtonWeek = "За 7 дней"
	// ButtonMonth requests the month-to-date total
	ButtonMonth = "За текущий месяц"
	// ButtonOlap opens the month-to-date OLAP report
	ButtonOlap = "Olap отчёт"
	// ButtonAddUser adds an account
	ButtonAddUser = "Добавить пользователя"
	// ButtonDeleteUser deletes an account
	ButtonDeleteUser = "Удалить пользователя"
	// ButtonListUsers lists the accounts
	ButtonListUsers = "Список пользователей"
	// ButtonListAdmins lists the admins
	ButtonListAdmins = "Список админов"
	// ButtonBack returns to the previous menu
	ButtonBack    = "Назад"
	optionsPerRow = 2
)

// MainMenu is the keyboard of the idle state.
func MainMenu() [][]string {
	return [][]string{
		{ButtonReports, ButtonSwitch},
		{ButtonServerList, ButtonAdmin},
	}
}

// ReportMenu lists the cash shift reports and the OLAP report.
func ReportMenu() [][]string {
	return [][]string{
		{ButtonToday, ButtonYesterday},
		{ButtonWeek, ButtonMonth},
		{ButtonOlap},
		{ButtonBack},
	}
}

// AdminMenu lists the allow-list operations.
func AdminMenu() [][]string {
	return [][]string{
		{ButtonAddUser, ButtonDeleteUser},
		{ButtonListUsers, ButtonListAdmins},
		{ButtonBack},
	}
}

// OptionRows lays out free choices two per row with a Back row at the end.
func OptionRows(options []string) [][]string {
	rows := make([][]string, 0, len(options)/optionsPerRow+2)
	for start := 0; start < len(options); start += optionsPerRow {
		end := min(start+optionsPerRow, len(options))
		rows = append(rows, append([]string(nil), options[start:end]...))
	}
	return append(rows, []string{ButtonBack})
}

// BackOnly is the keyboard of prompts that expect typed input.
func BackOnly() [][]string {
	return [][]string{{ButtonBack}}
}
