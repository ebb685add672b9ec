package handlers

import (
	"strings"

	"github.com/KirillkoTankisto/iiko-bot/internal/conversation"
	"github.com/KirillkoTankisto/iiko-bot/internal/ui"
)

// Input is the category an inbound message falls into.
type Input int

const (
	// InputUnknown matches nothing the current state accepts
	InputUnknown Input = iota
	// InputStart is the /start command
	InputStart
	// InputHelp is the /help command
	InputHelp
	// InputReports opens the report menu
	InputReports
	// InputSwitch asks for a server to switch to
	InputSwitch
	// InputServerList lists the configured servers
	InputServerList
	// InputAdmin opens the admin menu
	InputAdmin
	// InputToday requests today's shift
	InputToday
	// InputYesterday requests yesterday's shift
	InputYesterday
	// InputWeek requests the 7 day total
	InputWeek
	// InputMonth requests the month-to-date total
	InputMonth
	// InputOlap requests the month-to-date OLAP report
	InputOlap
	// InputAddUser starts adding an account
	InputAddUser
	// InputDeleteUser starts deleting an account
	InputDeleteUser
	// InputListUsers lists the accounts
	InputListUsers
	// InputListAdmins lists the admins
	InputListAdmins
	// InputBack returns to the previous menu
	InputBack
	// InputText is free text typed in a state that expects it.
	InputText
)

var inputNames = map[Input]string{
	InputUnknown:    "unknown",
	InputStart:      "start",
	InputHelp:       "help",
	InputReports:    "reports",
	InputSwitch:     "switch",
	InputServerList: "server_list",
	InputAdmin:      "admin",
	InputToday:      "today",
	InputYesterday:  "yesterday",
	InputWeek:       "week",
	InputMonth:      "month",
	InputOlap:       "olap",
	InputAddUser:    "add_user",
	InputDeleteUser: "delete_user",
	InputListUsers:  "list_users",
	InputListAdmins: "list_admins",
	InputBack:       "back",
	InputText:       "text",
}

// String returns the metric label of i.
func (i Input) String() string {
	if name, ok := inputNames[i]; ok {
		return name
	}
	return "unknown"
}

var slashCommands = map[string]Input{
	"start":      InputStart,
	"help":       InputHelp,
	"today":      InputToday,
	"yesterday":  InputYesterday,
	"week":       InputWeek,
	"month":      InputMonth,
	"switch":     InputSwitch,
	"list":       InputServerList,
	"olap":       InputOlap,
	"adduser":    InputAddUser,
	"deleteuser": InputDeleteUser,
	"listusers":  InputListUsers,
	"listadmins": InputListAdmins,
}

var buttons = map[string]Input{
	ui.ButtonReports:    InputReports,
	ui.ButtonSwitch:     InputSwitch,
	ui.ButtonServerList: InputServerList,
	ui.ButtonAdmin:      InputAdmin,
	ui.ButtonToday:      InputToday,
	ui.ButtonYesterday:  InputYesterday,
	ui.ButtonWeek:       InputWeek,
	ui.ButtonMonth:      InputMonth,
	ui.ButtonOlap:       InputOlap,
	ui.ButtonAddUser:    InputAddUser,
	ui.ButtonDeleteUser: InputDeleteUser,
	ui.ButtonListUsers:  InputListUsers,
	ui.ButtonListAdmins: InputListAdmins,
}

// command is a classified inbound message.
type command struct {
	input Input
	// slash is set for /commands, which work from any state
	slash bool
	text  string
}

func classify(state conversation.State, raw string) command {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "/") {
		name := strings.TrimPrefix(strings.Fields(text)[0], "/")
		if at := strings.IndexByte(name, '@'); at >= 0 {
			name = name[:at]
		}
		if input, ok := slashCommands[strings.ToLower(name)]; ok {
			return command{input: input, slash: true, text: text}
		}
		return command{input: InputUnknown, slash: true, text: text}
	}

	if text == ui.ButtonBack {
		return command{input: InputBack, text: text}
	}
	if state.FreeText() {
		return command{input: InputText, text: text}
	}
	if input, ok := buttons[text]; ok {
		return command{input: input, text: text}
	}
	return command{input: InputUnknown, text: text}
}
