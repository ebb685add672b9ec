package conversation

// State is the single pending step of a chat. It decides how the next
// inbound message is read.
type State string

const (
	// StateIdle is a chat with no pending step
	StateIdle State = "IDLE"
	// StateAwaitingMenuChoice waits for a main menu button
	StateAwaitingMenuChoice State = "AWAITING_MENU_CHOICE"
	// StateAwaitingServerChoice waits for a server name
	StateAwaitingServerChoice State = "AWAITING_SERVER_CHOICE"
	// StateAwaitingOlapCategoryChoice waits for a category of the cached report
	StateAwaitingOlapCategoryChoice State = "AWAITING_OLAP_CATEGORY_CHOICE"
	// StateAwaitingNewUserName waits for a handle to add
	StateAwaitingNewUserName State = "AWAITING_NEW_USER_NAME"
	// StateAwaitingUserToDelete waits for a handle to remove
	StateAwaitingUserToDelete State = "AWAITING_USER_TO_DELETE"
	// StateAwaitingAdminMenuChoice waits for an admin menu button
	StateAwaitingAdminMenuChoice State = "AWAITING_ADMIN_MENU_CHOICE"
	// StateAwaitingReportMenuChoice waits for a report menu button
	StateAwaitingReportMenuChoice State = "AWAITING_REPORT_MENU_CHOICE"
)

// String returns the stored form of the state.
func (s State) String() string {
	return string(s)
}

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	switch s {
	case StateIdle,
		StateAwaitingMenuChoice,
		StateAwaitingServerChoice,
		StateAwaitingOlapCategoryChoice,
		StateAwaitingNewUserName,
		StateAwaitingUserToDelete,
		StateAwaitingAdminMenuChoice,
		StateAwaitingReportMenuChoice:
		return true
	default:
		return false
	}
}

// FreeText reports whether the state expects typed input rather than a
// button.
func (s State) FreeText() bool {
	switch s {
	case StateAwaitingServerChoice,
		StateAwaitingOlapCategoryChoice,
		StateAwaitingNewUserName,
		StateAwaitingUserToDelete:
		return true
	default:
		return false
	}
}
