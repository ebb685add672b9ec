package ui

// Fixed replies.
const (
	// MessageChooseOption prompts for a menu choice
	MessageChooseOption = "Выберите опцию"
	// MessageNotAllowed answers senders outside the allow-list
	MessageNotAllowed = "Вы не в списке пользователей"
	// MessageNotAdmin answers non-admins asking for admin actions
	MessageNotAdmin = "Вы не находитесь в списке админов"
	// MessageEnterUsername prompts for a handle to add
	MessageEnterUsername = "Введите имя пользователя"
	// MessageEmptyUsername rejects an empty handle
	MessageEmptyUsername = "Вы не ввели имя пользователя."
	// MessageChooseToDelete prompts for an account to delete
	MessageChooseToDelete = "Выберите аккаунт для удаления"
	// MessageNothingFound reports an empty result
	MessageNothingFound = "По вашим фильтрам ничего не найдено."
	// MessageServiceDown reports an unreachable iiko server
	MessageServiceDown = "Сервер iiko недоступен. Попробуйте позже."
	// MessageSaveFailed reports a failed allow-list write
	MessageSaveFailed = "Не удалось сохранить список пользователей."
	// MessageInternalError reports any other failure
	MessageInternalError = "Произошла ошибка. Попробуйте ещё раз."
	// MessageChooseCategory prompts for an OLAP category
	MessageChooseCategory = "Выберите категорию из списка"
	// MessageNoReportCached reports an expired OLAP report
	MessageNoReportCached = "Отчёт устарел, запросите его заново."
	// MessageUsersListHeader heads the account list
	MessageUsersListHeader = "Список пользователей:\n"
	// MessageAdminListHeader heads the admin list
	MessageAdminListHeader = "Список админов:\n"
)
