package telegram

const (
	msgChooseFaculty    = "Выберите факультет:"
	msgChooseCourse     = "Выберите курс:"
	msgChooseSpeciality = "Выберите специальность:"
	msgChooseSubgroup   = "Выберите подгруппу:"
	msgChooseDay        = "Выберите день недели:"
	msgNotifySettings   = "Настройка ежедневной рассылки:"
	msgNoGroups         = "Расписание ещё не загружено. Попробуйте позже или зарегистрируйтесь как преподаватель: /teacher Фамилия"
	msgTeacherPrompt    = "Отправьте фамилию командой /teacher, например: /teacher Иванов"
	msgTeacherUsage     = "Пожалуйста, укажите фамилию после команды: /teacher Иванов"
	msgRegistered       = "Регистрация завершена! Привет, %s."
	msgGroupChanged     = "Ваша группа изменена."
	msgTeacherCreated   = "Регистрация завершена! Преподаватель: %s."
	msgTeacherUpdated   = "Ваша информация обновлена. Преподаватель: %s."
	msgCommandsReady    = "Теперь вам доступны команды бота!"
	msgRegistrationStop = "Регистрация отменена."
	msgStaleButton      = "Кнопка устарела. Начните заново с команды /start."
	msgNotRegistered    = "Вы не зарегистрированы или не завершили настройку. Пожалуйста, начните с команды /start."
	msgNoAccess         = "⛔ У вас нет доступа к этой команде."
	msgUnknownCommand   = "Неизвестная команда. Воспользуйтесь кнопками меню."
	msgFault            = "Произошла ошибка. Попробуйте позже."
	msgFaultReport      = "⚠️ Ошибка при обработке обновления от %d (%s): %s"

	msgNotifyHourSet = "Вы выбрали время рассылки: %d:00. Рассылка включена."
	msgNotifyOn      = "Ежедневная рассылка включена"
	msgNotifyOff     = "Ежедневная рассылка выключена"

	msgAnnounceUsage    = "Пожалуйста, укажите сообщение после команды."
	msgAnnounceSent     = "Сообщение отправлено: %d из %d."
	msgNoUsers          = "Пользователей пока нет."
	msgDisableConfirm   = "Команда выключит рассылку у всех пользователей. Для подтверждения отправьте /turn_off_notify confirm"
	msgDisabled         = "Ежедневная рассылка выключена у %d пользователей."
	msgDeleteConfirm    = "Команда удалит всё расписание. Для подтверждения отправьте /delete_schedules confirm"
	msgDeleted          = "Удалено занятий: %d."
	msgNotWorkbook      = "Пожалуйста, отправьте файл в формате Excel (.xlsx)."
	msgImportStarted    = "Файл загружен. Обрабатываю данные..."
	msgImportFailed     = "Произошла ошибка при обработке файла. %s"
	msgImportDone       = "Данные успешно загружены: занятий %d, новых групп %d."
	msgImportDoneRemove = "Данные успешно загружены: занятий %d, новых групп %d, удалено старых занятий %d."
)

// Reply keyboard labels.
const (
	btnToday       = "Расписание на сегодня"
	btnTomorrow    = "Расписание на завтра"
	btnPickDay     = "Выбрать день"
	btnInfo        = "Информация"
	btnNotify      = "Ежедневная рассылка"
	btnChangeGroup = "Изменить группу"
)
