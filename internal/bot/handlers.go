package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"routine-planner/internal/model"
	"routine-planner/internal/service"
)

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "друг"
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я планировщик дня: задачи, рутины и список желаний.</b>\n\n"+
			"• /today — задачи на сегодня\n"+
			"• /add — добавить задачу\n"+
			"• /week — неделя целиком\n"+
			"• /routines — повторяющиеся дела\n"+
			"• /wishes — список желаний\n"+
			"• /help — все команды",
		escape(name),
	)

	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Подсказки</b>\n" +
		"<b>День</b>\n" +
		"• /today, /day &lt;дата&gt;, /prev, /next — открыть день\n" +
		"• /week — неделя с понедельника\n" +
		"• /add Купить молоко !h #Покупки — быстрая задача, /add без текста — пошагово\n" +
		"• /done 1 3 — отметить выполненными по номерам\n" +
		"• /move 2 — перенести на следующий день\n" +
		"• /delete 2 — удалить задачу\n" +
		"• /order 3 1 2 — новый порядок задач\n" +
		"• /search текст — поиск по всем задачам\n" +
		"<b>Рутины</b>\n" +
		"• /routines — список\n" +
		"• /newroutine daily Зарядка @07:30\n" +
		"• /newroutine weekly пн,ср Спортзал !h\n" +
		"• /newroutine monthly 15 Оплатить счета\n" +
		"• /routine_toggle N, /routine_delete N\n" +
		"<b>Прочее</b>\n" +
		"• /categories, /newcategory Название\n" +
		"• /wishes, /wish Текст | зачем, /convert N\n" +
		"• /notify 08:00 — присылать план дня, /notify off — выключить\n" +
		"• /summary — план дня сейчас\n" +
		"• /cancel — отменить текущий ввод"
	return b.sendText(msg.Chat.ID, text)
}

// showDay opens date for the user and sends it with inline buttons.
func (b *Bot) showDay(ctx context.Context, chatID int64, from *tgbotapi.User, date model.Date) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}
	day, err := b.svc.Days.Open(ctx, user.ID, date)
	if err != nil {
		if errors.Is(err, service.ErrStaleView) {
			b.logger.Debug("day view superseded", zap.String("user_id", user.ID), zap.String("date", date.String()))
			return nil
		}
		return b.sendError(chatID, err)
	}
	catNames, err := b.categoryNames(ctx, user.ID)
	if err != nil {
		return b.sendError(chatID, err)
	}

	ids := make([]string, len(day.Tasks))
	for i, task := range day.Tasks {
		ids[i] = task.ID
	}
	b.updateView(chatID, func(v *chatView) {
		v.date = day.Date
		v.tasks = ids
	})

	return b.sendWithReplyMarkup(chatID, formatDay(*day, catNames, b.loc), dayKeyboard(day.Tasks, day.Date))
}

func (b *Bot) categoryNames(ctx context.Context, userID string) (map[string]string, error) {
	categories, err := b.svc.Categories.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}
	return names, nil
}

func (b *Bot) handleDay(ctx context.Context, msg *tgbotapi.Message) error {
	date, err := parseDayArg(msg.CommandArguments(), b.svc.Days.Today())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Не могу распознать дату. Примеры: <code>2025-11-30</code>, <code>30.11.2025</code>, завтра.")
	}
	return b.showDay(ctx, msg.Chat.ID, msg.From, date)
}

func (b *Bot) handleShift(ctx context.Context, msg *tgbotapi.Message, days int) error {
	return b.showDay(ctx, msg.Chat.ID, msg.From, b.currentDate(msg.Chat.ID).AddDays(days))
}

func (b *Bot) handleWeek(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	days, err := b.svc.Days.Week(ctx, user.ID, b.currentDate(msg.Chat.ID))
	if err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, formatWeek(days, b.loc))
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.startNewTaskConversation(ctx, msg)
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	q := parseQuickTask(args)
	input := service.TaskInput{
		Title:    q.Title,
		Priority: q.Priority,
		Date:     b.currentDate(msg.Chat.ID),
	}
	if q.Category != "" {
		cat, err := b.svc.Categories.Resolve(ctx, user.ID, q.Category)
		if err != nil {
			return b.sendError(msg.Chat.ID, err)
		}
		input.CategoryID = &cat.ID
	}
	return b.createTask(ctx, msg.Chat.ID, msg.From, user, input)
}

func (b *Bot) startNewTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	categories, err := b.svc.Categories.List(ctx, user.ID)
	if err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	b.logger.Debug("start new task conversation", zap.String("user_id", user.ID))
	b.setConversation(msg.From.ID, &conversationState{
		stage:      stageTitle,
		input:      service.TaskInput{Date: b.currentDate(msg.Chat.ID)},
		categories: categories,
	})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 Создаём новую задачу.\n<b>Шаг 1:</b> как её назвать?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Название не может быть пустым. Как назвать задачу?", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageMemo
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ <b>Шаг 2:</b> добавь заметку (или нажми «Пропустить»).", skipKeyboard())
	case stageMemo:
		if !isSkipInput(text) {
			state.input.Memo = text
		}
		state.stage = stageCategory
		return b.sendWithReplyMarkup(msg.Chat.ID, "🏷 <b>Шаг 3:</b> выбери категорию или напиши новую.", categoryKeyboard(state.categories))
	case stageCategory:
		if !isSkipInput(text) {
			user, err := b.ensureUser(ctx, msg.From)
			if err != nil {
				return err
			}
			cat, err := b.svc.Categories.Resolve(ctx, user.ID, text)
			if err != nil {
				return b.sendError(msg.Chat.ID, err)
			}
			state.input.CategoryID = &cat.ID
		}
		state.stage = stagePriority
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔥 <b>Шаг 4:</b> насколько это важно?", priorityKeyboard())
	case stagePriority:
		priority := priorityFromInput(text)
		if _, err := model.ParsePriority(priority); err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Выбери приоритет кнопкой.", priorityKeyboard())
		}
		state.input.Priority = priority
		b.clearConversation(msg.From.ID)
		user, err := b.ensureUser(ctx, msg.From)
		if err != nil {
			return err
		}
		return b.createTask(ctx, msg.Chat.ID, msg.From, user, state.input)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Диалог сброшен. Попробуй ещё раз через /add.")
	}
}

func (b *Bot) createTask(ctx context.Context, chatID int64, from *tgbotapi.User, user *model.User, input service.TaskInput) error {
	task, err := b.svc.Tasks.CreateTask(ctx, user.ID, input)
	if err != nil {
		return b.sendError(chatID, err)
	}

	var summary strings.Builder
	summary.WriteString("✅ <b>Задача сохранена</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>Название:</b> %s\n", escape(normalizeTitle(task.Title))))
	if task.Memo != "" {
		summary.WriteString(fmt.Sprintf("• <b>Заметка:</b> %s\n", escape(task.Memo)))
	}
	summary.WriteString(fmt.Sprintf("• <b>Приоритет:</b> %s\n", service.PriorityIcon(task.Priority)))
	summary.WriteString(fmt.Sprintf("• <b>Дата:</b> %s", task.TaskDate.Time(b.loc).Format(dayLayout)))

	if err := b.sendText(chatID, summary.String()); err != nil {
		return err
	}
	return b.showDay(ctx, chatID, from, task.TaskDate)
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	ids, err := pick(b.view(msg.Chat.ID).tasks, msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Укажи номера задач из списка дня: /done 1 3")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := b.svc.Tasks.ToggleComplete(ctx, user.ID, id); err != nil {
			return b.sendError(msg.Chat.ID, err)
		}
	}
	return b.showDay(ctx, msg.Chat.ID, msg.From, b.currentDate(msg.Chat.ID))
}

func (b *Bot) handleMove(ctx context.Context, msg *tgbotapi.Message) error {
	ids, err := pick(b.view(msg.Chat.ID).tasks, msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Укажи номера задач из списка дня: /move 2")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := b.svc.Tasks.MoveToTomorrow(ctx, user.ID, id); err != nil {
			return b.sendError(msg.Chat.ID, err)
		}
	}
	return b.showDay(ctx, msg.Chat.ID, msg.From, b.currentDate(msg.Chat.ID))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	ids, err := pick(b.view(msg.Chat.ID).tasks, msg.CommandArguments())
	if err != nil || len(ids) != 1 {
		return b.sendText(msg.Chat.ID, "Укажи номер задачи из списка дня: /delete 2")
	}
	return b.askDeleteConfirmation(ctx, msg.Chat.ID, msg.From, ids[0])
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID int64, from *tgbotapi.User, taskID string) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}
	task, err := b.svc.Tasks.GetTask(ctx, user.ID, taskID)
	if err != nil {
		return b.sendError(chatID, err)
	}

	text := fmt.Sprintf("Удалить задачу «%s»?", escape(normalizeTitle(task.Title)))
	b.setConfirmation(from.ID, confirmationRequest{taskID: task.ID, title: task.Title})
	return b.sendWithReplyMarkup(chatID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		user, err := b.ensureUser(ctx, msg.From)
		if err != nil {
			return err
		}
		if err := b.svc.Tasks.DeleteTask(ctx, user.ID, req.taskID); err != nil {
			return b.sendError(msg.Chat.ID, err)
		}
		if err := b.sendText(msg.Chat.ID, fmt.Sprintf("🗑 Задача «%s» удалена.", escape(normalizeTitle(req.title)))); err != nil {
			return err
		}
		return b.showDay(ctx, msg.Chat.ID, msg.From, b.currentDate(msg.Chat.ID))
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "🔹 Главное меню")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Подтверди или отмени удаление задачи.", confirmKeyboard())
	}
}

// handleOrder puts the listed tasks first, in the given order, and keeps
// the rest after them as they were.
func (b *Bot) handleOrder(ctx context.Context, msg *tgbotapi.Message) error {
	view := b.view(msg.Chat.ID)
	listed, err := pick(view.tasks, msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Укажи новый порядок номерами: /order 3 1 2")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	ordered := reorderIDs(view.tasks, listed)
	date := b.currentDate(msg.Chat.ID)
	if _, err := b.svc.Reorder.Commit(ctx, user.ID, date, ordered); err != nil {
		if errors.Is(err, service.ErrValidation) {
			return b.sendError(msg.Chat.ID, err)
		}
		b.logger.Warn("reorder incomplete", zap.String("user_id", user.ID), zap.String("date", date.String()), zap.Error(err))
		if err := b.sendText(msg.Chat.ID, "⚠️ Порядок сохранён не полностью. Показываю актуальный список."); err != nil {
			return err
		}
	}
	return b.showDay(ctx, msg.Chat.ID, msg.From, date)
}

// reorderIDs returns listed followed by the ids of all not listed.
func reorderIDs(all, listed []string) []string {
	seen := make(map[string]struct{}, len(listed))
	out := make([]string, 0, len(all))
	for _, id := range listed {
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, id := range all {
		if _, ok := seen[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func (b *Bot) handleRoutines(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	routines, err := b.svc.Routines.List(ctx, user.ID)
	if err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	ids := make([]string, len(routines))
	for i, r := range routines {
		ids[i] = r.ID
	}
	b.updateView(msg.Chat.ID, func(v *chatView) { v.routines = ids })
	return b.sendText(msg.Chat.ID, formatRoutines(routines))
}

func (b *Bot) handleNewRoutine(ctx context.Context, msg *tgbotapi.Message) error {
	in, category, err := parseRoutineArgs(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Примеры:\n/newroutine daily Зарядка @07:30\n/newroutine weekly пн,ср Спортзал !h\n/newroutine monthly 15 Оплатить счета #Дом")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	if category != "" {
		cat, err := b.svc.Categories.Resolve(ctx, user.ID, category)
		if err != nil {
			return b.sendError(msg.Chat.ID, err)
		}
		in.CategoryID = &cat.ID
	}
	routine, err := b.svc.Routines.Create(ctx, user.ID, in)
	if err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("♻️ Рутина «%s» создана: %s.", escape(normalizeTitle(routine.Title)), describeSchedule(*routine)))
}

func (b *Bot) handleRoutineToggle(ctx context.Context, msg *tgbotapi.Message) error {
	ids, err := pick(b.view(msg.Chat.ID).routines, msg.CommandArguments())
	if err != nil || len(ids) != 1 {
		return b.sendText(msg.Chat.ID, "Открой /routines и укажи номер: /routine_toggle 2")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	routine, err := b.svc.Routines.Get(ctx, user.ID, ids[0])
	if err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	if _, err := b.svc.Routines.SetActive(ctx, user.ID, routine.ID, !routine.IsActive); err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	return b.handleRoutines(ctx, msg)
}

func (b *Bot) handleRoutineDelete(ctx context.Context, msg *tgbotapi.Message) error {
	ids, err := pick(b.view(msg.Chat.ID).routines, msg.CommandArguments())
	if err != nil || len(ids) != 1 {
		return b.sendText(msg.Chat.ID, "Открой /routines и укажи номер: /routine_delete 2")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	if err := b.svc.Routines.Delete(ctx, user.ID, ids[0]); err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	return b.handleRoutines(ctx, msg)
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	categories, err := b.svc.Categories.List(ctx, user.ID)
	if err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Категории</b>\n")
	for _, cat := range categories {
		builder.WriteString(fmt.Sprintf("• %s\n", categoryLabel(cat.Name)))
	}
	builder.WriteString("\nНовая: /newcategory Название")
	return b.sendText(msg.Chat.ID, builder.String())
}

func (b *Bot) handleNewCategory(ctx context.Context, msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		return b.sendText(msg.Chat.ID, "Укажи название: /newcategory Работа")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	cat, err := b.svc.Categories.Create(ctx, user.ID, name, "")
	if err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("📂 Категория %s добавлена.", categoryLabel(cat.Name)))
}

func (b *Bot) handleWishes(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	lists, err := b.svc.Wishes.Lists(ctx, user.ID)
	if err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	list := lists[0]
	for _, l := range lists {
		if l.IsDefault {
			list = l
			break
		}
	}
	items, err := b.svc.Wishes.Items(ctx, user.ID, list.ID)
	if err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	b.updateView(msg.Chat.ID, func(v *chatView) { v.wishes = ids })
	return b.sendText(msg.Chat.ID, formatWishes(list, items))
}

func (b *Bot) handleWish(ctx context.Context, msg *tgbotapi.Message) error {
	title, reason := parseWish(msg.CommandArguments())
	if title == "" {
		return b.sendText(msg.Chat.ID, "Напиши желание: /wish Сходить в музей | давно хотел")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	if _, err := b.svc.Wishes.AddItem(ctx, user.ID, "", title, reason); err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	return b.handleWishes(ctx, msg)
}

func (b *Bot) handleConvert(ctx context.Context, msg *tgbotapi.Message) error {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) == 0 {
		return b.sendText(msg.Chat.ID, "Открой /wishes и укажи номер: /convert 1 [дата]")
	}
	ids, err := pick(b.view(msg.Chat.ID).wishes, fields[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, "Открой /wishes и укажи номер: /convert 1 [дата]")
	}
	date := b.svc.Days.Today()
	if len(fields) > 1 {
		if date, err = parseDayArg(fields[1], date); err != nil {
			return b.sendError(msg.Chat.ID, service.ErrInvalidDate)
		}
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	task, err := b.svc.Wishes.Convert(ctx, user.ID, ids[0], date, "", nil)
	if err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	return b.showDay(ctx, msg.Chat.ID, msg.From, task.TaskDate)
}

func (b *Bot) handleSearch(ctx context.Context, msg *tgbotapi.Message) error {
	query := strings.TrimSpace(msg.CommandArguments())
	if query == "" {
		return b.sendText(msg.Chat.ID, "Что искать? /search молоко")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	tasks, err := b.svc.Tasks.Search(ctx, user.ID, model.TaskFilter{Query: query, Limit: 20})
	if err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	if len(tasks) == 0 {
		return b.sendText(msg.Chat.ID, "🔍 Ничего не найдено.")
	}
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("🔍 <b>%s</b>\n\n", escape(query)))
	for _, task := range tasks {
		mark := "⬜"
		if task.IsCompleted {
			mark = "✅"
		}
		builder.WriteString(fmt.Sprintf("%s %s %s %s\n", task.TaskDate.Time(b.loc).Format(dayLayout), mark,
			service.PriorityIcon(task.Priority), escape(shortTitle(task.Title, 48))))
	}
	return b.sendText(msg.Chat.ID, builder.String())
}

func (b *Bot) handleNotify(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	args := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))
	switch args {
	case "":
		if user.NotificationTime == "" {
			return b.sendText(msg.Chat.ID, "🔕 План дня не присылается. Включить: /notify 08:00")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🔔 План дня приходит в %s. Выключить: /notify off", user.NotificationTime))
	case "off", "выкл":
		args = ""
	}
	if _, err := b.svc.Profiles.SetNotificationTime(ctx, user.ID, args); err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	if args == "" {
		return b.sendText(msg.Chat.ID, "🔕 Уведомления выключены.")
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🔔 Буду присылать план дня в %s.", args))
}

func (b *Bot) handleSummary(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	text, err := b.svc.Reminders.DailySummary(ctx, *user, time.Now())
	if err != nil {
		return b.sendError(msg.Chat.ID, err)
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("callback ack", zap.Error(err))
	}

	data := cb.Data
	chatID := cb.Message.Chat.ID
	switch {
	case strings.HasPrefix(data, cbCompletePrefix):
		user, err := b.ensureUser(ctx, cb.From)
		if err != nil {
			return err
		}
		task, err := b.svc.Tasks.ToggleComplete(ctx, user.ID, strings.TrimPrefix(data, cbCompletePrefix))
		if err != nil {
			return b.sendError(chatID, err)
		}
		return b.showDay(ctx, chatID, cb.From, task.TaskDate)
	case strings.HasPrefix(data, cbDeletePrefix):
		return b.askDeleteConfirmation(ctx, chatID, cb.From, strings.TrimPrefix(data, cbDeletePrefix))
	case strings.HasPrefix(data, cbDayPrefix):
		date, err := model.ParseDate(strings.TrimPrefix(data, cbDayPrefix))
		if err != nil {
			return nil
		}
		return b.showDay(ctx, chatID, cb.From, date)
	default:
		return nil
	}
}
