package bot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
	"unicode"

	"routine-planner/internal/model"
	"routine-planner/internal/service"
)

const dayLayout = "02.01.2006"

var weekdayShort = map[time.Weekday]string{
	time.Monday:    "пн",
	time.Tuesday:   "вт",
	time.Wednesday: "ср",
	time.Thursday:  "чт",
	time.Friday:    "пт",
	time.Saturday:  "сб",
	time.Sunday:    "вс",
}

var russianWeekdays = map[string]string{
	"пн": "mon", "вт": "tue", "ср": "wed", "чт": "thu", "пт": "fri", "сб": "sat", "вс": "sun",
}

// formatDay renders one date as a numbered list. The numbers are what
// /done, /move, /delete and /order refer to.
func formatDay(day service.Day, catNames map[string]string, loc *time.Location) string {
	var b strings.Builder
	header := day.Date.Time(loc).Format(dayLayout)
	if day.IsToday {
		header += " · сегодня"
	}
	b.WriteString(fmt.Sprintf("📋 <b>%s</b> (%s)\n\n", header, weekdayShort[day.Date.Weekday()]))

	if len(day.Tasks) == 0 {
		b.WriteString("— задач нет. Добавь через /add")
		return b.String()
	}

	done := 0
	for i, task := range day.Tasks {
		if task.IsCompleted {
			done++
		}
		b.WriteString(formatTaskLine(i+1, task, catNames))
	}
	b.WriteString(fmt.Sprintf("\n✅ Выполнено: %d из %d", done, len(day.Tasks)))
	return b.String()
}

func formatTaskLine(n int, task model.Task, catNames map[string]string) string {
	var b strings.Builder
	mark := "⬜"
	if task.IsCompleted {
		mark = "✅"
	}
	icon := service.PriorityIcon(task.Priority)
	if task.FromRoutine() {
		icon = iconRoutine + icon
	}
	title := escape(normalizeTitle(task.Title))
	if task.IsCompleted {
		title = "<s>" + title + "</s>"
	}
	b.WriteString(fmt.Sprintf("%d. %s %s %s", n, mark, icon, title))
	if task.CategoryID != nil {
		if name := strings.TrimSpace(catNames[*task.CategoryID]); name != "" {
			b.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(name)))
		}
	}
	if memo := strings.TrimSpace(task.Memo); memo != "" {
		b.WriteString(fmt.Sprintf("\n   📝 %s", escape(memo)))
	}
	b.WriteByte('\n')
	return b.String()
}

// formatWeek lists open task counts per day with the titles of pending tasks.
func formatWeek(days []service.Day, loc *time.Location) string {
	var b strings.Builder
	b.WriteString("🗓 <b>Неделя</b>\n")
	for _, day := range days {
		pending := 0
		for _, task := range day.Tasks {
			if !task.IsCompleted {
				pending++
			}
		}
		marker := ""
		if day.IsToday {
			marker = " ◀️"
		}
		b.WriteString(fmt.Sprintf("\n<b>%s %s</b>%s · %d из %d\n",
			weekdayShort[day.Date.Weekday()], day.Date.Time(loc).Format("02.01"), marker, pending, len(day.Tasks)))
		for _, task := range day.Tasks {
			if task.IsCompleted {
				continue
			}
			b.WriteString(fmt.Sprintf("   %s %s\n", service.PriorityIcon(task.Priority), escape(shortTitle(task.Title, 40))))
		}
	}
	return strings.TrimSpace(b.String())
}

func formatRoutines(routines []model.Routine) string {
	if len(routines) == 0 {
		return "♻️ Рутин пока нет. Создай: /newroutine daily Зарядка"
	}
	var b strings.Builder
	b.WriteString("♻️ <b>Рутины</b>\n\n")
	for i, r := range routines {
		state := "▶️"
		if !r.IsActive {
			state = "⏸"
		}
		b.WriteString(fmt.Sprintf("%d. %s %s %s · %s", i+1, state, service.PriorityIcon(r.Priority), escape(normalizeTitle(r.Title)), describeSchedule(r)))
		if r.HasTime {
			b.WriteString(" в " + r.Time)
		}
		b.WriteByte('\n')
	}
	b.WriteString("\n/routine_toggle N — пауза/запуск, /routine_delete N — удалить")
	return b.String()
}

func describeSchedule(r model.Routine) string {
	switch r.Frequency {
	case model.FrequencyDaily:
		return "каждый день"
	case model.FrequencyWeekly:
		var names []string
		for _, d := range r.Weekdays.Days() {
			names = append(names, weekdayShort[d])
		}
		return "по " + strings.Join(names, ", ")
	case model.FrequencyMonthly:
		return fmt.Sprintf("каждый месяц %d числа", r.DayOfMonth)
	default:
		return string(r.Frequency)
	}
}

func formatWishes(list model.WishList, items []model.WishItem) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🌠 <b>%s</b>\n\n", escape(list.Title)))
	if len(items) == 0 {
		b.WriteString("— пусто. Добавь: /wish Прочитать книгу | для отдыха")
		return b.String()
	}
	for i, item := range items {
		mark := "▫️"
		if item.IsCompleted {
			mark = "✅"
		}
		b.WriteString(fmt.Sprintf("%d. %s %s", i+1, mark, escape(normalizeTitle(item.Title))))
		if reason := strings.TrimSpace(item.Reason); reason != "" {
			b.WriteString(fmt.Sprintf("\n   💭 %s", escape(reason)))
		}
		b.WriteByte('\n')
	}
	b.WriteString("\n/convert N — перенести в задачи на сегодня")
	return b.String()
}

// quickTask is the parsed form of "/add Купить молоко !h #Покупки".
type quickTask struct {
	Title    string
	Priority string
	Category string
}

func parseQuickTask(args string) quickTask {
	var q quickTask
	var words []string
	for _, field := range strings.Fields(args) {
		switch {
		case len(field) > 1 && strings.HasPrefix(field, "!"):
			q.Priority = strings.TrimPrefix(field, "!")
		case len(field) > 1 && strings.HasPrefix(field, "#"):
			q.Category = strings.TrimPrefix(field, "#")
		default:
			words = append(words, field)
		}
	}
	q.Title = strings.Join(words, " ")
	return q
}

// parsePositions reads 1-based list numbers separated by spaces or commas.
func parsePositions(args string, n int) ([]int, error) {
	fields := strings.FieldsFunc(args, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	if len(fields) == 0 {
		return nil, errors.New("no numbers")
	}
	positions := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", f)
		}
		if v < 1 || v > n {
			return nil, fmt.Errorf("number %d is out of range 1..%d", v, n)
		}
		positions = append(positions, v)
	}
	return positions, nil
}

// parseRoutineArgs reads "daily Title", "weekly пн,ср Title" or
// "monthly 15 Title". The title may carry !priority, #category and @HH:MM.
func parseRoutineArgs(args string) (service.RoutineInput, string, error) {
	var in service.RoutineInput
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return in, "", errors.New("not enough arguments")
	}
	in.Frequency = model.Frequency(strings.ToLower(fields[0]))
	rest := fields[1:]
	switch in.Frequency {
	case model.FrequencyDaily:
	case model.FrequencyWeekly:
		days, err := model.ParseWeekdays(translateWeekdays(rest[0]))
		if err != nil {
			return in, "", err
		}
		in.Weekdays = days
		rest = rest[1:]
	case model.FrequencyMonthly:
		day, err := strconv.Atoi(rest[0])
		if err != nil {
			return in, "", fmt.Errorf("day of month %q is not a number", rest[0])
		}
		in.DayOfMonth = day
		rest = rest[1:]
	default:
		return in, "", fmt.Errorf("unknown frequency %q", fields[0])
	}

	var words []string
	for _, field := range rest {
		if len(field) > 1 && strings.HasPrefix(field, "@") {
			in.Time = strings.TrimPrefix(field, "@")
			continue
		}
		words = append(words, field)
	}
	q := parseQuickTask(strings.Join(words, " "))
	in.Title = q.Title
	in.Priority = q.Priority
	if in.Title == "" {
		return in, "", errors.New("empty title")
	}
	return in, q.Category, nil
}

func translateWeekdays(raw string) string {
	parts := strings.Split(strings.ToLower(raw), ",")
	for i, p := range parts {
		if en, ok := russianWeekdays[strings.TrimSpace(p)]; ok {
			parts[i] = en
		}
	}
	return strings.Join(parts, ",")
}

// parseWish splits "title | reason".
func parseWish(args string) (string, string) {
	title, reason, _ := strings.Cut(args, "|")
	return strings.TrimSpace(title), strings.TrimSpace(reason)
}

// describeError turns a service error into a chat reply.
func describeError(err error) string {
	switch {
	case errors.Is(err, service.ErrEmptyTitle):
		return "Название не может быть пустым."
	case errors.Is(err, service.ErrInvalidPriority):
		return "Приоритет должен быть high, medium или low (!h, !m, !l)."
	case errors.Is(err, service.ErrInvalidDate):
		return "Дата должна быть в формате <code>2025-11-30</code>."
	case errors.Is(err, service.ErrInvalidTime):
		return "Время должно быть в формате <code>08:30</code>."
	case errors.Is(err, service.ErrInvalidRecurrence):
		return "Неверное расписание рутины. Пример: /newroutine weekly пн,ср Спортзал"
	case errors.Is(err, service.ErrDuplicateCategory):
		return "Такая категория уже есть."
	case errors.Is(err, service.ErrDefaultCategory):
		return "Основную категорию удалить нельзя."
	case errors.Is(err, service.ErrDefaultWishList):
		return "Основной список желаний удалить нельзя."
	case errors.Is(err, service.ErrInvalidOrder):
		return "Список номеров не совпадает с задачами дня. Открой день заново."
	case errors.Is(err, service.ErrNotFound):
		return "Не найдено. Возможно, запись уже удалена."
	case errors.Is(err, service.ErrValidation):
		return escape(err.Error())
	default:
		return fmt.Sprintf("Ошибка: %s", escape(err.Error()))
	}
}

func escape(s string) string {
	return html.EscapeString(s)
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func shortTitle(title string, maxLen int) string {
	clean := normalizeTitle(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func categoryLabel(name string) string {
	base := strings.TrimSpace(name)
	var icon string
	switch strings.ToLower(base) {
	case "учеба", "учёба":
		icon = "🎓"
	case "работа":
		icon = "💼"
	case "покупки":
		icon = "🛒"
	case "здоровье":
		icon = "🩺"
	case "личное":
		icon = "🧩"
	case strings.ToLower(model.DefaultCategoryName):
		icon = "📁"
	default:
		icon = "🏷️"
	}
	return fmt.Sprintf("%s %s", icon, escape(normalizeTitle(base)))
}

// parseDayArg accepts YYYY-MM-DD, DD.MM.YYYY and a few relative words.
// An empty argument means today.
func parseDayArg(arg string, today model.Date) (model.Date, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", "today", "сегодня":
		return today, nil
	case "tomorrow", "завтра":
		return today.AddDays(1), nil
	case "yesterday", "вчера":
		return today.AddDays(-1), nil
	}
	arg = strings.TrimSpace(arg)
	if t, err := time.Parse(dayLayout, arg); err == nil {
		return model.DateOf(t), nil
	}
	return model.ParseDate(arg)
}
