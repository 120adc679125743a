package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"routine-planner/internal/model"
	"routine-planner/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageMemo
	stageCategory
	stagePriority
)

const (
	cbCompletePrefix = "complete:"
	cbDeletePrefix   = "delete:"
	cbDayPrefix      = "day:"
)

const (
	btnSkip           = "⏭️ Пропустить"
	btnConfirm        = "✅ Подтвердить"
	btnCancel         = "↩️ Отмена"
	btnCancelDialog   = "⏪ Отменить ввод"
	btnHigh           = "🔴 Высокий"
	btnMedium         = "🟡 Средний"
	btnLow            = "🟢 Низкий"
	iconRoutine       = "♻️"
	menuLabelNewTask  = "➕ Новая задача"
	menuLabelToday    = "📋 Сегодня"
	menuLabelWeek     = "🗓 Неделя"
	menuLabelRoutines = "♻️ Рутины"
	menuLabelWishes   = "🌠 Желания"
	menuLabelHelp     = "ℹ️ Помощь"
)

type conversationState struct {
	stage      conversationStage
	input      service.TaskInput
	categories []model.Category
}

type confirmationRequest struct {
	taskID string
	title  string
}

// chatView remembers what a chat was last shown, so that list numbers
// typed by the user can be mapped back to ids.
type chatView struct {
	date     model.Date
	tasks    []string
	routines []string
	wishes   []string
}

// Services bundles what the bot talks to.
type Services struct {
	Days       *service.DayView
	Tasks      *service.TaskService
	Reorder    *service.ReorderService
	Routines   *service.RoutineService
	Categories *service.CategoryService
	Wishes     *service.WishService
	Profiles   *service.ProfileService
	Reminders  *service.ReminderService
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api           *tgbotapi.BotAPI
	svc           Services
	loc           *time.Location
	logger        *zap.Logger
	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	views         map[int64]*chatView
	mu            sync.Mutex
}

func New(token string, svc Services, loc *time.Location, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	logger.Info("bot authorized", zap.String("account", api.Self.UserName))

	return &Bot{
		api:           api,
		svc:           svc,
		loc:           loc,
		logger:        logger,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
		views:         make(map[int64]*chatView),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.logger.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.logger.Error("handle callback", zap.Error(err))
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.logger.Error("handle message", zap.Int64("chat_id", update.Message.Chat.ID), zap.Error(err))
			}
		}
	}

	return nil
}

var errNoChat = errors.New("user has no telegram chat")

// Notify delivers a scheduled summary to the user's private chat.
func (b *Bot) Notify(_ context.Context, user model.User, text string) error {
	if user.TelegramID == nil {
		return errNoChat
	}
	return b.sendText(*user.TelegramID, text)
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Ввод отменён.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		b.logger.Debug("command",
			zap.Int64("from", msg.From.ID),
			zap.String("command", msg.Command()),
			zap.String("args", msg.CommandArguments()),
		)
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "Я пока не понял сообщение. Набери /add, чтобы добавить задачу, или /help для списка команд.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "today":
		return b.showDay(ctx, msg.Chat.ID, msg.From, b.svc.Days.Today())
	case "day":
		return b.handleDay(ctx, msg)
	case "prev":
		return b.handleShift(ctx, msg, -1)
	case "next":
		return b.handleShift(ctx, msg, 1)
	case "week":
		return b.handleWeek(ctx, msg)
	case "add":
		return b.handleAdd(ctx, msg)
	case "done":
		return b.handleDone(ctx, msg)
	case "move":
		return b.handleMove(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "order":
		return b.handleOrder(ctx, msg)
	case "routines":
		return b.handleRoutines(ctx, msg)
	case "newroutine":
		return b.handleNewRoutine(ctx, msg)
	case "routine_toggle":
		return b.handleRoutineToggle(ctx, msg)
	case "routine_delete":
		return b.handleRoutineDelete(ctx, msg)
	case "categories":
		return b.handleCategories(ctx, msg)
	case "newcategory":
		return b.handleNewCategory(ctx, msg)
	case "wishes":
		return b.handleWishes(ctx, msg)
	case "wish":
		return b.handleWish(ctx, msg)
	case "convert":
		return b.handleConvert(ctx, msg)
	case "search":
		return b.handleSearch(ctx, msg)
	case "notify":
		return b.handleNotify(ctx, msg)
	case "summary":
		return b.handleSummary(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Ввод отменён.")
	default:
		return b.sendText(msg.Chat.ID, "Команда не поддерживается. Загляни в /help.")
	}
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(ctx, msg)
	case strings.ToLower(menuLabelToday):
		return true, b.showDay(ctx, msg.Chat.ID, msg.From, b.svc.Days.Today())
	case strings.ToLower(menuLabelWeek):
		return true, b.handleWeek(ctx, msg)
	case strings.ToLower(menuLabelRoutines):
		return true, b.handleRoutines(ctx, msg)
	case strings.ToLower(menuLabelWishes):
		return true, b.handleWishes(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.svc.Profiles.FromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendError(chatID int64, err error) error {
	if !errors.Is(err, service.ErrValidation) && !errors.Is(err, service.ErrNotFound) &&
		!errors.Is(err, service.ErrDefaultCategory) && !errors.Is(err, service.ErrDefaultWishList) {
		b.logger.Error("request failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return b.sendText(chatID, describeError(err))
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

// view returns a copy of the chat's last shown state.
func (b *Bot) view(chatID int64) chatView {
	b.mu.Lock()
	defer b.mu.Unlock()
	if v, ok := b.views[chatID]; ok {
		return *v
	}
	return chatView{}
}

func (b *Bot) updateView(chatID int64, fn func(v *chatView)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.views[chatID]
	if !ok {
		v = &chatView{}
		b.views[chatID] = v
	}
	fn(v)
}

// currentDate is the date the chat is looking at, today by default.
func (b *Bot) currentDate(chatID int64) model.Date {
	if d := b.view(chatID).date; d != "" {
		return d
	}
	return b.svc.Days.Today()
}

// pick maps 1-based list numbers to the ids remembered for the chat.
func pick(ids []string, args string) ([]string, error) {
	positions, err := parsePositions(args, len(ids))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(positions))
	for _, p := range positions {
		out = append(out, ids[p-1])
	}
	return out, nil
}
