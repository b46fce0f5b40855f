// Package telegram hosts the Telegram client, routing, and handlers.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"asu_schedule_bot/internal/config"
	"asu_schedule_bot/internal/domain"
	"asu_schedule_bot/internal/logging"
	"asu_schedule_bot/internal/notify"
	"asu_schedule_bot/internal/render"
	"asu_schedule_bot/internal/schedule"
	"asu_schedule_bot/internal/store"
)

// botAPI is the subset of *bot.Bot the client uses.
type botAPI interface {
	Start(ctx context.Context)
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
	SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error)
}

var (
	defaultAllowedUpdates = bot.AllowedUpdates{
		"message",
		"callback_query",
	}

	createBot = func(token string, options ...bot.Option) (botAPI, error) {
		return bot.New(token, options...)
	}
)

// UserService registers users and loads their profiles.
type UserService interface {
	User(ctx context.Context, id int64) (domain.User, error)
	RegisterStudent(ctx context.Context, profile domain.Profile, groupID int64, subgroup int) (bool, error)
	RegisterTeacher(ctx context.Context, profile domain.Profile, name string) (bool, error)
}

// GroupCatalogue drives the registration keyboards.
type GroupCatalogue interface {
	Faculties(ctx context.Context) ([]string, error)
	Courses(ctx context.Context, faculty string) ([]int, error)
	Groups(ctx context.Context, faculty string, course int) ([]domain.Group, error)
	Group(ctx context.Context, id int64) (domain.Group, error)
}

// ScheduleService resolves lessons for on-demand queries.
type ScheduleService interface {
	Day(ctx context.Context, user domain.User, t time.Time) (schedule.Day, error)
	Resolve(ctx context.Context, user domain.User, weekday int, even bool, slot *int) ([]domain.Lesson, error)
}

// SubscriptionService changes notification preferences.
type SubscriptionService interface {
	Toggle(ctx context.Context, userID int64) (bool, error)
	SetHour(ctx context.Context, userID int64, hour int) error
	DisableAll(ctx context.Context, args []string) (int64, error)
	DeleteAllLessons(ctx context.Context, args []string) (int64, error)
}

// Announcer delivers an administrator message to every user.
type Announcer interface {
	Announce(ctx context.Context, text string) (notify.Result, error)
}

// WorkbookImporter imports an uploaded schedule workbook.
type WorkbookImporter interface {
	ImportURL(ctx context.Context, url string, replace bool) (store.ImportResult, error)
}

// Directory answers administrative listing queries.
type Directory interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
	Stats(ctx context.Context) (store.Stats, error)
	LessonDays(ctx context.Context) ([]int, error)
}

// Services bundles the dependencies handlers call into.
type Services struct {
	Users         UserService
	Groups        GroupCatalogue
	Schedule      ScheduleService
	Renderer      *render.Renderer
	Subscriptions SubscriptionService
	Announcer     Announcer
	Importer      WorkbookImporter
	Directory     Directory
}

func (s Services) validate() error {
	switch {
	case s.Users == nil:
		return errors.New("user service is required")
	case s.Groups == nil:
		return errors.New("group catalogue is required")
	case s.Schedule == nil:
		return errors.New("schedule service is required")
	case s.Renderer == nil:
		return errors.New("renderer is required")
	case s.Subscriptions == nil:
		return errors.New("subscription service is required")
	case s.Announcer == nil:
		return errors.New("announcer is required")
	case s.Importer == nil:
		return errors.New("importer is required")
	case s.Directory == nil:
		return errors.New("directory is required")
	}
	return nil
}

// Client wraps the Telegram bot instance, routing, and handler dependencies.
type Client struct {
	bot         botAPI
	svc         Services
	commands    map[string]command
	callbacks   map[string]callbackHandler
	ownerID     int64
	loc         *time.Location
	sendTimeout time.Duration
	now         func() time.Time
	logger      *logrus.Entry
}

// NewClient initializes the Telegram bot with long polling and the bot's
// command handlers.
func NewClient(cfg config.Config, svc Services, logger *logrus.Entry) (*Client, error) {
	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return nil, errors.New("telegram token is required")
	}
	if err := svc.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Logger()
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	timeout := cfg.SendTimeout
	if timeout <= 0 {
		timeout = config.DefaultSendTimeout
	}

	c := &Client{
		svc:         svc,
		ownerID:     cfg.BotOwnerID,
		loc:         loc,
		sendTimeout: timeout,
		now:         time.Now,
		logger:      logger,
	}
	c.routes()

	tgBot, err := createBot(cfg.TelegramToken,
		bot.WithAllowedUpdates(defaultAllowedUpdates),
		bot.WithDefaultHandler(c.handleUpdate),
		bot.WithErrorsHandler(errorHandler(logger)),
	)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot client: %w", err)
	}
	c.bot = tgBot

	return c, nil
}

// Start publishes the command menu and receives updates via long polling
// until the context is canceled.
func (c *Client) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: menuCommands}); err != nil {
		c.logger.WithField("event", "telegram_commands_error").WithError(err).Warn("failed to publish command menu")
	}

	c.logger.WithFields(logging.Fields{
		"event":           "telegram_listen",
		"allowed_updates": defaultAllowedUpdates,
	}).Info("starting telegram long polling")

	c.bot.Start(ctx)

	c.logger.WithField("event", "telegram_stopped").Info("telegram polling stopped")
}

// Send delivers an HTML message. It implements notify.Sender.
func (c *Client) Send(ctx context.Context, recipientID int64, text string) error {
	if c == nil || c.bot == nil {
		return errors.New("telegram client is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    recipientID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send message to %d: %w", recipientID, err)
	}
	return nil
}

func (c *Client) reply(ctx context.Context, chatID int64, text string, markup models.ReplyMarkup) error {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := c.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("reply to %d: %w", chatID, err)
	}
	return nil
}

// edit replaces the text of the message carrying the pressed button, or sends
// a new message when that message is no longer accessible.
func (c *Client) edit(ctx context.Context, q *models.CallbackQuery, text string, markup *models.InlineKeyboardMarkup) error {
	msg := q.Message.Message
	if msg == nil {
		var fallback models.ReplyMarkup
		if markup != nil {
			fallback = markup
		}
		return c.reply(ctx, q.From.ID, text, fallback)
	}

	params := &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := c.bot.EditMessageText(ctx, params); err != nil {
		return fmt.Errorf("edit message %d: %w", msg.ID, err)
	}
	return nil
}

type updateMeta struct {
	userID     int64
	chatID     int64
	text       string
	updateType string
}

func extractUpdateMeta(update *models.Update) updateMeta {
	switch {
	case update.Message != nil:
		text := update.Message.Text
		if update.Message.Document != nil {
			text = update.Message.Document.FileName
		}
		return updateMeta{
			userID:     userID(update.Message.From),
			chatID:     chatID(&update.Message.Chat),
			text:       strings.TrimSpace(text),
			updateType: "message",
		}
	case update.CallbackQuery != nil:
		return updateMeta{
			userID:     userID(&update.CallbackQuery.From),
			chatID:     messageChatID(update.CallbackQuery.Message),
			text:       strings.TrimSpace(update.CallbackQuery.Data),
			updateType: "callback_query",
		}
	default:
		return updateMeta{updateType: "unknown"}
	}
}

func errorHandler(logger *logrus.Entry) bot.ErrorsHandler {
	if logger == nil {
		logger = logging.Logger()
	}

	return func(err error) {
		if err == nil {
			return
		}

		logger.WithField("event", "telegram_error").WithError(err).Error("telegram polling error")
	}
}

func userID(user *models.User) int64 {
	if user == nil {
		return 0
	}

	return user.ID
}

func chatID(chat *models.Chat) int64 {
	if chat == nil {
		return 0
	}

	return chat.ID
}

func messageChatID(msg models.MaybeInaccessibleMessage) int64 {
	switch msg.Type {
	case models.MaybeInaccessibleMessageTypeMessage:
		if msg.Message == nil {
			return 0
		}
		return chatID(&msg.Message.Chat)
	case models.MaybeInaccessibleMessageTypeInaccessibleMessage:
		if msg.InaccessibleMessage == nil {
			return 0
		}
		return chatID(&msg.InaccessibleMessage.Chat)
	default:
		return 0
	}
}

func profileOf(user *models.User) domain.Profile {
	if user == nil {
		return domain.Profile{}
	}
	return domain.Profile{
		ID:       user.ID,
		Username: user.Username,
		Name:     strings.TrimSpace(user.FirstName),
	}
}
