package telegram

import (
	"context"
	"fmt"
	"html"
	"runtime/debug"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"asu_schedule_bot/internal/logging"
)

// request is one routed command.
type request struct {
	msg     *models.Message
	chatID  int64
	userID  int64
	args    []string
	payload string
}

type command struct {
	admin  bool
	handle func(ctx context.Context, req request) error
}

type callbackHandler func(ctx context.Context, q *models.CallbackQuery, cb callback) error

var menuCommands = []models.BotCommand{
	{Command: "start", Description: "Регистрация и смена группы"},
	{Command: "today", Description: "Расписание на сегодня"},
	{Command: "tomorrow", Description: "Расписание на завтра"},
	{Command: "schedule_days", Description: "Выбрать день"},
	{Command: "info", Description: "Информация о профиле"},
	{Command: "notify_time", Description: "Ежедневная рассылка"},
	{Command: "teacher", Description: "Регистрация преподавателя"},
}

// buttonCommands maps reply keyboard labels to commands.
var buttonCommands = map[string]string{
	strings.ToLower(btnToday):       "today",
	strings.ToLower(btnTomorrow):    "tomorrow",
	strings.ToLower(btnPickDay):     "schedule_days",
	strings.ToLower(btnInfo):        "info",
	strings.ToLower(btnNotify):      "notify_time",
	strings.ToLower(btnChangeGroup): "start",
}

func (c *Client) routes() {
	c.commands = map[string]command{
		"start":         {handle: c.handleStart},
		"cancel":        {handle: c.handleCancel},
		"teacher":       {handle: c.handleTeacher},
		"today":         {handle: c.handleToday},
		"tomorrow":      {handle: c.handleTomorrow},
		"schedule_days": {handle: c.handleScheduleDays},
		"info":          {handle: c.handleInfo},
		"notify_time":   {handle: c.handleNotifyTime},

		"message":          {admin: true, handle: c.handleAnnounce},
		"users_list":       {admin: true, handle: c.handleUsersList},
		"user_stats":       {admin: true, handle: c.handleUserStats},
		"turn_off_notify":  {admin: true, handle: c.handleTurnOffNotify},
		"delete_schedules": {admin: true, handle: c.handleDeleteSchedules},
	}

	c.callbacks = map[string]callbackHandler{
		cbFaculty:  c.onFaculty,
		cbCourse:   c.onCourse,
		cbGroup:    c.onGroup,
		cbSubgroup: c.onSubgroup,
		cbTeacher:  c.onTeacher,
		cbCancel:   c.onCancel,
		cbDay:      c.onDay,
		cbNotify:   c.onNotify,
	}
}

// handleUpdate is the single entry point for every update.
func (c *Client) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update == nil {
		return
	}

	meta := extractUpdateMeta(update)
	entry := logging.WithContext(c.logger, logging.Context{
		UserID: meta.userID,
		ChatID: meta.chatID,
		Event:  "telegram_update",
	}).WithField("update_type", meta.updateType)
	if meta.text != "" {
		entry = entry.WithField("text", meta.text)
	}
	entry.Debug("telegram update received")

	c.guard(ctx, meta, func() error {
		switch {
		case update.Message != nil:
			return c.handleMessage(ctx, update.Message)
		case update.CallbackQuery != nil:
			return c.handleCallback(ctx, update.CallbackQuery)
		}
		return nil
	})
}

// guard runs one handler, turning returned errors and panics into a log line,
// an apology to the user and a report to the bot owner.
func (c *Client) guard(ctx context.Context, meta updateMeta, run func() error) {
	defer func() {
		if r := recover(); r != nil {
			c.fault(ctx, meta, fmt.Errorf("panic: %v", r), debug.Stack())
		}
	}()

	if err := run(); err != nil {
		c.fault(ctx, meta, err, nil)
	}
}

func (c *Client) fault(ctx context.Context, meta updateMeta, err error, stack []byte) {
	entry := c.logger.WithFields(logging.Fields{
		"event":       "handler_failed",
		"update_type": meta.updateType,
		"user_id":     meta.userID,
		"chat_id":     meta.chatID,
	}).WithError(err)
	if len(stack) > 0 {
		entry = entry.WithField("stack", string(stack))
	}
	entry.Error("telegram handler failed")

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.sendTimeout)
	defer cancel()

	if meta.chatID != 0 {
		if sendErr := c.reply(sendCtx, meta.chatID, msgFault, nil); sendErr != nil {
			c.logger.WithField("event", "fault_reply_failed").WithError(sendErr).Warn("failed to send apology")
		}
	}
	if c.ownerID != 0 {
		report := fmt.Sprintf(msgFaultReport, meta.userID, html.EscapeString(meta.text), html.EscapeString(err.Error()))
		if sendErr := c.reply(sendCtx, c.ownerID, report, nil); sendErr != nil {
			c.logger.WithField("event", "fault_report_failed").WithError(sendErr).Warn("failed to report fault to owner")
		}
	}
}

func (c *Client) handleMessage(ctx context.Context, msg *models.Message) error {
	req := request{
		msg:    msg,
		chatID: msg.Chat.ID,
		userID: userID(msg.From),
	}

	if msg.Document != nil {
		if ok, err := c.requireAdmin(ctx, req); !ok || err != nil {
			return err
		}
		return c.handleDocument(ctx, req)
	}

	name, args, payload := parseCommand(msg.Text)
	if name == "" {
		name = buttonCommands[strings.ToLower(strings.TrimSpace(msg.Text))]
	}
	if name == "" {
		return nil
	}
	req.args, req.payload = args, payload

	cmd, ok := c.commands[name]
	if !ok {
		return c.reply(ctx, req.chatID, msgUnknownCommand, mainKeyboard())
	}
	if cmd.admin {
		if ok, err := c.requireAdmin(ctx, req); !ok || err != nil {
			return err
		}
	}
	return cmd.handle(ctx, req)
}

func (c *Client) handleCallback(ctx context.Context, q *models.CallbackQuery) error {
	if _, err := c.bot.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: q.ID}); err != nil {
		c.logger.WithField("event", "callback_answer_failed").WithError(err).Warn("failed to answer callback query")
	}

	cb := parseCallback(q.Data)
	handle, ok := c.callbacks[cb.kind]
	if !ok {
		c.logger.WithFields(logging.Fields{
			"event":   "callback_unknown",
			"user_id": q.From.ID,
			"data":    q.Data,
		}).Debug("ignoring unknown callback")
		return nil
	}
	return handle(ctx, q, cb)
}

// parseCommand splits "/name@bot arg1 arg2" into the lowercased name, the
// arguments and the raw text after the command.
func parseCommand(text string) (string, []string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", nil, ""
	}

	head := text
	if i := strings.IndexAny(text, " \n\t"); i >= 0 {
		head = text[:i]
	}
	payload := strings.TrimSpace(text[len(head):])

	name := strings.TrimPrefix(head, "/")
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name), strings.Fields(payload), payload
}
