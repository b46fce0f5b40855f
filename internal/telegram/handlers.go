package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/go-telegram/bot/models"

	"asu_schedule_bot/internal/domain"
	"asu_schedule_bot/internal/logging"
	"asu_schedule_bot/internal/render"
)

func (c *Client) handleStart(ctx context.Context, req request) error {
	faculties, err := c.svc.Groups.Faculties(ctx)
	if err != nil {
		return err
	}
	if len(faculties) == 0 {
		return c.reply(ctx, req.chatID, msgNoGroups, nil)
	}
	return c.reply(ctx, req.chatID, msgChooseFaculty, facultyKeyboard(faculties))
}

func (c *Client) handleCancel(ctx context.Context, req request) error {
	return c.reply(ctx, req.chatID, msgRegistrationStop, mainKeyboard())
}

func (c *Client) handleTeacher(ctx context.Context, req request) error {
	name := strings.TrimSpace(req.payload)
	if name == "" {
		return c.reply(ctx, req.chatID, msgTeacherUsage, nil)
	}

	created, err := c.svc.Users.RegisterTeacher(ctx, profileOf(req.msg.From), name)
	if err != nil {
		return err
	}

	text := msgTeacherUpdated
	if created {
		text = msgTeacherCreated
	}
	return c.reply(ctx, req.chatID, fmt.Sprintf(text, html.EscapeString(name))+"\n\n"+msgCommandsReady, mainKeyboard())
}

func (c *Client) handleToday(ctx context.Context, req request) error {
	return c.sendDay(ctx, req, 0)
}

func (c *Client) handleTomorrow(ctx context.Context, req request) error {
	return c.sendDay(ctx, req, 1)
}

func (c *Client) sendDay(ctx context.Context, req request, offset int) error {
	user, ok, err := c.registeredUser(ctx, req.chatID, req.userID)
	if !ok || err != nil {
		return err
	}

	date := c.now().In(c.loc).AddDate(0, 0, offset)
	day, err := c.svc.Schedule.Day(ctx, user, date)
	if err != nil {
		return c.scheduleError(ctx, req.chatID, req.userID, err)
	}

	return c.reply(ctx, req.chatID, c.svc.Renderer.Day(user, day.Weekday, day.EvenWeek, day.Lessons), nil)
}

func (c *Client) handleScheduleDays(ctx context.Context, req request) error {
	if _, ok, err := c.registeredUser(ctx, req.chatID, req.userID); !ok || err != nil {
		return err
	}

	days, err := c.svc.Directory.LessonDays(ctx)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		return c.reply(ctx, req.chatID, render.NoLessons, nil)
	}
	return c.reply(ctx, req.chatID, msgChooseDay, dayKeyboard(days))
}

func (c *Client) handleInfo(ctx context.Context, req request) error {
	user, err := c.svc.Users.User(ctx, req.userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return c.notRegistered(ctx, req.chatID, req.userID)
	}
	if err != nil {
		return err
	}
	return c.reply(ctx, req.chatID, c.svc.Renderer.Profile(user), nil)
}

func (c *Client) handleNotifyTime(ctx context.Context, req request) error {
	if _, ok, err := c.registeredUser(ctx, req.chatID, req.userID); !ok || err != nil {
		return err
	}
	return c.reply(ctx, req.chatID, msgNotifySettings, notifyKeyboard())
}

func (c *Client) onFaculty(ctx context.Context, q *models.CallbackQuery, cb callback) error {
	faculty, idx, ok, err := c.facultyAt(ctx, cb)
	if err != nil {
		return err
	}
	if !ok {
		return c.edit(ctx, q, msgStaleButton, nil)
	}

	courses, err := c.svc.Groups.Courses(ctx, faculty)
	if err != nil {
		return err
	}
	return c.edit(ctx, q, msgChooseCourse, courseKeyboard(idx, courses))
}

func (c *Client) onCourse(ctx context.Context, q *models.CallbackQuery, cb callback) error {
	faculty, _, ok, err := c.facultyAt(ctx, cb)
	if err != nil {
		return err
	}
	course, courseErr := cb.intArg(1)
	if !ok || courseErr != nil {
		return c.edit(ctx, q, msgStaleButton, nil)
	}

	groups, err := c.svc.Groups.Groups(ctx, faculty, course)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		return c.edit(ctx, q, msgStaleButton, nil)
	}
	return c.edit(ctx, q, msgChooseSpeciality, groupKeyboard(groups))
}

func (c *Client) onGroup(ctx context.Context, q *models.CallbackQuery, cb callback) error {
	groupID, err := cb.idArg(0)
	if err != nil {
		return c.edit(ctx, q, msgStaleButton, nil)
	}

	g, err := c.svc.Groups.Group(ctx, groupID)
	if errors.Is(err, domain.ErrGroupNotFound) {
		return c.edit(ctx, q, msgStaleButton, nil)
	}
	if err != nil {
		return err
	}
	return c.edit(ctx, q, msgChooseSubgroup, subgroupKeyboard(g.ID))
}

func (c *Client) onSubgroup(ctx context.Context, q *models.CallbackQuery, cb callback) error {
	groupID, err := cb.idArg(0)
	if err != nil {
		return c.edit(ctx, q, msgStaleButton, nil)
	}
	subgroup, err := cb.intArg(1)
	if err != nil {
		return c.edit(ctx, q, msgStaleButton, nil)
	}

	profile := profileOf(&q.From)
	created, err := c.svc.Users.RegisterStudent(ctx, profile, groupID, subgroup)
	if errors.Is(err, domain.ErrGroupNotFound) {
		return c.edit(ctx, q, msgStaleButton, nil)
	}
	if err != nil {
		return err
	}

	text := msgGroupChanged
	if created {
		text = fmt.Sprintf(msgRegistered, html.EscapeString(profile.Name))
	}
	if err := c.edit(ctx, q, text, nil); err != nil {
		return err
	}
	return c.reply(ctx, q.From.ID, msgCommandsReady, mainKeyboard())
}

func (c *Client) onTeacher(ctx context.Context, q *models.CallbackQuery, _ callback) error {
	return c.edit(ctx, q, msgTeacherPrompt, nil)
}

func (c *Client) onCancel(ctx context.Context, q *models.CallbackQuery, _ callback) error {
	return c.edit(ctx, q, msgRegistrationStop, nil)
}

func (c *Client) onDay(ctx context.Context, q *models.CallbackQuery, cb callback) error {
	weekday, err := cb.intArg(0)
	if err != nil || weekday < 0 || weekday > 6 {
		return c.edit(ctx, q, msgStaleButton, nil)
	}
	even, err := cb.intArg(1)
	if err != nil || (even != 0 && even != 1) {
		return c.edit(ctx, q, msgStaleButton, nil)
	}

	chat := messageChatID(q.Message)
	if chat == 0 {
		chat = q.From.ID
	}
	user, ok, err := c.registeredUser(ctx, chat, q.From.ID)
	if !ok || err != nil {
		return err
	}

	lessons, err := c.svc.Schedule.Resolve(ctx, user, weekday, even == 1, nil)
	if err != nil {
		return c.scheduleError(ctx, chat, q.From.ID, err)
	}
	return c.edit(ctx, q, c.svc.Renderer.Day(user, weekday, even == 1, lessons), nil)
}

func (c *Client) onNotify(ctx context.Context, q *models.CallbackQuery, cb callback) error {
	if len(cb.args) > 0 && cb.args[0] == notifyToggle {
		enabled, err := c.svc.Subscriptions.Toggle(ctx, q.From.ID)
		if errors.Is(err, domain.ErrUserNotFound) {
			return c.edit(ctx, q, msgNotRegistered, nil)
		}
		if err != nil {
			return err
		}
		if enabled {
			return c.edit(ctx, q, msgNotifyOn, nil)
		}
		return c.edit(ctx, q, msgNotifyOff, nil)
	}

	hour, err := cb.intArg(0)
	if err != nil {
		return c.edit(ctx, q, msgStaleButton, nil)
	}

	err = c.svc.Subscriptions.SetHour(ctx, q.From.ID, hour)
	switch {
	case errors.Is(err, domain.ErrInvalidNotifyHour):
		return c.edit(ctx, q, msgStaleButton, nil)
	case errors.Is(err, domain.ErrUserNotFound):
		return c.edit(ctx, q, msgNotRegistered, nil)
	case err != nil:
		return err
	}
	return c.edit(ctx, q, fmt.Sprintf(msgNotifyHourSet, hour), nil)
}

// facultyAt resolves the faculty index carried in registration callbacks.
func (c *Client) facultyAt(ctx context.Context, cb callback) (string, int, bool, error) {
	idx, err := cb.intArg(0)
	if err != nil {
		return "", 0, false, nil
	}

	faculties, err := c.svc.Groups.Faculties(ctx)
	if err != nil {
		return "", 0, false, err
	}
	if idx < 0 || idx >= len(faculties) {
		return "", 0, false, nil
	}
	return faculties[idx], idx, true, nil
}

// registeredUser loads the user and answers with the registration hint when
// the user cannot query schedules yet.
func (c *Client) registeredUser(ctx context.Context, chatID, userID int64) (domain.User, bool, error) {
	user, err := c.svc.Users.User(ctx, userID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.User{}, false, c.notRegistered(ctx, chatID, userID)
	}
	if err != nil {
		return domain.User{}, false, err
	}
	if err := user.CheckRegistered(); err != nil {
		return domain.User{}, false, c.notRegistered(ctx, chatID, userID)
	}
	return user, true, nil
}

func (c *Client) scheduleError(ctx context.Context, chatID, userID int64, err error) error {
	if errors.Is(err, domain.ErrNotRegistered) {
		return c.notRegistered(ctx, chatID, userID)
	}
	return err
}

func (c *Client) notRegistered(ctx context.Context, chatID, userID int64) error {
	c.logger.WithFields(logging.Fields{
		"event":   "user_not_registered",
		"user_id": userID,
	}).Info("user is not registered")

	return c.reply(ctx, chatID, msgNotRegistered, nil)
}
