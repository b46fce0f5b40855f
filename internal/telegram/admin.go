package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/go-telegram/bot"

	"asu_schedule_bot/internal/domain"
	"asu_schedule_bot/internal/feature/importer"
	"asu_schedule_bot/internal/logging"
	"asu_schedule_bot/internal/render"
)

// requireAdmin reports whether the sender is an administrator, answering
// with the access notice otherwise.
func (c *Client) requireAdmin(ctx context.Context, req request) (bool, error) {
	user, err := c.svc.Users.User(ctx, req.userID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return false, err
	}
	if err == nil && user.IsAdmin() {
		return true, nil
	}

	c.logger.WithFields(logging.Fields{
		"event":   "admin_denied",
		"user_id": req.userID,
	}).Warn("non-admin attempted an admin command")

	return false, c.reply(ctx, req.chatID, msgNoAccess, nil)
}

func (c *Client) handleAnnounce(ctx context.Context, req request) error {
	if req.payload == "" {
		return c.reply(ctx, req.chatID, msgAnnounceUsage, nil)
	}

	res, err := c.svc.Announcer.Announce(ctx, req.payload)
	if err != nil {
		return err
	}
	return c.reply(ctx, req.chatID, fmt.Sprintf(msgAnnounceSent, res.Sent, res.Recipients), nil)
}

func (c *Client) handleUsersList(ctx context.Context, req request) error {
	users, err := c.svc.Directory.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return c.reply(ctx, req.chatID, msgNoUsers, nil)
	}

	for _, chunk := range c.svc.Renderer.UserList(users) {
		if err := c.reply(ctx, req.chatID, chunk, nil); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) handleUserStats(ctx context.Context, req request) error {
	stats, err := c.svc.Directory.Stats(ctx)
	if err != nil {
		return err
	}
	return c.reply(ctx, req.chatID, render.Stats(stats), nil)
}

func (c *Client) handleTurnOffNotify(ctx context.Context, req request) error {
	n, err := c.svc.Subscriptions.DisableAll(ctx, req.args)
	if errors.Is(err, domain.ErrUnconfirmed) {
		return c.reply(ctx, req.chatID, msgDisableConfirm, nil)
	}
	if err != nil {
		return err
	}
	return c.reply(ctx, req.chatID, fmt.Sprintf(msgDisabled, n), nil)
}

func (c *Client) handleDeleteSchedules(ctx context.Context, req request) error {
	n, err := c.svc.Subscriptions.DeleteAllLessons(ctx, req.args)
	if errors.Is(err, domain.ErrUnconfirmed) {
		return c.reply(ctx, req.chatID, msgDeleteConfirm, nil)
	}
	if err != nil {
		return err
	}
	return c.reply(ctx, req.chatID, fmt.Sprintf(msgDeleted, n), nil)
}

// handleDocument imports an uploaded workbook. Workbook errors are reported
// back to the administrator rather than treated as faults.
func (c *Client) handleDocument(ctx context.Context, req request) error {
	doc := req.msg.Document
	if !importer.IsWorkbook(doc.FileName) {
		return c.reply(ctx, req.chatID, msgNotWorkbook, nil)
	}
	if err := c.reply(ctx, req.chatID, msgImportStarted, nil); err != nil {
		return err
	}

	file, err := c.bot.GetFile(ctx, &bot.GetFileParams{FileID: doc.FileID})
	if err != nil {
		return fmt.Errorf("get file %s: %w", doc.FileID, err)
	}

	replace := importer.ReplaceRequested(req.msg.Caption)
	res, err := c.svc.Importer.ImportURL(ctx, c.bot.FileDownloadLink(file), replace)
	if err != nil {
		c.logger.WithFields(logging.Fields{
			"event":     "schedule_import_failed",
			"user_id":   req.userID,
			"file_name": doc.FileName,
		}).WithError(err).Warn("schedule import failed")
		return c.reply(ctx, req.chatID, fmt.Sprintf(msgImportFailed, html.EscapeString(err.Error())), nil)
	}

	if res.Removed > 0 {
		return c.reply(ctx, req.chatID, fmt.Sprintf(msgImportDoneRemove, res.Lessons, res.GroupsCreated, res.Removed), nil)
	}
	return c.reply(ctx, req.chatID, fmt.Sprintf(msgImportDone, res.Lessons, res.GroupsCreated), nil)
}
