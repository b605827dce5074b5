package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"workout-reminder/internal/config"
)

const (
	cbDonePrefix   = "done:"
	cbSkipPrefix   = "skip:"
	cbSnoozePrefix = "snooze:"
)

// Client wraps the Telegram API for outbound delivery. It implements
// service.Notifier.
type Client struct {
	api            *tgbotapi.BotAPI
	timeoutMinutes int
	snoozeMinutes  int
	logger         zerolog.Logger
}

func NewClient(token string, timeoutMinutes, snoozeMinutes int, logger zerolog.Logger) (*Client, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	logger.Info().Str("account", api.Self.UserName).Msg("bot authorized")
	return &Client{
		api:            api,
		timeoutMinutes: timeoutMinutes,
		snoozeMinutes:  snoozeMinutes,
		logger:         logger,
	}, nil
}

// SendReminder delivers the rendered reminder with its action menu, as a
// photo message when the slot carries an image.
func (c *Client) SendReminder(ctx context.Context, chatID, timeStr string, slot config.Slot, taskID string) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}

	text := renderReminder(slot, timeStr, c.timeoutMinutes)
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Done", cbDonePrefix+taskID),
			tgbotapi.NewInlineKeyboardButtonData("⏭️ Skip", cbSkipPrefix+taskID),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🕒 Snooze %dm", c.snoozeMinutes), cbSnoozePrefix+taskID),
		),
	)

	if slot.Image != "" {
		photo := tgbotapi.NewPhoto(id, imageFile(slot.Image))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		photo.ReplyMarkup = markup
		if _, err := c.api.Send(photo); err != nil {
			return fmt.Errorf("send photo: %w", err)
		}
		return nil
	}

	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = markup
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendText delivers a plain HTML message to a chat.
func (c *Client) SendText(chatID, text string) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(id, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// Acknowledge answers a callback query. Acknowledgment is advisory;
// failures are logged and swallowed.
func (c *Client) Acknowledge(callbackID, text string) {
	if callbackID == "" {
		return
	}
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		c.logger.Warn().Err(err).Msg("callback ack")
	}
}

func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(chatID), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}
	return id, nil
}

func imageFile(image string) tgbotapi.RequestFileData {
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return tgbotapi.FileURL(image)
	}
	return tgbotapi.FilePath(image)
}
