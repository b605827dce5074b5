package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"workout-reminder/internal/config"
	"workout-reminder/internal/repository"
	"workout-reminder/internal/service"
)

// Bot routes inbound Telegram updates to the lifecycle and report services
// and delivers the scheduled weekly reports.
type Bot struct {
	client    *Client
	lifecycle *service.LifecycleService
	reports   *service.ReportService
	planner   *service.Planner
	cfg       *config.Config
	logger    zerolog.Logger
}

func New(client *Client, lifecycle *service.LifecycleService, reports *service.ReportService, planner *service.Planner, cfg *config.Config, logger zerolog.Logger) *Bot {
	return &Bot{
		client:    client,
		lifecycle: lifecycle,
		reports:   reports,
		planner:   planner,
		cfg:       cfg,
		logger:    logger,
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.client.api.GetUpdatesChan(updateConfig)

	b.logger.Info().Msg("start polling updates")

	go func() {
		<-ctx.Done()
		b.client.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.logger.Error().Err(err).Msg("handle callback")
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.logger.Error().Err(err).Msg("handle message")
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil || !msg.IsCommand() {
		return nil
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	if !b.isRecipient(chatID) {
		return b.client.SendText(chatID, "This bot serves a fixed set of recipients.")
	}

	now := time.Now().In(b.cfg.Location)

	switch msg.Command() {
	case "start", "help":
		return b.client.SendText(chatID, helpText)
	case "report":
		return b.sendReport(ctx, chatID, now)
	case "stats":
		return b.sendSummary(ctx, chatID, now)
	case "plan":
		return b.sendPlan(chatID, now)
	case "mark":
		return b.handleMark(ctx, chatID, msg.CommandArguments(), now)
	default:
		return b.client.SendText(chatID, "Unknown command. Try /help.")
	}
}

// handleMark applies a directed-set descriptor: "date time slot status".
func (b *Bot) handleMark(ctx context.Context, chatID, args string, now time.Time) error {
	taskID, err := b.lifecycle.DirectedSet(ctx, chatID, args, now)
	switch {
	case errors.Is(err, service.ErrMalformedDescriptor):
		return b.client.SendText(chatID, "Usage: /mark 2025-01-06 10:40 A1 done")
	case err != nil:
		return err
	}
	b.logger.Info().Str("task", taskID).Str("chat", chatID).Msg("marked via command")
	return b.client.SendText(chatID, "Recorded ✅")
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}

	data := cb.Data
	chatID := strconv.FormatInt(cb.Message.Chat.ID, 10)
	now := time.Now().In(b.cfg.Location)

	var action service.Action
	var taskID string
	switch {
	case strings.HasPrefix(data, cbDonePrefix):
		action, taskID = service.ActionDone, strings.TrimPrefix(data, cbDonePrefix)
	case strings.HasPrefix(data, cbSkipPrefix):
		action, taskID = service.ActionSkip, strings.TrimPrefix(data, cbSkipPrefix)
	case strings.HasPrefix(data, cbSnoozePrefix):
		action, taskID = service.ActionSnooze, strings.TrimPrefix(data, cbSnoozePrefix)
	default:
		b.client.Acknowledge(cb.ID, "")
		return nil
	}

	b.logger.Info().Str("action", string(action)).Str("task", taskID).
		Str("chat", chatID).Msg("callback action")

	err := b.lifecycle.Act(ctx, action, taskID, chatID, now)
	switch {
	case errors.Is(err, repository.ErrTaskNotFound):
		b.client.Acknowledge(cb.ID, "Nothing to update")
		return nil
	case errors.Is(err, service.ErrAlreadyResolved):
		b.client.Acknowledge(cb.ID, "Already recorded")
		return nil
	case err != nil:
		b.client.Acknowledge(cb.ID, "Something went wrong")
		return err
	}

	b.client.Acknowledge(cb.ID, confirmation(action, b.cfg.Reminders.SnoozeMinutes))
	return b.client.SendText(chatID, confirmation(action, b.cfg.Reminders.SnoozeMinutes))
}

func (b *Bot) sendReport(ctx context.Context, chatID string, now time.Time) error {
	start, end := weekRange(now)
	report, err := b.reports.BuildReport(ctx, chatID, start, end)
	if err != nil {
		return err
	}
	return b.client.SendText(chatID, renderReport(report))
}

func (b *Bot) sendSummary(ctx context.Context, chatID string, now time.Time) error {
	start, end := weekRange(now)
	summary, err := b.reports.StatusSummary(ctx, chatID, start, end)
	if err != nil {
		return err
	}
	return b.client.SendText(chatID, renderSummary(summary))
}

func (b *Bot) sendPlan(chatID string, now time.Time) error {
	start := now.Format("2006-01-02")
	end := now.AddDate(0, 0, 6).Format("2006-01-02")
	planned, err := b.planner.Expand(start, end)
	if err != nil {
		return err
	}
	return b.client.SendText(chatID, renderPlan(planned, b.cfg.Catalog))
}

// SendWeeklyReports delivers the aggregated report to every configured
// recipient. A failure for one recipient does not block the others.
func (b *Bot) SendWeeklyReports(ctx context.Context) error {
	now := time.Now().In(b.cfg.Location)
	var errs []error
	for _, user := range b.cfg.Telegram.Users {
		if err := b.sendReport(ctx, user.ChatID, now); err != nil {
			b.logger.Error().Err(err).Str("chat", user.ChatID).Msg("weekly report")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *Bot) isRecipient(chatID string) bool {
	for _, user := range b.cfg.Telegram.Users {
		if user.ChatID == chatID {
			return true
		}
	}
	return false
}

func confirmation(action service.Action, snoozeMinutes int) string {
	switch action {
	case service.ActionDone:
		return "Recorded: done ✅"
	case service.ActionSkip:
		return "Recorded: skipped ⏭️"
	case service.ActionSnooze:
		return fmt.Sprintf("Snoozed %d minutes 🕒", snoozeMinutes)
	default:
		return "Recorded"
	}
}

func weekRange(now time.Time) (start, end string) {
	return now.AddDate(0, 0, -7).Format("2006-01-02"), now.Format("2006-01-02")
}
