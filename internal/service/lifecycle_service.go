package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"workout-reminder/internal/config"
	"workout-reminder/internal/model"
	"workout-reminder/internal/repository"
)

// Action kinds a recipient can take on a reminder.
type Action string

const (
	ActionDone   Action = "done"
	ActionSkip   Action = "skip"
	ActionSnooze Action = "snooze"
)

var (
	// ErrAlreadyResolved means some other transition (user action or sweep)
	// landed first. Callers treat it as a benign lost race.
	ErrAlreadyResolved = errors.New("task already resolved")

	// ErrUnknownSlot means the slot id has no catalog entry.
	ErrUnknownSlot = errors.New("unknown slot")

	// ErrMalformedDescriptor means a directed-set descriptor did not parse.
	ErrMalformedDescriptor = errors.New("malformed descriptor")
)

// Notifier delivers a reminder with its action menu to a recipient chat.
// Delivery failures surface to the lifecycle caller but never roll back the
// task row that already committed.
type Notifier interface {
	SendReminder(ctx context.Context, chatID, timeStr string, slot config.Slot, taskID string) error
}

// LifecycleService owns the task state machine: creation, action-driven
// transitions and snooze chaining.
type LifecycleService struct {
	repo       *repository.TaskRepository
	catalog    config.Catalog
	notifier   Notifier
	recipients []config.Recipient
	timeout    time.Duration
	snooze     time.Duration
	logger     zerolog.Logger
}

func NewLifecycleService(repo *repository.TaskRepository, catalog config.Catalog, notifier Notifier, recipients []config.Recipient, timeout, snooze time.Duration, logger zerolog.Logger) *LifecycleService {
	return &LifecycleService{
		repo:       repo,
		catalog:    catalog,
		notifier:   notifier,
		recipients: recipients,
		timeout:    timeout,
		snooze:     snooze,
		logger:     logger,
	}
}

// CreateTask records a pending task for today's date at the given time/slot
// and notifies the recipient. The returned id refers to a committed row even
// when the notification fails.
func (s *LifecycleService) CreateTask(ctx context.Context, chatID, timeStr, slotID string, now time.Time) (string, error) {
	slot, ok := s.catalog.Lookup(slotID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownSlot, slotID)
	}

	taskID, err := s.repo.CreatePending(ctx, chatID, now.Format(dateLayout), timeStr, slotID, now, s.timeout)
	if err != nil {
		return "", err
	}

	s.logger.Info().Str("task", taskID).Str("chat", chatID).
		Str("time", timeStr).Str("slot", slotID).Msg("task created")

	if err := s.notifier.SendReminder(ctx, chatID, timeStr, slot, taskID); err != nil {
		return taskID, fmt.Errorf("notify reminder: %w", err)
	}
	return taskID, nil
}

// DispatchDueReminders creates one task per configured recipient for the
// given rotation occurrence. A failure for one recipient does not block the
// others.
func (s *LifecycleService) DispatchDueReminders(ctx context.Context, timeStr, slotID string, now time.Time) error {
	var errs []error
	for _, user := range s.recipients {
		if _, err := s.CreateTask(ctx, user.ChatID, timeStr, slotID, now); err != nil {
			s.logger.Error().Err(err).Str("chat", user.ChatID).Msg("dispatch reminder")
			errs = append(errs, fmt.Errorf("chat %s: %w", user.ChatID, err))
		}
	}
	return errors.Join(errs...)
}

// Act applies a recipient action to a task. Done and skip close the task;
// snooze closes it and chains a fresh pending task for the same slot at
// now plus the snooze window. Acting on an unknown id returns
// repository.ErrTaskNotFound; acting on an already-terminal task returns
// ErrAlreadyResolved without touching the row.
func (s *LifecycleService) Act(ctx context.Context, action Action, taskID, chatID string, now time.Time) error {
	var status string
	switch action {
	case ActionDone:
		status = model.StatusDone
	case ActionSkip:
		status = model.StatusSkip
	case ActionSnooze:
		status = model.StatusSnoozed
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	landed, err := s.repo.SetStatusFromPending(ctx, taskID, status, now)
	if err != nil {
		return err
	}
	if !landed {
		return ErrAlreadyResolved
	}

	s.logger.Info().Str("task", taskID).Str("status", status).Msg("task transitioned")

	if action == ActionSnooze {
		slotID, err := s.repo.GetSlotID(ctx, taskID)
		if err != nil {
			return err
		}
		nextTime := now.Add(s.snooze).Format("15:04")
		if _, err := s.CreateTask(ctx, chatID, nextTime, slotID, now); err != nil {
			return fmt.Errorf("chain snoozed task: %w", err)
		}
	}
	return nil
}

// DirectedSet applies an explicit "date time slot status" descriptor via
// natural-key upsert, used to retroactively mark a slot that was never
// reminded. Malformed descriptors fail without touching storage.
func (s *LifecycleService) DirectedSet(ctx context.Context, chatID, descriptor string, now time.Time) (string, error) {
	fields := strings.Fields(descriptor)
	if len(fields) != 4 {
		return "", fmt.Errorf("%w: want \"date time slot status\", got %d fields", ErrMalformedDescriptor, len(fields))
	}
	date, timeStr, slotID, status := fields[0], fields[1], fields[2], fields[3]

	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", fmt.Errorf("%w: bad date %q", ErrMalformedDescriptor, date)
	}
	if _, err := time.Parse("15:04", timeStr); err != nil {
		return "", fmt.Errorf("%w: bad time %q", ErrMalformedDescriptor, timeStr)
	}
	if !model.IsValidStatus(status) {
		return "", fmt.Errorf("%w: bad status %q", ErrMalformedDescriptor, status)
	}

	taskID, err := s.repo.Upsert(ctx, chatID, date, timeStr, slotID, status, now, s.timeout)
	if err != nil {
		return "", err
	}
	s.logger.Info().Str("task", taskID).Str("status", status).Msg("directed set")
	return taskID, nil
}
