package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"workout-reminder/internal/model"
	"workout-reminder/internal/repository"
)

// SweeperService forces expired pending tasks into the timeout status. It
// runs on a fixed period and is safe to run concurrently with user actions:
// the underlying transition only applies while a task is still pending, so
// a late sweep never erases a recorded action.
type SweeperService struct {
	repo   *repository.TaskRepository
	logger zerolog.Logger
}

func NewSweeperService(repo *repository.TaskRepository, logger zerolog.Logger) *SweeperService {
	return &SweeperService{repo: repo, logger: logger}
}

// Sweep transitions every pending task whose deadline is at or before now
// to timeout, and returns how many transitions landed.
func (s *SweeperService) Sweep(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.repo.ListPendingExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, task := range expired {
		landed, err := s.repo.SetStatusFromPending(ctx, task.TaskID, model.StatusTimeout, now)
		if err != nil {
			s.logger.Error().Err(err).Str("task", task.TaskID).Msg("sweep transition")
			continue
		}
		if landed {
			swept++
		}
	}
	if swept > 0 {
		s.logger.Info().Int("count", swept).Msg("swept expired tasks")
	}
	return swept, nil
}
