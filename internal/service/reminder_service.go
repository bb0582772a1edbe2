package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"

	"taskbot/internal/metrics"
	"taskbot/internal/repository"
)

const headerDigest = "Reminder: %d open tasks."

// Deliverer sends a reply as one contiguous sequence of messages.
type Deliverer interface {
	Deliver(ctx context.Context, reply Reply) error
}

// ReminderService builds and sends the daily digest of open tasks to the operator.
type ReminderService struct {
	tasks    *TaskService
	users    UserStore
	operator string
	out      Deliverer
	log      zerolog.Logger
	metrics  *metrics.Metrics
}

func NewReminderService(tasks *TaskService, users UserStore, operator string, out Deliverer, log zerolog.Logger, m *metrics.Metrics) *ReminderService {
	return &ReminderService{
		tasks:    tasks,
		users:    users,
		operator: operator,
		out:      out,
		log:      log.With().Str("component", "reminder").Logger(),
		metrics:  m,
	}
}

// Digest builds the reminder addressed to the operator's chat.
// It returns repository.ErrNotFound when the operator never ran /start.
func (s *ReminderService) Digest(ctx context.Context) (Reply, error) {
	lines, err := s.tasks.OpenSummary(ctx, headerDigest)
	if err != nil {
		return Reply{}, err
	}
	user, err := s.users.FindByUsername(ctx, s.operator)
	if err != nil {
		return Reply{}, fmt.Errorf("operator %q: %w", s.operator, err)
	}
	return textReply(user.ChatID, lines...), nil
}

// Fire runs one firing. Failures are logged, never returned, so the
// schedule keeps going.
func (s *ReminderService) Fire(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("reminder panicked")
			s.metrics.Firing("failed")
		}
	}()

	s.log.Info().Msg("running scheduled reminder")

	reply, err := s.Digest(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.log.Warn().Err(err).Msg("operator is not registered, skipping reminder")
		s.metrics.Firing("no_operator")
		return
	case err != nil:
		s.log.Error().Err(err).Msg("build reminder")
		s.metrics.Firing("failed")
		return
	}

	if err := s.out.Deliver(ctx, reply); err != nil {
		s.log.Error().Err(err).Int64("chat_id", reply.ChatID).Msg("send reminder")
		s.metrics.Firing("failed")
		return
	}
	s.log.Info().Int("messages", len(reply.Parts)).Msg("reminder sent")
	s.metrics.Firing("sent")
}
