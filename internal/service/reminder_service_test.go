package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskbot/internal/model"
	"taskbot/internal/repository"
)

type MockDeliverer struct {
	mock.Mock
}

func (m *MockDeliverer) Deliver(ctx context.Context, reply Reply) error {
	args := m.Called(ctx, reply)
	return args.Error(0)
}

func registerOperator(t *testing.T, env *testEnv) {
	t.Helper()
	_, _, err := env.userRepo.Register(ctx, model.User{Username: operator, TelegramID: 1, ChatID: 500})
	require.NoError(t, err)
}

func TestReminder_ZeroTasksStillSendsHeader(t *testing.T) {
	env := newTestEnv(t)
	registerOperator(t, env)

	out := new(MockDeliverer)
	out.On("Deliver", mock.Anything, Reply{ChatID: 500, Parts: []Part{{Text: "Reminder: 0 open tasks."}}}).Return(nil).Once()

	svc := NewReminderService(env.tasks, env.userRepo, operator, out, zerolog.Nop(), env.metrics)
	svc.Fire(ctx)

	out.AssertExpectations(t)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ReminderFiringsTotal.WithLabelValues("sent")))
}

func TestReminder_ListsOpenTasks(t *testing.T) {
	env := newTestEnv(t)
	registerOperator(t, env)
	for _, title := range []string{"a", "b", "c"} {
		_, err := env.taskRepo.Create(ctx, repository.TaskInput{Title: title})
		require.NoError(t, err)
	}
	require.NoError(t, env.taskRepo.SetDone(ctx, 2, true))

	svc := NewReminderService(env.tasks, env.userRepo, operator, new(MockDeliverer), zerolog.Nop(), nil)
	reply, err := svc.Digest(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(500), reply.ChatID)
	assert.Equal(t, []string{"Reminder: 2 open tasks.", "1 - a", "3 - c"}, texts(reply))
}

func TestReminder_MissingOperatorSkips(t *testing.T) {
	env := newTestEnv(t)
	out := new(MockDeliverer)

	svc := NewReminderService(env.tasks, env.userRepo, operator, out, zerolog.Nop(), env.metrics)
	require.NotPanics(t, func() { svc.Fire(ctx) })

	_, err := svc.Digest(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	out.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ReminderFiringsTotal.WithLabelValues("no_operator")))
}

func TestReminder_SendFailureIsContained(t *testing.T) {
	env := newTestEnv(t)
	registerOperator(t, env)

	out := new(MockDeliverer)
	out.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("network down")).Twice()

	svc := NewReminderService(env.tasks, env.userRepo, operator, out, zerolog.Nop(), env.metrics)
	svc.Fire(ctx)
	svc.Fire(ctx)

	out.AssertExpectations(t)
	assert.Equal(t, 2.0, testutil.ToFloat64(env.metrics.ReminderFiringsTotal.WithLabelValues("failed")))
}

func TestReminder_StoreUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.closeDB(t)
	out := new(MockDeliverer)

	svc := NewReminderService(env.tasks, env.userRepo, operator, out, zerolog.Nop(), env.metrics)
	require.NotPanics(t, func() { svc.Fire(ctx) })

	out.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.ReminderFiringsTotal.WithLabelValues("failed")))
}
