package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskbot/internal/auth"
	"taskbot/internal/metrics"
	"taskbot/internal/repository"
)

const operator = "owner"

type testEnv struct {
	db         *gorm.DB
	taskRepo   *repository.TaskRepository
	userRepo   *repository.UserRepository
	tasks      *TaskService
	dispatcher *Dispatcher
	metrics    *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	env := &testEnv{
		db:       db,
		taskRepo: repository.NewTaskRepository(db),
		userRepo: repository.NewUserRepository(db),
		metrics:  metrics.New(),
	}
	env.tasks = NewTaskService(env.taskRepo, time.UTC)
	env.dispatcher = NewDispatcher(env.tasks, env.userRepo, auth.NewGuard(operator), zerolog.Nop(), env.metrics)
	return env
}

func (e *testEnv) closeDB(t *testing.T) {
	t.Helper()
	sqlDB, err := e.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func fromOperator(text string) Message {
	return Message{Text: text, ChatID: 100, From: Sender{Username: operator, TelegramID: 1}}
}

func texts(r Reply) []string {
	out := make([]string, 0, len(r.Parts))
	for _, p := range r.Parts {
		out = append(out, p.Text)
	}
	return out
}

var ctx = context.Background()
