package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskbot/internal/model"
	"taskbot/internal/repository"
)

// TaskStore is the persistence contract the task commands rely on.
type TaskStore interface {
	Create(ctx context.Context, input repository.TaskInput) (uint, error)
	FindByID(ctx context.Context, id uint) (*model.Task, error)
	ListOpen(ctx context.Context) ([]model.Task, error)
	SetDone(ctx context.Context, id uint, done bool) error
}

// UserStore is the persistence contract for registered users.
type UserStore interface {
	Register(ctx context.Context, user model.User) (*model.User, bool, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

const timeLayout = "2006-01-02 15:04"

// TaskService wraps task-related business logic shared by commands and reminders.
type TaskService struct {
	store TaskStore
	loc   *time.Location
}

func NewTaskService(store TaskStore, loc *time.Location) *TaskService {
	if loc == nil {
		loc = time.Local
	}
	return &TaskService{store: store, loc: loc}
}

func (s *TaskService) CreateTask(ctx context.Context, title, description string) (uint, error) {
	return s.store.Create(ctx, repository.TaskInput{Title: title, Description: description})
}

func (s *TaskService) GetTask(ctx context.Context, id uint) (*model.Task, error) {
	return s.store.FindByID(ctx, id)
}

func (s *TaskService) SetDone(ctx context.Context, id uint, done bool) error {
	return s.store.SetDone(ctx, id, done)
}

// OpenSummary lists open tasks as a header line followed by one line per task.
func (s *TaskService) OpenSummary(ctx context.Context, header string) ([]string, error) {
	tasks, err := s.store.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, fmt.Sprintf(header, len(tasks)))
	for _, task := range tasks {
		lines = append(lines, task.String())
	}
	return lines, nil
}

// Details renders the detail block shown under a task's summary line.
func (s *TaskService) Details(task *model.Task) string {
	end := "-"
	if task.EndTime != nil {
		end = task.EndTime.In(s.loc).Format(timeLayout)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Description: %s\n", task.Description)
	fmt.Fprintf(&b, "Done: %t\n", task.Done)
	fmt.Fprintf(&b, "Start time: %s\n", task.StartTime.In(s.loc).Format(timeLayout))
	fmt.Fprintf(&b, "End time: %s", end)
	return b.String()
}
