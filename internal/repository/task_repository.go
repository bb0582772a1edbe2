package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"taskbot/internal/model"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string `validate:"required,max=256"`
	Description string `validate:"max=4000"`
	StartTime   *time.Time
	EndTime     *time.Time
}

// TaskUpdate carries the fields to change; nil fields are left untouched.
type TaskUpdate struct {
	Title       *string
	Description *string
	Done        *bool
	StartTime   *time.Time
	EndTime     *time.Time
}

// TaskRepository handles CRUD for tasks. Every method runs in its own transaction.
type TaskRepository struct {
	db       *gorm.DB
	validate *validator.Validate
	now      func() time.Time
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db, validate: validator.New(), now: time.Now}
}

// Create validates input and inserts a task, returning its id.
func (r *TaskRepository) Create(ctx context.Context, input TaskInput) (uint, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := r.validate.Struct(input); err != nil {
		return 0, fmt.Errorf("create task: %w: %v", ErrValidation, err)
	}

	start := r.now()
	if input.StartTime != nil {
		start = *input.StartTime
	}
	task := model.Task{
		Title:       input.Title,
		Description: input.Description,
		StartTime:   start,
		EndTime:     input.EndTime,
	}
	if err := r.db.WithContext(ctx).Create(&task).Error; err != nil {
		return 0, classify("create task", err)
	}
	return task.ID, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, classify(fmt.Sprintf("find task %d", id), err)
	}
	return &task, nil
}

// ListAll returns every task ordered by id.
func (r *TaskRepository) ListAll(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, classify("list tasks", err)
	}
	return tasks, nil
}

// ListOpen returns tasks that are not done, ordered by id.
func (r *TaskRepository) ListOpen(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("done = ?", false).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, classify("list open tasks", err)
	}
	return tasks, nil
}

// SetDone flips only the done flag. Repeating the call is a no-op.
func (r *TaskRepository) SetDone(ctx context.Context, id uint, done bool) error {
	return r.Update(ctx, id, TaskUpdate{Done: &done})
}

// Update applies the non-nil fields of upd to task id.
func (r *TaskRepository) Update(ctx context.Context, id uint, upd TaskUpdate) error {
	updates := map[string]interface{}{}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return fmt.Errorf("update task %d: %w: empty title", id, ErrValidation)
		}
		updates["title"] = title
	}
	if upd.Description != nil {
		updates["description"] = *upd.Description
	}
	if upd.Done != nil {
		updates["done"] = *upd.Done
	}
	if upd.StartTime != nil {
		updates["start_time"] = *upd.StartTime
	}
	if upd.EndTime != nil {
		updates["end_time"] = *upd.EndTime
	}

	op := fmt.Sprintf("update task %d", id)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.Select("id").First(&task, id).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&task).Updates(updates).Error
	})
	return classify(op, err)
}

// Delete removes a task. Ids are never handed out again.
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Task{}, id)
	if res.Error != nil {
		return classify(fmt.Sprintf("delete task %d", id), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete task %d: %w", id, ErrNotFound)
	}
	return nil
}
