package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskbot/internal/model"
)

// UserRepository handles registered chat users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Register stores user unless a row with the same username already exists,
// in which case the existing row is returned untouched and created is false.
func (r *UserRepository) Register(ctx context.Context, user model.User) (*model.User, bool, error) {
	if user.Username == "" {
		return nil, false, fmt.Errorf("register user: %w: empty username", ErrValidation)
	}

	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.User
		err := tx.Where("username = ?", user.Username).First(&existing).Error
		switch {
		case err == nil:
			user = existing
			return nil
		case err == gorm.ErrRecordNotFound:
			user.ID = 0
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			created = true
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, false, classify("register user", err)
	}
	return &user, created, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, classify(fmt.Sprintf("find user %q", username), err)
	}
	return &user, nil
}

func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, classify("count users", err)
	}
	return count > 0, nil
}
