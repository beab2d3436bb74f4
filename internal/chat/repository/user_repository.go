package repository

import (
	"context"
	"errors"
	"fmt"

	"chat_gateway_service/internal/chat/domain"

	"gorm.io/gorm"
)

// ErrUsernameTaken register with an existing username
var ErrUsernameTaken = errors.New("username already exists")

// UserPreferences notification settings a user may change
type UserPreferences struct {
	PhoneNumber  *string `json:"phone_number"`
	IsEmailNotif *bool   `json:"is_email_notif"`
	IsPushNotif  *bool   `json:"is_push_notif"`
}

// UserRepository definition get user info
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdatePreferences(ctx context.Context, id int64, prefs UserPreferences) (*domain.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository create UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *userRepository) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// UpdatePreferences 只更新有帶值的欄位
func (r *userRepository) UpdatePreferences(ctx context.Context, id int64, prefs UserPreferences) (*domain.User, error) {
	updates := map[string]any{}
	if prefs.PhoneNumber != nil {
		updates["phone_number"] = *prefs.PhoneNumber
	}
	if prefs.IsEmailNotif != nil {
		updates["is_email_notif"] = *prefs.IsEmailNotif
	}
	if prefs.IsPushNotif != nil {
		updates["is_push_notif"] = *prefs.IsPushNotif
	}
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, fmt.Errorf("update preferences: %w", res.Error)
		}
	}
	return r.FindByID(ctx, id)
}
