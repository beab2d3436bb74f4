package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chat_gateway_service/internal/chat/domain"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository create postgres MessageStore
func NewMessageRepository(db *gorm.DB) MessageStore {
	return &messageRepository{db: db}
}

// MigrateMessages create the messages table
func MigrateMessages(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Message{})
}

func (r *messageRepository) CreateMessage(ctx context.Context, channelID, senderID int64, content string) (*domain.Message, error) {
	m := &domain.Message{
		ChannelID: channelID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

// MarkMessageRead conditional update, 只有實際由 false 改成 true 的那一次回傳 true
func (r *messageRepository) MarkMessageRead(ctx context.Context, messageID int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Message{}).
		Where("id = ? AND is_read = ?", messageID, false).
		Update("is_read", true)
	if res.Error != nil {
		return false, fmt.Errorf("mark message %d read: %w", messageID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *messageRepository) GetMessage(ctx context.Context, messageID int64) (*domain.Message, error) {
	var m domain.Message
	err := r.db.WithContext(ctx).First(&m, messageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &m, nil
}

func (r *messageRepository) ListBySender(ctx context.Context, senderID int64) ([]domain.Message, error) {
	var ms []domain.Message
	if err := r.db.WithContext(ctx).Where("sender_id = ?", senderID).Order("id").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list messages by sender: %w", err)
	}
	return ms, nil
}

func (r *messageRepository) ListByChannel(ctx context.Context, channelID int64) ([]domain.Message, error) {
	var ms []domain.Message
	if err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).Order("id").Find(&ms).Error; err != nil {
		return nil, fmt.Errorf("list messages by channel: %w", err)
	}
	return ms, nil
}

func (r *messageRepository) UpdateContent(ctx context.Context, messageID int64, content string) error {
	res := r.db.WithContext(ctx).Model(&domain.Message{}).Where("id = ?", messageID).Update("content", content)
	if res.Error != nil {
		return fmt.Errorf("update message: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, messageID int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Message{}, messageID)
	if res.Error != nil {
		return fmt.Errorf("delete message: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *messageRepository) DeleteByChannel(ctx context.Context, channelID int64) error {
	if err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).Delete(&domain.Message{}).Error; err != nil {
		return fmt.Errorf("delete channel messages: %w", err)
	}
	return nil
}
