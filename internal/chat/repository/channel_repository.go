package repository

import (
	"context"
	"errors"
	"fmt"

	"chat_gateway_service/internal/chat/domain"
	"chat_gateway_service/pkg"

	"gorm.io/gorm"
)

// ChannelRepository definition channel CRUD, also serves as the MembershipStore
type ChannelRepository interface {
	MembershipStore

	AutoMigrate() error
	Create(ctx context.Context, ch *domain.Channel, memberIDs []int64) error
	GetByID(ctx context.Context, channelID int64) (*domain.Channel, error)
	// Update save name and category, replace members when memberIDs is not nil.
	// Returns the user ids that were removed.
	Update(ctx context.Context, ch *domain.Channel, memberIDs []int64) ([]int64, error)
	Delete(ctx context.Context, channelID int64) error
	ListForUser(ctx context.Context, userID int64) ([]domain.Channel, error)
}

type channelRepository struct {
	db *gorm.DB
}

// NewChannelRepository create ChannelRepository
func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

// AutoMigrate users, channels and the membership join table
func (r *channelRepository) AutoMigrate() error {
	if err := r.db.SetupJoinTable(&domain.Channel{}, "Members", &domain.ChannelMember{}); err != nil {
		return fmt.Errorf("setup join table: %w", err)
	}
	return r.db.AutoMigrate(&domain.User{}, &domain.Channel{}, &domain.ChannelMember{})
}

func (r *channelRepository) ChannelExists(ctx context.Context, channelID int64) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Channel{}).Where("id = ?", channelID).Count(&n).Error; err != nil {
		return false, fmt.Errorf("channel exists: %w", err)
	}
	return n > 0, nil
}

func (r *channelRepository) IsMember(ctx context.Context, userID, channelID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.ChannelMember{}).
		Where("channel_id = ? AND user_id = ?", channelID, userID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("is member: %w", err)
	}
	return n > 0, nil
}

func (r *channelRepository) ListMembers(ctx context.Context, channelID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&domain.ChannelMember{}).
		Where("channel_id = ?", channelID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return ids, nil
}

func (r *channelRepository) Create(ctx context.Context, ch *domain.Channel, memberIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := unique(append(memberIDs, ch.CreatorID))
		if err := checkUsers(tx, ids); err != nil {
			return err
		}
		if err := tx.Omit("Members").Create(ch).Error; err != nil {
			return fmt.Errorf("create channel: %w", err)
		}
		if err := insertMembers(tx, ch.ID, ids); err != nil {
			return err
		}
		ch.MemberIDs = ids
		return nil
	})
}

func (r *channelRepository) GetByID(ctx context.Context, channelID int64) (*domain.Channel, error) {
	var ch domain.Channel
	err := r.db.WithContext(ctx).Preload("Members").First(&ch, channelID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}
	ch.FillMemberIDs()
	return &ch, nil
}

func (r *channelRepository) Update(ctx context.Context, ch *domain.Channel, memberIDs []int64) ([]int64, error) {
	var removed []int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&domain.Channel{}).Where("id = ?", ch.ID).
			Updates(map[string]any{"name": ch.Name, "category": ch.Category}).Error
		if err != nil {
			return fmt.Errorf("update channel: %w", err)
		}
		if memberIDs == nil {
			return nil
		}

		next := unique(append(memberIDs, ch.CreatorID))
		if err := checkUsers(tx, next); err != nil {
			return err
		}
		var current []int64
		if err := tx.Model(&domain.ChannelMember{}).Where("channel_id = ?", ch.ID).Pluck("user_id", &current).Error; err != nil {
			return fmt.Errorf("load members: %w", err)
		}
		removed = pkg.Without(current, next...)
		if err := tx.Where("channel_id = ?", ch.ID).Delete(&domain.ChannelMember{}).Error; err != nil {
			return fmt.Errorf("clear members: %w", err)
		}
		return insertMembers(tx, ch.ID, next)
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *channelRepository) Delete(ctx context.Context, channelID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("channel_id = ?", channelID).Delete(&domain.ChannelMember{}).Error; err != nil {
			return fmt.Errorf("delete members: %w", err)
		}
		res := tx.Delete(&domain.Channel{}, channelID)
		if res.Error != nil {
			return fmt.Errorf("delete channel: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// ListForUser channels userID belongs to, newest first
func (r *channelRepository) ListForUser(ctx context.Context, userID int64) ([]domain.Channel, error) {
	var chs []domain.Channel
	err := r.db.WithContext(ctx).
		Joins("JOIN channel_members cm ON cm.channel_id = channels.id").
		Where("cm.user_id = ?", userID).
		Preload("Members").
		Order("channels.created_at DESC").
		Find(&chs).Error
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	for i := range chs {
		chs[i].FillMemberIDs()
	}
	return chs, nil
}

func insertMembers(tx *gorm.DB, channelID int64, ids []int64) error {
	rows := make([]domain.ChannelMember, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, domain.ChannelMember{ChannelID: channelID, UserID: id})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return fmt.Errorf("insert members: %w", err)
	}
	return nil
}

// checkUsers every id must be a known user
func checkUsers(tx *gorm.DB, ids []int64) error {
	var n int64
	if err := tx.Model(&domain.User{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return fmt.Errorf("check users: %w", err)
	}
	if int(n) != len(ids) {
		return fmt.Errorf("%w: unknown member", domain.ErrNotFound)
	}
	return nil
}

func unique(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !pkg.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
