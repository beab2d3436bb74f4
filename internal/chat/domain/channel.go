package domain

import "time"

// ChannelCategory definition channel visibility
type ChannelCategory string

const (
	// CategoryPublic anyone can find the channel
	CategoryPublic ChannelCategory = "Public"
	// CategoryPrivate default, hidden from non members
	CategoryPrivate ChannelCategory = "Private"
)

// Valid report whether c is a known category
func (c ChannelCategory) Valid() bool {
	return c == CategoryPublic || c == CategoryPrivate
}

// User definition chat user, owned by the membership store
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"size:254" json:"email"`
	Password     string    `gorm:"not null" json:"-"`
	PhoneNumber  string    `gorm:"size:11" json:"phone_number"`
	IsEmailNotif bool      `gorm:"not null;default:false" json:"is_email_notif"`
	IsPushNotif  bool      `gorm:"not null;default:false" json:"is_push_notif"`
	CreatedAt    time.Time `json:"created_at"`
}

// Channel definition group chat scope
type Channel struct {
	ID        int64           `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	CreatorID int64           `gorm:"not null;index" json:"creator"`
	Category  ChannelCategory `gorm:"size:20;not null;default:Private" json:"category"`
	Members   []User          `gorm:"many2many:channel_members;" json:"-"`

	// MemberIDs 對外輸出用, 不落地
	MemberIDs []int64   `gorm:"-" json:"member"`
	Messages  []Message `gorm:"-" json:"messages,omitempty"`
}

// FillMemberIDs copy Members into MemberIDs
func (c *Channel) FillMemberIDs() {
	c.MemberIDs = make([]int64, 0, len(c.Members))
	for _, m := range c.Members {
		c.MemberIDs = append(c.MemberIDs, m.ID)
	}
}

// ChannelMember join row of Channel.Members
type ChannelMember struct {
	ChannelID int64 `gorm:"primaryKey"`
	UserID    int64 `gorm:"primaryKey;index"`
}

// TableName gorm table name
func (ChannelMember) TableName() string {
	return "channel_members"
}

// AuthToken definition opaque bearer credential, one per user
type AuthToken struct {
	Key       string
	UserID    int64
	CreatedAt time.Time
}
