package domain

import "time"

// MaxContentLength message content upper bound in characters
const MaxContentLength = 1000

// Message definition persisted chat message
type Message struct {
	ID        int64     `gorm:"primaryKey" bson:"_id" json:"id"`
	ChannelID int64     `gorm:"index;not null" bson:"channel_id" json:"channel_id"`
	SenderID  int64     `gorm:"index;not null" bson:"sender_id" json:"sender"`
	Content   string    `gorm:"size:1000;not null" bson:"content" json:"content"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	IsRead    bool      `gorm:"not null;default:false" bson:"is_read" json:"is_read"`
}

// ValidContent check content is non empty and within MaxContentLength
func ValidContent(content string) bool {
	n := len([]rune(content))
	return n > 0 && n <= MaxContentLength
}
