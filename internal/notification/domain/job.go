package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// EmailSubject subject line of every notification mail
const EmailSubject = "You have a notification"

// Job one notification for one recipient
type Job struct {
	RecipientID int64     `json:"recipient_id"`
	SenderID    int64     `json:"sender_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}

// Encode job to queue payload
func (j Job) Encode() ([]byte, error) {
	return json.Marshal(j)
}

// DecodeJob queue payload to job
func DecodeJob(b []byte) (Job, error) {
	var j Job
	if err := json.Unmarshal(b, &j); err != nil {
		return Job{}, fmt.Errorf("decode notification job: %w", err)
	}
	if j.RecipientID == 0 || j.SenderID == 0 {
		return Job{}, fmt.Errorf("decode notification job: missing recipient or sender")
	}
	return j, nil
}

// EmailBody mail text for a message sent by senderName
func EmailBody(content, senderName string) string {
	return fmt.Sprintf("A message '%s' sent by %s", content, senderName)
}
