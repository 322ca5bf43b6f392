package domain

import "time"

type Notification struct {
	ID         int64             `json:"id"`
	UserID     string            `json:"userId"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"isRead"`
	Attributes map[string]string `json:"attributes"`
	CreatedAt  time.Time         `json:"createdAt"`
}
