package notifications

import "time"

type Notification struct {
	ID        string    `json:"id"`
	PersonID  string    `json:"personId"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}
