package notifications

import "context"

type StoreAPI interface {
	Create(ctx context.Context, personID, kind, title, body string) error
	ListForPerson(ctx context.Context, personID string, limit, offset int) ([]Notification, error)
	CountUnread(ctx context.Context, personID string) (int, error)
	MarkRead(ctx context.Context, personID, notificationID string) error
}
