package notifications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("notification not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, personID, kind, title, body string) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (person_id, kind, title, body)
    VALUES ($1,$2,$3,$4)
  `, personID, kind, title, body)
	return err
}

func (s *Store) ListForPerson(ctx context.Context, personID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, person_id, kind, title, body, is_read, created_at
    FROM notifications
    WHERE person_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, personID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.PersonID, &n.Kind, &n.Title, &n.Body, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *Store) CountUnread(ctx context.Context, personID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx,
		"SELECT COUNT(1) FROM notifications WHERE person_id = $1 AND NOT is_read", personID).Scan(&count)
	return count, err
}

func (s *Store) MarkRead(ctx context.Context, personID, notificationID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET is_read = true
    WHERE id = $1 AND person_id = $2
  `, notificationID, personID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
