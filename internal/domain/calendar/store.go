package calendar

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListHolidays(ctx context.Context) ([]Holiday, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, title, date, created_at
    FROM holidays
    ORDER BY date
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Title, &h.Date, &h.CreatedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, nil
}

func (s *Store) CreateHoliday(ctx context.Context, title string, date time.Time) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO holidays (title, date)
    VALUES ($1, $2)
    ON CONFLICT (date) DO UPDATE SET title = EXCLUDED.title
    RETURNING id
  `, title, DateOnly(date)).Scan(&id)
	return id, err
}

func (s *Store) DeleteHoliday(ctx context.Context, holidayID string) error {
	_, err := s.DB.Exec(ctx, "DELETE FROM holidays WHERE id = $1", holidayID)
	return err
}

// HolidaysInRange loads a holiday snapshot covering [start, end] for the
// pure working-day functions.
func (s *Store) HolidaysInRange(ctx context.Context, start, end time.Time) (HolidaySet, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT date
    FROM holidays
    WHERE date BETWEEN $1 AND $2
  `, DateOnly(start), DateOnly(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return NewHolidaySet(dates), nil
}
