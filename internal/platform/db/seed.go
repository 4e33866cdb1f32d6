package db

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/swalih2233/hr.employee/internal/domain/people"
	"github.com/swalih2233/hr.employee/internal/platform/config"
)

// Seed is idempotent: it creates the founder account and the default
// holiday calendar only when they are missing.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedFounderEmail == "" || cfg.SeedFounderPassword == "" {
		return nil
	}

	if err := ensureFounder(ctx, pool, cfg); err != nil {
		return err
	}
	return ensureDefaultHolidays(ctx, pool)
}

func ensureFounder(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.SeedFounderEmail))

	var userID string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&userID)
	if err == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SeedFounderPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := pool.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role)
    VALUES ($1, $2, $3)
    RETURNING id
  `, email, string(hash), people.RoleFounder).Scan(&userID); err != nil {
		return err
	}

	var personID string
	if err := pool.QueryRow(ctx, `
    INSERT INTO people (user_id, first_name, email, role, joined_on)
    VALUES ($1, 'Founder', $2, $3, $4)
    RETURNING id
  `, userID, email, people.RoleFounder, time.Now().UTC()).Scan(&personID); err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
    INSERT INTO ledgers (person_id, annual_allocation, medical_allocation)
    VALUES ($1, $2, $3)
  `, personID, cfg.AnnualAllocation, cfg.MedicalAllocation)
	return err
}

func ensureDefaultHolidays(ctx context.Context, pool *pgxpool.Pool) error {
	year := time.Now().UTC().Year()
	defaults := []struct {
		title string
		month time.Month
		day   int
	}{
		{"New Year's Day", time.January, 1},
		{"Christmas Day", time.December, 25},
	}

	for _, h := range defaults {
		date := time.Date(year, h.month, h.day, 0, 0, 0, 0, time.UTC)
		if _, err := pool.Exec(ctx, `
      INSERT INTO holidays (title, date)
      VALUES ($1, $2)
      ON CONFLICT (date) DO NOTHING
    `, h.title, date); err != nil {
			return err
		}
	}
	return nil
}
