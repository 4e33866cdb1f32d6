package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swalih2233/hr.employee/internal/domain/people"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type Service struct {
	DB        *pgxpool.Pool
	People    *people.Store
	JWTSecret string
	TokenTTL  time.Duration
}

func NewService(db *pgxpool.Pool, peopleStore *people.Store, secret string, ttl time.Duration) *Service {
	return &Service{DB: db, People: peopleStore, JWTSecret: secret, TokenTTL: ttl}
}

type LoginResult struct {
	Token  string        `json:"token"`
	Person people.Person `json:"person"`
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var userID, passwordHash string
	err := s.DB.QueryRow(ctx,
		"SELECT id, password_hash FROM users WHERE email = $1", email).Scan(&userID, &passwordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if CheckPassword(passwordHash, password) != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	person, err := s.People.GetByUserID(ctx, userID)
	if err != nil {
		return LoginResult{}, err
	}

	token, err := GenerateToken(s.JWTSecret, Claims{
		UserID:   userID,
		PersonID: person.ID,
		Role:     person.Role,
	}, s.TokenTTL)
	if err != nil {
		return LoginResult{}, err
	}

	if _, err := s.DB.Exec(ctx,
		"UPDATE users SET last_login_at = now() WHERE id = $1", userID); err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, Person: person}, nil
}
