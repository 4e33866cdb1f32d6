package people

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

var ErrNotFound = errors.New("person not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const personColumns = `
  id, user_id, first_name, last_name, email, role, manager_id,
  department, designation, joined_on, created_at
`

func scanPerson(row pgx.Row) (Person, error) {
	var p Person
	err := row.Scan(&p.ID, &p.UserID, &p.FirstName, &p.LastName, &p.Email,
		&p.Role, &p.ManagerID, &p.Department, &p.Designation, &p.JoinedOn, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Person{}, ErrNotFound
	}
	return p, err
}

func (s *Store) GetByID(ctx context.Context, personID string) (Person, error) {
	return scanPerson(s.DB.QueryRow(ctx,
		"SELECT "+personColumns+" FROM people WHERE id = $1", personID))
}

func (s *Store) GetByUserID(ctx context.Context, userID string) (Person, error) {
	return scanPerson(s.DB.QueryRow(ctx,
		"SELECT "+personColumns+" FROM people WHERE user_id = $1", userID))
}

func (s *Store) List(ctx context.Context) ([]Person, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT "+personColumns+" FROM people ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) ListReports(ctx context.Context, managerID string) ([]Person, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT "+personColumns+" FROM people WHERE manager_id = $1 ORDER BY first_name", managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) ListFounders(ctx context.Context) ([]Person, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT "+personColumns+" FROM people WHERE role = $1", RoleFounder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

type CreateParams struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	Role        string
	ManagerID   *string
	Department  string
	Designation string
	JoinedOn    *time.Time

	AnnualAllocation  int
	MedicalAllocation int
}

// Create inserts the user account, the person row, and its zeroed ledger
// in one transaction. A person never exists without a ledger.
func (s *Store) Create(ctx context.Context, params CreateParams) (Person, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return Person{}, err
	}

	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Person{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userID string
	if err := tx.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, role)
    VALUES ($1, $2, $3)
    RETURNING id
  `, email, string(hash), params.Role).Scan(&userID); err != nil {
		return Person{}, err
	}

	row := tx.QueryRow(ctx, `
    INSERT INTO people (user_id, first_name, last_name, email, role, manager_id, department, designation, joined_on)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    RETURNING `+personColumns+`
  `, userID, params.FirstName, params.LastName, email, params.Role,
		params.ManagerID, params.Department, params.Designation, params.JoinedOn)
	person, err := scanPerson(row)
	if err != nil {
		return Person{}, err
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO ledgers (person_id, annual_allocation, medical_allocation)
    VALUES ($1, $2, $3)
  `, person.ID, params.AnnualAllocation, params.MedicalAllocation); err != nil {
		return Person{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Person{}, err
	}
	return person, nil
}
