package leave

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swalih2233/hr.employee/internal/domain/ledger"
)

type Store struct {
	DB      *pgxpool.Pool
	Ledgers *ledger.Store
}

func NewStore(db *pgxpool.Pool, ledgers *ledger.Store) *Store {
	return &Store{DB: db, Ledgers: ledgers}
}

const requestColumns = `
  id, person_id, requester_role, leave_type, start_date, end_date,
  subject, description, attachment_name, status,
  working_day_duration, carryforward_used,
  approved_by, rejected_by, approval_date, rejection_date, cancellation_date,
  created_at
`

func scanRequest(row pgx.Row) (LeaveRequest, error) {
	var r LeaveRequest
	err := row.Scan(&r.ID, &r.PersonID, &r.RequesterRole, &r.LeaveType,
		&r.StartDate, &r.EndDate, &r.Subject, &r.Description, &r.AttachmentName,
		&r.Status, &r.WorkingDayDuration, &r.CarryforwardUsed,
		&r.ApprovedBy, &r.RejectedBy,
		&r.ApprovalDate, &r.RejectionDate, &r.CancellationDate, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return LeaveRequest{}, ErrNotFound
	}
	return r, err
}

func (s *Store) GetByID(ctx context.Context, requestID string) (LeaveRequest, error) {
	return scanRequest(s.DB.QueryRow(ctx,
		"SELECT "+requestColumns+" FROM leave_requests WHERE id = $1", requestID))
}

// ListFilter narrows List. Zero values mean "no constraint".
type ListFilter struct {
	PersonID  string
	ManagerID string
	Status    string
}

func (s *Store) List(ctx context.Context, f ListFilter) ([]LeaveRequest, error) {
	query := "SELECT " + requestColumns + " FROM leave_requests WHERE 1=1"
	var args []any

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.PersonID != "" && f.ManagerID != "" {
		p := next(f.PersonID)
		m := next(f.ManagerID)
		query += " AND (person_id = " + p +
			" OR person_id IN (SELECT id FROM people WHERE manager_id = " + m + "))"
	} else if f.PersonID != "" {
		query += " AND person_id = " + next(f.PersonID)
	} else if f.ManagerID != "" {
		query += " AND person_id IN (SELECT id FROM people WHERE manager_id = " + next(f.ManagerID) + ")"
	}
	if f.Status != "" {
		query += " AND status = " + next(f.Status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaveRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

type CreateParams struct {
	PersonID       string
	RequesterRole  string
	LeaveType      string
	StartDate      time.Time
	EndDate        time.Time
	Subject        string
	Description    string
	AttachmentName *string

	// Provisional working-day count shown while pending; recomputed at
	// approval time.
	WorkingDayDuration int
}

func (s *Store) Create(ctx context.Context, p CreateParams) (LeaveRequest, error) {
	return scanRequest(s.DB.QueryRow(ctx, `
    INSERT INTO leave_requests
      (person_id, requester_role, leave_type, start_date, end_date,
       subject, description, attachment_name, working_day_duration)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING `+requestColumns+`
  `, p.PersonID, p.RequesterRole, p.LeaveType, p.StartDate, p.EndDate,
		p.Subject, p.Description, p.AttachmentName, p.WorkingDayDuration))
}

type ApproveParams struct {
	RequestID  string
	ApproverID string

	// Authoritative working-day duration and how many of those days fall
	// inside the carryforward use-by window, both recomputed against the
	// current holiday calendar.
	WorkingDayDuration int
	EligibleDays       int
}

// Approve moves the request to approved and deducts its working days from
// the ledger in one transaction. The ledger row is locked first so a
// concurrent approval for the same person serializes, then the status
// flip is a compare-and-set on pending.
func (s *Store) Approve(ctx context.Context, p ApproveParams) (LeaveRequest, error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return LeaveRequest{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	req, err := scanRequest(tx.QueryRow(ctx,
		"SELECT "+requestColumns+" FROM leave_requests WHERE id = $1 FOR UPDATE", p.RequestID))
	if err != nil {
		return LeaveRequest{}, err
	}
	if req.Status != StatusPending {
		return LeaveRequest{}, ErrInvalidState
	}

	led, err := s.Ledgers.GetByPersonForUpdate(ctx, tx, req.PersonID)
	if err != nil {
		return LeaveRequest{}, err
	}

	carryforwardUsed := 0
	if req.LeaveType == TypeAnnual {
		carryforwardUsed = CarryforwardSplit(p.EligibleDays, led.CarryforwardAvailable())
	}
	if err := led.ApplyApproval(ledger.Kind(req.LeaveType), p.WorkingDayDuration, carryforwardUsed); err != nil {
		return LeaveRequest{}, err
	}
	if err := s.Ledgers.UpdateCountersTx(ctx, tx, led); err != nil {
		return LeaveRequest{}, err
	}

	approved, err := scanRequest(tx.QueryRow(ctx, `
    UPDATE leave_requests SET
      status = 'approved',
      working_day_duration = $2,
      carryforward_used = $3,
      approved_by = $4,
      approval_date = now()
    WHERE id = $1 AND status = 'pending'
    RETURNING `+requestColumns+`
  `, p.RequestID, p.WorkingDayDuration, carryforwardUsed, p.ApproverID))
	if errors.Is(err, ErrNotFound) {
		return LeaveRequest{}, ErrInvalidState
	}
	if err != nil {
		return LeaveRequest{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return LeaveRequest{}, err
	}
	return approved, nil
}

func (s *Store) Reject(ctx context.Context, requestID, actorID string) (LeaveRequest, error) {
	req, err := scanRequest(s.DB.QueryRow(ctx, `
    UPDATE leave_requests SET
      status = 'rejected',
      rejected_by = $2,
      rejection_date = now()
    WHERE id = $1 AND status = 'pending'
    RETURNING `+requestColumns+`
  `, requestID, actorID))
	if errors.Is(err, ErrNotFound) {
		return LeaveRequest{}, s.pendingConflict(ctx, requestID)
	}
	return req, err
}

func (s *Store) Cancel(ctx context.Context, requestID string) (LeaveRequest, error) {
	req, err := scanRequest(s.DB.QueryRow(ctx, `
    UPDATE leave_requests SET
      status = 'cancelled',
      cancellation_date = now()
    WHERE id = $1 AND status = 'pending'
    RETURNING `+requestColumns+`
  `, requestID))
	if errors.Is(err, ErrNotFound) {
		return LeaveRequest{}, s.pendingConflict(ctx, requestID)
	}
	return req, err
}

// pendingConflict tells a missing row apart from a lost compare-and-set.
func (s *Store) pendingConflict(ctx context.Context, requestID string) error {
	var exists bool
	if err := s.DB.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM leave_requests WHERE id = $1)", requestID).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrInvalidState
	}
	return ErrNotFound
}
