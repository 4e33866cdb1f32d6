package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("ledger not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const ledgerColumns = `
  id, person_id, annual_allocation, annual_taken,
  medical_allocation, medical_taken,
  carryforward_granted, carryforward_taken, updated_at
`

func scanLedger(row pgx.Row) (Ledger, error) {
	var l Ledger
	err := row.Scan(&l.ID, &l.PersonID, &l.AnnualAllocation, &l.AnnualTaken,
		&l.MedicalAllocation, &l.MedicalTaken,
		&l.CarryforwardGranted, &l.CarryforwardTaken, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Ledger{}, ErrNotFound
	}
	return l, err
}

func (s *Store) GetByPerson(ctx context.Context, personID string) (Ledger, error) {
	return scanLedger(s.DB.QueryRow(ctx,
		"SELECT "+ledgerColumns+" FROM ledgers WHERE person_id = $1", personID))
}

// GetByPersonForUpdate reads the ledger inside tx with a row lock, so a
// concurrent approval or policy run waits instead of clobbering counters.
func (s *Store) GetByPersonForUpdate(ctx context.Context, tx pgx.Tx, personID string) (Ledger, error) {
	return scanLedger(tx.QueryRow(ctx,
		"SELECT "+ledgerColumns+" FROM ledgers WHERE person_id = $1 FOR UPDATE", personID))
}

func (s *Store) ListAll(ctx context.Context) ([]Ledger, error) {
	rows, err := s.DB.Query(ctx,
		"SELECT "+ledgerColumns+" FROM ledgers ORDER BY person_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ledger
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

const updateCountersSQL = `
  UPDATE ledgers SET
    annual_allocation = $2,
    annual_taken = $3,
    medical_allocation = $4,
    medical_taken = $5,
    carryforward_granted = $6,
    carryforward_taken = $7,
    updated_at = now()
  WHERE id = $1
`

// UpdateCountersTx writes the in-memory counters back inside tx. Used by
// approval and the policy jobs so the ledger write commits or rolls back
// with the rest of the unit of work.
func (s *Store) UpdateCountersTx(ctx context.Context, tx pgx.Tx, l Ledger) error {
	tag, err := tx.Exec(ctx, updateCountersSQL,
		l.ID, l.AnnualAllocation, l.AnnualTaken,
		l.MedicalAllocation, l.MedicalTaken,
		l.CarryforwardGranted, l.CarryforwardTaken)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecalculateForPerson rebuilds the taken counters from the approved
// request history in one transaction. The ledger row is locked before the
// history is read, so a concurrent approval either lands in the sum or
// waits for the corrected counters to commit. Returns the ledger as it
// stood before the rebuild alongside the corrected one.
func (s *Store) RecalculateForPerson(ctx context.Context, personID string) (before, after Ledger, err error) {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Ledger{}, Ledger{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	before, err = s.GetByPersonForUpdate(ctx, tx, personID)
	if err != nil {
		return Ledger{}, Ledger{}, err
	}
	approved, err := approvedLeaves(ctx, tx, personID)
	if err != nil {
		return Ledger{}, Ledger{}, err
	}

	after = before
	after.Recalculate(approved)
	if err := s.UpdateCountersTx(ctx, tx, after); err != nil {
		return Ledger{}, Ledger{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Ledger{}, Ledger{}, err
	}
	return before, after, nil
}

// approvedLeaves loads the deduction footprint of every approved request
// for one person. Runs inside the recalculate transaction so the set is
// consistent with the locked ledger row.
func approvedLeaves(ctx context.Context, tx pgx.Tx, personID string) ([]ApprovedLeave, error) {
	rows, err := tx.Query(ctx, `
    SELECT leave_type, working_day_duration, carryforward_used
    FROM leave_requests
    WHERE person_id = $1 AND status = 'approved'
  `, personID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ApprovedLeave
	for rows.Next() {
		var a ApprovedLeave
		if err := rows.Scan(&a.Kind, &a.WorkingDays, &a.CarryforwardUsed); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
