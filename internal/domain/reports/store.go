package reports

import (
	"context"
	"time"

	"github.com/swalih2233/hr.employee/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

// BalanceRow joins a person with their ledger counters for reporting.
type BalanceRow struct {
	PersonID              string `json:"personId"`
	Name                  string `json:"name"`
	Email                 string `json:"email"`
	Role                  string `json:"role"`
	AnnualAllocation      int    `json:"annualAllocation"`
	AnnualTaken           int    `json:"annualTaken"`
	AnnualRemaining       int    `json:"annualRemaining"`
	MedicalAllocation     int    `json:"medicalAllocation"`
	MedicalTaken          int    `json:"medicalTaken"`
	MedicalRemaining      int    `json:"medicalRemaining"`
	CarryforwardGranted   int    `json:"carryforwardGranted"`
	CarryforwardTaken     int    `json:"carryforwardTaken"`
	CarryforwardAvailable int    `json:"carryforwardAvailable"`
}

func (s *Store) BalanceRows(ctx context.Context) ([]BalanceRow, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT p.id, p.first_name || ' ' || p.last_name, p.email, p.role,
           l.annual_allocation, l.annual_taken,
           l.medical_allocation, l.medical_taken,
           l.carryforward_granted, l.carryforward_taken
    FROM ledgers l
    JOIN people p ON p.id = l.person_id
    ORDER BY p.first_name, p.last_name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BalanceRow
	for rows.Next() {
		var r BalanceRow
		if err := rows.Scan(&r.PersonID, &r.Name, &r.Email, &r.Role,
			&r.AnnualAllocation, &r.AnnualTaken,
			&r.MedicalAllocation, &r.MedicalTaken,
			&r.CarryforwardGranted, &r.CarryforwardTaken); err != nil {
			return nil, err
		}
		r.AnnualRemaining = r.AnnualAllocation - r.AnnualTaken
		r.MedicalRemaining = r.MedicalAllocation - r.MedicalTaken
		if r.CarryforwardAvailable = r.CarryforwardGranted - r.CarryforwardTaken; r.CarryforwardAvailable < 0 {
			r.CarryforwardAvailable = 0
		}
		out = append(out, r)
	}
	return out, nil
}

// UsageRow is the approved working-day total for one leave type in one
// calendar year.
type UsageRow struct {
	LeaveType        string `json:"leaveType"`
	RequestCount     int    `json:"requestCount"`
	TotalWorkingDays int    `json:"totalWorkingDays"`
	CarryforwardDays int    `json:"carryforwardDays"`
}

func (s *Store) UsageRows(ctx context.Context, year int) ([]UsageRow, error) {
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	rows, err := s.DB.Query(ctx, `
    SELECT leave_type, COUNT(1),
           COALESCE(SUM(working_day_duration), 0),
           COALESCE(SUM(carryforward_used), 0)
    FROM leave_requests
    WHERE status = 'approved'
      AND approval_date >= $1 AND approval_date < $2
    GROUP BY leave_type
    ORDER BY leave_type
  `, yearStart, yearStart.AddDate(1, 0, 0))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UsageRow
	for rows.Next() {
		var r UsageRow
		if err := rows.Scan(&r.LeaveType, &r.RequestCount, &r.TotalWorkingDays, &r.CarryforwardDays); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// DashboardCounts feeds the landing page.
type DashboardCounts struct {
	Headcount        int `json:"headcount"`
	PendingRequests  int `json:"pendingRequests"`
	ApprovedThisYear int `json:"approvedThisYear"`
	UpcomingHolidays int `json:"upcomingHolidays"`
}

func (s *Store) Dashboard(ctx context.Context, now time.Time) (DashboardCounts, error) {
	var c DashboardCounts
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM people").Scan(&c.Headcount); err != nil {
		return c, err
	}
	if err := s.DB.QueryRow(ctx,
		"SELECT COUNT(1) FROM leave_requests WHERE status = 'pending'").Scan(&c.PendingRequests); err != nil {
		return c, err
	}
	if err := s.DB.QueryRow(ctx,
		"SELECT COUNT(1) FROM leave_requests WHERE status = 'approved' AND approval_date >= $1",
		yearStart).Scan(&c.ApprovedThisYear); err != nil {
		return c, err
	}
	if err := s.DB.QueryRow(ctx,
		"SELECT COUNT(1) FROM holidays WHERE date >= $1", now).Scan(&c.UpcomingHolidays); err != nil {
		return c, err
	}
	return c, nil
}
