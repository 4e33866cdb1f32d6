package leave

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/swalih2233/hr.employee/internal/domain/calendar"
	"github.com/swalih2233/hr.employee/internal/domain/people"
)

// PeopleDirectory is the slice of the people store the leave service
// needs: resolving actors and finding who should hear about a request.
type PeopleDirectory interface {
	GetByID(ctx context.Context, personID string) (people.Person, error)
	ListFounders(ctx context.Context) ([]people.Person, error)
}

// HolidayCalendar supplies the holiday set a date range overlaps.
type HolidayCalendar interface {
	HolidaysInRange(ctx context.Context, start, end time.Time) (calendar.HolidaySet, error)
}

// Notifier receives request lifecycle events. Implementations must not
// fail the calling operation; delivery problems are theirs to log.
type Notifier interface {
	RequestSubmitted(ctx context.Context, req LeaveRequest, requester people.Person, approvers []people.Person)
	RequestApproved(ctx context.Context, req LeaveRequest, requester people.Person, approver people.Person)
	RequestRejected(ctx context.Context, req LeaveRequest, requester people.Person, approver people.Person)
	RequestCancelled(ctx context.Context, req LeaveRequest, requester people.Person)
}

type Service struct {
	Store    StoreAPI
	People   PeopleDirectory
	Holidays HolidayCalendar
	Notifier Notifier
	Logger   *slog.Logger
}

func NewService(store StoreAPI, dir PeopleDirectory, holidays HolidayCalendar, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{Store: store, People: dir, Holidays: holidays, Notifier: notifier, Logger: logger}
}

type CreateRequestInput struct {
	LeaveType      string
	StartDate      time.Time
	EndDate        time.Time
	Subject        string
	Description    string
	AttachmentName *string
}

func (s *Service) Create(ctx context.Context, requester people.Person, in CreateRequestInput) (LeaveRequest, error) {
	if !ValidType(in.LeaveType) {
		return LeaveRequest{}, invalid("leaveType", "must be annual or medical")
	}
	if strings.TrimSpace(in.Subject) == "" {
		return LeaveRequest{}, invalid("subject", "is required")
	}
	start := calendar.DateOnly(in.StartDate)
	end := calendar.DateOnly(in.EndDate)
	if end.Before(start) {
		return LeaveRequest{}, invalid("endDate", "must not be before start date")
	}

	holidays, err := s.Holidays.HolidaysInRange(ctx, start, end)
	if err != nil {
		return LeaveRequest{}, err
	}

	req, err := s.Store.Create(ctx, CreateParams{
		PersonID:           requester.ID,
		RequesterRole:      requester.Role,
		LeaveType:          in.LeaveType,
		StartDate:          start,
		EndDate:            end,
		Subject:            strings.TrimSpace(in.Subject),
		Description:        in.Description,
		AttachmentName:     in.AttachmentName,
		WorkingDayDuration: Duration(start, end, holidays),
	})
	if err != nil {
		return LeaveRequest{}, err
	}

	if s.Notifier != nil {
		s.Notifier.RequestSubmitted(ctx, req, requester, s.approversFor(ctx, requester))
	}
	return req, nil
}

// approversFor finds who reviews a person's requests: their manager when
// one is assigned, otherwise the founders (minus the requester).
func (s *Service) approversFor(ctx context.Context, requester people.Person) []people.Person {
	if requester.ManagerID != nil {
		manager, err := s.People.GetByID(ctx, *requester.ManagerID)
		if err == nil {
			return []people.Person{manager}
		}
		s.Logger.Warn("resolving manager for notification failed",
			"personId", requester.ID, "error", err)
	}

	founders, err := s.People.ListFounders(ctx)
	if err != nil {
		s.Logger.Warn("listing founders for notification failed", "error", err)
		return nil
	}
	out := founders[:0]
	for _, f := range founders {
		if f.ID != requester.ID {
			out = append(out, f)
		}
	}
	return out
}

func (s *Service) Approve(ctx context.Context, actor people.Person, requestID string) (LeaveRequest, error) {
	req, err := s.Store.GetByID(ctx, requestID)
	if err != nil {
		return LeaveRequest{}, err
	}
	requester, err := s.People.GetByID(ctx, req.PersonID)
	if err != nil {
		return LeaveRequest{}, err
	}
	if !people.CanApprove(actor, requester) {
		return LeaveRequest{}, ErrForbidden
	}

	// The duration stored at submission is provisional; the calendar may
	// have gained holidays since. Recompute before deducting.
	holidays, err := s.Holidays.HolidaysInRange(ctx, req.StartDate, req.EndDate)
	if err != nil {
		return LeaveRequest{}, err
	}
	approved, err := s.Store.Approve(ctx, ApproveParams{
		RequestID:          requestID,
		ApproverID:         actor.ID,
		WorkingDayDuration: Duration(req.StartDate, req.EndDate, holidays),
		EligibleDays:       calendar.CarryforwardEligibleDays(req.StartDate, req.EndDate, holidays),
	})
	if err != nil {
		return LeaveRequest{}, err
	}

	if s.Notifier != nil {
		s.Notifier.RequestApproved(ctx, approved, requester, actor)
	}
	return approved, nil
}

func (s *Service) Reject(ctx context.Context, actor people.Person, requestID string) (LeaveRequest, error) {
	req, err := s.Store.GetByID(ctx, requestID)
	if err != nil {
		return LeaveRequest{}, err
	}
	requester, err := s.People.GetByID(ctx, req.PersonID)
	if err != nil {
		return LeaveRequest{}, err
	}
	if !people.CanApprove(actor, requester) {
		return LeaveRequest{}, ErrForbidden
	}

	rejected, err := s.Store.Reject(ctx, requestID, actor.ID)
	if err != nil {
		return LeaveRequest{}, err
	}

	if s.Notifier != nil {
		s.Notifier.RequestRejected(ctx, rejected, requester, actor)
	}
	return rejected, nil
}

// Cancel withdraws a pending request. Only its owner can do that, and
// only while it is still pending; an approved request stays on the books.
// A non-owner attempt is a state conflict, the same class of failure as
// cancelling a decided request.
func (s *Service) Cancel(ctx context.Context, actor people.Person, requestID string) (LeaveRequest, error) {
	req, err := s.Store.GetByID(ctx, requestID)
	if err != nil {
		return LeaveRequest{}, err
	}
	if req.PersonID != actor.ID {
		return LeaveRequest{}, ErrInvalidState
	}

	cancelled, err := s.Store.Cancel(ctx, requestID)
	if err != nil {
		return LeaveRequest{}, err
	}

	if s.Notifier != nil {
		s.Notifier.RequestCancelled(ctx, cancelled, actor)
	}
	return cancelled, nil
}

func (s *Service) Get(ctx context.Context, viewer people.Person, requestID string) (LeaveRequest, error) {
	req, err := s.Store.GetByID(ctx, requestID)
	if err != nil {
		return LeaveRequest{}, err
	}
	if !s.canView(ctx, viewer, req) {
		return LeaveRequest{}, ErrForbidden
	}
	return req, nil
}

func (s *Service) canView(ctx context.Context, viewer people.Person, req LeaveRequest) bool {
	if viewer.Role == people.RoleFounder || req.PersonID == viewer.ID {
		return true
	}
	if viewer.Role == people.RoleManager {
		requester, err := s.People.GetByID(ctx, req.PersonID)
		return err == nil && requester.ManagerID != nil && *requester.ManagerID == viewer.ID
	}
	return false
}

// ListVisible scopes the request list to what the viewer may see: their
// own requests, plus their reports' for managers, and everything for
// founders.
func (s *Service) ListVisible(ctx context.Context, viewer people.Person, status string) ([]LeaveRequest, error) {
	f := ListFilter{Status: status}
	switch viewer.Role {
	case people.RoleFounder:
		// unrestricted
	case people.RoleManager:
		f.PersonID = viewer.ID
		f.ManagerID = viewer.ID
	default:
		f.PersonID = viewer.ID
	}
	return s.Store.List(ctx, f)
}
