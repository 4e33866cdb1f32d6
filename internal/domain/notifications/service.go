package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/swalih2233/hr.employee/internal/domain/leave"
	"github.com/swalih2233/hr.employee/internal/domain/people"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// Service records in-app notifications and mirrors them to email. Every
// method is fire-and-forget: delivery problems are logged, never returned,
// so a failed mail can never fail a leave operation or a policy run.
type Service struct {
	store  StoreAPI
	Mailer Mailer
	From   string
	Logger *slog.Logger
}

func New(store StoreAPI, mailer Mailer, from string, logger *slog.Logger) *Service {
	return &Service{store: store, Mailer: mailer, From: from, Logger: logger}
}

func (s *Service) deliver(ctx context.Context, recipient people.Person, kind, title, body string) {
	if err := s.store.Create(ctx, recipient.ID, kind, title, body); err != nil {
		s.Logger.Warn("recording notification failed",
			"kind", kind, "personId", recipient.ID, "error", err)
	}
	if s.Mailer == nil || recipient.Email == "" {
		return
	}
	if err := s.Mailer.Send(ctx, s.From, recipient.Email, title, body); err != nil {
		s.Logger.Warn("notification email send failed",
			"kind", kind, "to", recipient.Email, "error", err)
	}
}

func requestLine(req leave.LeaveRequest) string {
	return fmt.Sprintf("%s leave, %s to %s: %s",
		req.LeaveType,
		req.StartDate.Format("2006-01-02"), req.EndDate.Format("2006-01-02"),
		req.Subject)
}

func (s *Service) RequestSubmitted(ctx context.Context, req leave.LeaveRequest, requester people.Person, approvers []people.Person) {
	title := fmt.Sprintf("Leave request from %s %s", requester.FirstName, requester.LastName)
	for _, a := range approvers {
		s.deliver(ctx, a, KindLeaveSubmitted, title, requestLine(req))
	}
}

func (s *Service) RequestApproved(ctx context.Context, req leave.LeaveRequest, requester people.Person, approver people.Person) {
	title := fmt.Sprintf("Your leave request was approved by %s %s", approver.FirstName, approver.LastName)
	body := fmt.Sprintf("%s (%d working days)", requestLine(req), req.WorkingDayDuration)
	s.deliver(ctx, requester, KindLeaveApproved, title, body)
}

func (s *Service) RequestRejected(ctx context.Context, req leave.LeaveRequest, requester people.Person, approver people.Person) {
	title := fmt.Sprintf("Your leave request was rejected by %s %s", approver.FirstName, approver.LastName)
	s.deliver(ctx, requester, KindLeaveRejected, title, requestLine(req))
}

func (s *Service) RequestCancelled(ctx context.Context, req leave.LeaveRequest, requester people.Person) {
	s.deliver(ctx, requester, KindLeaveCancelled, "Leave request cancelled", requestLine(req))
}

func (s *Service) CarryforwardGranted(ctx context.Context, recipient people.Person, days int) {
	title := fmt.Sprintf("%d leave days carried forward", days)
	body := fmt.Sprintf("You have %d unused annual leave days carried into the new year. They expire on 31 March.", days)
	s.deliver(ctx, recipient, KindCarryforwardGranted, title, body)
}

func (s *Service) CarryforwardExpired(ctx context.Context, recipient people.Person, days int) {
	title := fmt.Sprintf("%d carried-forward days expired", days)
	body := fmt.Sprintf("%d unused carried-forward leave days expired on 31 March.", days)
	s.deliver(ctx, recipient, KindCarryforwardExpired, title, body)
}

func (s *Service) CarryforwardReminder(ctx context.Context, recipient people.Person, remaining int) {
	title := fmt.Sprintf("%d carried-forward days expire soon", remaining)
	body := fmt.Sprintf("You still have %d carried-forward leave days. Use them before 31 March or they lapse.", remaining)
	s.deliver(ctx, recipient, KindCarryforwardReminder, title, body)
}

func (s *Service) List(ctx context.Context, personID string, limit, offset int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListForPerson(ctx, personID, limit, offset)
}

func (s *Service) CountUnread(ctx context.Context, personID string) (int, error) {
	return s.store.CountUnread(ctx, personID)
}

func (s *Service) MarkRead(ctx context.Context, personID, notificationID string) error {
	return s.store.MarkRead(ctx, personID, notificationID)
}
