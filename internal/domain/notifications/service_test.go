package notifications

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/swalih2233/hr.employee/internal/domain/leave"
	"github.com/swalih2233/hr.employee/internal/domain/people"
)

type memStore struct {
	created   []Notification
	createErr error
}

func (m *memStore) Create(_ context.Context, personID, kind, title, body string) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, Notification{PersonID: personID, Kind: kind, Title: title, Body: body})
	return nil
}

func (m *memStore) ListForPerson(_ context.Context, personID string, limit, offset int) ([]Notification, error) {
	return m.created, nil
}

func (m *memStore) CountUnread(_ context.Context, personID string) (int, error) {
	return len(m.created), nil
}

func (m *memStore) MarkRead(_ context.Context, personID, notificationID string) error {
	return nil
}

type memMailer struct {
	sent    []string
	sendErr error
}

func (m *memMailer) Send(_ context.Context, from, to, subject, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, to)
	return nil
}

func testRequest() leave.LeaveRequest {
	return leave.LeaveRequest{
		ID:        "req-1",
		PersonID:  "emp",
		LeaveType: leave.TypeAnnual,
		StartDate: time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC),
		Subject:   "trip",
	}
}

func newService(store *memStore, mailer *memMailer) *Service {
	var m Mailer
	if mailer != nil {
		m = mailer
	}
	return New(store, m, "no-reply@example.com", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRequestSubmittedFansOut(t *testing.T) {
	store := &memStore{}
	mailer := &memMailer{}
	svc := newService(store, mailer)

	approvers := []people.Person{
		{ID: "mgr", Email: "mgr@example.com"},
		{ID: "ceo", Email: "ceo@example.com"},
	}
	svc.RequestSubmitted(context.Background(), testRequest(), people.Person{ID: "emp"}, approvers)

	if len(store.created) != 2 {
		t.Fatalf("created = %d, want 2", len(store.created))
	}
	for _, n := range store.created {
		if n.Kind != KindLeaveSubmitted {
			t.Fatalf("kind = %q", n.Kind)
		}
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("emails sent = %d, want 2", len(mailer.sent))
	}
}

func TestDeliveryFailuresAreSwallowed(t *testing.T) {
	store := &memStore{createErr: errors.New("db down")}
	mailer := &memMailer{sendErr: errors.New("smtp down")}
	svc := newService(store, mailer)

	// Must not panic or propagate anything.
	svc.RequestApproved(context.Background(), testRequest(),
		people.Person{ID: "emp", Email: "emp@example.com"}, people.Person{ID: "mgr"})
}

func TestNoMailerSkipsEmail(t *testing.T) {
	store := &memStore{}
	svc := newService(store, nil)

	svc.CarryforwardGranted(context.Background(), people.Person{ID: "emp", Email: "emp@example.com"}, 6)
	if len(store.created) != 1 {
		t.Fatalf("created = %d, want 1", len(store.created))
	}
	if store.created[0].Kind != KindCarryforwardGranted {
		t.Fatalf("kind = %q", store.created[0].Kind)
	}
}

func TestEmptyEmailSkipsSend(t *testing.T) {
	store := &memStore{}
	mailer := &memMailer{}
	svc := newService(store, mailer)

	svc.CarryforwardReminder(context.Background(), people.Person{ID: "emp"}, 3)
	if len(mailer.sent) != 0 {
		t.Fatalf("emails sent = %d, want 0", len(mailer.sent))
	}
	if len(store.created) != 1 {
		t.Fatal("in-app notification should still be recorded")
	}
}
