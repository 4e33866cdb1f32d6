package leave

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/swalih2233/hr.employee/internal/domain/calendar"
	"github.com/swalih2233/hr.employee/internal/domain/people"
)

type fakeStore struct {
	requests map[string]LeaveRequest

	lastCreate  CreateParams
	lastApprove ApproveParams
	lastFilter  ListFilter

	approveErr error
}

func (f *fakeStore) GetByID(_ context.Context, id string) (LeaveRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return LeaveRequest{}, ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) List(_ context.Context, filter ListFilter) ([]LeaveRequest, error) {
	f.lastFilter = filter
	return nil, nil
}

func (f *fakeStore) Create(_ context.Context, p CreateParams) (LeaveRequest, error) {
	f.lastCreate = p
	return LeaveRequest{
		ID:                 "req-new",
		PersonID:           p.PersonID,
		RequesterRole:      p.RequesterRole,
		LeaveType:          p.LeaveType,
		StartDate:          p.StartDate,
		EndDate:            p.EndDate,
		Subject:            p.Subject,
		Status:             StatusPending,
		WorkingDayDuration: p.WorkingDayDuration,
	}, nil
}

func (f *fakeStore) Approve(_ context.Context, p ApproveParams) (LeaveRequest, error) {
	if f.approveErr != nil {
		return LeaveRequest{}, f.approveErr
	}
	f.lastApprove = p
	r := f.requests[p.RequestID]
	r.Status = StatusApproved
	r.WorkingDayDuration = p.WorkingDayDuration
	return r, nil
}

func (f *fakeStore) Reject(_ context.Context, id, actorID string) (LeaveRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return LeaveRequest{}, ErrNotFound
	}
	if r.Status != StatusPending {
		return LeaveRequest{}, ErrInvalidState
	}
	r.Status = StatusRejected
	r.RejectedBy = &actorID
	return r, nil
}

func (f *fakeStore) Cancel(_ context.Context, id string) (LeaveRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return LeaveRequest{}, ErrNotFound
	}
	if r.Status != StatusPending {
		return LeaveRequest{}, ErrInvalidState
	}
	r.Status = StatusCancelled
	return r, nil
}

type fakeDirectory struct {
	people map[string]people.Person
}

func (f *fakeDirectory) GetByID(_ context.Context, id string) (people.Person, error) {
	p, ok := f.people[id]
	if !ok {
		return people.Person{}, people.ErrNotFound
	}
	return p, nil
}

func (f *fakeDirectory) ListFounders(_ context.Context) ([]people.Person, error) {
	var out []people.Person
	for _, p := range f.people {
		if p.Role == people.RoleFounder {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeHolidays struct{ set calendar.HolidaySet }

func (f *fakeHolidays) HolidaysInRange(_ context.Context, _, _ time.Time) (calendar.HolidaySet, error) {
	return f.set, nil
}

type recordingNotifier struct {
	submitted, approved, rejected, cancelled int
	approvers                                []people.Person
}

func (n *recordingNotifier) RequestSubmitted(_ context.Context, _ LeaveRequest, _ people.Person, approvers []people.Person) {
	n.submitted++
	n.approvers = approvers
}
func (n *recordingNotifier) RequestApproved(_ context.Context, _ LeaveRequest, _ people.Person, _ people.Person) {
	n.approved++
}
func (n *recordingNotifier) RequestRejected(_ context.Context, _ LeaveRequest, _ people.Person, _ people.Person) {
	n.rejected++
}
func (n *recordingNotifier) RequestCancelled(_ context.Context, _ LeaveRequest, _ people.Person) {
	n.cancelled++
}

func strPtr(s string) *string { return &s }

func testPeople() map[string]people.Person {
	return map[string]people.Person{
		"emp":   {ID: "emp", Role: people.RoleEmployee, ManagerID: strPtr("mgr")},
		"other": {ID: "other", Role: people.RoleEmployee, ManagerID: strPtr("mgr2")},
		"mgr":   {ID: "mgr", Role: people.RoleManager},
		"mgr2":  {ID: "mgr2", Role: people.RoleManager},
		"ceo":   {ID: "ceo", Role: people.RoleFounder},
	}
}

func newTestService(store *fakeStore, notifier *recordingNotifier) *Service {
	return NewService(store, &fakeDirectory{people: testPeople()}, &fakeHolidays{}, notifier,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(&fakeStore{}, nil)
	emp := testPeople()["emp"]

	cases := []struct {
		name string
		in   CreateRequestInput
	}{
		{"bad type", CreateRequestInput{LeaveType: "sabbatical", Subject: "x",
			StartDate: date(2026, time.May, 4), EndDate: date(2026, time.May, 5)}},
		{"empty subject", CreateRequestInput{LeaveType: TypeAnnual, Subject: "  ",
			StartDate: date(2026, time.May, 4), EndDate: date(2026, time.May, 5)}},
		{"inverted range", CreateRequestInput{LeaveType: TypeAnnual, Subject: "x",
			StartDate: date(2026, time.May, 5), EndDate: date(2026, time.May, 4)}},
	}
	for _, tc := range cases {
		_, err := svc.Create(context.Background(), emp, tc.in)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestCreateComputesProvisionalDuration(t *testing.T) {
	store := &fakeStore{}
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)
	emp := testPeople()["emp"]

	// Mon through next Mon: 6 working days.
	req, err := svc.Create(context.Background(), emp, CreateRequestInput{
		LeaveType: TypeAnnual,
		StartDate: date(2026, time.May, 4),
		EndDate:   date(2026, time.May, 11),
		Subject:   "family trip",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.Status != StatusPending {
		t.Fatalf("status = %q, want pending", req.Status)
	}
	if store.lastCreate.WorkingDayDuration != 6 {
		t.Fatalf("provisional duration = %d, want 6", store.lastCreate.WorkingDayDuration)
	}
	if notifier.submitted != 1 {
		t.Fatalf("submitted notifications = %d, want 1", notifier.submitted)
	}
	if len(notifier.approvers) != 1 || notifier.approvers[0].ID != "mgr" {
		t.Fatalf("approvers = %+v, want the manager", notifier.approvers)
	}
}

func TestCreateNotifiesFoundersWhenNoManager(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := newTestService(&fakeStore{}, notifier)
	mgr := testPeople()["mgr"]

	_, err := svc.Create(context.Background(), mgr, CreateRequestInput{
		LeaveType: TypeMedical,
		StartDate: date(2026, time.May, 4),
		EndDate:   date(2026, time.May, 4),
		Subject:   "flu",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(notifier.approvers) != 1 || notifier.approvers[0].ID != "ceo" {
		t.Fatalf("approvers = %+v, want the founder", notifier.approvers)
	}
}

func pendingRequest(personID string) LeaveRequest {
	return LeaveRequest{
		ID:        "req-1",
		PersonID:  personID,
		LeaveType: TypeAnnual,
		StartDate: date(2026, time.May, 4),
		EndDate:   date(2026, time.May, 8),
		Status:    StatusPending,
	}
}

func TestApprovePermissions(t *testing.T) {
	cases := []struct {
		name    string
		actor   string
		allowed bool
	}{
		{"own manager", "mgr", true},
		{"founder", "ceo", true},
		{"unrelated manager", "mgr2", false},
		{"peer employee", "other", false},
		{"requester themselves", "emp", false},
	}
	for _, tc := range cases {
		store := &fakeStore{requests: map[string]LeaveRequest{"req-1": pendingRequest("emp")}}
		notifier := &recordingNotifier{}
		svc := newTestService(store, notifier)
		actor := testPeople()[tc.actor]

		_, err := svc.Approve(context.Background(), actor, "req-1")
		if tc.allowed && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.allowed && !errors.Is(err, ErrForbidden) {
			t.Fatalf("%s: expected ErrForbidden, got %v", tc.name, err)
		}
	}
}

func TestApproveRecomputesDuration(t *testing.T) {
	store := &fakeStore{requests: map[string]LeaveRequest{"req-1": pendingRequest("emp")}}
	svc := newTestService(store, &recordingNotifier{})
	// A holiday landed inside the range after submission.
	svc.Holidays = &fakeHolidays{set: calendar.NewHolidaySet([]time.Time{date(2026, time.May, 6)})}

	approved, err := svc.Approve(context.Background(), testPeople()["mgr"], "req-1")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if store.lastApprove.WorkingDayDuration != 4 {
		t.Fatalf("duration = %d, want 4", store.lastApprove.WorkingDayDuration)
	}
	if approved.Status != StatusApproved {
		t.Fatalf("status = %q, want approved", approved.Status)
	}
}

func TestApprovePropagatesStateConflict(t *testing.T) {
	store := &fakeStore{
		requests:   map[string]LeaveRequest{"req-1": pendingRequest("emp")},
		approveErr: ErrInvalidState,
	}
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)

	_, err := svc.Approve(context.Background(), testPeople()["mgr"], "req-1")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if notifier.approved != 0 {
		t.Fatal("lost transition must not notify")
	}
}

func TestRejectSetsActor(t *testing.T) {
	store := &fakeStore{requests: map[string]LeaveRequest{"req-1": pendingRequest("emp")}}
	notifier := &recordingNotifier{}
	svc := newTestService(store, notifier)

	rejected, err := svc.Reject(context.Background(), testPeople()["mgr"], "req-1")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != StatusRejected || rejected.RejectedBy == nil || *rejected.RejectedBy != "mgr" {
		t.Fatalf("rejected = %+v", rejected)
	}
	if notifier.rejected != 1 {
		t.Fatalf("rejected notifications = %d, want 1", notifier.rejected)
	}
}

func TestCancelOnlyByOwner(t *testing.T) {
	store := &fakeStore{requests: map[string]LeaveRequest{"req-1": pendingRequest("emp")}}
	svc := newTestService(store, &recordingNotifier{})

	// A non-owner attempt is a state conflict, not a permission error.
	if _, err := svc.Cancel(context.Background(), testPeople()["mgr"], "req-1"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for non-owner, got %v", err)
	}

	cancelled, err := svc.Cancel(context.Background(), testPeople()["emp"], "req-1")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("status = %q, want cancelled", cancelled.Status)
	}
}

func TestCancelApprovedRequestFails(t *testing.T) {
	req := pendingRequest("emp")
	req.Status = StatusApproved
	store := &fakeStore{requests: map[string]LeaveRequest{"req-1": req}}
	svc := newTestService(store, &recordingNotifier{})

	_, err := svc.Cancel(context.Background(), testPeople()["emp"], "req-1")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestListVisibleScoping(t *testing.T) {
	cases := []struct {
		viewer string
		want   ListFilter
	}{
		{"emp", ListFilter{PersonID: "emp"}},
		{"mgr", ListFilter{PersonID: "mgr", ManagerID: "mgr"}},
		{"ceo", ListFilter{}},
	}
	for _, tc := range cases {
		store := &fakeStore{}
		svc := newTestService(store, nil)
		if _, err := svc.ListVisible(context.Background(), testPeople()[tc.viewer], ""); err != nil {
			t.Fatalf("%s: %v", tc.viewer, err)
		}
		if store.lastFilter != tc.want {
			t.Fatalf("%s: filter = %+v, want %+v", tc.viewer, store.lastFilter, tc.want)
		}
	}
}
