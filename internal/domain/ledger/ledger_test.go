package ledger

import "testing"

func baseLedger() Ledger {
	return Ledger{
		ID:                "led-1",
		PersonID:          "per-1",
		AnnualAllocation:  18,
		MedicalAllocation: 14,
	}
}

func TestApplyApprovalMedical(t *testing.T) {
	l := baseLedger()
	if err := l.ApplyApproval(KindMedical, 3, 0); err != nil {
		t.Fatalf("apply medical: %v", err)
	}
	if l.MedicalTaken != 3 {
		t.Fatalf("medical taken = %d, want 3", l.MedicalTaken)
	}
	if l.AnnualTaken != 0 || l.CarryforwardTaken != 0 {
		t.Fatalf("medical leave touched annual counters: %+v", l)
	}
}

func TestApplyApprovalAnnualSplitsCarryforward(t *testing.T) {
	l := baseLedger()
	l.CarryforwardGranted = 6

	if err := l.ApplyApproval(KindAnnual, 5, 4); err != nil {
		t.Fatalf("apply annual: %v", err)
	}
	if l.CarryforwardTaken != 4 {
		t.Fatalf("carryforward taken = %d, want 4", l.CarryforwardTaken)
	}
	if l.AnnualTaken != 1 {
		t.Fatalf("annual taken = %d, want 1", l.AnnualTaken)
	}
}

func TestApplyApprovalCarryforwardNeverExceedsAvailable(t *testing.T) {
	l := baseLedger()
	l.CarryforwardGranted = 6
	l.CarryforwardTaken = 5

	if err := l.ApplyApproval(KindAnnual, 4, 2); err == nil {
		t.Fatal("expected error when carryforward use exceeds available")
	}
	if l.AnnualTaken != 0 || l.CarryforwardTaken != 5 {
		t.Fatalf("failed apply mutated ledger: %+v", l)
	}
}

func TestApplyApprovalMedicalRejectsCarryforward(t *testing.T) {
	l := baseLedger()
	l.CarryforwardGranted = 6
	if err := l.ApplyApproval(KindMedical, 2, 1); err == nil {
		t.Fatal("expected error for medical leave drawing carryforward")
	}
}

func TestApplyApprovalAllowsOverdraw(t *testing.T) {
	l := baseLedger()
	l.AnnualTaken = 17

	if err := l.ApplyApproval(KindAnnual, 5, 0); err != nil {
		t.Fatalf("apply annual: %v", err)
	}
	if l.AnnualTaken != 22 {
		t.Fatalf("annual taken = %d, want 22", l.AnnualTaken)
	}
	if got := l.AnnualRemaining(); got != -4 {
		t.Fatalf("annual remaining = %d, want -4", got)
	}
}

func TestApplyApprovalRejectsInvalidInput(t *testing.T) {
	l := baseLedger()
	if err := l.ApplyApproval(KindAnnual, -1, 0); err == nil {
		t.Fatal("expected error for negative duration")
	}
	if err := l.ApplyApproval(KindAnnual, 2, 3); err == nil {
		t.Fatal("expected error when carryforward exceeds duration")
	}
	if err := l.ApplyApproval(Kind("sabbatical"), 1, 0); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestRecalculateMatchesApprovedRequests(t *testing.T) {
	l := baseLedger()
	// Stale counters from an administrative edit.
	l.AnnualTaken = 99
	l.MedicalTaken = 99
	l.CarryforwardTaken = 99
	l.CarryforwardGranted = 6

	approved := []ApprovedLeave{
		{Kind: KindAnnual, WorkingDays: 5, CarryforwardUsed: 3},
		{Kind: KindAnnual, WorkingDays: 2, CarryforwardUsed: 0},
		{Kind: KindMedical, WorkingDays: 4, CarryforwardUsed: 0},
	}
	l.Recalculate(approved)

	if l.AnnualTaken != 4 {
		t.Fatalf("annual taken = %d, want 4", l.AnnualTaken)
	}
	if l.CarryforwardTaken != 3 {
		t.Fatalf("carryforward taken = %d, want 3", l.CarryforwardTaken)
	}
	if l.MedicalTaken != 4 {
		t.Fatalf("medical taken = %d, want 4", l.MedicalTaken)
	}

	var totalAnnual int
	for _, a := range approved {
		if a.Kind == KindAnnual {
			totalAnnual += a.WorkingDays
		}
	}
	if l.AnnualTaken+l.CarryforwardTaken != totalAnnual {
		t.Fatalf("annual+carryforward = %d, want %d", l.AnnualTaken+l.CarryforwardTaken, totalAnnual)
	}
}

func TestRecalculateEmptyZeroesCounters(t *testing.T) {
	l := baseLedger()
	l.AnnualTaken = 7
	l.MedicalTaken = 2
	l.CarryforwardTaken = 1

	l.Recalculate(nil)
	if l.AnnualTaken != 0 || l.MedicalTaken != 0 || l.CarryforwardTaken != 0 {
		t.Fatalf("counters not zeroed: %+v", l)
	}
}

func TestCarryforwardAvailableClampsAtZero(t *testing.T) {
	l := baseLedger()
	l.CarryforwardGranted = 2
	l.CarryforwardTaken = 5
	if got := l.CarryforwardAvailable(); got != 0 {
		t.Fatalf("carryforward available = %d, want 0", got)
	}
}
