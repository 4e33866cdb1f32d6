package ledger

import "testing"

func TestApplyGrantEligible(t *testing.T) {
	p := DefaultPolicy()
	l := baseLedger()
	l.AnnualTaken = 5 // 13 unused

	out := p.ApplyGrant(&l)
	if !out.Eligible {
		t.Fatal("expected eligible")
	}
	if out.UnusedAnnual != 13 {
		t.Fatalf("unused = %d, want 13", out.UnusedAnnual)
	}
	if out.CarryforwardGranted != 6 {
		t.Fatalf("granted = %d, want 6", out.CarryforwardGranted)
	}
	if l.CarryforwardGranted != 6 || l.CarryforwardTaken != 0 {
		t.Fatalf("carryforward counters = %d/%d, want 6/0", l.CarryforwardGranted, l.CarryforwardTaken)
	}
	if l.AnnualTaken != 0 || l.MedicalTaken != 0 {
		t.Fatalf("taken counters not reset: %+v", l)
	}
	if l.AnnualAllocation != 18 || l.MedicalAllocation != 14 {
		t.Fatalf("allocations not refilled: %+v", l)
	}
}

func TestApplyGrantAtThreshold(t *testing.T) {
	p := DefaultPolicy()
	l := baseLedger()
	l.AnnualTaken = 8 // exactly 10 unused

	out := p.ApplyGrant(&l)
	if !out.Eligible || out.CarryforwardGranted != 6 {
		t.Fatalf("threshold case: %+v", out)
	}
}

func TestApplyGrantIneligible(t *testing.T) {
	p := DefaultPolicy()
	l := baseLedger()
	l.AnnualTaken = 9 // 9 unused, below threshold
	l.MedicalTaken = 3

	out := p.ApplyGrant(&l)
	if out.Eligible {
		t.Fatal("expected ineligible")
	}
	if out.CarryforwardGranted != 0 {
		t.Fatalf("granted = %d, want 0", out.CarryforwardGranted)
	}
	// Ineligible people still roll into the new year clean.
	if l.AnnualTaken != 0 || l.MedicalTaken != 0 || l.CarryforwardGranted != 0 {
		t.Fatalf("ineligible rollover wrong: %+v", l)
	}
}

func TestApplyGrantOverdrawnClampsUnused(t *testing.T) {
	p := DefaultPolicy()
	l := baseLedger()
	l.AnnualTaken = 21 // overdrawn

	out := p.ApplyGrant(&l)
	if out.Eligible {
		t.Fatal("overdrawn ledger must not earn carryforward")
	}
	if out.UnusedAnnual != 0 {
		t.Fatalf("unused = %d, want 0", out.UnusedAnnual)
	}
}

func TestApplyGrantReplacesStaleCarryforward(t *testing.T) {
	p := DefaultPolicy()
	l := baseLedger()
	l.CarryforwardGranted = 6
	l.CarryforwardTaken = 2
	l.AnnualTaken = 16 // only 2 unused

	out := p.ApplyGrant(&l)
	if out.Eligible {
		t.Fatal("expected ineligible")
	}
	// A grant never stacks on last year's leftovers.
	if l.CarryforwardGranted != 0 || l.CarryforwardTaken != 0 {
		t.Fatalf("stale carryforward survived: %+v", l)
	}
}

func TestApplyCleanupForfeitsRemainder(t *testing.T) {
	p := DefaultPolicy()
	l := baseLedger()
	l.CarryforwardGranted = 6
	l.CarryforwardTaken = 2

	out := p.ApplyCleanup(&l)
	if out.ForfeitedDays != 4 {
		t.Fatalf("forfeited = %d, want 4", out.ForfeitedDays)
	}
	if l.CarryforwardGranted != 0 || l.CarryforwardTaken != 0 {
		t.Fatalf("carryforward not cleared: %+v", l)
	}
	if l.CarryforwardAvailable() != 0 {
		t.Fatalf("carryforward still available after cleanup")
	}
}

func TestApplyCleanupClampsInflatedAllocation(t *testing.T) {
	p := DefaultPolicy()
	l := baseLedger()
	l.AnnualAllocation = 24

	p.ApplyCleanup(&l)
	if l.AnnualAllocation != 18 {
		t.Fatalf("allocation = %d, want 18", l.AnnualAllocation)
	}
}

func TestApplyCleanupIdempotent(t *testing.T) {
	p := DefaultPolicy()
	l := baseLedger()
	l.CarryforwardGranted = 6
	l.CarryforwardTaken = 1
	l.AnnualTaken = 3

	p.ApplyCleanup(&l)
	first := l
	out := p.ApplyCleanup(&l)
	if out.ForfeitedDays != 0 {
		t.Fatalf("second cleanup forfeited %d, want 0", out.ForfeitedDays)
	}
	if l != first {
		t.Fatalf("second cleanup changed ledger: %+v vs %+v", l, first)
	}
}

func TestReminderEntries(t *testing.T) {
	ledgers := []Ledger{
		{PersonID: "a", CarryforwardGranted: 6, CarryforwardTaken: 2},
		{PersonID: "b", CarryforwardGranted: 6, CarryforwardTaken: 6},
		{PersonID: "c"},
		{PersonID: "d", CarryforwardGranted: 6, CarryforwardTaken: 1},
	}

	entries := ReminderEntries(ledgers)
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].PersonID != "a" || entries[0].RemainingDays != 4 {
		t.Fatalf("entry 0 = %+v", entries[0])
	}
	if entries[1].PersonID != "d" || entries[1].RemainingDays != 5 {
		t.Fatalf("entry 1 = %+v", entries[1])
	}
}
