package ledger

// PolicyConfig carries the company leave policy knobs. Values come from
// configuration at startup; the defaults match the standard policy.
type PolicyConfig struct {
	AnnualAllocation     int
	MedicalAllocation    int
	CarryforwardLimit    int
	EligibilityThreshold int
}

// DefaultPolicy returns the standard company policy: 18 annual days,
// 14 medical days, up to 6 carried forward when at least 10 annual
// days are unused at year end.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		AnnualAllocation:     18,
		MedicalAllocation:    14,
		CarryforwardLimit:    6,
		EligibilityThreshold: 10,
	}
}

// GrantOutcome reports what the year-end grant did to one ledger.
type GrantOutcome struct {
	PersonID            string
	Eligible            bool
	UnusedAnnual        int
	CarryforwardGranted int
}

// ApplyGrant runs the year-end rollover on one ledger. Unused annual
// days at or above the eligibility threshold earn the full carryforward
// limit; anything less earns nothing. All taken counters reset and the
// allocations refill for the new year. The result is a pure function of
// the pre-grant state, so re-applying to an already granted ledger is
// guarded at the job level, not here.
func (p PolicyConfig) ApplyGrant(l *Ledger) GrantOutcome {
	unused := l.AnnualAllocation - l.AnnualTaken
	if unused < 0 {
		unused = 0
	}

	out := GrantOutcome{PersonID: l.PersonID, UnusedAnnual: unused}
	if unused >= p.EligibilityThreshold {
		out.Eligible = true
		out.CarryforwardGranted = p.CarryforwardLimit
	}

	l.CarryforwardGranted = out.CarryforwardGranted
	l.CarryforwardTaken = 0
	l.AnnualTaken = 0
	l.MedicalTaken = 0
	l.AnnualAllocation = p.AnnualAllocation
	l.MedicalAllocation = p.MedicalAllocation
	return out
}

// CleanupOutcome reports what the carryforward expiry did to one ledger.
type CleanupOutcome struct {
	PersonID      string
	ForfeitedDays int
}

// ApplyCleanup expires unspent carryforward at the end of the use-by
// window. Both carryforward counters zero out and the annual allocation
// clamps back down to the policy default if a grant had inflated it.
func (p PolicyConfig) ApplyCleanup(l *Ledger) CleanupOutcome {
	out := CleanupOutcome{
		PersonID:      l.PersonID,
		ForfeitedDays: l.CarryforwardAvailable(),
	}

	l.CarryforwardGranted = 0
	l.CarryforwardTaken = 0
	if l.AnnualAllocation > p.AnnualAllocation {
		l.AnnualAllocation = p.AnnualAllocation
	}
	return out
}

// ReminderEntry is one line of the carryforward expiry reminder: a
// person who still holds unspent carryforward days shortly before the
// use-by date.
type ReminderEntry struct {
	PersonID      string
	RemainingDays int
}

// ReminderEntries lists the ledgers that still hold carryforward days.
// Read-only; the reminder job never mutates ledgers.
func ReminderEntries(ledgers []Ledger) []ReminderEntry {
	var out []ReminderEntry
	for _, l := range ledgers {
		if rem := l.CarryforwardAvailable(); rem > 0 {
			out = append(out, ReminderEntry{PersonID: l.PersonID, RemainingDays: rem})
		}
	}
	return out
}
