package ledger

import "time"

// Kind mirrors the leave request types the ledger accounts for.
type Kind string

const (
	KindAnnual  Kind = "annual"
	KindMedical Kind = "medical"
)

// Ledger is the per-person balance record. All counters are whole working
// days. Taken counters are allowed to exceed allocations: an over-drawn
// balance is kept visible as an audit signal instead of blocking approval.
type Ledger struct {
	ID                  string    `json:"id"`
	PersonID            string    `json:"personId"`
	AnnualAllocation    int       `json:"annualAllocation"`
	AnnualTaken         int       `json:"annualTaken"`
	MedicalAllocation   int       `json:"medicalAllocation"`
	MedicalTaken        int       `json:"medicalTaken"`
	CarryforwardGranted int       `json:"carryforwardGranted"`
	CarryforwardTaken   int       `json:"carryforwardTaken"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (l Ledger) AnnualRemaining() int {
	return l.AnnualAllocation - l.AnnualTaken
}

func (l Ledger) MedicalRemaining() int {
	return l.MedicalAllocation - l.MedicalTaken
}

// CarryforwardAvailable is granted minus taken, clamped at zero.
func (l Ledger) CarryforwardAvailable() int {
	available := l.CarryforwardGranted - l.CarryforwardTaken
	if available < 0 {
		return 0
	}
	return available
}
