package ledger

import "fmt"

// ApplyApproval deducts an approved request from the ledger. Medical days
// only touch the medical counters; annual days are split between the
// carryforward pool (carryforwardUsed) and the annual pool (the rest).
// Balances may go negative; see the Ledger doc.
func (l *Ledger) ApplyApproval(kind Kind, workingDays, carryforwardUsed int) error {
	if workingDays < 0 || carryforwardUsed < 0 {
		return fmt.Errorf("negative deduction: days=%d carryforward=%d", workingDays, carryforwardUsed)
	}
	if carryforwardUsed > workingDays {
		return fmt.Errorf("carryforward %d exceeds duration %d", carryforwardUsed, workingDays)
	}

	switch kind {
	case KindMedical:
		if carryforwardUsed != 0 {
			return fmt.Errorf("medical leave cannot draw carryforward")
		}
		l.MedicalTaken += workingDays
	case KindAnnual:
		if carryforwardUsed > l.CarryforwardAvailable() {
			return fmt.Errorf("carryforward %d exceeds available %d", carryforwardUsed, l.CarryforwardAvailable())
		}
		l.AnnualTaken += workingDays - carryforwardUsed
		l.CarryforwardTaken += carryforwardUsed
	default:
		return fmt.Errorf("unknown leave kind %q", kind)
	}
	return nil
}

// ApprovedLeave is the deduction footprint of one approved request, as
// stored on the request row.
type ApprovedLeave struct {
	Kind             Kind
	WorkingDays      int
	CarryforwardUsed int
}

// Recalculate rebuilds the taken counters from the full set of approved
// requests for the ledger's person. Approved requests are the source of
// truth; this is the repair path after administrative edits.
func (l *Ledger) Recalculate(approved []ApprovedLeave) {
	l.AnnualTaken = 0
	l.MedicalTaken = 0
	l.CarryforwardTaken = 0

	for _, a := range approved {
		switch a.Kind {
		case KindMedical:
			l.MedicalTaken += a.WorkingDays
		case KindAnnual:
			l.AnnualTaken += a.WorkingDays - a.CarryforwardUsed
			l.CarryforwardTaken += a.CarryforwardUsed
		}
	}
}
