package notifications

const (
	KindLeaveSubmitted       = "leave_submitted"
	KindLeaveApproved        = "leave_approved"
	KindLeaveRejected        = "leave_rejected"
	KindLeaveCancelled       = "leave_cancelled"
	KindCarryforwardGranted  = "carryforward_granted"
	KindCarryforwardExpired  = "carryforward_expired"
	KindCarryforwardReminder = "carryforward_reminder"
)
