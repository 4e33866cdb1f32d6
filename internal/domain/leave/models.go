package leave

import "time"

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const (
	TypeAnnual  = "annual"
	TypeMedical = "medical"
)

func ValidType(t string) bool {
	return t == TypeAnnual || t == TypeMedical
}

type LeaveRequest struct {
	ID                 string     `json:"id"`
	PersonID           string     `json:"personId"`
	RequesterRole      string     `json:"requesterRole"`
	LeaveType          string     `json:"leaveType"`
	StartDate          time.Time  `json:"startDate"`
	EndDate            time.Time  `json:"endDate"`
	Subject            string     `json:"subject"`
	Description        string     `json:"description"`
	AttachmentName     *string    `json:"attachmentName,omitempty"`
	Status             string     `json:"status"`
	WorkingDayDuration int        `json:"workingDayDuration"`
	CarryforwardUsed   int        `json:"carryforwardUsed"`
	ApprovedBy         *string    `json:"approvedBy,omitempty"`
	RejectedBy         *string    `json:"rejectedBy,omitempty"`
	ApprovalDate       *time.Time `json:"approvalDate,omitempty"`
	RejectionDate      *time.Time `json:"rejectionDate,omitempty"`
	CancellationDate   *time.Time `json:"cancellationDate,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}
