package leave

import "context"

type StoreAPI interface {
	GetByID(ctx context.Context, requestID string) (LeaveRequest, error)
	List(ctx context.Context, f ListFilter) ([]LeaveRequest, error)
	Create(ctx context.Context, p CreateParams) (LeaveRequest, error)
	Approve(ctx context.Context, p ApproveParams) (LeaveRequest, error)
	Reject(ctx context.Context, requestID, actorID string) (LeaveRequest, error)
	Cancel(ctx context.Context, requestID string) (LeaveRequest, error)
}
