package response

import (
	"vinyl-reserve/internal/usecase/commands"

	"github.com/google/uuid"
)

type ConflictResponse struct {
	RecordID      uuid.UUID `json:"recordId"`
	HolderAlias   string    `json:"holderAlias"`
	AlreadyQueued bool      `json:"alreadyQueued"`
}

type QueueFailureResponse struct {
	RecordID uuid.UUID `json:"recordId"`
	Reason   string    `json:"reason"`
}

type CheckoutResponse struct {
	Success       bool                   `json:"success"`
	Reserved      []uuid.UUID            `json:"reserved"`
	Skipped       []uuid.UUID            `json:"skipped"`
	Sold          []uuid.UUID            `json:"sold"`
	Queued        []uuid.UUID            `json:"queued"`
	QueueFailures []QueueFailureResponse `json:"queueFailures,omitempty"`
	HasConflicts  bool                   `json:"hasConflicts"`
}

type CheckoutConflictsResponse struct {
	Message   string             `json:"message"`
	Conflicts []ConflictResponse `json:"conflicts"`
}

func FromCheckoutResult(result *commands.CheckoutResult) *CheckoutResponse {
	resp := &CheckoutResponse{
		Success:      result.Success,
		Reserved:     nonNil(result.Reserved),
		Skipped:      nonNil(result.Skipped),
		Sold:         nonNil(result.Sold),
		Queued:       nonNil(result.Queued),
		HasConflicts: result.HasConflicts,
	}
	for _, f := range result.QueueFailures {
		// Queue sentinels are safe to show; anything else stays opaque.
		reason := "internal error"
		if commands.IsQueueFailure(f.Reason) {
			reason = f.Reason.Error()
		}
		resp.QueueFailures = append(resp.QueueFailures, QueueFailureResponse{
			RecordID: f.RecordID,
			Reason:   reason,
		})
	}
	return resp
}

func FromConflicts(conflicts []commands.ConflictItem) *CheckoutConflictsResponse {
	resp := &CheckoutConflictsResponse{
		Message:   "Some items are reserved by other shoppers",
		Conflicts: make([]ConflictResponse, 0, len(conflicts)),
	}
	for _, item := range conflicts {
		resp.Conflicts = append(resp.Conflicts, ConflictResponse{
			RecordID:      item.RecordID,
			HolderAlias:   item.HolderAlias,
			AlreadyQueued: item.AlreadyQueued,
		})
	}
	return resp
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
