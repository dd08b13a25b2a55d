package request

const (
	ConflictActionQueue = "queue"
	ConflictActionSkip  = "skip"
)

// CheckoutRequest carries the shopper's standing answer for reserved
// items. When ConflictAction is absent and conflicts exist, the
// handler responds 409 with the conflict list instead of proceeding.
type CheckoutRequest struct {
	ConflictAction *string `json:"conflict_action,omitempty" binding:"omitempty,oneof=queue skip"`
}

func (r CheckoutRequest) HasAction() bool {
	return r.ConflictAction != nil
}

func (r CheckoutRequest) WantsQueue() bool {
	return r.ConflictAction != nil && *r.ConflictAction == ConflictActionQueue
}
