package record

import (
	"time"

	"vinyl-reserve/internal/domain/queue"
	"vinyl-reserve/internal/domain/reservation"
)

type StatusKind string

const (
	StatusAvailable       StatusKind = "AVAILABLE"
	StatusReserved        StatusKind = "RESERVED"
	StatusReservedByOther StatusKind = "RESERVED_BY_OTHERS"
	StatusInQueue         StatusKind = "IN_QUEUE"
	StatusInCart          StatusKind = "IN_CART"
	StatusSold            StatusKind = "SOLD"
)

func (k StatusKind) String() string {
	return string(k)
}

// Status is a derived view of a record for one viewer. It is never
// stored; it is recomputed from raw facts on every resolution.
type Status struct {
	Kind        StatusKind
	QueueRank   int    // set only for IN_QUEUE
	HolderAlias string // set only for RESERVED / RESERVED_BY_OTHERS
}

// ResolveInput are the raw per-record facts the resolver works from.
// Reservation may be stale or expired; the resolver decides.
type ResolveInput struct {
	Sold         bool
	Reservation  *reservation.Reservation
	QueueEntries []*queue.Entry
	InViewerCart bool
	ViewerAlias  string
	Now          time.Time
}

// Resolve turns raw facts into one Status. The priority order is
// load-bearing: sold beats everything (queue and reservation rows may
// be stale once a record sells), the viewer's own queue membership
// beats their cart, the cart beats someone else's reservation.
func Resolve(in ResolveInput) Status {
	if in.Sold {
		return Status{Kind: StatusSold}
	}

	if in.ViewerAlias != "" {
		if rank := queue.EffectiveRank(in.QueueEntries, in.ViewerAlias); rank > 0 {
			return Status{Kind: StatusInQueue, QueueRank: rank}
		}
		if in.InViewerCart {
			return Status{Kind: StatusInCart}
		}
	}

	if in.Reservation != nil && in.Reservation.ActiveAt(in.Now) {
		if in.ViewerAlias != "" && in.Reservation.HolderAlias() == in.ViewerAlias {
			return Status{Kind: StatusReserved, HolderAlias: in.Reservation.HolderAlias()}
		}
		return Status{Kind: StatusReservedByOther, HolderAlias: in.Reservation.HolderAlias()}
	}

	return Status{Kind: StatusAvailable}
}
