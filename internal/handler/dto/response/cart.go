package response

import (
	"time"

	"vinyl-reserve/internal/domain/cart"

	"github.com/google/uuid"
)

type CartEntryResponse struct {
	RecordID        uuid.UUID `json:"recordId"`
	Status          string    `json:"status"`
	LastValidatedAt time.Time `json:"lastValidatedAt"`
	AddedAt         time.Time `json:"addedAt"`
}

type CartResponse struct {
	Alias   string              `json:"alias"`
	Entries []CartEntryResponse `json:"entries"`
}

func FromCartEntries(alias string, entries []*cart.Entry) *CartResponse {
	resp := &CartResponse{
		Alias:   alias,
		Entries: make([]CartEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, CartEntryResponse{
			RecordID:        e.RecordID(),
			Status:          e.LastKnownStatus(),
			LastValidatedAt: e.LastValidatedAt(),
			AddedAt:         e.AddedAt(),
		})
	}
	return resp
}
