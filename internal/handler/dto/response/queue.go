package response

import (
	"time"

	"vinyl-reserve/internal/domain/queue"

	"github.com/google/uuid"
)

type QueueEntryResponse struct {
	RecordID      uuid.UUID `json:"recordId"`
	Alias         string    `json:"alias"`
	EffectiveRank int       `json:"effectiveRank"`
	JoinedAt      time.Time `json:"joinedAt"`
}

func FromQueueEntry(entry *queue.Entry, rank int) *QueueEntryResponse {
	return &QueueEntryResponse{
		RecordID:      entry.RecordID(),
		Alias:         entry.Alias(),
		EffectiveRank: rank,
		JoinedAt:      entry.JoinedAt(),
	}
}

type QueueRankResponse struct {
	RecordID      uuid.UUID `json:"recordId"`
	EffectiveRank int       `json:"effectiveRank"`
}
