package response

import (
	"vinyl-reserve/internal/domain/record"

	"github.com/google/uuid"
)

type StatusResponse struct {
	RecordID    uuid.UUID `json:"recordId"`
	Status      string    `json:"status"`
	QueueRank   int       `json:"queueRank,omitempty"`
	HolderAlias string    `json:"holderAlias,omitempty"`
}

func FromStatus(recordID uuid.UUID, st record.Status) *StatusResponse {
	resp := &StatusResponse{
		RecordID: recordID,
		Status:   st.Kind.String(),
	}
	if st.Kind == record.StatusInQueue {
		resp.QueueRank = st.QueueRank
	}
	if st.Kind == record.StatusReserved || st.Kind == record.StatusReservedByOther {
		resp.HolderAlias = st.HolderAlias
	}
	return resp
}
