package request

import "strings"

type CreateSessionRequest struct {
	Alias string `json:"alias" binding:"required,min=1,max=64"`
}

func (r CreateSessionRequest) NormalizedAlias() string {
	return strings.TrimSpace(r.Alias)
}
