package response

type SessionResponse struct {
	Alias string `json:"alias"`
	Token string `json:"token"`
}
