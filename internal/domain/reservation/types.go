package reservation

type Status string

const (
	StatusReserved Status = "RESERVED"
	StatusSold     Status = "SOLD"
	StatusExpired  Status = "EXPIRED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusReserved, StatusSold, StatusExpired:
		return true
	default:
		return false
	}
}
