package domain

// Side is one of the two seats in a room.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// ParseSide accepts exactly "A" or "B".
func ParseSide(raw string) (Side, error) {
	switch Side(raw) {
	case SideA:
		return SideA, nil
	case SideB:
		return SideB, nil
	default:
		return "", ErrInvalidSide
	}
}

func (s Side) String() string {
	return string(s)
}
