package layout

import (
	"strings"

	"github.com/matzehuels/netsmith/pkg/errors"
)

// Direction selects where the frontier allocator extends the canvas.
// Exactly one bit must be set.
type Direction uint8

const (
	Right Direction = 1 << iota
	Down
)

// Validate reports INVALID_DIRECTION unless exactly one direction is set.
func (d Direction) Validate() error {
	if d != Right && d != Down {
		return errors.New(errors.ErrCodeInvalidDirection, "exactly one of right or down is required, got %s", d)
	}
	return nil
}

func (d Direction) String() string {
	var parts []string
	if d&Right != 0 {
		parts = append(parts, "right")
	}
	if d&Down != 0 {
		parts = append(parts, "down")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseDirection converts "right" or "down" into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "right", "r":
		return Right, nil
	case "down", "d":
		return Down, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidDirection, "unknown direction %q", s)
}
