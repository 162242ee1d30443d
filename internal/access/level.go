package access

import (
	"encoding/json"
	"fmt"
)

// Level is the ordinal access grant controlling field visibility. The order
// is total: public < after_click < after_rfq. Sufficiency checks must go
// through the ordering, never string comparison.
type Level int

const (
	LevelPublic Level = iota
	LevelAfterClick
	LevelAfterRFQ
)

var levelNames = map[Level]string{
	LevelPublic:     "public",
	LevelAfterClick: "after_click",
	LevelAfterRFQ:   "after_rfq",
}

// ParseLevel converts the wire/storage representation back to a Level.
func ParseLevel(s string) (Level, error) {
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return LevelPublic, fmt.Errorf("%w: unknown access level %q", ErrInvalidInput, s)
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Sufficient reports whether a holder of l may view content requiring need.
func (l Level) Sufficient(need Level) bool {
	return l >= need
}

// MarshalJSON serializes the level as its name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON parses the level from its name.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
