package model

import (
	"fmt"
	"strings"
)

// Label classifies a sample (and the maneuver built from a run of samples).
// The set is closed: board labels, leg labels, pre-start and None.
type Label uint8

// Board labels are produced by the board classifier, leg labels by the leg
// classifier. PreStart is shared by both.
const (
	None Label = iota
	UpwindStarboard
	UpwindPort
	DownwindStarboard
	DownwindPort
	PreStart
	Upwind
	Downwind
)

var labelNames = [...]string{
	None:              "none",
	UpwindStarboard:   "U-S",
	UpwindPort:        "U-P",
	DownwindStarboard: "D-S",
	DownwindPort:      "D-P",
	PreStart:          "PS",
	Upwind:            "Upwind",
	Downwind:          "Downwind",
}

// String returns the wire name of the label, e.g. "U-P".
func (l Label) String() string {
	if int(l) < len(labelNames) {
		return labelNames[l]
	}
	return fmt.Sprintf("Label(%d)", uint8(l))
}

// IsUpwind reports whether the label names an upwind board or leg.
func (l Label) IsUpwind() bool {
	return strings.HasPrefix(l.String(), "U")
}

// MarshalText implements encoding.TextMarshaler.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Label) UnmarshalText(b []byte) error {
	parsed, err := ParseLabel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLabel resolves a wire name back to a Label.
func ParseLabel(s string) (Label, error) {
	for i, name := range labelNames {
		if name == s {
			return Label(i), nil
		}
	}
	return None, fmt.Errorf("%w: %q", ErrUnknownLabel, s)
}
