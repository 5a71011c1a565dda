package quant

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownMode = errors.New("unknown quantization mode")

// Mode selects how a coefficient vector is quantized
type Mode string

const (
	// ModeShared uses one range for the whole vector
	ModeShared Mode = "shared"

	// ModeIndividual uses one range per element
	ModeIndividual Mode = "individual"
)

// ParseMode converts a case insensitive name into a Mode
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeShared, ModeIndividual:
		return m, nil
	default:
		return "", fmt.Errorf("%q, %w", s, ErrUnknownMode)
	}
}

func (m Mode) String() string {
	return string(m)
}
