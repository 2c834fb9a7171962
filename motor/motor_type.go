package motor

import (
	"fmt"
	"strings"
)

// MotorType is the construction category of a motor.
type MotorType int

const (
	TypeUnknown MotorType = iota
	TypeSingleUse
	TypeReload
	TypeHybrid
)

func (t MotorType) String() string {
	switch t {
	case TypeUnknown:
		return "unknown"
	case TypeSingleUse:
		return "single-use"
	case TypeReload:
		return "reload"
	case TypeHybrid:
		return "hybrid"
	}
	return fmt.Sprintf("MotorType(%d)", int(t))
}

// Valid reports whether t is one of the supported categories.
func (t MotorType) Valid() bool {
	return t >= TypeUnknown && t <= TypeHybrid
}

// ParseMotorType accepts the String form plus the usual short spellings.
func ParseMotorType(s string) (MotorType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown":
		return TypeUnknown, nil
	case "single-use", "single", "su":
		return TypeSingleUse, nil
	case "reload", "reloadable", "rms":
		return TypeReload, nil
	case "hybrid":
		return TypeHybrid, nil
	}
	return TypeUnknown, fmt.Errorf("unsupported motor type %q", s)
}
