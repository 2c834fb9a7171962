package motor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PluggedDelay marks a motor without an ejection charge.
const PluggedDelay = -1.0

// PluggedSymbol is how a plugged delay is written in designations.
const PluggedSymbol = "P"

// DelayString formats an ejection delay rounded to one decimal, dropping a
// trailing ".0". A plugged delay is rendered as plugged.
func DelayString(delay float64, plugged string) string {
	if delay == PluggedDelay {
		return plugged
	}
	delay = math.RoundToEven(delay*10) / 10
	if delay == math.Trunc(delay) {
		return strconv.Itoa(int(delay))
	}
	return strconv.FormatFloat(delay, 'f', -1, 64)
}

// DesignationWithDelay returns "<designation>-<delay>".
func DesignationWithDelay(designation string, delay float64) string {
	return designation + "-" + DelayString(delay, PluggedSymbol)
}

// ParseDelays parses a delay list such as "3-5-7", "4,6" or "P".
func ParseDelays(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == ',' || r == ' ' })
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		if strings.EqualFold(f, PluggedSymbol) {
			out = append(out, PluggedDelay)
			continue
		}
		d, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("parse delay %q: %w", f, err)
		}
		if d < 0 {
			return nil, fmt.Errorf("parse delay %q: negative delay", f)
		}
		out = append(out, d)
	}
	return out, nil
}

// ImpulseClass returns the NAR/TRA impulse class letter ("1/2A", "A" .. "O")
// for a total impulse in newton-seconds.
func ImpulseClass(totalImpulse float64) string {
	switch {
	case totalImpulse <= 0:
		return ""
	case totalImpulse <= 0.3125:
		return "1/8A"
	case totalImpulse <= 0.625:
		return "1/4A"
	case totalImpulse <= 1.25:
		return "1/2A"
	}
	n := int(math.Ceil(math.Log2(totalImpulse/2.5) - 1e-9))
	if n < 0 {
		n = 0
	}
	if n > 'O'-'A' {
		return "O+"
	}
	return string(rune('A' + n))
}
