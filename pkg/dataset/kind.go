package dataset

import (
	"fmt"
	"strings"
)

// Kind enumerates supported logical types.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return "invalid"
	}
}

// Numeric reports whether values of k can take part in arithmetic.
func (k Kind) Numeric() bool { return k == KindInt || k == KindFloat }

// ParseKind maps a user-facing type name onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bool", "boolean":
		return KindBool, nil
	case "int", "integer", "int64":
		return KindInt, nil
	case "float", "float64", "double", "number", "numeric":
		return KindFloat, nil
	case "string", "str", "text":
		return KindString, nil
	case "time", "datetime", "date", "timestamp":
		return KindTime, nil
	}
	return KindInvalid, fmt.Errorf("unknown type %q", s)
}

// MarshalText lets kinds appear by name in exported reports.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
