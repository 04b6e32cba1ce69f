package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Coerce converts a cell value to the Go type backing kind k. Blank strings
// become nil for every non-string kind. Floats truncate toward zero when
// coerced to int.
func Coerce(v any, k Kind) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && k != KindString && strings.TrimSpace(s) == "" {
		return nil, nil
	}
	switch k {
	case KindString:
		return FormatValue(normalizeGo(v)), nil
	case KindInt:
		switch t := normalizeGo(v).(type) {
		case int64:
			return t, nil
		case float64:
			if math.IsNaN(t) || math.IsInf(t, 0) {
				return nil, fmt.Errorf("non-finite float %v", t)
			}
			return int64(t), nil
		case bool:
			if t {
				return int64(1), nil
			}
			return int64(0), nil
		case string:
			s := strings.TrimSpace(t)
			if x, err := strconv.ParseInt(s, 10, 64); err == nil {
				return x, nil
			}
			if x, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(x) && !math.IsInf(x, 0) {
				return int64(x), nil
			}
		}
	case KindFloat:
		switch t := normalizeGo(v).(type) {
		case float64:
			return t, nil
		case int64:
			return float64(t), nil
		case bool:
			if t {
				return 1.0, nil
			}
			return 0.0, nil
		case string:
			if x, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return x, nil
			}
		}
	case KindBool:
		switch t := normalizeGo(v).(type) {
		case bool:
			return t, nil
		case int64:
			if t == 0 || t == 1 {
				return t == 1, nil
			}
		case float64:
			if t == 0 || t == 1 {
				return t == 1, nil
			}
		case string:
			if b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(t))); err == nil {
				return b, nil
			}
		}
	case KindTime:
		switch t := normalizeGo(v).(type) {
		case time.Time:
			return t, nil
		case int64:
			return time.Unix(t, 0).UTC(), nil
		case string:
			if ts, err := ParseTime(t); err == nil {
				return ts, nil
			}
		}
	default:
		return nil, fmt.Errorf("invalid target kind %d", k)
	}
	return nil, fmt.Errorf("cannot coerce %T %q to %s", v, FormatValue(normalizeGo(v)), k)
}

// normalizeGo folds the Go numeric zoo onto int64/float64.
func normalizeGo(v any) any {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case float32:
		return float64(t)
	case []byte:
		return string(t)
	}
	return v
}

// KindOf maps a Go value onto the kind that would store it, KindInvalid for
// nil or unsupported types.
func KindOf(v any) Kind {
	switch normalizeGo(v).(type) {
	case bool:
		return KindBool
	case int64:
		return KindInt
	case float64:
		return KindFloat
	case string:
		return KindString
	case time.Time:
		return KindTime
	}
	return KindInvalid
}
