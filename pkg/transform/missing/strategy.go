// Package missing resolves null cells, either by dropping the rows that hold
// them or by filling them according to a Strategy.
package missing

import (
	"fmt"
	"strings"
)

// Strategy is a closed set of null-handling policies. Build one with Drop,
// FillWith, FillMean, FillMedian, FillMode, ForwardFill, BackwardFill or Auto.
type Strategy interface {
	String() string
	strategy()
}

type dropStrategy struct{}
type fillWith struct{ value any }
type fillStat struct{ stat string }
type forwardFill struct{}
type backwardFill struct{}
type autoStrategy struct{ placeholder string }

func (dropStrategy) strategy() {}
func (fillWith) strategy()     {}
func (fillStat) strategy()     {}
func (forwardFill) strategy()  {}
func (backwardFill) strategy() {}
func (autoStrategy) strategy() {}

func (dropStrategy) String() string   { return "drop" }
func (s fillWith) String() string     { return fmt.Sprintf("fill:%v", s.value) }
func (s fillStat) String() string     { return s.stat }
func (forwardFill) String() string    { return "ffill" }
func (backwardFill) String() string   { return "bfill" }
func (s autoStrategy) String() string { return "auto:" + s.placeholder }

// Drop removes every row holding a null in the target columns.
func Drop() Strategy { return dropStrategy{} }

// FillWith replaces nulls with v, coerced to each column's kind.
func FillWith(v any) Strategy { return fillWith{value: v} }

func FillMean() Strategy   { return fillStat{stat: "mean"} }
func FillMedian() Strategy { return fillStat{stat: "median"} }
func FillMode() Strategy   { return fillStat{stat: "mode"} }

// ForwardFill carries the last non-null value down the column.
func ForwardFill() Strategy { return forwardFill{} }

// BackwardFill pulls the next non-null value up the column.
func BackwardFill() Strategy { return backwardFill{} }

// Auto fills numeric columns with their median and string columns with
// placeholder. Bool and time columns are left alone.
func Auto(placeholder string) Strategy { return autoStrategy{placeholder: placeholder} }

// ParseStrategy maps configuration text onto a Strategy. "none" and "" yield
// a nil Strategy.
func ParseStrategy(s string) (Strategy, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	switch strings.ToLower(name) {
	case "", "none":
		return nil, nil
	case "drop":
		return Drop(), nil
	case "fill":
		if !hasArg {
			return nil, fmt.Errorf("fill strategy needs a value, e.g. fill:0")
		}
		return FillWith(arg), nil
	case "mean":
		return FillMean(), nil
	case "median":
		return FillMedian(), nil
	case "mode":
		return FillMode(), nil
	case "ffill", "forward_fill":
		return ForwardFill(), nil
	case "bfill", "backward_fill":
		return BackwardFill(), nil
	case "auto":
		if !hasArg {
			arg = "N/A"
		}
		return Auto(arg), nil
	}
	return nil, fmt.Errorf("unknown missing-value strategy %q", s)
}
