// Package sweep runs the matcher over a sequence of tolerances and records
// one artifact set per tolerance plus a summary of the whole sweep.
package sweep

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/banshee-data/gtmerge/internal/config"
)

// maxValues bounds a generated tolerance list.
const maxValues = 10000

// RangeSpec defines an integer tolerance range in milliseconds.
type RangeSpec struct {
	Min  int64
	Max  int64
	Step int64
}

// ParseRangeSpec parses a "min:max:step" string into a RangeSpec.
// Returns an error if the format is invalid or values cannot be parsed.
func ParseRangeSpec(s string) (RangeSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return RangeSpec{}, fmt.Errorf("invalid range format %q: expected min:max:step", s)
	}

	var vals [3]int64
	for i, name := range []string{"min", "max", "step"} {
		v, err := strconv.ParseInt(strings.TrimSpace(parts[i]), 10, 64)
		if err != nil {
			return RangeSpec{}, fmt.Errorf("invalid %s value %q: %w", name, parts[i], err)
		}
		vals[i] = v
	}

	if vals[2] <= 0 {
		return RangeSpec{}, fmt.Errorf("step must be positive, got %d", vals[2])
	}
	return RangeSpec{Min: vals[0], Max: vals[1], Step: vals[2]}, nil
}

// GenerateRange generates the values from min to max (inclusive) stepping by
// step. It fails when step is not positive, min > max or the range would
// exceed maxValues.
func GenerateRange(min, max, step int64) ([]int64, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %d", step)
	}
	if min > max {
		return nil, fmt.Errorf("range start %d is after end %d", min, max)
	}
	if n := (max-min)/step + 1; n > maxValues {
		return nil, fmt.Errorf("range %d:%d:%d yields %d values, limit is %d", min, max, step, n, maxValues)
	}

	var result []int64
	for v := min; v <= max; v += step {
		result = append(result, v)
	}
	return result, nil
}

// ParseCSVInts parses a comma-separated list of int64 values.
// Returns nil, nil for empty input strings.
func ParseCSVInts(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid int '%s': %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseParamList parses a comma-separated list of integers or a range
// specification. If the string contains a colon, it is treated as a
// "min:max:step" range spec.
func ParseParamList(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	if strings.Contains(s, ":") {
		spec, err := ParseRangeSpec(s)
		if err != nil {
			return nil, err
		}
		return GenerateRange(spec.Min, spec.Max, spec.Step)
	}
	return ParseCSVInts(s)
}

// Plan is the ordered list of tolerances of one run, in milliseconds.
type Plan struct {
	Tolerances []int64
}

// NewPlan derives the tolerances to run from cfg. An explicit tolerance list
// wins; otherwise a sweep runs from ToleranceFirst to Tolerance by
// ToleranceStep, and a single pass uses Tolerance alone.
func NewPlan(cfg config.MergeConfig) (Plan, error) {
	var tols []int64
	switch {
	case cfg.ToleranceList != "":
		vals, err := ParseParamList(cfg.ToleranceList)
		if err != nil {
			return Plan{}, fmt.Errorf("parsing %s: %w", config.KeyToleranceList, err)
		}
		tols = vals
	case cfg.IterateOverTol:
		vals, err := GenerateRange(cfg.ToleranceFirst, cfg.Tolerance, cfg.ToleranceStep)
		if err != nil {
			return Plan{}, fmt.Errorf("building tolerance sweep: %w", err)
		}
		tols = vals
	default:
		tols = []int64{cfg.Tolerance}
	}

	if len(tols) == 0 {
		return Plan{}, fmt.Errorf("tolerance plan is empty")
	}
	for _, t := range tols {
		if t < 0 {
			return Plan{}, fmt.Errorf("tolerance must be non-negative, got %d", t)
		}
	}
	return Plan{Tolerances: tols}, nil
}
