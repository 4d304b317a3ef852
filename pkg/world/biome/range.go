package biome

import (
	"fmt"
	"strconv"
	"strings"
)

// RangeKind selects which bounds of a Range are active.
type RangeKind uint8

const (
	RangeFull            RangeKind = iota // ..
	RangeClosed                           // a..b, end exclusive
	RangeClosedInclusive                  // a..=b
	RangeAtLeast                          // a..
	RangeBelow                            // ..b, end exclusive
)

// Range is an interval over one climate axis.
type Range struct {
	Kind       RangeKind
	Start, End float64
}

func Full() Range { return Range{Kind: RangeFull} }

func Closed(start, end float64) Range { return Range{Kind: RangeClosed, Start: start, End: end} }

func Inclusive(start, end float64) Range {
	return Range{Kind: RangeClosedInclusive, Start: start, End: end}
}

func AtLeast(start float64) Range { return Range{Kind: RangeAtLeast, Start: start} }

func Below(end float64) Range { return Range{Kind: RangeBelow, End: end} }

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	switch r.Kind {
	case RangeClosed:
		return v >= r.Start && v < r.End
	case RangeClosedInclusive:
		return v >= r.Start && v <= r.End
	case RangeAtLeast:
		return v >= r.Start
	case RangeBelow:
		return v < r.End
	default:
		return true
	}
}

func (r Range) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	switch r.Kind {
	case RangeClosed:
		return f(r.Start) + ".." + f(r.End)
	case RangeClosedInclusive:
		return f(r.Start) + "..=" + f(r.End)
	case RangeAtLeast:
		return f(r.Start) + ".."
	case RangeBelow:
		return ".." + f(r.End)
	default:
		return ".."
	}
}

// ParseRange parses the text forms "a..b", "a..=b", "a..", "..b" and "..".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	lo, hi, ok := strings.Cut(s, "..")
	if !ok {
		return Range{}, fmt.Errorf("parse range %q: missing \"..\"", s)
	}
	inclusive := strings.HasPrefix(hi, "=")
	hi = strings.TrimPrefix(hi, "=")

	parse := func(part string) (float64, bool, error) {
		part = strings.TrimSpace(part)
		if part == "" {
			return 0, false, nil
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return 0, false, fmt.Errorf("parse range %q: %w", s, err)
		}
		return v, true, nil
	}
	start, hasStart, err := parse(lo)
	if err != nil {
		return Range{}, err
	}
	end, hasEnd, err := parse(hi)
	if err != nil {
		return Range{}, err
	}

	switch {
	case inclusive && (!hasStart || !hasEnd):
		return Range{}, fmt.Errorf("parse range %q: inclusive ranges need both bounds", s)
	case inclusive:
		return Inclusive(start, end), nil
	case hasStart && hasEnd:
		return Closed(start, end), nil
	case hasStart:
		return AtLeast(start), nil
	case hasEnd:
		return Below(end), nil
	default:
		return Full(), nil
	}
}

func (r Range) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Range) UnmarshalText(b []byte) error {
	parsed, err := ParseRange(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
