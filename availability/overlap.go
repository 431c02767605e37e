package availability

import (
	"fmt"
	"strings"
)

// OverlapPolicy selects how a candidate is compared against busy time.
type OverlapPolicy int

const (
	// EndpointOverlap flags a conflict only when the candidate's start or end
	// lands inside a busy interval. A busy interval strictly inside the
	// candidate is not detected.
	EndpointOverlap OverlapPolicy = iota
	// StrictOverlap flags any non-empty intersection.
	StrictOverlap
)

func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "endpoint":
		return EndpointOverlap, nil
	case "strict":
		return StrictOverlap, nil
	default:
		return 0, fmt.Errorf("unknown overlap policy %q", s)
	}
}

func (p OverlapPolicy) String() string {
	if p == StrictOverlap {
		return "strict"
	}
	return "endpoint"
}

func (p OverlapPolicy) overlaps(s1, e1, s2, e2 int64) bool {
	if p == StrictOverlap {
		return intersects(s1, e1, s2, e2)
	}
	return endpointOverlap(s1, e1, s2, e2)
}

// HasBookedOverlap checks a within-day candidate against the busy intervals
// of one weekday.
func (p OverlapPolicy) HasBookedOverlap(candidate Interval, booked []Interval) bool {
	for _, b := range booked {
		if p.overlaps(candidate.Start, candidate.End, b.Start, b.End) {
			return true
		}
	}
	return false
}

// HasBookedSpanOverlap checks an absolute candidate against absolute busy
// spans.
func (p OverlapPolicy) HasBookedSpanOverlap(candidate Span, booked []Span) bool {
	for _, b := range booked {
		if p.overlaps(candidate.Start, candidate.End, b.Start, b.End) {
			return true
		}
	}
	return false
}
