package availability

// IsWithinFree reports whether candidate is fully contained in at least one
// of the free intervals.
func IsWithinFree(candidate Interval, free []Interval) bool {
	for _, f := range free {
		if contains(f.Start, f.End, candidate.Start, candidate.End) {
			return true
		}
	}
	return false
}
