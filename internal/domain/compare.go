package domain

import "strconv"

// LessID orders record identifiers for deterministic tie-breaking. Dump
// identifiers are numeric strings, so numeric order applies when both sides
// parse; otherwise plain string order.
func LessID(a, b string) bool {
	na, errA := strconv.ParseInt(a, 10, 64)
	nb, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return na < nb
	}
	return a < b
}
