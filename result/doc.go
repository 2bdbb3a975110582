// Package result provides the two closed value types the rest of the module
// speaks: Result (ok or error) and Option (some or none).
//
// Both are immutable value types compared structurally. Methods that would
// need a second type parameter are package functions instead:
//
//	r := result.From(strconv.Atoi(s))
//	doubled := result.Map(r, func(n int) int { return n * 2 })
//	fmt.Println(doubled.UnwrapOr(0))
//
// Collect turns a slice of per-item results into a fail-fast result of a
// slice, which is how callers of async.Parallel opt into all-or-nothing
// semantics.
package result
