// Package schedule holds the pure value types the scheduling core is built
// from: week-day sets, lesson and classroom addresses, subject requests,
// schedule data, schedule items, and diagnostic records. Nothing in this
// package touches a database, the network, or a clock; it carries
// invariants (sorted/unique slices, address ordering) and query methods
// only.
package schedule
