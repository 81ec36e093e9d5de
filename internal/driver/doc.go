// Package driver runs the checker over a set of units.
//
// A unit is one resolver tree (a .json file). Units are independent, so they
// are checked in parallel; inside a unit the order is fixed: decode, build
// declaration tables, run sema, and run borrow only when sema accepted the
// unit. Verdicts are cached on disk by content digest.
package driver
