// Package borrow verifies linear-resource discipline: non-copy values are
// moved at most once, destructor-carrying values are dropped at most once,
// and borrows of overlapping places never mix exclusive with shared access.
//
// The pass is a single pre-order walk per function. Branch arms get a forked
// state and their moved sets are unioned back afterwards.
package borrow
