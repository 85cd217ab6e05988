// Package test carries shared helpers for this repository's tests.
package test

import (
	"github.com/d4l3k/messagediff"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff compares two values for a test assertion. String pairs are diffed
// as text via DiffStrings; everything else structurally.
func Diff(a, b interface{}) (diff string, equal bool) {
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return DiffStrings(as, bs)
	}
	return messagediff.PrettyDiff(a, b)
}

// DiffStrings renders a character-level text diff. Equal strings yield an
// empty diff without running the diff engine, so it is cheap to call on
// every assertion.
func DiffStrings(a, b string) (diff string, equal bool) {
	if a == b {
		return "", true
	}
	dmp := diffmatchpatch.New()
	return dmp.DiffPrettyText(dmp.DiffMain(a, b, false)), false
}
