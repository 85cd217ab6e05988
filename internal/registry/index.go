package registry

import (
	"github.com/armon/go-radix"

	"github.com/CirnoV/vrc-get/vps"
)

// Typed wrapper around the radix tree keyed by package name. Just a simple
// shim that lets us avoid type asserting anywhere else.

type packageTrie struct {
	t *radix.Tree
}

func newPackageTrie() packageTrie {
	return packageTrie{t: radix.New()}
}

// Get is used to look up a specific name, returning its versions and if it
// was found.
func (t packageTrie) Get(name string) ([]*vps.PackageInfo, bool) {
	if v, has := t.t.Get(name); has {
		return v.([]*vps.PackageInfo), true
	}
	return nil, false
}

// Insert adds or replaces the version list for a name. Returns if replaced.
func (t packageTrie) Insert(name string, versions []*vps.PackageInfo) bool {
	_, had := t.t.Insert(name, versions)
	return had
}

// WalkPrefix visits every name under the given prefix in sorted order.
func (t packageTrie) WalkPrefix(prefix string, fn func(name string, versions []*vps.PackageInfo) bool) {
	t.t.WalkPrefix(prefix, func(s string, v interface{}) bool {
		return fn(s, v.([]*vps.PackageInfo))
	})
}

// Len is used to return the number of names in the tree.
func (t packageTrie) Len() int {
	return t.t.Len()
}
