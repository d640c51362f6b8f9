package reconcile

import (
	"sort"
	"strings"
)

// Identity is a normalized device hostname.
// Two raw hostnames name the same device iff their trimmed, upper-cased forms are equal.
type Identity string

// Normalize converts a raw hostname into its Identity form.
// It returns false for empty or blank input, which is never a valid member of an inventory.
func Normalize(raw string) (Identity, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}
	return Identity(s), true
}

// IdentitySet is a set of normalized identities.
type IdentitySet map[Identity]struct{}

// NormalizeAll normalizes every raw hostname and collapses duplicates.
func NormalizeAll(raw []string) IdentitySet {
	set := make(IdentitySet, len(raw))
	for _, r := range raw {
		set.Add(r)
	}
	return set
}

// Add normalizes raw and adds it to the set. It reports whether raw was a valid identity.
func (s IdentitySet) Add(raw string) bool {
	id, ok := Normalize(raw)
	if !ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Contains reports whether id is a member of the set.
func (s IdentitySet) Contains(id Identity) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of identities in the set.
func (s IdentitySet) Len() int {
	return len(s)
}

// Difference returns the identities of s that are not in other.
func (s IdentitySet) Difference(other IdentitySet) IdentitySet {
	diff := make(IdentitySet)
	for id := range s {
		if !other.Contains(id) {
			diff[id] = struct{}{}
		}
	}
	return diff
}

// Sorted returns the members in ascending order. The result is never nil.
func (s IdentitySet) Sorted() []Identity {
	ids := make([]Identity, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})
	return ids
}
