package site

import "sort"

// sortStable orders by key ascending.  sort.SliceStable keeps fetch order on
// equal keys, which is the documented tie-break for sections and fields.
func sortStable[T any](s []T, key func(T) int) {
	sort.SliceStable(s, func(i, j int) bool { return key(s[i]) < key(s[j]) })
}
