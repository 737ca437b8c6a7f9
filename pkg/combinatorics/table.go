package combinatorics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// componentSize maps a component key "<in> <out> <group sizes>" to the number
// of admissible local parameter assignments for a node of that shape. The
// values are precomputed and must not be edited.
var componentSize = map[string]int64{
	"1 1 1": 3,
	"1 2 1": 6,
	"1 3 1": 10,
	"1 4 1": 15,
	"1 5 1": 21,

	"2 1 2":   6,
	"2 1 1 1": 6,
	"2 2 2":   20,
	"2 2 1 1": 20,
	"2 3 2":   50,
	"2 3 1 1": 50,
	"2 4 2":   105,
	"2 4 1 1": 105,
	"2 5 2":   196,
	"2 5 1 1": 196,

	"3 1 3":     20,
	"3 1 1 1 1": 20,
	"3 1 1 2":   20,
	"3 2 3":     150,
	"3 2 1 1 1": 150,
	"3 2 1 2":   155,
	"3 3 3":     707,
	"3 3 1 1 1": 707,
	"3 3 1 2":   756,
	"3 4 3":     2518,
	"3 4 1 1 1": 2518,
	"3 4 1 2":   2778,
	"3 5 3":     7416,
	"3 5 1 1 1": 7416,
	"3 5 1 2":   8412,

	"4 1 4":       150,
	"4 1 1 1 1 1": 150,
	"4 2 4":       3287,
	"4 2 1 1 1 1": 3287,
	"4 3 4":       35368,
	"4 3 1 1 1 1": 35368,
	"4 4 4":       253146,
	"4 4 1 1 1 1": 253146,

	"5 1 5":         3287,
	"5 1 1 1 1 1 1": 3287,
}

// ComponentKey builds the lookup key for a node with in-degree n, out-degree
// m and the given OR-group sizes. The sizes are sorted ascending; the caller's
// slice is not modified.
func ComponentKey(n, m int, groupSizes []int) string {
	sizes := make([]int, len(groupSizes))
	copy(sizes, groupSizes)
	sort.Ints(sizes)

	parts := make([]string, len(sizes))
	for i, s := range sizes {
		parts[i] = strconv.Itoa(s)
	}
	return fmt.Sprintf("%d %d %s", n, m, strings.Join(parts, " "))
}

// Lookup returns the local factor for a component key.
func Lookup(key string) (int64, bool) {
	v, ok := componentSize[key]
	return v, ok
}

// Keys returns every classified component key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(componentSize))
	for k := range componentSize {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
