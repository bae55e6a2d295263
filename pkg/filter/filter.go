// Package filter turns category toggles into the list of remote file names
// left out of a transfer.
package filter

import (
	"github.com/DeBrosOfficial/sitelogs/pkg/logs"
)

// ExcludedFilenames resolves a selection into file names to exclude.
//
// Under Exclude polarity every enabled category is excluded. Under Include
// polarity the first enabled category seeds the list with every other
// category and each later enabled category is removed from it, so naming
// categories means "only these". Include with nothing enabled excludes
// nothing. Unknown categories are ignored.
func ExcludedFilenames(sel logs.FilterSelection) []string {
	known := make(map[logs.Category]bool)
	for _, c := range logs.AllCategories() {
		known[c] = true
	}

	var acc []string
	seeded := false
	for _, t := range sel.Toggles {
		if !t.Enabled || !known[t.Category] {
			continue
		}

		if sel.Polarity == logs.Exclude {
			acc = append(acc, t.Category.FileName())
			continue
		}

		if !seeded {
			seeded = true
			for _, c := range logs.AllCategories() {
				if c != t.Category {
					acc = append(acc, string(c))
				}
			}
			continue
		}
		acc = without(acc, string(t.Category))
	}

	// Names collected under Include still lack the suffix.
	if sel.Polarity == logs.Include {
		for i := range acc {
			acc[i] += logs.LogSuffix
		}
	}
	return acc
}

// RsyncArgs renders exclude patterns as rsync arguments.
func RsyncArgs(patterns []string) []string {
	args := make([]string, 0, len(patterns)*2)
	for _, p := range patterns {
		args = append(args, "--exclude", p)
	}
	return args
}

func without(list []string, name string) []string {
	out := list[:0]
	for _, v := range list {
		if v != name {
			out = append(out, v)
		}
	}
	return out
}
