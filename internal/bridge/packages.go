package bridge

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FilterPackages returns the packages whose name fuzzily matches query, best
// match first. An empty query returns pkgs unchanged.
func FilterPackages(pkgs []Package, query string) []Package {
	query = strings.TrimSpace(query)
	if query == "" {
		return pkgs
	}
	names := make([]string, len(pkgs))
	for i, p := range pkgs {
		names[i] = p.Name
	}
	ranks := fuzzy.RankFindFold(query, names)
	sort.Stable(ranks)

	out := make([]Package, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, pkgs[r.OriginalIndex])
	}
	return out
}
