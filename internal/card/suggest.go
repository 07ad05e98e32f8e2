package card

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/webastocard/internal/hass"
)

// Suggest returns up to n catalog ids in the same domain as id, closest
// first by edit distance. Ties sort by id.
func Suggest(id string, catalog hass.Catalog, n int) []string {
	if n <= 0 || len(catalog) == 0 {
		return nil
	}
	domain, _, _ := strings.Cut(id, ".")
	type candidate struct {
		id   string
		dist int
	}
	var cands []candidate
	for other := range catalog {
		if other == id {
			continue
		}
		if d, _, _ := strings.Cut(other, "."); d != domain {
			continue
		}
		cands = append(cands, candidate{id: other, dist: levenshtein.ComputeDistance(id, other)})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].id < cands[j].id
	})
	if len(cands) > n {
		cands = cands[:n]
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.id
	}
	return out
}
