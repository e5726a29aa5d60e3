package mentions

import (
	"fmt"
	"maps"
	"slices"

	"github.com/giygas/drug-mentions/publicationsparser/entities"
)

// DefaultDepth is the number of hops used when the caller does not pick one.
const DefaultDepth = 2

// CoMentioned returns the drugs reachable from seed in at most depth hops over the
// pubmed drug/journal graph. One hop goes from a drug to its pubmed journals and from
// those journals to every drug with a pubmed mention in them. Clinical mentions are
// not part of the graph.
//
// Every drug reached on a hop is expanded again on the next one, so the walk stops
// after depth hops even when the graph has cycles. The seed is kept in the result
// when it is reached. An unknown seed, or one without pubmed mentions, yields an
// empty result.
func CoMentioned(idx *entities.MentionIndex, seed string, depth int) ([]string, error) {
	if seed == "" {
		return nil, fmt.Errorf("%w: seed drug is empty", ErrInvalidInput)
	}
	if depth < 1 {
		return nil, fmt.Errorf("%w: depth must be at least 1, got %d", ErrInvalidInput, depth)
	}
	if idx == nil {
		return []string{}, nil
	}

	reached := make(map[string]struct{})
	frontier := []string{seed}

	for hop := 0; hop < depth && len(frontier) > 0; hop++ {
		next := make(map[string]struct{})
		for _, drug := range frontier {
			for _, journal := range idx.PubmedJournals(drug) {
				for _, neighbour := range idx.PubmedDrugs(journal) {
					next[neighbour] = struct{}{}
					reached[neighbour] = struct{}{}
				}
			}
		}
		frontier = slices.Sorted(maps.Keys(next))
	}

	out := slices.AppendSeq(make([]string, 0, len(reached)), maps.Keys(reached))
	slices.Sort(out)
	return out, nil
}
