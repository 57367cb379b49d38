package pipeline

import (
	"github.com/ebivariation/vepmap/internal/severity"
	"github.com/ebivariation/vepmap/internal/vep"
)

// Selected is the single consequence chosen for one variant, or the
// "no annotation" sentinel when Found is false.
type Selected struct {
	Term     string
	GeneID   string
	GeneName string
	Found    bool
}

// selectMostSevere picks exactly one record from all consequences returned
// for a single variant. The record with the lowest severity rank wins; among
// tied records one with a gene assignment is preferred, then ties are broken
// by ascending gene ID and ascending transcript ID so that repeated runs on
// the same records, in any order, choose identically.
func selectMostSevere(group []vep.Consequence, ranker *severity.Ranker) Selected {
	if len(group) == 0 {
		return Selected{}
	}

	best := group[0]
	bestRank := ranker.Rank(best.Term)
	for _, c := range group[1:] {
		if better(c, ranker.Rank(c.Term), best, bestRank) {
			best = c
			bestRank = ranker.Rank(c.Term)
		}
	}

	return Selected{
		Term:     best.Term,
		GeneID:   best.GeneID,
		GeneName: best.GeneName,
		Found:    true,
	}
}

// better reports whether candidate c should replace the current best record.
func better(c vep.Consequence, cRank int, best vep.Consequence, bestRank int) bool {
	if cRank != bestRank {
		return cRank < bestRank
	}
	cHasGene := c.GeneID != ""
	bestHasGene := best.GeneID != ""
	if cHasGene != bestHasGene {
		return cHasGene
	}
	if c.GeneID != best.GeneID {
		return c.GeneID < best.GeneID
	}
	if c.TranscriptID != best.TranscriptID {
		return c.TranscriptID < best.TranscriptID
	}
	// Distinct unknown terms share the same rank; the term itself is the
	// last resort so the pick stays order-independent.
	return c.Term < best.Term
}
