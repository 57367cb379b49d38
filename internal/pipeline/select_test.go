package pipeline

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebivariation/vepmap/internal/severity"
	"github.com/ebivariation/vepmap/internal/variant"
	"github.com/ebivariation/vepmap/internal/vep"
)

func TestSelectMostSevere_EmptyGroup(t *testing.T) {
	sel := selectMostSevere(nil, severity.Default())
	assert.False(t, sel.Found)
	assert.Empty(t, sel.Term)
}

func TestSelectMostSevere_PicksLowestRank(t *testing.T) {
	d, err := variant.Parse("1:1000:A:G")
	require.NoError(t, err)

	group := []vep.Consequence{
		{Variant: d, Term: "synonymous_variant", GeneID: "ENSG1", TranscriptID: "ENST1"},
		{Variant: d, Term: "missense_variant", GeneID: "ENSG1", TranscriptID: "ENST2"},
		{Variant: d, Term: "intron_variant", GeneID: "ENSG1", TranscriptID: "ENST3"},
	}

	sel := selectMostSevere(group, severity.Default())
	require.True(t, sel.Found)
	assert.Equal(t, "missense_variant", sel.Term)
}

func TestSelectMostSevere_PrefersGeneAssignment(t *testing.T) {
	d, err := variant.Parse("1:1000:A:G")
	require.NoError(t, err)

	group := []vep.Consequence{
		{Variant: d, Term: "missense_variant", TranscriptID: "ENST1"},
		{Variant: d, Term: "missense_variant", GeneID: "ENSG2", GeneName: "GENE2", TranscriptID: "ENST2"},
	}

	sel := selectMostSevere(group, severity.Default())
	assert.Equal(t, "ENSG2", sel.GeneID)
	assert.Equal(t, "GENE2", sel.GeneName)
}

func TestSelectMostSevere_TieBrokenByGeneThenTranscript(t *testing.T) {
	d, err := variant.Parse("1:1000:A:G")
	require.NoError(t, err)

	group := []vep.Consequence{
		{Variant: d, Term: "missense_variant", GeneID: "ENSG9", TranscriptID: "ENST1"},
		{Variant: d, Term: "missense_variant", GeneID: "ENSG2", TranscriptID: "ENST9"},
		{Variant: d, Term: "missense_variant", GeneID: "ENSG2", TranscriptID: "ENST3"},
	}

	sel := selectMostSevere(group, severity.Default())
	assert.Equal(t, "ENSG2", sel.GeneID)
}

func TestSelectMostSevere_DeterministicUnderPermutation(t *testing.T) {
	d, err := variant.Parse("1:1000:A:G")
	require.NoError(t, err)

	group := []vep.Consequence{
		{Variant: d, Term: "missense_variant", GeneID: "ENSG3", TranscriptID: "ENST5"},
		{Variant: d, Term: "missense_variant", GeneID: "ENSG3", TranscriptID: "ENST2"},
		{Variant: d, Term: "missense_variant", GeneID: "ENSG1", TranscriptID: "ENST8"},
		{Variant: d, Term: "stop_gained", GeneID: "ENSG7", TranscriptID: "ENST4"},
		{Variant: d, Term: "stop_gained", GeneID: "ENSG7", TranscriptID: "ENST1"},
		{Variant: d, Term: "synonymous_variant", GeneID: "ENSG1", TranscriptID: "ENST3"},
	}

	ranker := severity.Default()
	want := selectMostSevere(group, ranker)
	assert.Equal(t, "stop_gained", want.Term)
	assert.Equal(t, "ENSG7", want.GeneID)

	rng := rand.New(rand.NewSource(42))
	for range 50 {
		shuffled := make([]vep.Consequence, len(group))
		copy(shuffled, group)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		assert.Equal(t, want, selectMostSevere(shuffled, ranker))
	}
}

func TestSelectMostSevere_UnknownTermLosesToKnown(t *testing.T) {
	d, err := variant.Parse("1:1000:A:G")
	require.NoError(t, err)

	group := []vep.Consequence{
		{Variant: d, Term: "term_from_a_newer_vocabulary", GeneID: "ENSG1"},
		{Variant: d, Term: "intergenic_variant"},
	}

	sel := selectMostSevere(group, severity.Default())
	assert.Equal(t, "intergenic_variant", sel.Term)
}

func TestSelectMostSevere_DistinctUnknownTermsOrderIndependent(t *testing.T) {
	d, err := variant.Parse("1:1000:A:G")
	require.NoError(t, err)

	// Two unknown terms share the same rank and the same gene and transcript;
	// the term text itself must decide identically in either order.
	a := vep.Consequence{Variant: d, Term: "novel_term_alpha", GeneID: "ENSG1", TranscriptID: "ENST1"}
	b := vep.Consequence{Variant: d, Term: "novel_term_beta", GeneID: "ENSG1", TranscriptID: "ENST1"}

	ranker := severity.Default()
	forward := selectMostSevere([]vep.Consequence{a, b}, ranker)
	backward := selectMostSevere([]vep.Consequence{b, a}, ranker)

	assert.Equal(t, "novel_term_alpha", forward.Term)
	assert.Equal(t, forward, backward)
}

func TestSelectMostSevere_CustomRankTable(t *testing.T) {
	d, err := variant.Parse("1:1000:A:G")
	require.NoError(t, err)

	// A table that inverts the usual priorities.
	ranker, err := severity.NewRanker([]string{"synonymous_variant", "missense_variant"})
	require.NoError(t, err)

	group := []vep.Consequence{
		{Variant: d, Term: "missense_variant", GeneID: "ENSG1"},
		{Variant: d, Term: "synonymous_variant", GeneID: "ENSG1"},
	}

	sel := selectMostSevere(group, ranker)
	assert.Equal(t, "synonymous_variant", sel.Term)
}
