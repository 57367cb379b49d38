package repeats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeResolver serves fixed identifier tables and records which identifier
// kinds were queried.
type fakeResolver struct {
	genes   map[IdentifierKind]map[string][]string
	names   map[string]string
	queried []IdentifierKind
}

func (f *fakeResolver) GeneIDs(_ context.Context, kind IdentifierKind, identifiers []string) (map[string][]string, error) {
	f.queried = append(f.queried, kind)
	out := make(map[string][]string)
	for _, id := range identifiers {
		if genes, ok := f.genes[kind][id]; ok {
			out[id] = genes
		}
	}
	return out, nil
}

func (f *fakeResolver) GeneNames(_ context.Context, geneIDs []string) (map[string]string, error) {
	out := make(map[string]string)
	for _, id := range geneIDs {
		if name, ok := f.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func TestAnnotateGenes_PriorityOrder(t *testing.T) {
	resolver := &fakeResolver{
		genes: map[IdentifierKind]map[string][]string{
			KindHGNCID: {
				"HGNC:644": {"ENSG00000169083"},
			},
			KindGeneSymbol: {
				// Also resolvable by symbol, but HGNC already won.
				"AR":  {"ENSG00000999999"},
				"HTT": {"ENSG00000197386"},
			},
			KindTranscript: {
				"NM_023067.3": {"ENSG00000183770"},
			},
		},
		names: map[string]string{
			"ENSG00000169083": "AR",
			"ENSG00000197386": "HTT",
			"ENSG00000183770": "FOXL2",
		},
	}

	records := []Record{
		{Name: "a", GeneSymbol: "AR", HGNCID: "HGNC:644"},
		{Name: "b", GeneSymbol: "HTT", HGNCID: "-"},
		{Name: "c", GeneSymbol: "-", HGNCID: "-", TranscriptID: "NM_023067.3"},
		{Name: "d", GeneSymbol: "-", HGNCID: "-"},
	}

	annotated, err := AnnotateGenes(context.Background(), records, resolver, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, annotated, 4)

	assert.Equal(t, "ENSG00000169083", annotated[0].EnsemblGeneID)
	assert.Equal(t, "AR", annotated[0].EnsemblGeneName)
	assert.Equal(t, string(KindHGNCID), annotated[0].GeneAnnotationSource)

	assert.Equal(t, "ENSG00000197386", annotated[1].EnsemblGeneID)
	assert.Equal(t, string(KindGeneSymbol), annotated[1].GeneAnnotationSource)

	assert.Equal(t, "ENSG00000183770", annotated[2].EnsemblGeneID)
	assert.Equal(t, "FOXL2", annotated[2].EnsemblGeneName)
	assert.Equal(t, string(KindTranscript), annotated[2].GeneAnnotationSource)

	assert.Empty(t, annotated[3].EnsemblGeneID)
	assert.Empty(t, annotated[3].GeneAnnotationSource)

	assert.Equal(t, []IdentifierKind{KindHGNCID, KindGeneSymbol, KindTranscript}, resolver.queried)
}

func TestAnnotateGenes_MultipleGenesForkRecord(t *testing.T) {
	resolver := &fakeResolver{
		genes: map[IdentifierKind]map[string][]string{
			KindHGNCID: {
				// HGNC:10560 resolves to two Ensembl genes.
				"HGNC:10560": {"ENSG00000163635", "ENSG00000285258"},
			},
		},
		names: map[string]string{
			"ENSG00000163635": "ATXN7",
			"ENSG00000285258": "ATXN7",
		},
	}

	records := []Record{{Name: "a", GeneSymbol: "ATXN7", HGNCID: "HGNC:10560"}}

	annotated, err := AnnotateGenes(context.Background(), records, resolver, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, annotated, 2)

	assert.Equal(t, "ENSG00000163635", annotated[0].EnsemblGeneID)
	assert.Equal(t, "ENSG00000285258", annotated[1].EnsemblGeneID)
	assert.Equal(t, annotated[0].Name, annotated[1].Name)
}

func TestAnnotateGenes_NoResolvableRecords(t *testing.T) {
	resolver := &fakeResolver{genes: map[IdentifierKind]map[string][]string{}}

	records := []Record{{Name: "a", GeneSymbol: "-", HGNCID: "-"}}
	annotated, err := AnnotateGenes(context.Background(), records, resolver, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, annotated, 1)
	assert.Empty(t, annotated[0].EnsemblGeneID)
}
