package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebivariation/vepmap/internal/pipeline"
	"github.com/ebivariation/vepmap/internal/variant"
)

func TestTabWriter_WriteAll(t *testing.T) {
	d1, err := variant.Parse("1:1000:A:G")
	require.NoError(t, err)
	d2, err := variant.Parse("2:5000:C:T")
	require.NoError(t, err)

	rows := []pipeline.OutputRow{
		{Ordinal: 0, Token: "1:1000:A:G", Variant: d1, Consequence: "missense_variant", GeneID: "ENSG1", GeneName: "GENE1"},
		{Ordinal: 1, Token: "2:5000:C:T", Variant: d2, Consequence: pipeline.NotFound},
		{Ordinal: 2, Token: "chr1-1000-A", Consequence: pipeline.Malformed},
	}

	var buf bytes.Buffer
	tw := NewTabWriter(&buf)
	require.NoError(t, tw.WriteHeader())
	require.NoError(t, tw.WriteAll(rows))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)

	assert.Equal(t, "#Variant\tMostSevereConsequence\tEnsemblGeneID\tEnsemblGeneName", lines[0])
	assert.Equal(t, "1:1000:A:G\tmissense_variant\tENSG1\tGENE1", lines[1])
	assert.Equal(t, "2:5000:C:T\tnot_found\t-\t-", lines[2])
	assert.Equal(t, "chr1-1000-A\tmalformed\t-\t-", lines[3])

	assert.Equal(t, len(rows), tw.Rows())
}
