package repeats

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBioMartResolverGeneIDs(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotQuery = r.FormValue("query")
		w.Write([]byte("HGNC:644\tENSG00000169083\nHGNC:10560\tENSG00000163635\nHGNC:10560\tENSG00000285258\n"))
	}))
	defer srv.Close()

	resolver := NewBioMartResolver(srv.URL)
	ids, err := resolver.GeneIDs(context.Background(), KindHGNCID, []string{"HGNC:644", "HGNC:10560"})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, `<Dataset name="hsapiens_gene_ensembl"`)
	assert.Contains(t, gotQuery, `<Filter name="hgnc_id" value="HGNC:644,HGNC:10560"/>`)
	assert.Contains(t, gotQuery, `<Attribute name="hgnc_id"/>`)
	assert.Contains(t, gotQuery, `<Attribute name="ensembl_gene_id"/>`)

	assert.Equal(t, map[string][]string{
		"HGNC:644":   {"ENSG00000169083"},
		"HGNC:10560": {"ENSG00000163635", "ENSG00000285258"},
	}, ids)
}

func TestBioMartResolverGeneNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ENSG00000169083\tAR\nENSG00000197386\tHTT\n"))
	}))
	defer srv.Close()

	resolver := NewBioMartResolver(srv.URL)
	names, err := resolver.GeneNames(context.Background(), []string{"ENSG00000169083", "ENSG00000197386"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"ENSG00000169083": "AR",
		"ENSG00000197386": "HTT",
	}, names)
}

func TestBioMartResolverGeneNamesConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ENSG00000169083\tAR\nENSG00000169083\tNR3C4\n"))
	}))
	defer srv.Close()

	resolver := NewBioMartResolver(srv.URL)
	_, err := resolver.GeneNames(context.Background(), []string{"ENSG00000169083"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple names")
}

func TestBioMartResolverServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	resolver := NewBioMartResolver(srv.URL)
	_, err := resolver.GeneIDs(context.Background(), KindGeneSymbol, []string{"AR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestBioMartResolverInlineError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Query ERROR: caught BioMart::Exception::Usage\n"))
	}))
	defer srv.Close()

	resolver := NewBioMartResolver(srv.URL)
	_, err := resolver.GeneIDs(context.Background(), KindGeneSymbol, []string{"AR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BioMart query failed")
}

func TestBioMartResolverEmptyInput(t *testing.T) {
	resolver := NewBioMartResolver("")
	assert.Equal(t, DefaultBioMartURL, resolver.endpoint)

	ids, err := resolver.GeneIDs(context.Background(), KindHGNCID, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	names, err := resolver.GeneNames(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, names)
}
