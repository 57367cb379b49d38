package repeats

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBioMartURL is the public Ensembl BioMart service endpoint.
const DefaultBioMartURL = "https://www.ensembl.org/biomart/martservice"

// BioMartResolver resolves gene identifiers through the Ensembl BioMart
// service, posting an XML query and reading a two-column TSV response.
type BioMartResolver struct {
	endpoint   string
	httpClient *http.Client
}

// NewBioMartResolver creates a resolver against the given endpoint,
// DefaultBioMartURL if empty.
func NewBioMartResolver(endpoint string) *BioMartResolver {
	if endpoint == "" {
		endpoint = DefaultBioMartURL
	}
	return &BioMartResolver{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// queryXML builds a BioMart query for one filter and two attributes.
func queryXML(filter string, values []string, attributes ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><!DOCTYPE Query>`)
	b.WriteString(`<Query virtualSchemaName="default" formatter="TSV" header="0" uniqueRows="1" count="">`)
	b.WriteString(`<Dataset name="hsapiens_gene_ensembl" interface="default">`)
	fmt.Fprintf(&b, `<Filter name=%q value=%q/>`, filter, strings.Join(values, ","))
	for _, attr := range attributes {
		fmt.Fprintf(&b, `<Attribute name=%q/>`, attr)
	}
	b.WriteString(`</Dataset></Query>`)
	return b.String()
}

// query posts one BioMart query and returns the response rows.
func (r *BioMartResolver) query(ctx context.Context, xml string) ([][2]string, error) {
	form := url.Values{"query": {xml}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("BioMart request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("BioMart error %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read BioMart response: %w", err)
	}
	// BioMart reports its own failures inline with status 200.
	if strings.Contains(string(body), "ERROR") {
		return nil, fmt.Errorf("BioMart query failed: %s", firstLine(string(body)))
	}

	var rows [][2]string
	for _, line := range strings.Split(string(body), "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("unexpected BioMart row %q", line)
		}
		rows = append(rows, [2]string{fields[0], fields[1]})
	}
	return rows, nil
}

// GeneIDs maps identifiers of the given kind to Ensembl gene IDs.
func (r *BioMartResolver) GeneIDs(ctx context.Context, kind IdentifierKind, identifiers []string) (map[string][]string, error) {
	if len(identifiers) == 0 {
		return nil, nil
	}

	rows, err := r.query(ctx, queryXML(string(kind), identifiers, string(kind), "ensembl_gene_id"))
	if err != nil {
		return nil, err
	}

	out := make(map[string][]string)
	for _, row := range rows {
		if row[0] == "" || row[1] == "" {
			continue
		}
		out[row[0]] = append(out[row[0]], row[1])
	}
	return out, nil
}

// GeneNames maps Ensembl gene IDs to gene names.
func (r *BioMartResolver) GeneNames(ctx context.Context, geneIDs []string) (map[string]string, error) {
	if len(geneIDs) == 0 {
		return nil, nil
	}

	rows, err := r.query(ctx, queryXML("ensembl_gene_id", geneIDs, "ensembl_gene_id", "external_gene_name"))
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	for _, row := range rows {
		if row[0] == "" || row[1] == "" {
			continue
		}
		if existing, ok := out[row[0]]; ok && existing != row[1] {
			return nil, fmt.Errorf("gene %s maps to multiple names (%s, %s)", row[0], existing, row[1])
		}
		out[row[0]] = row[1]
	}
	return out, nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
