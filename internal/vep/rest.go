package vep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ebivariation/vepmap/internal/variant"
)

// DefaultRESTBaseURL is the public Ensembl REST service.
const DefaultRESTBaseURL = "https://rest.ensembl.org"

// RESTAnnotator submits batches to the Ensembl VEP REST endpoint instead of a
// local engine installation. The record shape and error taxonomy match
// ExecAnnotator, so the two are interchangeable behind Annotator.
type RESTAnnotator struct {
	baseURL    string
	species    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRESTAnnotator creates a REST-backed annotator. species defaults to
// "homo_sapiens", baseURL to DefaultRESTBaseURL.
func NewRESTAnnotator(baseURL, species string) *RESTAnnotator {
	if baseURL == "" {
		baseURL = DefaultRESTBaseURL
	}
	if species == "" {
		species = "homo_sapiens"
	}
	return &RESTAnnotator{
		baseURL: baseURL,
		species: species,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for warning messages.
func (a *RESTAnnotator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// restRequest is the POST body for the /vep/:species/region endpoint.
type restRequest struct {
	Variants []string `json:"variants"`
}

// Annotate submits one batch to the REST service.
func (a *RESTAnnotator) Annotate(ctx context.Context, batch []variant.Descriptor) ([]Consequence, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	lines := make([]string, len(batch))
	for i, d := range batch {
		lines[i] = inputLine(d)
	}

	body, err := json.Marshal(restRequest{Variants: lines})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/vep/%s/region", a.baseURL, a.species)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &UnavailableError{Reason: "VEP REST request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UnavailableError{
			Reason: fmt.Sprintf("VEP REST error %d: %s", resp.StatusCode, bytes.TrimSpace(detail)),
		}
	}

	var results []vepResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, &OutputError{Detail: "decode REST response", Err: err}
	}

	keys := batchKeys(batch)
	var records []Consequence
	for i := range results {
		records = append(records, convertResult(&results[i], keys, a.logger)...)
	}
	return records, nil
}
