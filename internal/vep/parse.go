package vep

import (
	"go.uber.org/zap"

	"github.com/ebivariation/vepmap/internal/variant"
)

// vepResult mirrors one object of VEP's JSON output (one per input variant).
type vepResult struct {
	Input                  string          `json:"input"`
	ID                     string          `json:"id"`
	MostSevereConsequence  string          `json:"most_severe_consequence"`
	TranscriptConsequences []vepTranscript `json:"transcript_consequences"`
	IntergenicConsequences []vepIntergenic `json:"intergenic_consequences"`
	RegulatoryConsequences []vepRegulatory `json:"regulatory_feature_consequences"`
}

type vepTranscript struct {
	GeneID           string   `json:"gene_id"`
	GeneSymbol       string   `json:"gene_symbol"`
	TranscriptID     string   `json:"transcript_id"`
	ConsequenceTerms []string `json:"consequence_terms"`
}

type vepIntergenic struct {
	ConsequenceTerms []string `json:"consequence_terms"`
}

type vepRegulatory struct {
	RegulatoryFeatureID string   `json:"regulatory_feature_id"`
	ConsequenceTerms    []string `json:"consequence_terms"`
}

// batchKeys builds the lookup from canonical descriptor string to descriptor
// for one submitted batch.
func batchKeys(batch []variant.Descriptor) map[string]variant.Descriptor {
	keys := make(map[string]variant.Descriptor, len(batch))
	for _, d := range batch {
		keys[d.String()] = d
	}
	return keys
}

// convertResult flattens one VEP result object into consequence records,
// keyed by the descriptor echoed in the ID column. Results whose identifier
// does not match a submitted descriptor are dropped with a warning: the
// adapter never fabricates variants.
func convertResult(res *vepResult, keys map[string]variant.Descriptor, logger *zap.Logger) []Consequence {
	d, ok := keys[res.ID]
	if !ok {
		logger.Warn("dropping result for unsubmitted variant",
			zap.String("id", res.ID),
			zap.String("input", res.Input))
		return nil
	}

	var records []Consequence
	for _, tc := range res.TranscriptConsequences {
		for _, term := range tc.ConsequenceTerms {
			records = append(records, Consequence{
				Variant:      d,
				Term:         term,
				GeneID:       tc.GeneID,
				GeneName:     tc.GeneSymbol,
				TranscriptID: tc.TranscriptID,
			})
		}
	}
	for _, rc := range res.RegulatoryConsequences {
		for _, term := range rc.ConsequenceTerms {
			records = append(records, Consequence{
				Variant:      d,
				Term:         term,
				TranscriptID: rc.RegulatoryFeatureID,
			})
		}
	}
	for _, ic := range res.IntergenicConsequences {
		for _, term := range ic.ConsequenceTerms {
			records = append(records, Consequence{Variant: d, Term: term})
		}
	}

	// Some engine versions report only the summary field for rejected or
	// unplaced variants. Keep it so the variant is not silently lost.
	if len(records) == 0 && res.MostSevereConsequence != "" {
		records = append(records, Consequence{Variant: d, Term: res.MostSevereConsequence})
	}

	return records
}
