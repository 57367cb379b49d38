package repeats

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// IdentifierKind names the identifier space used to look up Ensembl genes.
type IdentifierKind string

const (
	KindHGNCID     IdentifierKind = "hgnc_id"
	KindGeneSymbol IdentifierKind = "external_gene_name"
	KindTranscript IdentifierKind = "refseq_mrna"
)

// GeneResolver maps external identifiers to Ensembl gene IDs and gene IDs to
// gene names. The HTTP implementation queries BioMart; tests inject a fixed
// table.
type GeneResolver interface {
	GeneIDs(ctx context.Context, kind IdentifierKind, identifiers []string) (map[string][]string, error)
	GeneNames(ctx context.Context, geneIDs []string) (map[string]string, error)
}

// geneSource describes one prioritized way of determining the Ensembl gene.
type geneSource struct {
	kind   IdentifierKind
	field  func(*Record) string
	usable func(string) bool
}

// Gene sources in decreasing priority. No single identifier space covers all
// ClinVar records, so each record takes the first source that resolves.
var geneSources = []geneSource{
	{
		kind:   KindHGNCID,
		field:  func(r *Record) string { return r.HGNCID },
		usable: func(id string) bool { return len(id) > 5 && id[:5] == "HGNC:" },
	},
	{
		kind:   KindGeneSymbol,
		field:  func(r *Record) string { return r.GeneSymbol },
		usable: func(id string) bool { return id != "" && id != "-" },
	},
	{
		kind:   KindTranscript,
		field:  func(r *Record) string { return r.TranscriptID },
		usable: func(id string) bool { return id != "" },
	},
}

// AnnotateGenes fills Ensembl gene ID, gene name and annotation source on
// every record it can. An identifier resolving to several genes forks the
// record, one copy per gene. A gene assigned by a higher-priority source is
// never overwritten by a lower-priority one.
func AnnotateGenes(ctx context.Context, records []Record, resolver GeneResolver, logger *zap.Logger) ([]Record, error) {
	for _, src := range geneSources {
		ids := collectIdentifiers(records, src)
		if len(ids) == 0 {
			continue
		}

		mapping, err := resolver.GeneIDs(ctx, src.kind, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve gene IDs by %s: %w", src.kind, err)
		}
		logger.Info("gene identifiers resolved",
			zap.String("source", string(src.kind)),
			zap.Int("queried", len(ids)),
			zap.Int("resolved", len(mapping)))

		var next []Record
		for _, rec := range records {
			if rec.EnsemblGeneID != "" {
				next = append(next, rec)
				continue
			}
			id := src.field(&rec)
			geneIDs := mapping[id]
			if !src.usable(id) || len(geneIDs) == 0 {
				next = append(next, rec)
				continue
			}
			for _, geneID := range geneIDs {
				forked := rec
				forked.EnsemblGeneID = geneID
				forked.GeneAnnotationSource = string(src.kind)
				next = append(next, forked)
			}
		}
		records = next
	}

	geneIDs := make(map[string]bool)
	for _, rec := range records {
		if rec.EnsemblGeneID != "" {
			geneIDs[rec.EnsemblGeneID] = true
		}
	}
	if len(geneIDs) == 0 {
		return records, nil
	}

	names, err := resolver.GeneNames(ctx, sortedKeys(geneIDs))
	if err != nil {
		return nil, fmt.Errorf("resolve gene names: %w", err)
	}
	for i := range records {
		records[i].EnsemblGeneName = names[records[i].EnsemblGeneID]
	}

	return records, nil
}

// collectIdentifiers gathers the sorted unique usable identifiers of records
// still lacking a gene assignment.
func collectIdentifiers(records []Record, src geneSource) []string {
	set := make(map[string]bool)
	for i := range records {
		if records[i].EnsemblGeneID != "" {
			continue
		}
		if id := src.field(&records[i]); src.usable(id) {
			set[id] = true
		}
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
