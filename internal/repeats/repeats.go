// Package repeats extracts repeat expansion variants from a ClinVar variant
// summary dump and maps them to Ensembl genes and repeat types.
package repeats

// Repeat types assigned to expansion variants (Sequence Ontology).
const (
	// TypeTrinucleotide corresponds to SO:0002165.
	TypeTrinucleotide = "trinucleotide_repeat_expansion"
	// TypeShortTandem corresponds to SO:0002162.
	TypeShortTandem = "short_tandem_repeat_expansion"
)

// Record is one repeat expansion variant after exploding multi-valued
// RCV/gene columns, enriched step by step by the extraction pipeline.
type Record struct {
	Name         string // ClinVar variant name, HGVS-like
	RCVAccession string
	GeneSymbol   string
	HGNCID       string

	// Parsed from Name.
	TranscriptID     string // RefSeq accession with version, empty if absent
	CoordinateSpan   int64  // end - start + 1 of the coding range, 0 if unknown
	RepeatUnitLength int64  // length of the repeated base sequence, 0 if unknown
	IsProteinHGVS    bool

	// Gene annotation.
	EnsemblGeneID        string
	EnsemblGeneName      string
	GeneAnnotationSource string // which identifier resolved the gene

	RepeatType string // TypeTrinucleotide, TypeShortTandem or empty
}

// determineRepeatType classifies the record. Protein-level HGVS names affect
// whole amino acids, so the repeat is assumed trinucleotide. Otherwise the
// repeat unit length decides, falling back to the coordinate span.
func (r *Record) determineRepeatType() {
	if r.IsProteinHGVS {
		r.RepeatType = TypeTrinucleotide
		return
	}

	length := r.RepeatUnitLength
	if length == 0 {
		length = r.CoordinateSpan
	}
	if length == 0 {
		return
	}

	if length%3 == 0 {
		r.RepeatType = TypeTrinucleotide
	} else {
		r.RepeatType = TypeShortTandem
	}
}

// Complete reports whether the record carries everything the consequences
// table needs.
func (r Record) Complete() bool {
	return r.EnsemblGeneID != "" && r.EnsemblGeneName != "" && r.RepeatType != ""
}
