// Package severity ranks Sequence Ontology consequence terms by severity.
package severity

import "fmt"

// DefaultOrder is the consequence-term vocabulary ordered from most severe to
// least severe, following the Ensembl VEP severity ranking.
var DefaultOrder = []string{
	"transcript_ablation",
	"splice_acceptor_variant",
	"splice_donor_variant",
	"stop_gained",
	"frameshift_variant",
	"stop_lost",
	"start_lost",
	"transcript_amplification",
	"inframe_insertion",
	"inframe_deletion",
	"missense_variant",
	"protein_altering_variant",
	"splice_region_variant",
	"incomplete_terminal_codon_variant",
	"start_retained_variant",
	"stop_retained_variant",
	"synonymous_variant",
	"coding_sequence_variant",
	"mature_miRNA_variant",
	"5_prime_UTR_variant",
	"3_prime_UTR_variant",
	"non_coding_transcript_exon_variant",
	"intron_variant",
	"NMD_transcript_variant",
	"non_coding_transcript_variant",
	"upstream_gene_variant",
	"downstream_gene_variant",
	"TFBS_ablation",
	"TFBS_amplification",
	"TF_binding_site_variant",
	"regulatory_region_ablation",
	"regulatory_region_amplification",
	"feature_elongation",
	"regulatory_region_variant",
	"feature_truncation",
	"intergenic_variant",
}

// Ranker maps consequence terms to a numeric severity rank. Lower rank means
// more severe. Terms absent from the table rank after every known term so
// that vocabulary drift in the external annotator never aborts a run.
type Ranker struct {
	rank map[string]int
	n    int
}

// NewRanker builds a Ranker from an ordered term list, most severe first.
// The list must be non-empty and free of duplicates.
func NewRanker(order []string) (*Ranker, error) {
	if len(order) == 0 {
		return nil, fmt.Errorf("severity order is empty")
	}

	rank := make(map[string]int, len(order))
	for i, term := range order {
		if term == "" {
			return nil, fmt.Errorf("severity order entry %d is empty", i)
		}
		if _, dup := rank[term]; dup {
			return nil, fmt.Errorf("duplicate term %q in severity order", term)
		}
		rank[term] = i
	}

	return &Ranker{rank: rank, n: len(order)}, nil
}

// Default returns a Ranker over DefaultOrder.
func Default() *Ranker {
	r, err := NewRanker(DefaultOrder)
	if err != nil {
		panic(err) // DefaultOrder is a valid table
	}
	return r
}

// Rank returns the severity rank of a term, lower is more severe. Unknown
// terms return len(table), i.e. less severe than everything known.
func (r *Ranker) Rank(term string) int {
	if i, ok := r.rank[term]; ok {
		return i
	}
	return r.n
}

// Known reports whether the term is part of the ranking table.
func (r *Ranker) Known(term string) bool {
	_, ok := r.rank[term]
	return ok
}

// Len returns the number of terms in the table.
func (r *Ranker) Len() int {
	return r.n
}
