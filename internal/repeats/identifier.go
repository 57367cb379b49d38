package repeats

import (
	"regexp"
	"strconv"
)

// ClinVar variant names are HGVS-like, e.g.
//
//	NM_000044.3(AR):c.172_174CAG(7_34) (p.Gln58_Gln78del)
//	ATXN8OS:n.1103_1105CTG(31_74)
//	NM_002111.8(HTT):c.52CAG[(36_39)]
//	NP_002964.3:p.Gln166(>=33)
var (
	reRefSeq    = regexp.MustCompile(`^([A-Z]{2}_\d+(?:\.\d+)?)`)
	reCoordSpan = regexp.MustCompile(`[cgmn]\.(\d+)_(\d+)`)
	// The repeated base sequence directly follows the coordinates, either
	// bare before a count group ("174CAG(7_34)") or bracketed ("52CAG[...").
	reRepeatUnit  = regexp.MustCompile(`[cgmn]\.\d+(?:_\d+)?([ACGT]+)[\[(]`)
	reRepeatParen = regexp.MustCompile(`\(([ACGT]+)\)n`)
	reProtein     = regexp.MustCompile(`^[A-Z]{2}_\d+(?:\.\d+)?(?:\([^)]+\))?:p\.`)
)

// parseIdentifier extracts transcript accession, coordinate span, repeat unit
// length and protein-HGVS flag from a ClinVar variant name. Fields that
// cannot be determined are left at their zero values; names that fit no known
// shape simply yield an empty result, never an error.
func parseIdentifier(name string) (transcriptID string, span, unitLength int64, isProtein bool) {
	if m := reRefSeq.FindStringSubmatch(name); m != nil {
		transcriptID = m[1]
	}

	isProtein = reProtein.MatchString(name)
	if isProtein {
		return transcriptID, 0, 0, true
	}

	if m := reCoordSpan.FindStringSubmatch(name); m != nil {
		start, err1 := strconv.ParseInt(m[1], 10, 64)
		end, err2 := strconv.ParseInt(m[2], 10, 64)
		if err1 == nil && err2 == nil && end >= start {
			span = end - start + 1
		}
	}

	if m := reRepeatUnit.FindStringSubmatch(name); m != nil {
		unitLength = int64(len(m[1]))
	} else if m := reRepeatParen.FindStringSubmatch(name); m != nil {
		unitLength = int64(len(m[1]))
	}

	return transcriptID, span, unitLength, false
}
