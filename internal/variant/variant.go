// Package variant defines the canonical variant descriptor and parsing of
// raw variant tokens into it.
package variant

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Descriptor identifies a genomic variant by chromosome, 1-based position,
// reference allele and alternate allele. It is an immutable value: two
// descriptors are equal iff all four fields match exactly. Chromosome naming
// is passed through verbatim ("chr1" and "1" are distinct descriptors).
type Descriptor struct {
	Chrom string
	Pos   int64
	Ref   string
	Alt   string
}

// String returns the canonical CHROM:POS:REF:ALT form.
func (d Descriptor) String() string {
	return d.Chrom + ":" + strconv.FormatInt(d.Pos, 10) + ":" + d.Ref + ":" + d.Alt
}

// MalformedError reports a raw token that could not be parsed into a
// Descriptor.
type MalformedError struct {
	Token  string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed variant %q: %s", e.Token, e.Reason)
}

// Token forms accepted by Parse:
//
//	1:1000:A:G        canonical
//	chr12-25245350-C-A  dash-delimited
//	X:1000:AT>A       REF>ALT separator
var reToken = regexp.MustCompile(`^([\w.]+)[:\-](\d+)[:\-]([ACGTNacgtn]+)[>:\-]([ACGTNacgtn]+)$`)

// Parse converts a raw variant token into a Descriptor. The chromosome field
// is kept verbatim, alleles are uppercased, and the position must be a
// positive integer. A token that does not split into exactly four non-empty
// fields fails with *MalformedError.
func Parse(token string) (Descriptor, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return Descriptor{}, &MalformedError{Token: token, Reason: "empty token"}
	}

	m := reToken.FindStringSubmatch(trimmed)
	if m == nil {
		return Descriptor{}, &MalformedError{
			Token:  token,
			Reason: "expected CHROM:POS:REF:ALT",
		}
	}

	pos, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return Descriptor{}, &MalformedError{Token: token, Reason: "position is not an integer"}
	}
	if pos < 1 {
		return Descriptor{}, &MalformedError{Token: token, Reason: "position must be >= 1"}
	}

	return Descriptor{
		Chrom: m[1],
		Pos:   pos,
		Ref:   strings.ToUpper(m[3]),
		Alt:   strings.ToUpper(m[4]),
	}, nil
}

// InputRecord is one line of caller input: the raw token, its ordinal
// position in the original input, and the parsed descriptor when the token
// was well formed.
type InputRecord struct {
	Ordinal    int
	Token      string
	Descriptor Descriptor
	ParseErr   error
}
