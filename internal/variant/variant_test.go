package variant

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidTokens(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected Descriptor
	}{
		{
			name:     "canonical colon form",
			token:    "1:1000:A:G",
			expected: Descriptor{Chrom: "1", Pos: 1000, Ref: "A", Alt: "G"},
		},
		{
			name:     "chr prefix kept verbatim",
			token:    "chr12:25245350:C:A",
			expected: Descriptor{Chrom: "chr12", Pos: 25245350, Ref: "C", Alt: "A"},
		},
		{
			name:     "dash delimited",
			token:    "12-25245350-C-A",
			expected: Descriptor{Chrom: "12", Pos: 25245350, Ref: "C", Alt: "A"},
		},
		{
			name:     "ref>alt separator",
			token:    "X:1000:AT>A",
			expected: Descriptor{Chrom: "X", Pos: 1000, Ref: "AT", Alt: "A"},
		},
		{
			name:     "lowercase alleles uppercased",
			token:    "2:5000:c:t",
			expected: Descriptor{Chrom: "2", Pos: 5000, Ref: "C", Alt: "T"},
		},
		{
			name:     "mitochondrial",
			token:    "MT:302:A:AC",
			expected: Descriptor{Chrom: "MT", Pos: 302, Ref: "A", Alt: "AC"},
		},
		{
			name:     "surrounding whitespace",
			token:    "  1:1000:A:G\n",
			expected: Descriptor{Chrom: "1", Pos: 1000, Ref: "A", Alt: "G"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Parse(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestParse_MalformedTokens(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"three fields", "chr1-1000-A"},
		{"five fields", "1:1000:A:G:extra"},
		{"position not integer", "1:abc:A:G"},
		{"position zero", "1:0:A:G"},
		{"empty ref", "1:1000::G"},
		{"non-nucleotide allele", "1:1000:A:Z"},
		{"bare rsid", "rs699"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.token)
			require.Error(t, err)

			var malformed *MalformedError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.token, malformed.Token)
		})
	}
}

func TestDescriptor_String(t *testing.T) {
	d := Descriptor{Chrom: "chr2", Pos: 5000, Ref: "C", Alt: "T"}
	assert.Equal(t, "chr2:5000:C:T", d.String())
}

func TestParse_RoundTrip(t *testing.T) {
	d, err := Parse("17:41197701:G:A")
	require.NoError(t, err)

	again, err := Parse(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, again)
}
