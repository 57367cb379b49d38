// Package vep wraps the external Ensembl VEP annotation engine as a batch
// oracle: submit a batch of variant descriptors, get back consequence records.
// The engine itself is a black box; this package only formats its input and
// parses its output.
package vep

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ebivariation/vepmap/internal/variant"
)

// Consequence is one annotation result for a single transcript or gene
// overlapping a variant. A variant may have zero, one or many consequences.
type Consequence struct {
	Variant      variant.Descriptor
	Term         string // SO consequence term
	GeneID       string // empty if absent
	GeneName     string // empty if absent
	TranscriptID string // empty if absent
}

// Annotator is the boundary to the external annotation engine. Every returned
// consequence references a descriptor present in the submitted batch; a
// descriptor absent from the output simply received no annotation.
//
// Tests substitute a deterministic in-process implementation.
type Annotator interface {
	Annotate(ctx context.Context, batch []variant.Descriptor) ([]Consequence, error)
}

// UnavailableError reports that the external engine could not be invoked or
// failed in a way not attributable to individual variants. Fatal for the batch.
type UnavailableError struct {
	Reason string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("annotator unavailable: %s: %v", e.Reason, e.Err)
	}
	return "annotator unavailable: " + e.Reason
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// OutputError reports engine output that could not be parsed into the
// expected record shape. Fatal for the batch.
type OutputError struct {
	Detail string
	Err    error
}

func (e *OutputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed annotator output: %s: %v", e.Detail, e.Err)
	}
	return "malformed annotator output: " + e.Detail
}

func (e *OutputError) Unwrap() error { return e.Err }

// inputLine renders a descriptor as a minimal VCF data line. The ID column
// carries the canonical descriptor string so that output records can be keyed
// back to their descriptor regardless of how the engine rewrites coordinates.
func inputLine(d variant.Descriptor) string {
	return d.Chrom + "\t" +
		strconv.FormatInt(d.Pos, 10) + "\t" +
		d.String() + "\t" +
		d.Ref + "\t" +
		d.Alt + "\t.\t.\t."
}
