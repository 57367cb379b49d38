// Package output provides result table formatters.
package output

import (
	"bufio"
	"io"
	"strings"

	"github.com/ebivariation/vepmap/internal/pipeline"
)

// emptyMarker renders absent gene fields explicitly rather than omitting them.
const emptyMarker = "-"

// TabWriter writes one tab-delimited row per pipeline output row.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
	rows    int
}

// NewTabWriter creates a tab-delimited writer for consequence-mapping output.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Variant",
			"MostSevereConsequence",
			"EnsemblGeneID",
			"EnsemblGeneName",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single output row. Malformed rows keep their raw token in
// the variant column so the offending input is identifiable.
func (tw *TabWriter) Write(row pipeline.OutputRow) error {
	variantCol := row.Variant.String()
	if row.Consequence == pipeline.Malformed {
		variantCol = row.Token
	}

	geneID := row.GeneID
	if geneID == "" {
		geneID = emptyMarker
	}
	geneName := row.GeneName
	if geneName == "" {
		geneName = emptyMarker
	}

	values := []string{
		variantCol,
		row.Consequence,
		geneID,
		geneName,
	}

	tw.rows++
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteAll writes every row and flushes.
func (tw *TabWriter) WriteAll(rows []pipeline.OutputRow) error {
	for _, row := range rows {
		if err := tw.Write(row); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// Rows returns the number of data rows written.
func (tw *TabWriter) Rows() int {
	return tw.rows
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
