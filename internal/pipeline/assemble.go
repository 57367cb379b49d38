package pipeline

import "github.com/ebivariation/vepmap/internal/variant"

// Sentinel values emitted in place of a consequence term.
const (
	// NotFound marks a well-formed variant for which the engine returned no
	// annotation.
	NotFound = "not_found"
	// Malformed marks an input token that could not be parsed; such tokens
	// never reach the engine but still produce an output row.
	Malformed = "malformed"
)

// OutputRow is one row of pipeline output, in 1:1 correspondence with the
// input records.
type OutputRow struct {
	Ordinal     int
	Token       string             // the raw input token
	Variant     variant.Descriptor // zero value when the token was malformed
	Consequence string             // SO term, NotFound or Malformed
	GeneID      string
	GeneName    string
}

// assemble merges selected consequences back against the original input
// order. Every input record yields exactly one row; duplicate records with
// the same descriptor receive identical content apart from the ordinal.
func assemble(records []variant.InputRecord, selected map[variant.Descriptor]Selected) []OutputRow {
	rows := make([]OutputRow, len(records))
	for i, rec := range records {
		row := OutputRow{
			Ordinal: rec.Ordinal,
			Token:   rec.Token,
		}
		switch {
		case rec.ParseErr != nil:
			row.Consequence = Malformed
		default:
			row.Variant = rec.Descriptor
			if sel, ok := selected[rec.Descriptor]; ok && sel.Found {
				row.Consequence = sel.Term
				row.GeneID = sel.GeneID
				row.GeneName = sel.GeneName
			} else {
				row.Consequence = NotFound
			}
		}
		rows[i] = row
	}
	return rows
}
