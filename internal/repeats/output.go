package repeats

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Extract runs the full repeat expansion pipeline: load and filter the
// variant summary, annotate genes, and classify repeat types.
func Extract(ctx context.Context, summaryPath string, resolver GeneResolver, logger *zap.Logger) ([]Record, error) {
	records, err := Load(summaryPath, logger)
	if err != nil {
		return nil, err
	}

	records, err = AnnotateGenes(ctx, records, resolver, logger)
	if err != nil {
		return nil, err
	}

	complete := 0
	for i := range records {
		records[i].determineRepeatType()
		if records[i].Complete() {
			complete++
		}
	}
	logger.Info("repeat types assigned",
		zap.Int("records", len(records)),
		zap.Int("complete", complete))

	return records, nil
}

// dataFrameColumns is the column order of the full review table.
var dataFrameColumns = []string{
	"Name", "RCVaccession", "HGNC_ID", "GeneSymbol",
	"RepeatUnitLength", "CoordinateSpan", "IsProteinHGVS", "TranscriptID",
	"EnsemblGeneID", "EnsemblGeneName", "GeneAnnotationSource",
	"RepeatType", "RecordIsComplete",
}

// WriteDataFrame writes every record with all intermediate columns. This
// table is for review and debugging.
func WriteDataFrame(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(dataFrameColumns, "\t") + "\n"); err != nil {
		return err
	}

	for i := range records {
		rec := &records[i]
		fields := []string{
			rec.Name, rec.RCVAccession, rec.HGNCID, rec.GeneSymbol,
			formatCount(rec.RepeatUnitLength), formatCount(rec.CoordinateSpan),
			strconv.FormatBool(rec.IsProteinHGVS), rec.TranscriptID,
			rec.EnsemblGeneID, rec.EnsemblGeneName, rec.GeneAnnotationSource,
			rec.RepeatType, strconv.FormatBool(rec.Complete()),
		}
		if _, err := bw.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatCount(n int64) string {
	if n == 0 {
		return ""
	}
	return strconv.FormatInt(n, 10)
}

// consequenceKey groups complete records for the consequences table.
type consequenceKey struct {
	rcv      string
	geneID   string
	geneName string
}

// WriteConsequences writes the six-column consequences table consumed by the
// evidence string generation pipeline, e.g.
//
//	RCV000005966  1  ENSG00000156475  PPP2R2B  trinucleotide_repeat_expansion  0
//
// Only complete records are written. An (RCV, gene) pair mapping to more than
// one repeat type is an error.
func WriteConsequences(w io.Writer, records []Record) error {
	types := make(map[consequenceKey]string)
	for i := range records {
		rec := &records[i]
		if !rec.Complete() {
			continue
		}
		key := consequenceKey{rec.RCVAccession, rec.EnsemblGeneID, rec.EnsemblGeneName}
		if existing, ok := types[key]; ok && existing != rec.RepeatType {
			return fmt.Errorf("%s/%s maps to multiple repeat types (%s, %s)",
				key.rcv, key.geneID, existing, rec.RepeatType)
		}
		types[key] = rec.RepeatType
	}

	keys := make([]consequenceKey, 0, len(types))
	for key := range types {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if types[keys[i]] != types[keys[j]] {
			return types[keys[i]] < types[keys[j]]
		}
		if keys[i].rcv != keys[j].rcv {
			return keys[i].rcv < keys[j].rcv
		}
		return keys[i].geneID < keys[j].geneID
	})

	bw := bufio.NewWriter(w)
	for _, key := range keys {
		fields := []string{key.rcv, "1", key.geneID, key.geneName, types[key], "0"}
		if _, err := bw.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
