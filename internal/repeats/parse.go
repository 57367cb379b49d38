package repeats

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Column names in the ClinVar variant summary file.
const (
	colType         = "Type"
	colName         = "Name"
	colRCVaccession = "RCVaccession"
	colGeneSymbol   = "GeneSymbol"
	colHGNCID       = "HGNC_ID"
)

// ntExpansion is the variant type selecting repeat expansion rows.
const ntExpansion = "NT expansion"

// Load streams a ClinVar variant summary TSV (plain or gzipped), keeping only
// NT expansion rows, exploding semicolon-joined RCV accessions and gene
// symbols into separate records, deduplicating, parsing the variant names and
// sorting by name.
func Load(path string, logger *zap.Logger) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open variant summary: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return parse(reader, logger)
}

func parse(r io.Reader, logger *zap.Logger) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, fmt.Errorf("variant summary is empty")
	}

	header := strings.Split(strings.TrimPrefix(scanner.Text(), "#"), "\t")
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[name] = i
	}
	maxCol := 0
	for _, required := range []string{colType, colName, colRCVaccession, colGeneSymbol, colHGNCID} {
		idx, ok := cols[required]
		if !ok {
			return nil, fmt.Errorf("variant summary is missing column %q", required)
		}
		if idx > maxCol {
			maxCol = idx
		}
	}

	seen := make(map[Record]bool)
	var records []Record
	rows := 0

	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		// Rows truncated before the last required column cannot be parsed.
		if len(fields) <= maxCol {
			continue
		}
		if fields[cols[colType]] != ntExpansion {
			continue
		}
		rows++

		name := fields[cols[colName]]
		hgnc := fields[cols[colHGNCID]]
		// The same record can carry several RCVs and gene symbols; explode
		// them into separate records. Rows repeated across assemblies
		// collapse through the dedup map.
		for _, rcv := range strings.Split(fields[cols[colRCVaccession]], ";") {
			for _, symbol := range strings.Split(fields[cols[colGeneSymbol]], ";") {
				rec := Record{
					Name:         name,
					RCVAccession: rcv,
					GeneSymbol:   symbol,
					HGNCID:       hgnc,
				}
				if !seen[rec] {
					seen[rec] = true
					records = append(records, rec)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read variant summary: %w", err)
	}

	for i := range records {
		rec := &records[i]
		rec.TranscriptID, rec.CoordinateSpan, rec.RepeatUnitLength, rec.IsProteinHGVS =
			parseIdentifier(rec.Name)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		if records[i].RCVAccession != records[j].RCVAccession {
			return records[i].RCVAccession < records[j].RCVAccession
		}
		return records[i].GeneSymbol < records[j].GeneSymbol
	})

	logger.Info("variant summary loaded",
		zap.Int("nt_expansion_rows", rows),
		zap.Int("records", len(records)))

	return records, nil
}
