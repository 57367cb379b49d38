package pipeline

import "github.com/ebivariation/vepmap/internal/variant"

// dedup returns the unique descriptors of the well-formed input records in
// first-occurrence order. The external engine is invoked once per unique
// descriptor, not once per input row.
func dedup(records []variant.InputRecord) []variant.Descriptor {
	seen := make(map[variant.Descriptor]bool, len(records))
	var unique []variant.Descriptor
	for _, rec := range records {
		if rec.ParseErr != nil {
			continue
		}
		if !seen[rec.Descriptor] {
			seen[rec.Descriptor] = true
			unique = append(unique, rec.Descriptor)
		}
	}
	return unique
}

// batches partitions descriptors into slices of at most size, covering the
// input exactly once and preserving relative order. size must be positive
// (validated by Config).
func batches(descriptors []variant.Descriptor, size int) [][]variant.Descriptor {
	if len(descriptors) == 0 {
		return nil
	}
	out := make([][]variant.Descriptor, 0, (len(descriptors)+size-1)/size)
	for start := 0; start < len(descriptors); start += size {
		end := start + size
		if end > len(descriptors) {
			end = len(descriptors)
		}
		out = append(out, descriptors[start:end])
	}
	return out
}
