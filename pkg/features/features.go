// Package features merges per-chromosome variant CSVs into the
// feature table of a cohort.
//
// Each filter worker writes one CSV per chromosome:
//
//	sample,<variantId>,<variantId>,...
//	NA00001,0,2,...
//
// Cell values are genotype dosages 0/1/2, or NA for a missing call.
// The merged feature table has the same shape, with the columns of all
// chromosomes side by side.
package features

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// a shard's sample set differs from the cohort's sample manifest.
	ErrSampleMismatch = errors.New("sample set mismatch")

	// the same variant id appears twice, within or across shards.
	ErrDuplicateVariant = errors.New("duplicate variant id")

	// a shard's header or rows are not in the expected shape.
	ErrMalformedShard = errors.New("malformed shard")
)

// one parsed per-chromosome CSV.
type Shard struct {
	Chromosome string

	// variant ids, in column order.
	Variants []string

	// dosage values per sample, aligned with Variants.
	Dosages map[string][]string
}

// Summary describes a merged feature table.
type Summary struct {
	// sample rows.
	Rows int

	// variant columns.
	Cols int

	// variant counts keyed by chromosome name.
	VariantsPerChromosome map[string]int
}

// ReadManifest reads a sample manifest: one sample per line, the id in
// the first tab-separated field. Blank lines and #-comments are skipped.
func ReadManifest(r io.Reader) ([]string, error) {
	samples := []string{}
	seen := map[string]bool{}

	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		id, _, _ := strings.Cut(line, "\t")
		if seen[id] {
			return nil, fmt.Errorf("%w: sample %s listed twice", ErrMalformedShard, id)
		}
		seen[id] = true
		samples = append(samples, id)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// ReadShard parses one per-chromosome CSV.
func ReadShard(r io.Reader, chromosome string) (*Shard, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s: empty file", ErrMalformedShard, chromosome)
		}
		return nil, err
	}
	if len(header) < 2 || header[0] != "sample" {
		return nil, fmt.Errorf(
			"%w: %s: header should start with 'sample' and have variant columns",
			ErrMalformedShard, chromosome,
		)
	}

	variants := header[1:]
	{
		seen := map[string]bool{}
		for _, v := range variants {
			if seen[v] {
				return nil, fmt.Errorf("%w: %s: %s", ErrDuplicateVariant, chromosome, v)
			}
			seen[v] = true
		}
	}

	dosages := map[string][]string{}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf(
				"%w: %s: row for %s has %d cells, want %d",
				ErrMalformedShard, chromosome, record[0], len(record), len(header),
			)
		}

		sample := record[0]
		if _, ok := dosages[sample]; ok {
			return nil, fmt.Errorf(
				"%w: %s: sample %s appears twice", ErrMalformedShard, chromosome, sample,
			)
		}
		for _, cell := range record[1:] {
			switch cell {
			case "0", "1", "2", "NA":
			default:
				return nil, fmt.Errorf(
					"%w: %s: sample %s has dosage %q", ErrMalformedShard, chromosome, sample, cell,
				)
			}
		}
		dosages[sample] = record[1:]
	}

	return &Shard{Chromosome: chromosome, Variants: variants, Dosages: dosages}, nil
}

// Merge writes the feature table of shards to w.
//
// Rows follow the order of samples; each shard should cover exactly that
// sample set. Columns follow the order of shards, then each shard's
// variant order, so the layout is deterministic for a fixed input order.
func Merge(w io.Writer, samples []string, shards []*Shard) (Summary, error) {
	summary := Summary{VariantsPerChromosome: map[string]int{}}

	header := []string{"sample"}
	seenVariants := map[string]string{} // variant id -> chromosome
	for _, shard := range shards {
		for _, v := range shard.Variants {
			if prev, ok := seenVariants[v]; ok {
				return Summary{}, fmt.Errorf(
					"%w: %s in both %s and %s", ErrDuplicateVariant, v, prev, shard.Chromosome,
				)
			}
			seenVariants[v] = shard.Chromosome
		}
		header = append(header, shard.Variants...)

		if len(shard.Dosages) != len(samples) {
			return Summary{}, fmt.Errorf(
				"%w: %s has %d samples, want %d",
				ErrSampleMismatch, shard.Chromosome, len(shard.Dosages), len(samples),
			)
		}
		for _, sample := range samples {
			if _, ok := shard.Dosages[sample]; !ok {
				return Summary{}, fmt.Errorf(
					"%w: %s is missing sample %s", ErrSampleMismatch, shard.Chromosome, sample,
				)
			}
		}

		summary.VariantsPerChromosome[shard.Chromosome] = len(shard.Variants)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return Summary{}, err
	}
	for _, sample := range samples {
		row := make([]string, 0, len(header))
		row = append(row, sample)
		for _, shard := range shards {
			row = append(row, shard.Dosages[sample]...)
		}
		if err := cw.Write(row); err != nil {
			return Summary{}, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return Summary{}, err
	}

	summary.Rows = len(samples)
	summary.Cols = len(header) - 1
	return summary, nil
}
