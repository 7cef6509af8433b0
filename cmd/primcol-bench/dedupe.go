package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/grafana/primcol/pkg/hashcore"
	"github.com/grafana/primcol/pkg/primcol"
	"github.com/willf/bloom"
	"go.uber.org/zap"
)

// DedupeCmd reads newline-separated words from a file (or stdin) and prints
// the unique ones, using a Bloom filter to skip the exact-set lookup for
// words that provably haven't been seen.
type DedupeCmd struct {
	File          string  `arg:"" optional:"" help:"Path to read words from; defaults to stdin."`
	ExpectedWords uint    `default:"100000" help:"Expected distinct word count, sizes the Bloom filter."`
	FalsePositive float64 `default:"0.01" help:"Target Bloom filter false-positive rate."`
}

func (d *DedupeCmd) Run(log *zap.Logger) error {
	in := os.Stdin
	if d.File != "" {
		f, err := os.Open(d.File)
		if err != nil {
			return fmt.Errorf("opening %s: %w", d.File, err)
		}
		defer f.Close()
		in = f
	}

	filter := bloom.NewWithEstimates(d.ExpectedWords, d.FalsePositive)
	seen := primcol.NewSet[string](hashcore.StringOps)

	var total, unique, falsePositives int
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		word := scanner.Text()
		if word == "" {
			continue
		}
		total++

		dup := false
		if filter.TestString(word) {
			if seen.Contains(word) {
				dup = true
			} else {
				falsePositives++
			}
		}
		filter.AddString(word)
		if !dup && seen.Add(word) {
			unique++
			fmt.Println(word)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	log.Info("dedupe complete",
		zap.Int("total", total), zap.Int("unique", unique), zap.Int("bloom_false_positives", falsePositives))
	return nil
}
