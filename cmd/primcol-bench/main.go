// Command primcol-bench exercises pkg/primcol's containers against sibling
// libraries from the same dependency stack, as a sanity check and a
// demonstration harness rather than a rigorous benchmark.
package main

import (
	"os"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"
)

var cli struct {
	Bench  BenchCmd  `cmd:"" help:"Compare primcol.Map against an LRU cache under a synthetic workload."`
	Dedupe DedupeCmd `cmd:"" help:"Deduplicate a word list using a Bloom-filter precheck plus an exact set."`
}

func main() {
	ctx := kong.Parse(&cli, kong.Name("primcol-bench"),
		kong.Description("Demo harness for the primcol collections library."))

	log, err := zap.NewDevelopment()
	if err != nil {
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	err = ctx.Run(log)
	ctx.FatalIfErrorf(err)
}
