// Command gen-fixture produces a normalized event series (sort,
// timestamp correction, snapshot bracketing) and writes it out as a
// compressed gob dump that cmd/backtest reads directly when its fixture
// path ends in ".gob.gz", optionally
// populating a Redis fixture cache along the way. With -in it
// normalizes a raw CSV series; without -in it synthesizes a toy L2
// random-walk stream, useful for exercising cmd/backtest without a
// real data file on hand.
//
// Usage:
//
//	gen-fixture -out fixture.gob.gz -tick-size 0.01 -synth-rows 5000
//	gen-fixture -in raw.csv -out fixture.gob.gz -tick-size 0.01
package main

import (
	"context"
	"flag"
	"math/rand"
	"os"

	"github.com/exchange/hftbacktest/event"
	"github.com/exchange/hftbacktest/internal/fixturecache"
	"github.com/exchange/hftbacktest/internal/hftlog"
	"github.com/exchange/hftbacktest/reader"
)

func main() {
	var in, out, correction, snapshotMode string
	var tickSize float64
	var cacheAddr, cachePassword string
	var cacheDB int
	var synthRows int
	var synthSeed int64

	flag.StringVar(&in, "in", "", "path to a raw CSV event series to normalize (gzip-transparent by .gz extension); if empty, a toy series is synthesized instead")
	flag.StringVar(&out, "out", "", "path to write the normalized compressed gob dump")
	flag.Float64Var(&tickSize, "tick-size", 0.01, "tick size used to convert prices to ticks")
	flag.StringVar(&correction, "correction", "adjust", "local_ts >= exch_ts correction method: adjust or separate")
	flag.StringVar(&snapshotMode, "snapshot-mode", "process", "snapshot bracketing: process, ignore_sod, or ignore_all")
	flag.StringVar(&cacheAddr, "cache-addr", "", "optional Redis address to also populate a fixture cache entry")
	flag.StringVar(&cachePassword, "cache-password", "", "Redis password for -cache-addr")
	flag.IntVar(&cacheDB, "cache-db", 0, "Redis DB index for -cache-addr")
	flag.IntVar(&synthRows, "synth-rows", 5000, "number of rows to synthesize when -in is not given")
	flag.Int64Var(&synthSeed, "synth-seed", 1, "random seed for the synthetic series, for reproducible fixtures")
	flag.Parse()

	log := hftlog.New("gen-fixture", os.Stdout)

	if out == "" {
		log.Error("-out is required")
		flag.Usage()
		os.Exit(1)
	}

	var rows []event.Row
	var err error
	if in != "" {
		rows, err = loadAll(in, tickSize)
		if err != nil {
			log.WithError(err).Error("failed to load input series")
			os.Exit(1)
		}
		log.Infof("loaded raw series", map[string]interface{}{"rows": len(rows)})
	} else {
		rows = synthesize(synthRows, synthSeed)
		log.Infof("synthesized toy series", map[string]interface{}{"rows": len(rows)})
	}

	primary, side := reader.Correct(rows, correctionMethodFromFlag(correction))
	reader.Sort(primary)
	primary = reader.BracketSnapshots(primary, snapshotModeFromFlag(snapshotMode))
	if len(side) > 0 {
		reader.Sort(side)
		side = reader.BracketSnapshots(side, snapshotModeFromFlag(snapshotMode))
		log.Infof("correction produced a side series", map[string]interface{}{"rows": len(side)})
	}

	if err := reader.DumpCompressed(out, primary); err != nil {
		log.WithError(err).Error("failed to write compressed dump")
		os.Exit(1)
	}
	log.Infof("wrote normalized fixture", map[string]interface{}{"path": out, "rows": len(primary)})

	if cacheAddr != "" {
		cache := fixturecache.Dial(cacheAddr, cachePassword, cacheDB)
		if err := cache.Put(context.Background(), out, primary); err != nil {
			log.WithError(err).Warn("failed to populate fixture cache")
		} else {
			log.Info("populated fixture cache")
		}
	}
}

// synthesize produces a toy L2 stream: a random walk in price with a
// handful of resting depth levels on each side, interspersed with
// occasional trade prints at the touch. Not a realistic order book
// model -- just enough structure to drive the quote-at-touch demo
// strategy through fills, cancels and requotes.
func synthesize(n int, seed int64) []event.Row {
	rng := rand.New(rand.NewSource(seed))

	mid := int64(10000)
	ts := int64(1)
	rows := make([]event.Row, 0, n)

	levels := 3
	for i := 0; i < n; i++ {
		ts += 1 + rng.Int63n(5)

		switch rng.Intn(4) {
		case 0, 1:
			for l := 1; l <= levels; l++ {
				rows = append(rows, event.Row{
					Kind: event.DepthEvent, ExchTs: ts, LocalTs: ts + 1,
					Side: event.Buy, PriceTick: mid - int64(l), Qty: 1 + rng.Float64()*4,
				})
			}
		case 2:
			for l := 1; l <= levels; l++ {
				rows = append(rows, event.Row{
					Kind: event.DepthEvent, ExchTs: ts, LocalTs: ts + 1,
					Side: event.Sell, PriceTick: mid + int64(l), Qty: 1 + rng.Float64()*4,
				})
			}
		default:
			side := event.Buy
			if rng.Intn(2) == 0 {
				side = event.Sell
			}
			rows = append(rows, event.Row{
				Kind: event.TradeEvent, ExchTs: ts, LocalTs: ts + 1,
				Side: side, PriceTick: mid, Qty: 0.1 + rng.Float64(),
			})
		}

		if rng.Intn(10) == 0 {
			if rng.Intn(2) == 0 {
				mid++
			} else {
				mid--
			}
		}
	}

	return rows
}

func loadAll(path string, tickSize float64) ([]event.Row, error) {
	csvReader, err := reader.NewCSVReader(path, tickSize, 8192)
	if err != nil {
		return nil, err
	}
	defer csvReader.Close()

	feed := reader.NewFeed(csvReader)
	var rows []event.Row
	for {
		row, ok := feed.Peek()
		if !ok {
			break
		}
		rows = append(rows, row)
		feed.Advance()
	}
	return rows, nil
}

func correctionMethodFromFlag(s string) reader.CorrectionMethod {
	if s == "separate" {
		return reader.Separate
	}
	return reader.Adjust
}

func snapshotModeFromFlag(s string) reader.SnapshotMode {
	switch s {
	case "ignore_sod":
		return reader.IgnoreSOD
	case "ignore_all":
		return reader.IgnoreAll
	default:
		return reader.ProcessSnapshots
	}
}
