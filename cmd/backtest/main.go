// Command backtest runs a single concrete strategy loop (a
// quote-at-best-bid-ask market maker) against a fixture file, purely
// as a driver and smoke test for the hbt.Backtest public API (spec
// §4.M). It is not part of the core package surface.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/exchange/hftbacktest/assettype"
	"github.com/exchange/hftbacktest/depth"
	"github.com/exchange/hftbacktest/event"
	"github.com/exchange/hftbacktest/hbt"
	"github.com/exchange/hftbacktest/internal/config"
	"github.com/exchange/hftbacktest/internal/fixturecache"
	"github.com/exchange/hftbacktest/internal/hftlog"
	"github.com/exchange/hftbacktest/internal/metrics"
	"github.com/exchange/hftbacktest/internal/resultstore"
	"github.com/exchange/hftbacktest/latency"
	"github.com/exchange/hftbacktest/order"
	"github.com/exchange/hftbacktest/proc"
	"github.com/exchange/hftbacktest/queue"
	"github.com/exchange/hftbacktest/reader"
	"github.com/exchange/hftbacktest/state"
)

func main() {
	log := hftlog.New("backtest", os.Stdout)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Error("invalid configuration")
		os.Exit(1)
	}

	metrics.Init()
	go func() {
		addr := fmt.Sprintf(":%d", cfg.MetricsPort)
		http.Handle("/metrics", metrics.Handler())
		log.Infof("serving metrics", map[string]interface{}{"addr": addr})
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.WithError(err).Warn("metrics server stopped")
		}
	}()

	if cfg.Schedule == "" {
		runOnce(cfg, log)
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Schedule, func() { runOnce(cfg, log) }); err != nil {
		log.WithError(err).Error("invalid schedule expression")
		os.Exit(1)
	}
	log.Infof("scheduling repeated runs", map[string]interface{}{"schedule": cfg.Schedule})
	c.Run()
}

// runOnce builds a fresh Backtest from cfg and drives it to
// completion, logging and optionally persisting the result. A fresh
// instance is built each call so a cron-scheduled run starts from the
// same initial state every time rather than continuing a prior run's
// clock and account state.
func runOnce(cfg *config.Config, log *hftlog.Logger) {
	bt, err := buildBacktest(cfg)
	if err != nil {
		log.WithError(err).Error("failed to build backtest")
		return
	}

	runner := newQuoteAtBestMaker(bt, cfg.TickSize)

	startTs := bt.CurrentTimestamp()
	const step int64 = 1_000_000_000 // 1s

	seenExecQty := make(map[int64]float64)
	numFills := 0
	for {
		t0 := time.Now()
		more := bt.Elapse(step)
		metrics.ObserveElapse(time.Since(t0))
		if !more {
			break
		}

		metrics.IncEventsProcessed()
		runner.onTick()

		outstanding := 0
		for id, o := range bt.Orders() {
			if o.SeenExecQty > seenExecQty[id] {
				metrics.IncFills(o.Maker)
				numFills++
				seenExecQty[id] = o.SeenExecQty
			}
			if !o.Status.Terminal() {
				outstanding++
			}
		}
		metrics.SetOrdersOutstanding(outstanding)
		metrics.SetEquity(bt.Equity(bt.Mid()))
	}
	endTs := bt.CurrentTimestamp()

	log.Infof("backtest finished", map[string]interface{}{
		"position": bt.Position(),
		"balance":  bt.Balance(),
		"equity":   bt.Equity(bt.Mid()),
		"orders":   bt.NumOrders(),
	})

	if cfg.ResultStoreDSN == "" {
		return
	}

	store, err := resultstore.Open(cfg.ResultStoreDSN)
	if err != nil {
		log.WithError(err).Warn("failed to open result store")
		return
	}
	defer store.Close()

	res := resultstore.Result{
		RunID:          fmt.Sprintf("run-%d", startTs),
		FixturePath:    cfg.FixturePath,
		StartTimestamp: startTs,
		EndTimestamp:   endTs,
		FinalPosition:  bt.Position(),
		FinalBalance:   bt.Balance(),
		FinalEquity:    bt.Equity(bt.Mid()),
		NumFills:       int64(numFills),
		NumOrders:      int64(bt.NumOrders()),
	}
	if err := store.Save(context.Background(), res); err != nil {
		log.WithError(err).Warn("failed to persist run result")
	}
}

func buildBacktest(cfg *config.Config) (*hbt.Backtest, error) {
	// The local and exchange processors each need their own cursor
	// over the fixture: a shared Feed would let whichever processor
	// runs first for a timestamp permanently consume the row out from
	// under the other, desyncing the two depth replicas. Each gets an
	// independent reader/Feed pair over the same rows.
	localFeed, exchFeed, err := openFixtureFeeds(cfg)
	if err != nil {
		return nil, err
	}

	at := assetTypeFor(cfg)

	localDepth := depth.New(cfg.TickSize, cfg.LotSize)
	exchDepth := depth.New(cfg.TickSize, cfg.LotSize)
	acct := state.New(cfg.StartPosition, cfg.StartBalance, 0, cfg.MakerFee, cfg.TakerFee, at)

	toExchange := order.NewBus()
	toLocal := order.NewBus()

	lat := latencyModelFor(cfg)
	q := queueModelFor(cfg)

	lp := proc.NewLocalProcessor(localDepth, acct, toExchange, toLocal, lat, localFeed)
	ep := proc.NewExchangeProcessor(exchDepth, toLocal, toExchange, lat, q, exchFeed)

	return hbt.New(lp, ep), nil
}

// openFixtureFeeds returns two independent feeds over cfg.FixturePath's
// rows, one per processor. A populated fixture cache is checked first
// so a repeated run against the same path skips re-parsing the file;
// on a cache miss (or no cache configured) a ".gob.gz" path is read as
// a cmd/gen-fixture dump and any other path with the CSVReader.
func openFixtureFeeds(cfg *config.Config) (proc.DataFeed, proc.DataFeed, error) {
	if cfg.FixtureCacheAddr != "" {
		cache := fixturecache.Dial(cfg.FixtureCacheAddr, cfg.FixtureCachePassword, cfg.FixtureCacheDB)
		rows, found, err := cache.Get(context.Background(), cfg.FixturePath)
		if err != nil {
			return nil, nil, err
		}
		if found {
			return reader.NewFeed(reader.NewSliceReader(rows, 4096)),
				reader.NewFeed(reader.NewSliceReader(rows, 4096)),
				nil
		}
	}

	if strings.HasSuffix(cfg.FixturePath, ".gob.gz") {
		rows, err := reader.LoadCompressed(cfg.FixturePath)
		if err != nil {
			return nil, nil, err
		}
		return reader.NewFeed(reader.NewSliceReader(rows, 4096)),
			reader.NewFeed(reader.NewSliceReader(rows, 4096)),
			nil
	}

	localCSV, err := reader.NewCSVReader(cfg.FixturePath, cfg.TickSize, 4096)
	if err != nil {
		return nil, nil, err
	}
	exchCSV, err := reader.NewCSVReader(cfg.FixturePath, cfg.TickSize, 4096)
	if err != nil {
		return nil, nil, err
	}
	return reader.NewFeed(localCSV), reader.NewFeed(exchCSV), nil
}

func latencyModelFor(cfg *config.Config) latency.Model {
	if cfg.LatencyModel == "feed" {
		return latency.NewFeed(cfg.FeedLatencyMultiplier, cfg.EntryLatencyNs, cfg.ResponseLatencyNs)
	}
	return latency.NewConstant(cfg.EntryLatencyNs, cfg.ResponseLatencyNs)
}

func assetTypeFor(cfg *config.Config) assettype.AssetType {
	if cfg.AssetType == "inverse" {
		return assettype.NewInverse(cfg.ContractSize)
	}
	return assettype.NewLinear(cfg.ContractSize)
}

func queueModelFor(cfg *config.Config) queue.Model {
	if cfg.QueueModel == "log_prob" {
		return queue.NewLogProb()
	}
	return queue.NewRiskAverse()
}

// quoteAtBestMaker is the minimal example strategy: it keeps a single
// resting bid one tick below the best bid and a single resting ask
// one tick above the best ask, requoting whenever the book moves.
type quoteAtBestMaker struct {
	bt       *hbt.Backtest
	tickSize float64
	qty      float64
	nextID   int64
	bidID    int64
	askID    int64
}

func newQuoteAtBestMaker(bt *hbt.Backtest, tickSize float64) *quoteAtBestMaker {
	return &quoteAtBestMaker{bt: bt, tickSize: tickSize, qty: 1, nextID: 1}
}

func (m *quoteAtBestMaker) onTick() {
	bid := m.bt.BestBid()
	ask := m.bt.BestAsk()
	if bid != bid || ask != ask { // NaN check: empty book, nothing to quote against.
		return
	}

	wantBid := bid - m.tickSize
	wantAsk := ask + m.tickSize

	m.requote(&m.bidID, wantBid, true)
	m.requote(&m.askID, wantAsk, false)
}

func (m *quoteAtBestMaker) requote(orderID *int64, price float64, isBuy bool) {
	if *orderID != 0 {
		if o, ok := m.bt.Orders()[*orderID]; ok && !o.Status.Terminal() {
			if o.PriceTick == event.PriceToTick(price, m.tickSize) {
				return
			}
			m.bt.Cancel(*orderID)
		}
	}

	id := m.nextID
	m.nextID++
	var err error
	if isBuy {
		err = m.bt.SubmitBuyOrder(id, price, m.qty, order.GTX, order.Limit)
	} else {
		err = m.bt.SubmitSellOrder(id, price, m.qty, order.GTX, order.Limit)
	}
	if err == nil {
		*orderID = id
	}
}

