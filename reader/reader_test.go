package reader

import (
	"os"
	"reflect"
	"testing"

	"github.com/exchange/hftbacktest/event"
)

func sampleRows() []event.Row {
	return []event.Row{
		{Kind: event.DepthEvent, ExchTs: 100, LocalTs: 105, Side: event.Buy, PriceTick: 10000, Qty: 1.5},
		{Kind: event.TradeEvent, ExchTs: 110, LocalTs: 116, Side: event.Sell, PriceTick: 10001, Qty: 0.5},
		{Kind: event.DepthClearEvent, ExchTs: 120, LocalTs: 128, Side: event.Buy, PriceTick: 0, Qty: 0},
	}
}

func TestSliceReaderChunking(t *testing.T) {
	rows := sampleRows()
	r := NewSliceReader(rows, 2)

	chunk1, err := r.Next()
	if err != nil || len(chunk1) != 2 {
		t.Fatalf("expected 2-row first chunk, got %d err=%v", len(chunk1), err)
	}
	chunk2, err := r.Next()
	if err != nil || len(chunk2) != 1 {
		t.Fatalf("expected 1-row second chunk, got %d err=%v", len(chunk2), err)
	}
	eof, err := r.Next()
	if err != nil || len(eof) != 0 {
		t.Fatalf("expected EOF chunk, got %d err=%v", len(eof), err)
	}
}

func TestFeedPeekAdvanceAcrossChunks(t *testing.T) {
	rows := sampleRows()
	feed := NewFeed(NewSliceReader(rows, 1))

	var seen []event.Row
	for {
		row, ok := feed.Peek()
		if !ok {
			break
		}
		seen = append(seen, row)
		feed.Advance()
	}
	if !reflect.DeepEqual(seen, rows) {
		t.Fatalf("expected feed to yield all rows in order, got %v", seen)
	}

	// Peek without Advance must be idempotent.
	feed2 := NewFeed(NewSliceReader(rows, 10))
	first, _ := feed2.Peek()
	second, _ := feed2.Peek()
	if first != second {
		t.Fatalf("expected repeated Peek to return the same row")
	}
}

func TestSortOrdersByLocalTimestamp(t *testing.T) {
	rows := []event.Row{
		{LocalTs: 30},
		{LocalTs: 10},
		{LocalTs: 20},
	}
	Sort(rows)
	want := []int64{10, 20, 30}
	for i, w := range want {
		if rows[i].LocalTs != w {
			t.Fatalf("expected sorted local_ts %v, got %v", want, rows)
		}
	}
}

func TestCorrectAdjustPullsLocalTsUp(t *testing.T) {
	rows := []event.Row{
		{ExchTs: 100, LocalTs: 90},
		{ExchTs: 50, LocalTs: 60},
	}
	primary, side := Correct(rows, Adjust)
	if side != nil {
		t.Fatalf("adjust must not produce a side series")
	}
	if primary[0].LocalTs != 100 {
		t.Fatalf("expected local_ts adjusted up to exch_ts 100, got %d", primary[0].LocalTs)
	}
	if primary[1].LocalTs != 60 {
		t.Fatalf("expected untouched row to stay at local_ts 60, got %d", primary[1].LocalTs)
	}
}

func TestCorrectSeparateSplitsOffendingRows(t *testing.T) {
	rows := []event.Row{
		{ExchTs: 100, LocalTs: 90},
		{ExchTs: 50, LocalTs: 60},
	}
	primary, side := Correct(rows, Separate)
	if len(primary) != 1 || primary[0].LocalTs != 60 {
		t.Fatalf("expected one conforming row in primary series, got %v", primary)
	}
	if len(side) != 1 || side[0].ExchTs != 100 {
		t.Fatalf("expected offending row moved to side series, got %v", side)
	}
	for _, r := range primary {
		if r.LocalTs < r.ExchTs {
			t.Fatalf("primary series still violates local_ts >= exch_ts: %v", r)
		}
	}
	for _, r := range side {
		if r.LocalTs < r.ExchTs {
			t.Fatalf("side series still violates local_ts >= exch_ts: %v", r)
		}
	}
}

func TestBracketSnapshotsIgnoreSOD(t *testing.T) {
	rows := []event.Row{
		{Kind: event.DepthClearEvent, LocalTs: 1},
		{Kind: event.DepthSnapshotEvent, LocalTs: 1},
		{Kind: event.DepthEvent, LocalTs: 2},
		{Kind: event.DepthClearEvent, LocalTs: 50},
	}
	out := BracketSnapshots(rows, IgnoreSOD)
	if len(out) != 2 {
		t.Fatalf("expected SOD bracket dropped and later clear kept, got %d rows: %v", len(out), out)
	}
	if out[0].Kind != event.DepthEvent || out[1].LocalTs != 50 {
		t.Fatalf("unexpected surviving rows: %v", out)
	}
}

func TestBracketSnapshotsIgnoreAllDropsEveryBracket(t *testing.T) {
	rows := []event.Row{
		{Kind: event.DepthClearEvent, LocalTs: 1},
		{Kind: event.DepthEvent, LocalTs: 2},
		{Kind: event.DepthSnapshotEvent, LocalTs: 50},
	}
	out := BracketSnapshots(rows, IgnoreAll)
	if len(out) != 1 || out[0].Kind != event.DepthEvent {
		t.Fatalf("expected only the depth diff to survive, got %v", out)
	}
}

func TestDumpLoadCompressedRoundTrip(t *testing.T) {
	rows := sampleRows()
	path := t.TempDir() + "/series.gob.gz"

	if err := DumpCompressed(path, rows); err != nil {
		t.Fatalf("DumpCompressed failed: %v", err)
	}
	defer os.Remove(path)

	got, err := LoadCompressed(path)
	if err != nil {
		t.Fatalf("LoadCompressed failed: %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Fatalf("expected round-tripped rows to equal original, got %v want %v", got, rows)
	}
}

func TestCSVReaderParsesSchemaAndSkipsHeader(t *testing.T) {
	path := t.TempDir() + "/rows.csv"
	content := "kind,exch_ts,local_ts,side,price,qty\n" +
		"1,100,105,1,100.00,1.5\n" +
		"4,110,116,-1,100.01,0.5\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	r, err := NewCSVReader(path, 0.01, 10)
	if err != nil {
		t.Fatalf("NewCSVReader failed: %v", err)
	}
	defer r.Close()

	chunk, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if len(chunk) != 2 {
		t.Fatalf("expected 2 data rows (header skipped), got %d", len(chunk))
	}
	if chunk[0].Kind != event.DepthEvent || chunk[0].PriceTick != 10000 {
		t.Fatalf("unexpected first row: %+v", chunk[0])
	}
	if chunk[1].Kind != event.TradeEvent || chunk[1].Side != event.Sell {
		t.Fatalf("unexpected second row: %+v", chunk[1])
	}

	eof, err := r.Next()
	if err != nil || len(eof) != 0 {
		t.Fatalf("expected EOF after one chunk, got %d err=%v", len(eof), err)
	}
}
